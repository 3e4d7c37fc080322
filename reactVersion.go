package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/tidwall/jsonc"
)

// React.lazy and Suspense for code splitting were released in 16.6.0.
const reactLazyConstraint = ">= 16.6.0"

type packageJson struct {
	Version          string            `json:"version"`
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

// ReactVersion describes the react version found for a project. Source is
// "installed" when read from node_modules and "declared" when taken from the
// lowest version allowed by the package.json range.
type ReactVersion struct {
	Version   string
	Source    string
	Supported bool
}

func readPackageJson(path string) (*packageJson, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pkg packageJson
	if err := json.Unmarshal(jsonc.ToJSON(content), &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &pkg, nil
}

// DetectReactVersion looks for the nearest package.json at or above dir and
// checks whether its react version supports lazy loading. ok is false when no
// usable react version is found.
func DetectReactVersion(dir string) (version ReactVersion, ok bool, err error) {
	constraint, err := semver.NewConstraint(reactLazyConstraint)
	if err != nil {
		return ReactVersion{}, false, err
	}

	for current := filepath.Clean(dir); ; current = filepath.Dir(current) {
		if installed, err := readPackageJson(filepath.Join(current, "node_modules", "react", "package.json")); err == nil && installed.Version != "" {
			if v, err := semver.NewVersion(installed.Version); err == nil {
				return ReactVersion{Version: v.String(), Source: "installed", Supported: constraint.Check(v)}, true, nil
			}
		}

		pkg, err := readPackageJson(filepath.Join(current, "package.json"))
		if err == nil {
			if v, found := declaredReactVersion(pkg); found {
				return ReactVersion{Version: v.String(), Source: "declared", Supported: constraint.Check(v)}, true, nil
			}
		} else if !os.IsNotExist(err) {
			return ReactVersion{}, false, err
		}

		if filepath.Dir(current) == current {
			return ReactVersion{}, false, nil
		}
	}
}

func declaredReactVersion(pkg *packageJson) (*semver.Version, bool) {
	for _, deps := range []map[string]string{pkg.Dependencies, pkg.PeerDependencies, pkg.DevDependencies} {
		if rangeStr, found := deps["react"]; found {
			return lowestVersionInRange(rangeStr)
		}
	}
	return nil, false
}

// lowestVersionInRange returns the smallest version named by a range such as
// "^16.8.0", "~17.0.2" or ">=16.3 <19". Ranges like "latest" or "workspace:*" yield false.
func lowestVersionInRange(rangeStr string) (*semver.Version, bool) {
	if _, err := semver.NewConstraint(rangeStr); err != nil {
		return nil, false
	}

	var lowest *semver.Version
	for _, alternative := range strings.Split(rangeStr, "||") {
		fields := strings.Fields(alternative)
		if len(fields) == 0 {
			continue
		}
		v, err := semver.NewVersion(strings.TrimLeft(fields[0], "^~>=v"))
		if err != nil {
			continue
		}
		if lowest == nil || v.LessThan(lowest) {
			lowest = v
		}
	}
	return lowest, lowest != nil
}
