package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
)

// PathAlias is one compilerOptions.paths entry with targets made absolute.
type PathAlias struct {
	Pattern string
	Targets []string
}

// TsConfigAliases holds what module resolution needs from a tsconfig.
type TsConfigAliases struct {
	BaseURL string
	Aliases []PathAlias
}

type tsConfigFile struct {
	Extends         json.RawMessage `json:"extends"`
	CompilerOptions struct {
		BaseURL string              `json:"baseUrl"`
		Paths   map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// LoadTsConfigAliases reads a tsconfig (JSON or JSONC), follows "extends" and
// returns baseUrl and paths. Child configs override baseUrl and individual path keys.
func LoadTsConfigAliases(tsconfigPath string) (TsConfigAliases, error) {
	merged, err := loadTsConfigChain(tsconfigPath, map[string]bool{})
	if err != nil {
		return TsConfigAliases{}, err
	}

	aliases := TsConfigAliases{BaseURL: merged.baseURL}
	for pattern, targets := range merged.paths {
		aliases.Aliases = append(aliases.Aliases, PathAlias{Pattern: pattern, Targets: targets})
	}
	// longest prefix wins, like the TypeScript resolver
	sort.Slice(aliases.Aliases, func(i, j int) bool {
		pi := strings.TrimSuffix(aliases.Aliases[i].Pattern, "*")
		pj := strings.TrimSuffix(aliases.Aliases[j].Pattern, "*")
		if len(pi) != len(pj) {
			return len(pi) > len(pj)
		}
		return aliases.Aliases[i].Pattern < aliases.Aliases[j].Pattern
	})

	return aliases, nil
}

type mergedTsConfig struct {
	baseURL string
	paths   map[string][]string
}

func loadTsConfigChain(configPath string, seen map[string]bool) (mergedTsConfig, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return mergedTsConfig{}, err
	}
	if seen[absPath] {
		return mergedTsConfig{paths: map[string][]string{}}, nil
	}
	seen[absPath] = true

	content, err := os.ReadFile(absPath)
	if err != nil {
		return mergedTsConfig{}, err
	}

	var cfg tsConfigFile
	if err := json.Unmarshal(jsonc.ToJSON(content), &cfg); err != nil {
		return mergedTsConfig{}, fmt.Errorf("failed to unmarshal tsconfig %s: %w", absPath, err)
	}

	configDir := filepath.Dir(absPath)
	result := mergedTsConfig{paths: map[string][]string{}}

	var extends string
	if len(cfg.Extends) > 0 {
		// array form of extends is not supported
		_ = json.Unmarshal(cfg.Extends, &extends)
	}
	if extends != "" {
		if basePath, ok := findExtendedTsConfig(extends, configDir); ok {
			base, err := loadTsConfigChain(basePath, seen)
			if err != nil {
				return mergedTsConfig{}, err
			}
			result = base
		}
	}

	pathsRoot := configDir
	if cfg.CompilerOptions.BaseURL != "" {
		result.baseURL = filepath.Join(configDir, cfg.CompilerOptions.BaseURL)
		pathsRoot = result.baseURL
	}

	for pattern, targets := range cfg.CompilerOptions.Paths {
		absTargets := make([]string, 0, len(targets))
		for _, target := range targets {
			if filepath.IsAbs(target) {
				absTargets = append(absTargets, filepath.Clean(target))
			} else {
				absTargets = append(absTargets, filepath.Join(pathsRoot, target))
			}
		}
		result.paths[pattern] = absTargets
	}

	return result, nil
}

func findExtendedTsConfig(extends string, baseDir string) (string, bool) {
	candidates := []string{}
	if filepath.IsAbs(extends) || strings.HasPrefix(extends, ".") {
		p := extends
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		candidates = append(candidates, p, p+".json")
	} else {
		candidates = append(candidates,
			filepath.Join(baseDir, "node_modules", extends),
			filepath.Join(baseDir, "node_modules", extends, "tsconfig.json"),
			filepath.Join(baseDir, "node_modules", extends+".json"),
		)
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// Candidates returns the absolute paths an aliased specifier may point to.
func (a TsConfigAliases) Candidates(specifier string) []string {
	candidates := []string{}
	for _, alias := range a.Aliases {
		if strings.HasSuffix(alias.Pattern, "*") {
			prefix := strings.TrimSuffix(alias.Pattern, "*")
			if !strings.HasPrefix(specifier, prefix) {
				continue
			}
			rest := strings.TrimPrefix(specifier, prefix)
			for _, target := range alias.Targets {
				candidates = append(candidates, strings.Replace(target, "*", rest, 1))
			}
		} else if alias.Pattern == specifier {
			candidates = append(candidates, alias.Targets...)
		}
		if len(candidates) > 0 {
			break
		}
	}

	if a.BaseURL != "" {
		candidates = append(candidates, filepath.Join(a.BaseURL, specifier))
	}

	return candidates
}
