package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// LazyDepConfig is the content of lazy-dep.config.json or lazy-dep.config.yaml.
// Relative paths are resolved against the directory of the config file.
type LazyDepConfig struct {
	Root           string   `json:"root,omitempty" yaml:"root,omitempty"`
	RenderTree     string   `json:"renderTree,omitempty" yaml:"renderTree,omitempty"`
	Output         string   `json:"output,omitempty" yaml:"output,omitempty"`
	Exclude        []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	TsConfig       string   `json:"tsconfig,omitempty" yaml:"tsconfig,omitempty"`
	FilterMarkup   bool     `json:"filterMarkup,omitempty" yaml:"filterMarkup,omitempty"`
	ValidateSyntax bool     `json:"validateSyntax,omitempty" yaml:"validateSyntax,omitempty"`
	RenderedOnly   bool     `json:"renderedOnly,omitempty" yaml:"renderedOnly,omitempty"`
	Concurrency    int      `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
}

var configFileNames = []string{"lazy-dep.config.json", "lazy-dep.config.yaml", "lazy-dep.config.yml"}

const defaultOutputFile = "lazy-dep-report.json"

// FindConfigFile returns the first config file present in dir.
func FindConfigFile(dir string) (string, bool) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// LoadConfig loads the config from configPath, which can be a config file or a
// directory containing one. It returns the config with paths made absolute.
func LoadConfig(configPath string) (LazyDepConfig, error) {
	fileInfo, err := os.Stat(configPath)
	if err != nil {
		return LazyDepConfig{}, err
	}

	actualPath := configPath
	if fileInfo.IsDir() {
		found, ok := FindConfigFile(configPath)
		if !ok {
			return LazyDepConfig{}, fmt.Errorf("no %s found in %s", strings.Join(configFileNames, " or "), configPath)
		}
		actualPath = found
	}

	content, err := os.ReadFile(actualPath)
	if err != nil {
		return LazyDepConfig{}, err
	}

	config, err := ParseConfig(content, filepath.Ext(actualPath))
	if err != nil {
		return LazyDepConfig{}, fmt.Errorf("failed to parse config %s: %w", actualPath, err)
	}

	config.resolvePaths(filepath.Dir(actualPath))
	return config, nil
}

// ParseConfig decodes a config written as JSONC or, for .yaml/.yml, as YAML.
func ParseConfig(content []byte, ext string) (LazyDepConfig, error) {
	var config LazyDepConfig

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &config); err != nil {
			return LazyDepConfig{}, err
		}
	default:
		decoder := json.NewDecoder(strings.NewReader(string(jsonc.ToJSON(content))))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&config); err != nil {
			return LazyDepConfig{}, err
		}
	}

	if err := config.Validate(); err != nil {
		return LazyDepConfig{}, err
	}
	return config, nil
}

func (c LazyDepConfig) Validate() error {
	var errs []error
	for i, pattern := range c.Exclude {
		if err := validatePattern(pattern); err != nil {
			errs = append(errs, fmt.Errorf("exclude[%d]: %w", i, err))
		}
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency))
	}
	return errors.Join(errs...)
}

func (c *LazyDepConfig) resolvePaths(dir string) {
	if c.Root == "" {
		c.Root = "."
	}
	c.Root = resolveAgainst(dir, c.Root)
	c.RenderTree = resolveAgainst(dir, c.RenderTree)
	c.Output = resolveAgainst(dir, c.Output)
	c.TsConfig = resolveAgainst(dir, c.TsConfig)
}

func validatePattern(pattern string) error {
	if len(pattern) >= 2 && pattern[0] == '.' && (pattern[1] == '/' || pattern[1] == '\\') {
		return fmt.Errorf("pattern '%s' starts with './' or '.\\', which is not allowed. Use paths that starts with file or directory name", pattern)
	}
	if len(pattern) >= 3 && pattern[0] == '.' && pattern[1] == '.' && (pattern[2] == '/' || pattern[2] == '\\') {
		return fmt.Errorf("pattern '%s' starts with '../' or '..\\', which is not allowed. Use paths that starts with file or directory name", pattern)
	}
	return nil
}

// DefaultConfig is written by `config init`.
func DefaultConfig() LazyDepConfig {
	return LazyDepConfig{
		Root:       "src",
		RenderTree: "render-tree.json",
		Output:     defaultOutputFile,
		Exclude:    []string{"**/*.test.*", "**/*.stories.*"},
		TsConfig:   "tsconfig.json",
	}
}

// InitConfigFile writes the default config into dir in the given format
// ("json" or "yaml"). An existing config file is never overwritten.
func InitConfigFile(dir string, format string) (string, error) {
	if existing, ok := FindConfigFile(dir); ok {
		return "", fmt.Errorf("config file already exists: %s", existing)
	}

	var (
		content []byte
		err     error
		path    string
	)
	switch format {
	case "json":
		path = filepath.Join(dir, configFileNames[0])
		content, err = json.MarshalIndent(DefaultConfig(), "", "  ")
		content = append(content, '\n')
	case "yaml":
		path = filepath.Join(dir, configFileNames[1])
		content, err = yaml.Marshal(DefaultConfig())
	default:
		return "", fmt.Errorf("unsupported config format %q, use json or yaml", format)
	}
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}
