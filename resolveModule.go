package main

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// resolutionExtensions is probed in order; the order is the tie-break between
// sibling files that differ only by extension.
var resolutionExtensions = []string{"", ".js", ".jsx", ".ts", ".tsx"}

type ResolvedModule struct {
	Path       string `json:"path,omitempty"`
	IsInternal bool   `json:"isInternal"`
}

// ModuleResolver maps a module specifier to a file inside the project. Results
// are cached for the lifetime of the resolver.
type ModuleResolver struct {
	aliases TsConfigAliases
	isFile  func(path string) bool

	mu    sync.RWMutex
	cache map[string]ResolvedModule
}

func NewModuleResolver(aliases TsConfigAliases) *ModuleResolver {
	return &ModuleResolver{
		aliases: aliases,
		isFile:  isRegularFile,
		cache:   map[string]ResolvedModule{},
	}
}

func isRegularFile(path string) bool {
	info, err := os.Stat(DenormalizePathForOS(path))
	return err == nil && info.Mode().IsRegular()
}

func isRelativeSpecifier(specifier string) bool {
	return specifier == "." || specifier == ".." || strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

// Resolve returns the file the specifier points to when imported from
// importingFileDir. Unmatched specifiers are external, which is not an error.
func (r *ModuleResolver) Resolve(specifier string, importingFileDir string) ResolvedModule {
	key := importingFileDir + "\x00" + specifier

	r.mu.RLock()
	cached, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return cached
	}

	resolved := r.resolve(specifier, importingFileDir)

	r.mu.Lock()
	if existing, ok := r.cache[key]; ok {
		resolved = existing
	} else {
		r.cache[key] = resolved
	}
	r.mu.Unlock()

	return resolved
}

func (r *ModuleResolver) resolve(specifier string, importingFileDir string) ResolvedModule {
	if specifier == "" {
		return ResolvedModule{}
	}

	var candidates []string
	switch {
	case filepath.IsAbs(specifier):
		candidates = []string{filepath.Clean(specifier)}
	case isRelativeSpecifier(specifier):
		candidates = []string{filepath.Join(importingFileDir, specifier)}
	default:
		candidates = append(r.aliases.Candidates(specifier), filepath.Join(importingFileDir, specifier))
	}

	for _, candidate := range candidates {
		if path, ok := r.probe(candidate); ok {
			return ResolvedModule{Path: NormalizePathForInternal(path), IsInternal: true}
		}
	}

	return ResolvedModule{}
}

// probe tries the candidate with each extension, then <candidate>/index with each extension.
func (r *ModuleResolver) probe(candidate string) (string, bool) {
	for _, ext := range resolutionExtensions {
		if r.isFile(candidate + ext) {
			return candidate + ext, true
		}
	}

	index := filepath.Join(candidate, "index")
	for _, ext := range resolutionExtensions {
		if r.isFile(index + ext) {
			return index + ext, true
		}
	}

	return "", false
}
