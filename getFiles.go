package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

var allowedExts = map[string]struct{}{
	".ts":  {},
	".tsx": {},
	".js":  {},
	".jsx": {},
	".cjs": {},
	".mjs": {},
}

// defaultIgnoredDirs are never traversed, regardless of .gitignore.
var defaultIgnoredDirs = []string{".git", "node_modules", ".vscode", "scripts"}

func hasCorrectExtension(name string) bool {
	if strings.HasSuffix(name, ".d.ts") {
		return false
	}
	_, ok := allowedExts[filepath.Ext(name)]
	return ok
}

func parseGitIgnore(fileContent string, dirPath string) ([]GlobMatcher, error) {
	patterns := []string{}
	for _, line := range strings.Split(fileContent, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "!") {
			continue
		}
		patterns = append(patterns, trimmed)
	}
	return CreateGlobMatchers(patterns, dirPath)
}

// FindAndProcessGitIgnoreFilesUpToRepoRoot collects .gitignore rules from dirPath
// and every parent directory up to the one containing .git.
func FindAndProcessGitIgnoreFilesUpToRepoRoot(dirPath string, logger *slog.Logger) []GlobMatcher {
	matchers := []GlobMatcher{}
	dir := filepath.Clean(dirPath)
	for {
		matchers = append(matchers, readGitIgnore(dir, logger)...)

		if gitDir, err := os.Stat(filepath.Join(dir, ".git")); err == nil && gitDir.IsDir() {
			return matchers
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return matchers
		}
		dir = parent
	}
}

func readGitIgnore(dir string, logger *slog.Logger) []GlobMatcher {
	content, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return nil
	}
	matchers, err := parseGitIgnore(string(content), dir)
	if err != nil {
		logger.Warn("ignoring invalid .gitignore", "dir", dir, "error", err)
		return nil
	}
	return matchers
}

// SourceFileWalker lists the source files under a root directory.
type SourceFileWalker struct {
	Exclude []string
	Logger  *slog.Logger
}

// CollectSourceFiles returns the sorted internal paths of all source files
// under root. A missing root is an error. Unreadable subdirectories are logged
// and skipped.
func (w SourceFileWalker) CollectSourceFiles(root string) ([]string, error) {
	logger := w.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot read project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}

	excludeMatchers, err := CreateGlobMatchers(w.Exclude, root)
	if err != nil {
		return nil, err
	}
	matchers := append(FindAndProcessGitIgnoreFilesUpToRepoRoot(root, logger), excludeMatchers...)

	files := GetFiles(filepath.Clean(root), []string{}, matchers, logger)
	slices.Sort(files)
	return files, nil
}

func GetFiles(directory string, existingFiles []string, parentGlobMatchers []GlobMatcher, logger *slog.Logger) []string {
	entries, err := os.ReadDir(directory)
	if err != nil {
		logger.Warn("cannot read directory", "path", directory, "error", err)
		return existingFiles
	}

	for _, entry := range entries {
		entryName := entry.Name()
		entryFilePath := filepath.Join(directory, entryName)

		if entry.IsDir() {
			if slices.Contains(defaultIgnoredDirs, entryName) || MatchesAnyGlobMatcher(entryFilePath, parentGlobMatchers) {
				continue
			}
			// the root .gitignore is already part of parentGlobMatchers
			matchers := parentGlobMatchers
			if nested := readGitIgnore(entryFilePath, logger); len(nested) > 0 {
				matchers = append(slices.Clone(parentGlobMatchers), nested...)
			}
			existingFiles = GetFiles(entryFilePath, existingFiles, matchers, logger)
			continue
		}

		if hasCorrectExtension(entryName) && !MatchesAnyGlobMatcher(entryFilePath, parentGlobMatchers) {
			existingFiles = append(existingFiles, NormalizePathForInternal(entryFilePath))
		}
	}

	return existingFiles
}
