package main

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// GlobMatcher is one compiled ignore pattern anchored at patternRoot.
type GlobMatcher struct {
	globPattern glob.Glob
	inputString string
	patternRoot string
	// plain names without `/` or `*` match a file or directory of that name at any depth
	matchesAnyName bool
}

// CreateGlobMatchers compiles .gitignore style patterns relative to patternsRoot.
func CreateGlobMatchers(patterns []string, patternsRoot string) ([]GlobMatcher, error) {
	root := NormalizePathForInternal(patternsRoot)
	if root != "" && !strings.HasSuffix(root, "/") {
		root += "/"
	}

	matchers := make([]GlobMatcher, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(NormalizeGlobPattern(strings.TrimSpace(pattern)), "./")
		if pattern == "" {
			continue
		}
		matchesAnyName := !strings.Contains(pattern, "/") && !strings.Contains(pattern, "*")

		if strings.HasSuffix(pattern, "/") && !strings.Contains(pattern, "*") {
			// trailing slash ignores the directory recursively
			pattern = "**" + pattern + "**"
		}

		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		matchers = append(matchers, GlobMatcher{
			globPattern:    compiled,
			inputString:    pattern,
			patternRoot:    root,
			matchesAnyName: matchesAnyName,
		})

		// `**/` requires at least one directory with this glob library, so the
		// pattern is also added without it to match entries directly in root
		if strings.HasPrefix(pattern, "**/") {
			rootPattern := strings.Replace(pattern, "**/", "", 1)
			compiled, err := glob.Compile(rootPattern)
			if err != nil {
				return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
			}
			matchers = append(matchers, GlobMatcher{globPattern: compiled, inputString: rootPattern, patternRoot: root})
		}
	}
	return matchers, nil
}

func MatchesAnyGlobMatcher(filePath string, matchers []GlobMatcher) bool {
	fileInternal := NormalizePathForInternal(filePath)
	for _, matcher := range matchers {
		rel := strings.TrimPrefix(fileInternal, matcher.patternRoot)
		if matcher.globPattern.Match(rel) {
			return true
		}
		if !matcher.matchesAnyName {
			continue
		}
		if rel == matcher.inputString || strings.HasSuffix(rel, "/"+matcher.inputString) {
			return true
		}
		if strings.HasPrefix(rel, matcher.inputString+"/") || strings.Contains(rel, "/"+matcher.inputString+"/") {
			return true
		}
	}
	return false
}
