package main

import (
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizePathForInternal converts an OS path into the forward slash form
// used as map key for file analyses. It is the identity outside Windows.
func NormalizePathForInternal(p string) string {
	if runtime.GOOS != "windows" || p == "" {
		return p
	}
	s := filepath.ToSlash(filepath.Clean(p))
	if len(s) > 1 && strings.HasSuffix(s, "/") {
		s = strings.TrimRight(s, "/")
	}
	return s
}

// DenormalizePathForOS converts an internal path back for os.* calls.
func DenormalizePathForOS(internal string) string {
	if runtime.GOOS != "windows" || internal == "" {
		return internal
	}
	return filepath.FromSlash(internal)
}

// NormalizeGlobPattern turns backslash separated patterns into glob syntax.
func NormalizeGlobPattern(pattern string) string {
	if runtime.GOOS != "windows" {
		return pattern
	}
	return strings.ReplaceAll(pattern, `\`, "/")
}

// NormalizeRecordPath turns a file name reported by a renderer, which may use
// either separator, into an internal absolute path.
func NormalizeRecordPath(fileName string, root string) string {
	if fileName == "" {
		return ""
	}
	p := filepath.FromSlash(strings.ReplaceAll(fileName, `\`, "/"))
	return NormalizePathForInternal(filepath.Clean(resolveAgainst(root, p)))
}

// ReportKey is the root relative form of path with a leading slash, as used
// for report entries. The root itself is "/". ok is false for paths outside root.
func ReportKey(root string, path string) (string, bool) {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(DenormalizePathForOS(path)))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		return "/", true
	}
	return "/" + filepath.ToSlash(rel), true
}
