package main

import (
	"os"
	"path/filepath"
	"strings"
)

var osSeparator = string(os.PathSeparator)

func StandardiseDirPath(cwd string) string {
	if strings.HasSuffix(cwd, osSeparator) {
		return cwd
	}
	return cwd + osSeparator
}

// ResolveAbsoluteCwd makes cwd absolute against the process working directory
// and gives it a trailing separator.
func ResolveAbsoluteCwd(cwd string) string {
	if filepath.IsAbs(cwd) {
		return StandardiseDirPath(cwd)
	}
	binaryExecDir, _ := os.Getwd()
	return StandardiseDirPath(filepath.Join(binaryExecDir, cwd))
}

func isValidIdentifierChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_' || b == '$'
}

// resolveAgainst joins a relative path with base and leaves absolute paths untouched.
func resolveAgainst(base string, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
