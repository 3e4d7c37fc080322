package main

import (
	"fmt"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"
)

func esbuildLoader(path string) api.Loader {
	switch filepath.Ext(path) {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".tsx":
		return api.LoaderTSX
	case ".mjs", ".cjs":
		return api.LoaderJS
	default:
		// plain .js files commonly contain JSX in React projects
		return api.LoaderJSX
	}
}

// CheckSyntax transforms source with esbuild and returns its errors as
// "line:column: message" diagnostics. A file that parses cleanly returns nil.
func CheckSyntax(path string, source []byte) []string {
	result := api.Transform(string(source), api.TransformOptions{
		Loader:     esbuildLoader(path),
		Sourcefile: path,
		LogLevel:   api.LogLevelSilent,
	})

	if len(result.Errors) == 0 {
		return nil
	}

	diagnostics := make([]string, 0, len(result.Errors))
	for _, msg := range result.Errors {
		if msg.Location == nil {
			diagnostics = append(diagnostics, msg.Text)
			continue
		}
		diagnostics = append(diagnostics, fmt.Sprintf("%d:%d: %s", msg.Location.Line, msg.Location.Column+1, msg.Text))
	}
	return diagnostics
}
