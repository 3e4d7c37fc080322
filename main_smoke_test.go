package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/golden"
)

var fixtureProject = filepath.Join("__fixtures__", "lazyProject")

func discardLogger() *slog.Logger {
	return newLogger(io.Discard, false, true)
}

func fixtureRoot(t *testing.T) string {
	t.Helper()
	root, err := filepath.Abs(fixtureProject)
	assert.NilError(t, err)
	return root
}

func TestAnalyzeCmd(t *testing.T) {
	root := fixtureRoot(t)
	output := filepath.Join(t.TempDir(), "report.json")

	var stdout bytes.Buffer
	report, err := analyzeCmdFn(context.Background(), analyzeOptions{
		Root:       root,
		RenderTree: filepath.Join(root, "render-tree.json"),
		Output:     output,
		TopFiles:   defaultSummaryTopFiles,
	}, discardLogger(), &stdout)
	assert.NilError(t, err)

	app := report.Files["/src/App.jsx"]
	assert.Assert(t, app != nil)
	assert.Equal(t, app.AlreadyLazyLoaded, 1)
	assert.Equal(t, app.CanNotBeLazyLoaded, 1)
	assert.DeepEqual(t, app.CanBeLazyLoaded, map[string]CandidateEntry{
		"Footer": {Path: filepath.Join(root, "src/components/Footer.jsx"), ExportName: "Footer"},
		"Icons":  {Path: filepath.Join(root, "src/icons.js"), ExportName: "Icons"},
	})

	totals := report.Totals()
	assert.Equal(t, totals.NoOfSubFiles, 5)
	assert.Equal(t, totals.NoOfSubFolders, 3)
	assert.Equal(t, totals.CanBeLazyLoaded, 2)

	content, err := os.ReadFile(output)
	assert.NilError(t, err)
	var decoded Report
	assert.NilError(t, json.Unmarshal(content, &decoded))
	assert.Equal(t, len(decoded.Files), 5)

	assert.Assert(t, is.Contains(stdout.String(), "Analysed 5 files"))
	assert.Assert(t, is.Contains(stdout.String(), "/src/App.jsx"))
}

func TestAnalyzeCmdReportGolden(t *testing.T) {
	root := fixtureRoot(t)
	output := filepath.Join(t.TempDir(), "report.json")

	_, err := analyzeCmdFn(context.Background(), analyzeOptions{
		Root:       root,
		RenderTree: filepath.Join(root, "render-tree.json"),
		Output:     output,
	}, discardLogger(), io.Discard)
	assert.NilError(t, err)

	content, err := os.ReadFile(output)
	assert.NilError(t, err)
	content = bytes.ReplaceAll(content, []byte(filepath.ToSlash(root)), []byte("<root>"))
	golden.Assert(t, string(content), "analyze-report.golden")
}

func TestResolveAnalyzeOptionsFilterEnv(t *testing.T) {
	previousCwd, previousFilter := analyzeCwd, analyzeFilterMarkup
	t.Cleanup(func() {
		analyzeCwd, analyzeFilterMarkup = previousCwd, previousFilter
	})
	analyzeCwd = t.TempDir()

	tests := []struct {
		name     string
		env      string
		args     []string
		expected bool
	}{
		{name: "unset", env: "", expected: false},
		{name: "true enables the filter", env: "true", expected: true},
		{name: "false keeps it off", env: "false", expected: false},
		{name: "other values keep it off", env: "1", expected: false},
		{name: "flag wins over env", env: "true", args: []string{"--filter-markup=false"}, expected: false},
		{name: "flag without env", env: "", args: []string{"--filter-markup"}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FILTER", tt.env)
			flags := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
			flags.BoolVar(&analyzeFilterMarkup, "filter-markup", false, "")
			assert.NilError(t, flags.Parse(tt.args))

			options, err := resolveAnalyzeOptions(flags)
			assert.NilError(t, err)
			assert.Equal(t, options.FilterMarkup, tt.expected)
		})
	}
}

func TestAnalyzeCmdRenderedOnly(t *testing.T) {
	root := fixtureRoot(t)

	report, err := analyzeCmdFn(context.Background(), analyzeOptions{
		Root:         root,
		RenderTree:   filepath.Join(root, "render-tree.json"),
		RenderedOnly: true,
	}, discardLogger(), io.Discard)
	assert.NilError(t, err)

	assert.Equal(t, len(report.Files), 1)
	_, ok := report.Files["/src/App.jsx"]
	assert.Assert(t, ok)
}

func TestAnalyzeCmdWithMarkupFilter(t *testing.T) {
	root := fixtureRoot(t)

	report, err := analyzeCmdFn(context.Background(), analyzeOptions{
		Root:         root,
		FilterMarkup: true,
	}, discardLogger(), io.Discard)
	assert.NilError(t, err)

	app := report.Files["/src/App.jsx"]
	_, hasIcons := app.CanBeLazyLoaded["Icons"]
	assert.Assert(t, !hasIcons, "namespace of constants should not pass the markup filter")
	_, hasHeader := app.CanBeLazyLoaded["Header"]
	assert.Assert(t, hasHeader)
}

func TestAnalyzeCmdMissingRoot(t *testing.T) {
	_, err := analyzeCmdFn(context.Background(), analyzeOptions{
		Root: filepath.Join(t.TempDir(), "missing"),
	}, discardLogger(), io.Discard)
	assert.ErrorContains(t, err, "cannot read project root")
}

func TestAnalyzeCmdMissingRenderTree(t *testing.T) {
	root := fixtureRoot(t)
	_, err := analyzeCmdFn(context.Background(), analyzeOptions{
		Root:       root,
		RenderTree: filepath.Join(root, "missing.json"),
	}, discardLogger(), io.Discard)
	assert.ErrorContains(t, err, "cannot read render tree")
}

func TestImportsCmd(t *testing.T) {
	root := fixtureRoot(t)
	var stdout bytes.Buffer

	err := importsCmdFn(&stdout, filepath.Join(root, "src", "App.jsx"), "", discardLogger())
	assert.NilError(t, err)

	out := stdout.String()
	for _, expected := range []string{
		"react -> external",
		"  default Header (exports Header)",
		"  named Footer as Footer",
		"  namespace Icons",
		"./pages/Settings -> lazy Settings",
		"candidates:",
	} {
		assert.Assert(t, is.Contains(out, expected))
	}
}

func TestDefaultExportCmd(t *testing.T) {
	root := fixtureRoot(t)

	var stdout bytes.Buffer
	err := defaultExportCmdFn(&stdout, filepath.Join(root, "src", "components", "Header.jsx"), "", discardLogger())
	assert.NilError(t, err)
	assert.Equal(t, strings.TrimSpace(stdout.String()), "Header")

	err = defaultExportCmdFn(io.Discard, filepath.Join(root, "src", "icons.js"), "", discardLogger())
	assert.ErrorContains(t, err, "has no default export")
}

func TestConfigInitCmd(t *testing.T) {
	dir := t.TempDir()
	var stdout bytes.Buffer

	rootCmd.SetOut(&stdout)
	rootCmd.SetArgs([]string{"config", "init", "--cwd", dir, "--format", "yaml"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	assert.NilError(t, rootCmd.Execute())
	assert.Assert(t, is.Contains(stdout.String(), "lazy-dep.config.yaml"))

	_, err := os.Stat(filepath.Join(dir, "lazy-dep.config.yaml"))
	assert.NilError(t, err)
}

func TestFindNearestFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"package.json":     "{}",
		"tsconfig.json":    "{}",
		"src/app/index.ts": "",
	})

	found, ok := findNearestFile(filepath.Join(dir, "src", "app"), "tsconfig.json")
	assert.Assert(t, ok)
	assert.Equal(t, found, filepath.Join(dir, "tsconfig.json"))

	_, ok = findNearestFile(filepath.Join(dir, "src"), "jsconfig.json")
	assert.Assert(t, !ok)
}
