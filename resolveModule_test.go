package main

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func TestModuleResolverResolve(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/App.jsx":                "",
		"src/Header.js":              "",
		"src/Header.tsx":             "",
		"src/components/index.ts":    "",
		"src/components/Button.tsx":  "",
		"src/exact.css":              "",
		"src/both.ts":                "",
		"src/both/index.js":          "",
		"src/nested/deep/Widget.jsx": "",
	})
	src := filepath.Join(root, "src")
	resolver := NewModuleResolver(TsConfigAliases{})

	tests := []struct {
		name      string
		specifier string
		dir       string
		expected  ResolvedModule
	}{
		{"js wins over tsx", "./Header", src, ResolvedModule{Path: filepath.Join(src, "Header.js"), IsInternal: true}},
		{"exact file", "./exact.css", src, ResolvedModule{Path: filepath.Join(src, "exact.css"), IsInternal: true}},
		{"directory index", "./components", src, ResolvedModule{Path: filepath.Join(src, "components", "index.ts"), IsInternal: true}},
		{"file before directory index", "./both", src, ResolvedModule{Path: filepath.Join(src, "both.ts"), IsInternal: true}},
		{"parent directory", "../../App", filepath.Join(src, "nested", "deep"), ResolvedModule{Path: filepath.Join(src, "App.jsx"), IsInternal: true}},
		{"absolute path", filepath.Join(src, "components", "Button"), root, ResolvedModule{Path: filepath.Join(src, "components", "Button.tsx"), IsInternal: true}},
		{"node module", "react", src, ResolvedModule{}},
		{"missing relative file", "./Missing", src, ResolvedModule{}},
		{"empty specifier", "", src, ResolvedModule{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Resolve(tt.specifier, tt.dir)
			if got != tt.expected {
				t.Errorf("Resolve(%q, %q) = %+v, want %+v", tt.specifier, tt.dir, got, tt.expected)
			}
			if again := resolver.Resolve(tt.specifier, tt.dir); again != got {
				t.Errorf("second Resolve returned %+v, first %+v", again, got)
			}
		})
	}
}

func TestModuleResolverProbeOrder(t *testing.T) {
	var probed []string
	resolver := NewModuleResolver(TsConfigAliases{})
	resolver.isFile = func(path string) bool {
		probed = append(probed, path)
		return false
	}

	got := resolver.Resolve("./Thing", "/project/src")
	if got.IsInternal {
		t.Fatalf("expected external result, got %+v", got)
	}

	expected := []string{
		"/project/src/Thing",
		"/project/src/Thing.js",
		"/project/src/Thing.jsx",
		"/project/src/Thing.ts",
		"/project/src/Thing.tsx",
		"/project/src/Thing/index",
		"/project/src/Thing/index.js",
		"/project/src/Thing/index.jsx",
		"/project/src/Thing/index.ts",
		"/project/src/Thing/index.tsx",
	}
	if !slices.Equal(probed, expected) {
		t.Errorf("probe order = %v, want %v", probed, expected)
	}

	probed = nil
	resolver.Resolve("./Thing", "/project/src")
	if len(probed) != 0 {
		t.Errorf("cached resolution probed the file system again: %v", probed)
	}
}

func TestModuleResolverAliases(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"src/components/Header.tsx": "",
		"src/utils/format.ts":       "",
	})

	aliases := TsConfigAliases{
		BaseURL: filepath.Join(root, "src"),
		Aliases: []PathAlias{{Pattern: "@/*", Targets: []string{filepath.Join(root, "src", "*")}}},
	}
	resolver := NewModuleResolver(aliases)

	if got := resolver.Resolve("@/components/Header", filepath.Join(root, "src", "pages")); got.Path != filepath.Join(root, "src", "components", "Header.tsx") {
		t.Errorf("alias resolution = %+v", got)
	}
	if got := resolver.Resolve("utils/format", filepath.Join(root, "src", "pages")); got.Path != filepath.Join(root, "src", "utils", "format.ts") {
		t.Errorf("baseUrl resolution = %+v", got)
	}
	if got := resolver.Resolve("react", root); got.IsInternal {
		t.Errorf("react resolved internally: %+v", got)
	}
}
