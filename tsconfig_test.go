package main

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLoadTsConfigAliases(t *testing.T) {
	t.Run("paths relative to baseUrl with comments", func(t *testing.T) {
		tmp := t.TempDir()
		cfgPath := filepath.Join(tmp, "tsconfig.json")
		content := `{
  // comments are allowed
  "compilerOptions": {
    "baseUrl": "./src",
    "paths": { "@components/*": ["components/*"], "config": ["config/index.ts"] },
  },
}`
		if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
			t.Fatalf("write cfg: %v", err)
		}

		aliases, err := LoadTsConfigAliases(cfgPath)
		if err != nil {
			t.Fatalf("LoadTsConfigAliases error: %v", err)
		}

		if aliases.BaseURL != filepath.Join(tmp, "src") {
			t.Errorf("BaseURL = %q", aliases.BaseURL)
		}

		got := aliases.Candidates("@components/Header")
		expected := []string{
			filepath.Join(tmp, "src", "components", "Header"),
			filepath.Join(tmp, "src", "@components", "Header"),
		}
		if !slices.Equal(got, expected) {
			t.Errorf("Candidates() = %v, want %v", got, expected)
		}

		got = aliases.Candidates("config")
		if len(got) == 0 || got[0] != filepath.Join(tmp, "src", "config", "index.ts") {
			t.Errorf("exact alias candidates = %v", got)
		}
	})

	t.Run("extends merges paths and child wins", func(t *testing.T) {
		tmp := t.TempDir()
		base := `{"compilerOptions": {"baseUrl": ".", "paths": {"a/*": ["base/a/*"], "shared/*": ["base/shared/*"]}}}`
		child := `{"extends": "./base", "compilerOptions": {"paths": {"shared/*": ["child/shared/*"]}}}`
		if err := os.WriteFile(filepath.Join(tmp, "base.json"), []byte(base), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(tmp, "tsconfig.json"), []byte(child), 0644); err != nil {
			t.Fatal(err)
		}

		aliases, err := LoadTsConfigAliases(filepath.Join(tmp, "tsconfig.json"))
		if err != nil {
			t.Fatalf("LoadTsConfigAliases error: %v", err)
		}

		if got := aliases.Candidates("a/x"); got[0] != filepath.Join(tmp, "base", "a", "x") {
			t.Errorf("inherited alias = %v", got)
		}
		if got := aliases.Candidates("shared/y"); got[0] != filepath.Join(tmp, "child", "shared", "y") {
			t.Errorf("overridden alias = %v", got)
		}
	})

	t.Run("extends cycle terminates", func(t *testing.T) {
		tmp := t.TempDir()
		if err := os.WriteFile(filepath.Join(tmp, "a.json"), []byte(`{"extends": "./b.json"}`), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(tmp, "b.json"), []byte(`{"extends": "./a.json"}`), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadTsConfigAliases(filepath.Join(tmp, "a.json")); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadTsConfigAliases(filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Errorf("expected error for missing tsconfig")
		}
	})
}
