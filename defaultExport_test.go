package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindDefaultExport(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
		from     string
	}{
		{"named function", "export default function Header(props) {\n  return null;\n}", "Header", ""},
		{"async function", "export default async function load () {}", "load", ""},
		{"generator function", "export default function* gen() {}", "gen", ""},
		{"function wins over earlier expression rule", "const x = 1;\nexport default function Page() {}", "Page", ""},
		{"class declaration", "export default class Layout extends React.Component {\n}", "Layout", ""},
		{"identifier", "const Footer = () => null;\nexport default Footer;", "Footer", ""},
		{"identifier on next line", "export default\n  Footer\n", "Footer", ""},
		{"wrapped expression", "export default connect(mapState)(Sidebar);", "connect(mapState)(Sidebar)", ""},
		{"anonymous function", "export default function (props) {}", "function (props) {}", ""},
		{"export list", "const A = 1;\nexport { A as default, B };", "A", ""},
		{"multiline export list", "export {\n  helper,\n  Main as default,\n};", "Main", ""},
		{"re-export of default", "export { default } from './Header';", "default", "./Header"},
		{"re-export of named as default", "export { Header as default } from \"./Header\";", "Header", "./Header"},
		{"no default export", "export const a = 1;\nexport { b };", "", ""},
		{"keyword inside string", "const s = 'export default Fake';", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findDefaultExport(StripComments([]byte(tt.code)))
			if got.name != tt.expected || got.reexportFrom != tt.from {
				t.Errorf("findDefaultExport() = %+v, want name %q from %q", got, tt.expected, tt.from)
			}
		})
	}
}

func TestFindDefaultExportIgnoresComments(t *testing.T) {
	code := "// export default function Wrong() {}\n/* export default Nope; */\nexport default Right;"
	if got := findDefaultExport(StripComments([]byte(code))); got.name != "Right" {
		t.Errorf("findDefaultExport() = %q, want Right", got.name)
	}
}

func TestDefaultExportResolverMemoizes(t *testing.T) {
	reads := map[string]int{}
	files := map[string]string{
		"/p/Header.js": "export default function Header() {}",
		"/p/utils.js":  "export const x = 1;",
	}
	read := func(path string) ([]byte, error) {
		reads[path]++
		content, ok := files[path]
		if !ok {
			return nil, os.ErrNotExist
		}
		return []byte(content), nil
	}

	d := NewDefaultExportResolver(read, nil)

	for i := 0; i < 2; i++ {
		name, ok := d.Resolve("/p/Header.js")
		if name != "Header" || !ok {
			t.Errorf("Resolve(Header) = %q, %v", name, ok)
		}
		name, ok = d.Resolve("/p/utils.js")
		if name != "" || ok {
			t.Errorf("Resolve(utils) = %q, %v", name, ok)
		}
		if _, ok := d.Resolve("/p/missing.js"); ok {
			t.Errorf("Resolve(missing) reported a default export")
		}
	}

	for path, count := range reads {
		if count != 1 {
			t.Errorf("%s read %d times, want 1", path, count)
		}
	}
}

func TestDefaultExportResolverFollowsReexports(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"components/Header/Header.jsx": "export default function Header() { return null; }",
		"components/Header/index.js":   "export { default } from './Header';",
		"cycle/a.js":                   "export { default } from './b';",
		"cycle/b.js":                   "export { default } from './a';",
	})

	d := NewDefaultExportResolver(os.ReadFile, NewModuleResolver(TsConfigAliases{}))

	name, ok := d.Resolve(filepath.Join(root, "components", "Header", "index.js"))
	if name != "Header" || !ok {
		t.Errorf("re-exported default = %q, %v; want Header", name, ok)
	}

	if _, ok := d.Resolve(filepath.Join(root, "cycle", "a.js")); ok {
		t.Errorf("cyclic re-export reported a default export")
	}
}
