package main

import (
	"reflect"
	"testing"
)

func decompose(raw string) ImportBinding {
	statements := ScanStaticImports([]byte(raw))
	if len(statements) != 1 {
		return ImportBinding{}
	}
	return DecomposeImport(statements[0])
}

func TestDecomposeImportOrderIndependence(t *testing.T) {
	expected := ImportBinding{
		Default:         &DefaultBinding{LocalName: "A"},
		Named:           []NamedBinding{{ExportedName: "b", LocalName: "c"}},
		ModuleSpecifier: "m",
	}

	for _, raw := range []string{
		`import A, {b as c} from 'm';`,
		`import {b as c}, A from 'm';`,
		"import   A ,\n{\n  b   as   c\n}\nfrom 'm';",
	} {
		t.Run(raw, func(t *testing.T) {
			got := decompose(raw)
			got.RawText = ""
			if !reflect.DeepEqual(got, expected) {
				t.Errorf("DecomposeImport(%q) = %+v, want %+v", raw, got, expected)
			}
		})
	}
}

func TestDecomposeImportSections(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		def       string
		namespace string
		named     []NamedBinding
	}{
		{
			name: "default only",
			raw:  `import Header from './Header';`,
			def:  "Header",
		},
		{
			name:  "named only with trailing comma",
			raw:   "import { A, B as C, } from './x';",
			named: []NamedBinding{{ExportedName: "A", LocalName: "A"}, {ExportedName: "B", LocalName: "C"}},
		},
		{
			name:      "namespace only",
			raw:       `import * as Icons from './icons';`,
			namespace: "Icons",
		},
		{
			name:      "namespace then default",
			raw:       `import * as NS, Def from './m';`,
			def:       "Def",
			namespace: "NS",
		},
		{
			name:      "default then namespace",
			raw:       `import Def, * as NS from './m';`,
			def:       "Def",
			namespace: "NS",
		},
		{
			name:  "named then default",
			raw:   `import { x }, Def from './m';`,
			def:   "Def",
			named: []NamedBinding{{ExportedName: "x", LocalName: "x"}},
		},
		{
			name:  "inline type entry",
			raw:   `import { type Props, View } from './m';`,
			named: []NamedBinding{{ExportedName: "Props", LocalName: "Props", TypeOnly: true}, {ExportedName: "View", LocalName: "View"}},
		},
		{
			name:  "malformed entries are skipped",
			raw:   `import { a b, c as, d } from './m';`,
			named: []NamedBinding{{ExportedName: "d", LocalName: "d"}},
		},
		{
			name: "dollar identifiers",
			raw:  `import $ from 'jquery';`,
			def:  "$",
		},
		{
			name: "type import of default",
			raw:  `import type Props from './props';`,
			def:  "Props",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decompose(tt.raw)

			def := ""
			if got.Default != nil {
				def = got.Default.LocalName
			}
			if def != tt.def {
				t.Errorf("default = %q, want %q", def, tt.def)
			}
			if got.Namespace != tt.namespace {
				t.Errorf("namespace = %q, want %q", got.Namespace, tt.namespace)
			}
			if len(got.Named) != len(tt.named) || (len(tt.named) > 0 && !reflect.DeepEqual(got.Named, tt.named)) {
				t.Errorf("named = %+v, want %+v", got.Named, tt.named)
			}
		})
	}
}

func TestDecomposeImportEmpty(t *testing.T) {
	for _, raw := range []string{
		`import {} from './m';`,
		`import * from './m';`,
	} {
		t.Run(raw, func(t *testing.T) {
			got := decompose(raw)
			if !got.IsEmpty() {
				t.Errorf("expected empty binding, got %+v", got)
			}
		})
	}
}

func TestFindDefaultBinding(t *testing.T) {
	tests := []struct {
		clause string
		name   string
		ok     bool
	}{
		{clause: "A ", name: "A", ok: true},
		{clause: "{ a, b, c } ", ok: false},
		{clause: "{ a }, B ", name: "B", ok: true},
		{clause: "* as X ", ok: false},
		{clause: "* ", ok: false},
		{clause: "A B ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.clause, func(t *testing.T) {
			name, ok := findDefaultBinding(tt.clause)
			if name != tt.name || ok != tt.ok {
				t.Errorf("findDefaultBinding(%q) = %q, %v; want %q, %v", tt.clause, name, ok, tt.name, tt.ok)
			}
		})
	}
}

func TestFindNamedBindingsUnbalanced(t *testing.T) {
	if _, _, ok := findNamedBindings("{ a, b "); ok {
		t.Errorf("expected unbalanced braces to yield no bindings")
	}
}
