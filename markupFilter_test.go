package main

import (
	"os"
	"path/filepath"
	"testing"
)

const componentsSource = `import React, { memo } from 'react';

export function Header({ title }) {
  return <h1>{title}</h1>;
}

export const Footer = () => (
  <footer>
    <span>bye</span>
  </footer>
);

export const Card = memo(function Card(props) {
  if (!props.visible) {
    return null;
  }
  return <div className="card">{props.children}</div>;
});

export class Layout extends React.Component {
  render() {
    return <>{this.props.children}</>;
  }
}

export function formatDate(date) {
  const render = () => <span />;
  return date.toISOString();
}

export const total = (items) => items.reduce((a, b) => a + b, 0);
`

func TestFindMarkupFunctions(t *testing.T) {
	names, err := FindMarkupFunctions([]byte(componentsSource))
	if err != nil {
		t.Fatalf("FindMarkupFunctions() error: %v", err)
	}

	for _, name := range []string{"Header", "Footer", "Card", "Layout", "render"} {
		if !names[name] {
			t.Errorf("expected %s to return markup, got %v", name, names)
		}
	}
	for _, name := range []string{"formatDate", "total", "default"} {
		if names[name] {
			t.Errorf("expected %s not to return markup", name)
		}
	}
}

func TestFindMarkupFunctionsAnonymousDefault(t *testing.T) {
	names, err := FindMarkupFunctions([]byte("export default () => <main />;\n"))
	if err != nil {
		t.Fatalf("FindMarkupFunctions() error: %v", err)
	}
	if !names[anonymousDefaultExport] {
		t.Errorf("anonymous default export not detected: %v", names)
	}
}

func TestTreeSitterMarkupFilter(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"components.jsx": componentsSource,
		"Sidebar.jsx":    "function Sidebar() { return <aside />; }\nexport default connect(mapState)(Sidebar);\n",
		"anon.jsx":       "export default function (props) { return <p />; }\n",
	})

	reads := 0
	filter := NewTreeSitterMarkupFilter(func(path string) ([]byte, error) {
		reads++
		return os.ReadFile(path)
	})

	tests := []struct {
		file       string
		exportName string
		expected   bool
	}{
		{"components.jsx", "Header", true},
		{"components.jsx", "formatDate", false},
		{"components.jsx", "Icons", false},
		{"components.jsx", "", false},
		{"Sidebar.jsx", "connect(mapState)(Sidebar)", true},
		{"anon.jsx", "function (props) { return <p />", true},
	}

	for _, tt := range tests {
		t.Run(tt.file+":"+tt.exportName, func(t *testing.T) {
			got, err := filter.ReturnsMarkup(filepath.Join(root, tt.file), tt.exportName)
			if err != nil {
				t.Fatalf("ReturnsMarkup() error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("ReturnsMarkup(%s, %q) = %v, want %v", tt.file, tt.exportName, got, tt.expected)
			}
		})
	}

	if reads != 3 {
		t.Errorf("files read %d times, want 3", reads)
	}

	if _, err := filter.ReturnsMarkup(filepath.Join(root, "missing.jsx"), "X"); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}
