package main

import (
	"path/filepath"
	"strings"
	"sync"
)

type defaultExportResult struct {
	name string
	ok   bool
}

// DefaultExportResolver finds the name under which a file's default export is
// known. A missing default export is a final answer and is cached like any other.
type DefaultExportResolver struct {
	read     func(path string) ([]byte, error)
	resolver *ModuleResolver

	mu   sync.Mutex
	memo map[string]defaultExportResult
}

func NewDefaultExportResolver(read func(path string) ([]byte, error), resolver *ModuleResolver) *DefaultExportResolver {
	return &DefaultExportResolver{
		read:     read,
		resolver: resolver,
		memo:     map[string]defaultExportResult{},
	}
}

func (d *DefaultExportResolver) Resolve(filePath string) (string, bool) {
	return d.resolve(filePath, map[string]bool{})
}

func (d *DefaultExportResolver) resolve(filePath string, visiting map[string]bool) (string, bool) {
	d.mu.Lock()
	cached, ok := d.memo[filePath]
	d.mu.Unlock()
	if ok {
		return cached.name, cached.ok
	}

	if visiting[filePath] {
		return "", false
	}
	visiting[filePath] = true

	result := defaultExportResult{}
	if code, err := d.read(filePath); err == nil {
		export := findDefaultExport(StripComments(code))
		switch {
		case export.reexportFrom != "" && export.name == "default":
			if d.resolver != nil {
				target := d.resolver.Resolve(export.reexportFrom, filepath.Dir(filePath))
				if target.IsInternal {
					result.name, result.ok = d.resolve(target.Path, visiting)
				}
			}
		case export.name != "":
			result = defaultExportResult{name: export.name, ok: true}
		}
	}

	d.mu.Lock()
	if existing, ok := d.memo[filePath]; ok {
		result = existing
	} else {
		d.memo[filePath] = result
	}
	d.mu.Unlock()

	return result.name, result.ok
}

type defaultExport struct {
	name string
	// reexportFrom is set for `export { X as default } from '<module>'`
	reexportFrom string
}

// findDefaultExport applies the rules in order: a named function declaration,
// a named class declaration, the expression after `export default`, and finally
// an `export { X as default }` list.
func findDefaultExport(code []byte) defaultExport {
	positions := exportDefaultPositions(code)

	for _, p := range positions {
		if name, ok := namedDeclarationAt(code, p, "function"); ok {
			return defaultExport{name: name}
		}
	}
	for _, p := range positions {
		if name, ok := namedDeclarationAt(code, p, "class"); ok {
			return defaultExport{name: name}
		}
	}
	for _, p := range positions {
		if expr := expressionAt(code, p); expr != "" {
			return defaultExport{name: expr}
		}
	}

	return findDefaultInExportList(code)
}

// exportDefaultPositions returns the offsets right after each `export default`.
func exportDefaultPositions(code []byte) []int {
	var positions []int
	for i := 0; i < len(code); {
		if isQuote(code[i]) {
			i = skipToStringEnd(code, i)
			continue
		}
		if isWordStart(code, i) && hasWordAt(code, i, "export") {
			j := skipSpaces(code, i+len("export"))
			if hasWordAt(code, j, "default") {
				positions = append(positions, j+len("default"))
				i = j + len("default")
				continue
			}
		}
		i++
	}
	return positions
}

// namedDeclarationAt matches `[async] function [*] Name(` or `class Name` at i.
func namedDeclarationAt(code []byte, i int, keyword string) (string, bool) {
	i = skipSpaces(code, i)
	if keyword == "function" && hasWordAt(code, i, "async") {
		i = skipSpaces(code, i+len("async"))
	}
	if !hasWordAt(code, i, keyword) {
		return "", false
	}
	i = skipSpaces(code, i+len(keyword))
	if keyword == "function" && i < len(code) && code[i] == '*' {
		i = skipSpaces(code, i+1)
	}

	name, next := parseIdentifier(code, i)
	if name == "" {
		return "", false
	}
	if keyword == "function" {
		next = skipSpaces(code, next)
		if next >= len(code) || code[next] != '(' {
			return "", false
		}
	}
	return name, true
}

// expressionAt returns the text from i up to the end of the line or `;`, with
// whitespace collapsed.
func expressionAt(code []byte, i int) string {
	i = skipSpaces(code, i)
	end := i
	for end < len(code) && code[end] != '\n' && code[end] != '\r' && code[end] != ';' {
		end++
	}
	return strings.Join(strings.Fields(string(code[i:end])), " ")
}

func findDefaultInExportList(code []byte) defaultExport {
	for i := 0; i < len(code); {
		if isQuote(code[i]) {
			i = skipToStringEnd(code, i)
			continue
		}
		if !(isWordStart(code, i) && hasWordAt(code, i, "export")) {
			i++
			continue
		}

		open := skipSpaces(code, i+len("export"))
		if open >= len(code) || code[open] != '{' {
			i = open
			continue
		}
		length := strings.IndexByte(string(code[open:]), '}')
		if length < 0 {
			return defaultExport{}
		}
		closing := open + length

		from := ""
		k := skipSpaces(code, closing+1)
		if hasWordAt(code, k, "from") {
			k = skipSpaces(code, k+len("from"))
			if k < len(code) && (code[k] == '\'' || code[k] == '"') {
				from, _, _ = parseStringLiteral(code, k)
			}
		}

		for _, entry := range strings.Split(string(code[open+1:closing]), ",") {
			fields := strings.Fields(entry)
			switch {
			case len(fields) == 3 && fields[1] == "as" && fields[2] == "default":
				return defaultExport{name: fields[0], reexportFrom: from}
			case len(fields) == 1 && fields[0] == "default" && from != "":
				return defaultExport{name: "default", reexportFrom: from}
			}
		}

		i = closing + 1
	}

	return defaultExport{}
}
