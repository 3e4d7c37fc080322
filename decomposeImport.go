package main

import (
	"strings"
)

type DefaultBinding struct {
	LocalName          string `json:"localName"`
	ResolvedExportName string `json:"resolvedExportName,omitempty"`
}

type NamedBinding struct {
	ExportedName string `json:"exportedName"`
	LocalName    string `json:"localName"`
	TypeOnly     bool   `json:"typeOnly,omitempty"`
}

// ImportBinding is the structured form of one import clause. Module resolution
// fields are filled in after decomposition.
type ImportBinding struct {
	RawText            string          `json:"rawText,omitempty"`
	Default            *DefaultBinding `json:"default,omitempty"`
	Namespace          string          `json:"namespace,omitempty"`
	Named              []NamedBinding  `json:"named,omitempty"`
	TypeOnly           bool            `json:"typeOnly,omitempty"`
	ModuleSpecifier    string          `json:"moduleSpecifier"`
	ResolvedModulePath string          `json:"resolvedModulePath,omitempty"`
	IsInternal         bool            `json:"isInternal"`
}

// IsEmpty reports a clause that introduced no default, namespace or named binding.
func (b ImportBinding) IsEmpty() bool {
	return b.Default == nil && b.Namespace == "" && len(b.Named) == 0
}

// DecomposeImport splits an import statement into its default, namespace and
// named bindings. Each section is detected independently of the others.
func DecomposeImport(stmt ImportStatement) ImportBinding {
	binding := ImportBinding{
		RawText:         stmt.RawText,
		TypeOnly:        stmt.TypeOnly,
		ModuleSpecifier: stmt.ModuleSpecifier,
	}

	clause, ok := importClause(stmt.RawText)
	if !ok {
		return binding
	}

	if named, _, ok := findNamedBindings(clause); ok {
		binding.Named = named
	}
	if namespace, _, ok := findNamespaceBinding(clause); ok {
		binding.Namespace = namespace
	}
	if name, ok := findDefaultBinding(clause); ok {
		binding.Default = &DefaultBinding{LocalName: name}
	}

	return binding
}

// typeKeywordEnd returns the index after a statement level `type` modifier at k.
func typeKeywordEnd(code []byte, k int) (int, bool) {
	if !hasWordAt(code, k, "type") {
		return k, false
	}
	after := skipSpaces(code, k+len("type"))
	if after < len(code) && (code[after] == '{' || code[after] == '*' || isValidIdentifierChar(code[after])) && !hasWordAt(code, after, "from") {
		return after, true
	}
	return k, false
}

// importClause returns the text between `import` (and an optional `type`) and
// the `from` keyword that precedes the module specifier.
func importClause(raw string) (string, bool) {
	code := []byte(raw)
	i := skipSpaces(code, 0)
	if !hasWordAt(code, i, "import") {
		return "", false
	}
	i = skipSpaces(code, i+len("import"))
	if next, ok := typeKeywordEnd(code, i); ok {
		i = next
	}

	start := i
	depth := 0
	for ; i < len(code); i++ {
		switch c := code[i]; {
		case c == '{':
			depth++
		case c == '}':
			depth--
		case depth == 0 && isWordStart(code, i) && hasWordAt(code, i, "from"):
			k := skipSpaces(code, i+len("from"))
			if k < len(code) && (code[k] == '\'' || code[k] == '"') {
				return raw[start:i], true
			}
		}
	}

	return "", false
}

// findNamedBindings extracts entries of the `{ ... }` section. It returns the
// span of the braces within clause; a missing or unbalanced section yields false.
func findNamedBindings(clause string) ([]NamedBinding, [2]int, bool) {
	open := strings.IndexByte(clause, '{')
	if open < 0 {
		return nil, [2]int{}, false
	}
	length := strings.IndexByte(clause[open:], '}')
	if length < 0 {
		return nil, [2]int{}, false
	}
	closing := open + length

	named := []NamedBinding{}
	for _, entry := range strings.Split(clause[open+1:closing], ",") {
		fields := strings.Fields(entry)

		typeOnly := false
		if len(fields) > 1 && fields[0] == "type" {
			typeOnly = true
			fields = fields[1:]
		}

		switch {
		case len(fields) == 1:
			named = append(named, NamedBinding{ExportedName: fields[0], LocalName: fields[0], TypeOnly: typeOnly})
		case len(fields) == 3 && fields[1] == "as":
			named = append(named, NamedBinding{ExportedName: fields[0], LocalName: fields[2], TypeOnly: typeOnly})
		}
	}

	return named, [2]int{open, closing + 1}, true
}

// findNamespaceBinding reads the identifier following `* as`.
func findNamespaceBinding(clause string) (string, [2]int, bool) {
	code := []byte(clause)
	star := strings.IndexByte(clause, '*')
	if star < 0 {
		return "", [2]int{}, false
	}

	i := skipSpaces(code, star+1)
	if !hasWordAt(code, i, "as") {
		return "", [2]int{}, false
	}
	i = skipSpaces(code, i+len("as"))

	name, next := parseIdentifier(code, i)
	if name == "" {
		return "", [2]int{}, false
	}
	return name, [2]int{star, next}, true
}

// findDefaultBinding returns the lone identifier that remains once the named and
// namespace sections are cut out of the clause.
func findDefaultBinding(clause string) (string, bool) {
	rest := clause
	if _, span, ok := findNamespaceBinding(rest); ok {
		rest = rest[:span[0]] + rest[span[1]:]
	}
	if _, span, ok := findNamedBindings(rest); ok {
		rest = rest[:span[0]] + rest[span[1]:]
	}

	for _, part := range strings.Split(rest, ",") {
		part = strings.TrimSpace(part)
		if part == "" || part == "*" {
			continue
		}
		name, next := parseIdentifier([]byte(part), 0)
		if name != "" && next == len(part) {
			return name, true
		}
	}

	return "", false
}
