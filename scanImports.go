package main

import (
	"bytes"
)

// ImportStatement is one `import <clause> from '<specifier>'` statement.
// Start and End are byte offsets of RawText in the scanned text.
type ImportStatement struct {
	RawText         string `json:"rawText"`
	ModuleSpecifier string `json:"moduleSpecifier"`
	Start           int    `json:"start"`
	End             int    `json:"end"`
	TypeOnly        bool   `json:"typeOnly,omitempty"`
}

// DynamicImportBinding is a `const X = wrapper(() => import('module'))` shaped declaration.
type DynamicImportBinding struct {
	RawText         string `json:"rawText"`
	BoundIdentifier string `json:"boundIdentifier"`
	ModuleSpecifier string `json:"moduleSpecifier"`
	Start           int    `json:"start"`
	End             int    `json:"end"`
}

type ScanResult struct {
	Static  []ImportStatement
	Dynamic []DynamicImportBinding
}

// ScanImports extracts dynamic import declarations first, masks them together with
// side-effect imports, then collects the remaining static binding imports.
// Masking keeps offsets stable, so every RawText equals code[Start:End].
func ScanImports(code []byte) ScanResult {
	dynamic, masked := ScanDynamicImports(code)
	masked = MaskSideEffectImports(masked)
	static := ScanStaticImports(masked)

	for i := range static {
		static[i].RawText = string(code[static[i].Start:static[i].End])
	}

	return ScanResult{Static: static, Dynamic: dynamic}
}

func isWhiteSpace(char byte) bool {
	return char == ' ' || char == '\t' || char == '\n' || char == '\r'
}

// skipSpaces skips spaces, tabs, and newlines, returns new index
func skipSpaces(code []byte, i int) int {
	for i < len(code) && isWhiteSpace(code[i]) {
		i++
	}
	return i
}

func isQuote(char byte) bool {
	return char == '\'' || char == '"' || char == '`'
}

func hasPrefixAt(code []byte, i int, s string) bool {
	if i < 0 || i+len(s) > len(code) {
		return false
	}
	return string(code[i:i+len(s)]) == s
}

// isWordStart reports whether an identifier may begin at i, i.e. it is not the
// continuation of another identifier or a member access.
func isWordStart(code []byte, i int) bool {
	if i == 0 {
		return true
	}
	prev := code[i-1]
	return !isValidIdentifierChar(prev) && prev != '.'
}

func hasWordAt(code []byte, i int, s string) bool {
	if !hasPrefixAt(code, i, s) {
		return false
	}
	end := i + len(s)
	return end >= len(code) || !isValidIdentifierChar(code[end])
}

// parseStringLiteral reads the quoted literal starting at code[i].
func parseStringLiteral(code []byte, i int) (value string, next int, ok bool) {
	quote := code[i]
	i++
	start := i
	for i < len(code) && code[i] != quote {
		if code[i] == '\\' {
			i++
		} else if code[i] == '\n' && quote != '`' {
			return "", i, false
		}
		i++
	}
	if i >= len(code) {
		return "", i, false
	}
	return string(code[start:i]), i + 1, true
}

// skipToStringEnd returns the index right after the literal opened at code[start].
func skipToStringEnd(code []byte, start int) int {
	quote := code[start]
	i := start + 1
	for i < len(code) {
		if code[i] == '\\' {
			i += 2
			continue
		}
		if code[i] == quote {
			return i + 1
		}
		if code[i] == '\n' && quote != '`' {
			return i + 1
		}
		i++
	}
	return len(code)
}

func parseIdentifier(code []byte, i int) (name string, next int) {
	start := i
	for i < len(code) && isValidIdentifierChar(code[i]) {
		i++
	}
	if start == i || (code[start] >= '0' && code[start] <= '9') {
		return "", start
	}
	return string(code[start:i]), i
}

var declarationKeywords = []string{"const", "let", "var"}

// statementKeywords end the initializer search of a dynamic import declaration.
var statementKeywords = []string{"const", "let", "var", "function", "class", "export"}

func declarationKeywordAt(code []byte, i int) string {
	if !isWordStart(code, i) {
		return ""
	}
	for _, kw := range declarationKeywords {
		if hasWordAt(code, i, kw) {
			return kw
		}
	}
	return ""
}

// ScanDynamicImports finds `var|let|const|, Name = ... import('module')` declarations.
// It returns the bindings and a copy of code where each matched span is blanked.
func ScanDynamicImports(code []byte) ([]DynamicImportBinding, []byte) {
	var bindings []DynamicImportBinding
	var edits []TextEdit

	n := len(code)
	i := 0
	for i < n {
		c := code[i]
		if isQuote(c) {
			i = skipToStringEnd(code, i)
			continue
		}

		next := -1
		if c == ',' {
			next = i + 1
		} else if kw := declarationKeywordAt(code, i); kw != "" {
			next = i + len(kw)
			if next >= n || !isWhiteSpace(code[next]) {
				i = next
				continue
			}
		}

		if next < 0 {
			i++
			continue
		}

		binding, ok := parseDynamicImportDeclaration(code, i, next)
		if !ok {
			i = next
			continue
		}

		bindings = append(bindings, binding)
		edits = append(edits, maskEdit(code, binding.Start, binding.End))
		i = binding.End
	}

	return bindings, ApplyTextEdits(code, edits)
}

func parseDynamicImportDeclaration(code []byte, start int, i int) (DynamicImportBinding, bool) {
	n := len(code)

	i = skipSpaces(code, i)
	name, i := parseIdentifier(code, i)
	if name == "" {
		return DynamicImportBinding{}, false
	}

	i = skipSpaces(code, i)
	if i >= n || code[i] != '=' || (i+1 < n && (code[i+1] == '=' || code[i+1] == '>')) {
		return DynamicImportBinding{}, false
	}
	i++
	initStart := i

	depth := 0
	for i < n {
		c := code[i]
		switch {
		case isQuote(c):
			i = skipToStringEnd(code, i)
			continue
		case c == '\n' && depth == 0 && !continuesOnNextLine(code, initStart, i):
			return DynamicImportBinding{}, false
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
			if depth < 0 {
				return DynamicImportBinding{}, false
			}
		case c == ';':
			return DynamicImportBinding{}, false
		case c == ',' && depth == 0:
			return DynamicImportBinding{}, false
		case isWordStart(code, i) && hasWordAt(code, i, "import"):
			return parseImportCall(code, start, name, i)
		case isWordStart(code, i) && isStatementKeywordAt(code, i):
			return DynamicImportBinding{}, false
		}
		i++
	}

	return DynamicImportBinding{}, false
}

// continuesOnNextLine reports whether the initializer starting at initStart
// goes on past the line break at i, either because the line ends with an
// operator or because the next line starts with one.
func continuesOnNextLine(code []byte, initStart int, i int) bool {
	prev := i - 1
	for prev >= initStart && isWhiteSpace(code[prev]) {
		prev--
	}
	if prev < initStart || bytes.IndexByte([]byte("=(,[{+-*/%&|?:.<>!~^"), code[prev]) >= 0 {
		return true
	}
	next := skipSpaces(code, i)
	return next < len(code) && bytes.IndexByte([]byte(".?:([+*/%&|=,"), code[next]) >= 0
}

func isStatementKeywordAt(code []byte, i int) bool {
	for _, kw := range statementKeywords {
		if hasWordAt(code, i, kw) {
			return true
		}
	}
	return false
}

// parseImportCall reads `import ( '<specifier>' ... )` at i; the match ends at the first `)`.
func parseImportCall(code []byte, start int, name string, i int) (DynamicImportBinding, bool) {
	n := len(code)
	i = skipSpaces(code, i+len("import"))
	if i >= n || code[i] != '(' {
		return DynamicImportBinding{}, false
	}
	i = skipSpaces(code, i+1)
	if i >= n || !isQuote(code[i]) {
		return DynamicImportBinding{}, false
	}

	specifier, next, ok := parseStringLiteral(code, i)
	if !ok {
		return DynamicImportBinding{}, false
	}

	closing := bytes.IndexByte(code[next:], ')')
	if closing < 0 {
		return DynamicImportBinding{}, false
	}
	end := next + closing + 1

	return DynamicImportBinding{
		RawText:         string(code[start:end]),
		BoundIdentifier: name,
		ModuleSpecifier: specifier,
		Start:           start,
		End:             end,
	}, true
}

func importKeywordAt(code []byte, i int) bool {
	return isWordStart(code, i) && hasWordAt(code, i, "import")
}

// MaskSideEffectImports blanks `import 'module';` statements, which introduce no bindings.
func MaskSideEffectImports(code []byte) []byte {
	var edits []TextEdit

	n := len(code)
	i := 0
	for i < n {
		if isQuote(code[i]) {
			i = skipToStringEnd(code, i)
			continue
		}
		if !importKeywordAt(code, i) {
			i++
			continue
		}

		start := i
		j := skipSpaces(code, i+len("import"))
		if j >= n || (code[j] != '\'' && code[j] != '"') {
			i += len("import")
			continue
		}

		_, end, ok := parseStringLiteral(code, j)
		if !ok {
			i = j
			continue
		}
		if k := skipSpaces(code, end); k < n && code[k] == ';' {
			end = k + 1
		}

		edits = append(edits, maskEdit(code, start, end))
		i = end
	}

	return ApplyTextEdits(code, edits)
}

// ScanStaticImports matches `import <clause> from <specifier>` with an optional `;`.
// Statement boundaries depend only on the keywords, the specifier literal and `;`.
func ScanStaticImports(code []byte) []ImportStatement {
	var statements []ImportStatement

	n := len(code)
	i := 0
	for i < n {
		if isQuote(code[i]) {
			i = skipToStringEnd(code, i)
			continue
		}
		if !importKeywordAt(code, i) {
			i++
			continue
		}

		stmt, ok := parseStaticImport(code, i)
		if !ok {
			i += len("import")
			continue
		}
		statements = append(statements, stmt)
		i = stmt.End
	}

	return statements
}

func parseStaticImport(code []byte, start int) (ImportStatement, bool) {
	n := len(code)
	i := start + len("import")
	if i >= n || !(isWhiteSpace(code[i]) || code[i] == '{' || code[i] == '*') {
		return ImportStatement{}, false
	}

	_, typeOnly := typeKeywordEnd(code, skipSpaces(code, i))

	depth := 0
	for i < n {
		c := code[i]
		switch {
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth < 0 {
				return ImportStatement{}, false
			}
		case c == ';' || c == '(' || c == ')' || isQuote(c):
			return ImportStatement{}, false
		case depth == 0 && isWordStart(code, i) && hasWordAt(code, i, "import"):
			return ImportStatement{}, false
		case depth == 0 && isWordStart(code, i) && hasWordAt(code, i, "from"):
			k := skipSpaces(code, i+len("from"))
			if k >= n || (code[k] != '\'' && code[k] != '"') {
				// `from` used as a binding name, keep looking
				break
			}
			specifier, end, ok := parseStringLiteral(code, k)
			if !ok {
				return ImportStatement{}, false
			}
			if s := skipSpaces(code, end); s < n && code[s] == ';' {
				end = s + 1
			}
			return ImportStatement{
				RawText:         string(code[start:end]),
				ModuleSpecifier: specifier,
				Start:           start,
				End:             end,
				TypeOnly:        typeOnly,
			}, true
		}
		i++
	}

	return ImportStatement{}, false
}
