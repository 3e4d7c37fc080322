package main

import (
	"context"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
)

// anonymousDefaultExport marks an unnamed function exported as default.
const anonymousDefaultExport = "default"

// TreeSitterMarkupFilter decides whether an export returns JSX by parsing the
// exporting file with the TSX grammar. Parsed files are cached per filter.
type TreeSitterMarkupFilter struct {
	read func(path string) ([]byte, error)

	mu    sync.Mutex
	cache map[string]map[string]bool
}

func NewTreeSitterMarkupFilter(read func(path string) ([]byte, error)) *TreeSitterMarkupFilter {
	return &TreeSitterMarkupFilter{
		read:  read,
		cache: map[string]map[string]bool{},
	}
}

func (f *TreeSitterMarkupFilter) ReturnsMarkup(path string, exportName string) (bool, error) {
	if exportName == "" {
		return false, nil
	}

	names, err := f.markupFunctions(path)
	if err != nil {
		return false, err
	}

	if names[exportName] {
		return true, nil
	}

	// default exports such as `memo(Header)` or `connect(s)(Header)`
	tokens := tokenizeRenderStatement([]byte(exportName))
	for _, token := range tokens {
		if names[token] {
			return true, nil
		}
	}
	if len(tokens) != 1 || tokens[0] != exportName {
		return names[anonymousDefaultExport], nil
	}

	return false, nil
}

func (f *TreeSitterMarkupFilter) markupFunctions(path string) (map[string]bool, error) {
	f.mu.Lock()
	cached, ok := f.cache[path]
	f.mu.Unlock()
	if ok {
		return cached, nil
	}

	content, err := f.read(path)
	if err != nil {
		return nil, err
	}
	names, err := FindMarkupFunctions(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	f.mu.Lock()
	f.cache[path] = names
	f.mu.Unlock()
	return names, nil
}

// FindMarkupFunctions returns the names of functions, arrow function variables
// and classes with a render method that return JSX. An anonymous default
// exported function is reported as "default".
func FindMarkupFunctions(content []byte) (map[string]bool, error) {
	// a parser is not safe for concurrent use, so every call gets its own
	parser := sitter.NewParser()
	parser.SetLanguage(tsx.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	names := map[string]bool{}
	collectMarkupFunctions(tree.RootNode(), content, names)
	return names, nil
}

func collectMarkupFunctions(node *sitter.Node, content []byte, names map[string]bool) {
	switch node.Type() {
	case "function_declaration", "generator_function_declaration":
		if name := fieldText(node, "name", content); name != "" && functionReturnsMarkup(node) {
			names[name] = true
		}
	case "variable_declarator":
		name := fieldText(node, "name", content)
		if value := node.ChildByFieldName("value"); name != "" && value != nil && valueReturnsMarkup(value) {
			names[name] = true
		}
	case "class_declaration":
		if name := fieldText(node, "name", content); name != "" && classRendersMarkup(node, content) {
			names[name] = true
		}
	case "arrow_function", "function", "function_expression":
		if parent := node.Parent(); parent != nil && parent.Type() == "export_statement" && functionReturnsMarkup(node) {
			names[anonymousDefaultExport] = true
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		collectMarkupFunctions(node.NamedChild(i), content, names)
	}
}

func fieldText(node *sitter.Node, field string, content []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return string(content[child.StartByte():child.EndByte()])
}

func isFunctionNode(nodeType string) bool {
	switch nodeType {
	case "function_declaration", "generator_function_declaration", "arrow_function",
		"function", "function_expression", "method_definition":
		return true
	}
	return false
}

func isMarkupNode(nodeType string) bool {
	return nodeType == "jsx_element" || nodeType == "jsx_self_closing_element" || nodeType == "jsx_fragment"
}

// valueReturnsMarkup accepts a function value directly or wrapped in a call,
// as in `memo(() => <div />)` or `forwardRef(function (props, ref) { ... })`.
func valueReturnsMarkup(value *sitter.Node) bool {
	if isFunctionNode(value.Type()) {
		return functionReturnsMarkup(value)
	}
	if value.Type() != "call_expression" {
		return false
	}
	args := value.ChildByFieldName("arguments")
	if args == nil {
		return false
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		if arg := args.NamedChild(i); isFunctionNode(arg.Type()) && functionReturnsMarkup(arg) {
			return true
		}
	}
	return false
}

func functionReturnsMarkup(fn *sitter.Node) bool {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return false
	}
	if body.Type() != "statement_block" {
		return containsMarkup(body)
	}
	return returnsMarkup(body)
}

// returnsMarkup looks for a return statement with JSX, without descending into nested functions.
func returnsMarkup(node *sitter.Node) bool {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch {
		case isFunctionNode(child.Type()):
			continue
		case child.Type() == "return_statement":
			if containsMarkup(child) {
				return true
			}
		case returnsMarkup(child):
			return true
		}
	}
	return false
}

func containsMarkup(node *sitter.Node) bool {
	if isMarkupNode(node.Type()) {
		return true
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if isFunctionNode(child.Type()) {
			continue
		}
		if containsMarkup(child) {
			return true
		}
	}
	return false
}

func classRendersMarkup(class *sitter.Node, content []byte) bool {
	body := class.ChildByFieldName("body")
	if body == nil {
		return false
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() == "method_definition" && fieldText(member, "name", content) == "render" && functionReturnsMarkup(member) {
			return true
		}
	}
	return false
}
