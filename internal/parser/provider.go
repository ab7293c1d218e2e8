// Package parser implements the optional document symbol provider on top of
// tree-sitter's C# grammar. It is the "oracle" side of the two-path
// contract: exact, whitespace-insensitive boundaries when parsing succeeds,
// nothing at all when it does not. Consumers fall back to text scanning in
// the latter case.
package parser

import (
	"context"
	"strings"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"

	"github.com/classkit/classkit/internal/errors"
	"github.com/classkit/classkit/internal/types"
)

// CSharpProvider parses C# documents with tree-sitter and converts the
// syntax tree into the generic symbol tree the resolution adapter consumes.
type CSharpProvider struct {
	mu     sync.Mutex // tree-sitter parsers are not safe for concurrent use
	parser *tree_sitter.Parser
}

// NewCSharpProvider builds a provider with the C# grammar loaded.
func NewCSharpProvider() (*CSharpProvider, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_csharp.Language())
	if err := parser.SetLanguage(language); err != nil {
		return nil, errors.NewProviderError("", err)
	}
	return &CSharpProvider{parser: parser}, nil
}

// DocumentSymbols parses doc and returns its symbol tree. An unparseable
// document yields an empty tree rather than an error; the tree-sitter
// grammar is tolerant enough that this mostly happens on empty input.
func (p *CSharpProvider) DocumentSymbols(ctx context.Context, doc *types.Document) ([]*types.Symbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	content := []byte(doc.Text)
	tree := p.parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.NewProviderError(doc.URI, context.DeadlineExceeded)
	}
	defer tree.Close()

	root := tree.RootNode()
	return p.collectChildren(root, content), nil
}

// collectChildren walks node's children and returns the symbols declared
// among them, descending through namespace bodies so namespaces appear as
// symbols with their member types as children.
func (p *CSharpProvider) collectChildren(node *tree_sitter.Node, content []byte) []*types.Symbol {
	var out []*types.Symbol
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if sym := p.symbolFor(child, content); sym != nil {
			out = append(out, sym)
			continue
		}
		// Containers without their own symbol (declaration lists, bodies)
		// still contribute nested declarations.
		switch child.Kind() {
		case "declaration_list", "compilation_unit":
			out = append(out, p.collectChildren(child, content)...)
		}
	}
	return out
}

func (p *CSharpProvider) symbolFor(node *tree_sitter.Node, content []byte) *types.Symbol {
	var kind types.SymbolKind
	switch node.Kind() {
	case "namespace_declaration", "file_scoped_namespace_declaration":
		kind = types.KindNamespace
	case "class_declaration":
		kind = types.KindClass
	case "interface_declaration":
		kind = types.KindInterface
	case "struct_declaration", "record_declaration":
		kind = types.KindStruct
	case "enum_declaration":
		kind = types.KindEnum
	case "method_declaration":
		kind = types.KindMethod
	case "constructor_declaration":
		kind = types.KindConstructor
	case "property_declaration":
		kind = types.KindProperty
	case "field_declaration":
		kind = types.KindField
	case "event_field_declaration":
		kind = types.KindEvent
	default:
		return nil
	}

	nameNode := p.nameNodeFor(node)
	if nameNode == nil {
		return nil
	}

	sym := &types.Symbol{
		Name:           string(content[nameNode.StartByte():nameNode.EndByte()]),
		Detail:         declarationDetail(node, content),
		Kind:           kind,
		Range:          nodeRange(node),
		SelectionRange: nodeRange(nameNode),
	}

	if body := node.ChildByFieldName("body"); body != nil {
		sym.Children = p.collectChildren(body, content)
	} else if kind == types.KindNamespace {
		sym.Children = p.collectChildren(node, content)
	}
	return sym
}

// nameNodeFor finds the node covering the declared name. Fields and events
// bury it inside a variable declarator.
func (p *CSharpProvider) nameNodeFor(node *tree_sitter.Node) *tree_sitter.Node {
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		return nameNode
	}
	switch node.Kind() {
	case "field_declaration", "event_field_declaration":
		return firstDeclaratorName(node)
	}
	return nil
}

func firstDeclaratorName(node *tree_sitter.Node) *tree_sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || child.Kind() != "variable_declaration" {
			continue
		}
		for j := uint(0); j < child.ChildCount(); j++ {
			decl := child.Child(j)
			if decl == nil || decl.Kind() != "variable_declarator" {
				continue
			}
			if name := decl.ChildByFieldName("name"); name != nil {
				return name
			}
			for k := uint(0); k < decl.ChildCount(); k++ {
				if id := decl.Child(k); id != nil && id.Kind() == "identifier" {
					return id
				}
			}
		}
	}
	return nil
}

// declarationDetail returns the declaration header text: everything from the
// node start up to the body opening brace or terminating semicolon,
// whitespace-collapsed. This is what lets callers recover generic parameter
// lists without re-parsing.
func declarationDetail(node *tree_sitter.Node, content []byte) string {
	text := string(content[node.StartByte():node.EndByte()])
	if i := strings.IndexByte(text, '{'); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), ";")
	return strings.Join(strings.Fields(text), " ")
}

func nodeRange(node *tree_sitter.Node) types.Range {
	start := node.StartPosition()
	end := node.EndPosition()
	return types.Range{
		Start: types.Position{Line: int(start.Row), Character: int(start.Column)},
		End:   types.Position{Line: int(end.Row), Character: int(end.Column)},
	}
}
