package internal

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/python"
)

func init() {
	RegisterParser("go", func() Parser { return &GoParser{} })
	RegisterParser("python", func() Parser { return &PythonParser{} })
}

// GoParser extracts functions, methods and type declarations from Go
// source. A fresh tree-sitter parser is created per Parse call, so a
// single instance is safe for concurrent use.
type GoParser struct{}

func (p *GoParser) Language() string { return "go" }

func (p *GoParser) Parse(ctx context.Context, source []byte, path string) ([]Entity, error) {
	root, done, err := parseTree(ctx, golang.GetLanguage(), source)
	if err != nil {
		return nil, err
	}
	defer done()

	entities := []Entity{moduleEntity(path, source, "go")}

	for i := 0; i < int(root.ChildCount()); i++ {
		node := root.Child(i)
		switch node.Type() {
		case "function_declaration":
			name := fieldContent(node, "name", source)
			if name == "" {
				continue
			}
			entities = append(entities, newEntity(ScopeFunction, name, "", path, node, source, "go"))
		case "method_declaration":
			name := fieldContent(node, "name", source)
			if name == "" {
				continue
			}
			e := newEntity(ScopeFunction, name, receiverType(node, source), path, node, source, "go")
			entities = append(entities, e)
		case "type_declaration":
			entities = append(entities, goTypeEntities(node, path, source)...)
		}
	}

	return entities, nil
}

// goTypeEntities yields class entities for struct and interface specs.
// Aliases and plain type definitions are skipped; they rarely carry
// enough behavior to describe on their own.
func goTypeEntities(node *sitter.Node, path string, source []byte) []Entity {
	var entities []Entity
	for i := 0; i < int(node.NamedChildCount()); i++ {
		spec := node.NamedChild(i)
		if spec.Type() != "type_spec" {
			continue
		}
		kind := spec.ChildByFieldName("type")
		if kind == nil {
			continue
		}
		switch kind.Type() {
		case "struct_type", "interface_type":
			name := fieldContent(spec, "name", source)
			if name == "" {
				continue
			}
			entities = append(entities, newEntity(ScopeClass, name, "", path, node, source, "go"))
		}
	}
	return entities
}

// receiverType resolves the receiver's base type name, with pointer
// and parens stripped.
func receiverType(node *sitter.Node, source []byte) string {
	recv := node.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	text := strings.Trim(recv.Content(source), "()")
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	typ := fields[len(fields)-1]
	typ = strings.TrimPrefix(typ, "*")
	if i := strings.IndexByte(typ, '['); i >= 0 {
		typ = typ[:i]
	}
	return typ
}

// PythonParser extracts module-level functions, classes and their
// methods from Python source.
type PythonParser struct{}

func (p *PythonParser) Language() string { return "python" }

func (p *PythonParser) Parse(ctx context.Context, source []byte, path string) ([]Entity, error) {
	root, done, err := parseTree(ctx, python.GetLanguage(), source)
	if err != nil {
		return nil, err
	}
	defer done()

	entities := []Entity{moduleEntity(path, source, "python")}

	for i := 0; i < int(root.ChildCount()); i++ {
		node := unwrapDecorated(root.Child(i))
		switch node.Type() {
		case "function_definition":
			name := fieldContent(node, "name", source)
			if name == "" {
				continue
			}
			entities = append(entities, newEntity(ScopeFunction, name, "", path, node, source, "python"))
		case "class_definition":
			name := fieldContent(node, "name", source)
			if name == "" {
				continue
			}
			entities = append(entities, newEntity(ScopeClass, name, "", path, node, source, "python"))
			entities = append(entities, pythonMethods(node, name, path, source)...)
		}
	}

	return entities, nil
}

func pythonMethods(class *sitter.Node, className, path string, source []byte) []Entity {
	body := class.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var entities []Entity
	for i := 0; i < int(body.ChildCount()); i++ {
		node := unwrapDecorated(body.Child(i))
		if node.Type() != "function_definition" {
			continue
		}
		name := fieldContent(node, "name", source)
		if name == "" {
			continue
		}
		entities = append(entities, newEntity(ScopeFunction, name, className, path, node, source, "python"))
	}
	return entities
}

// unwrapDecorated steps through a decorated_definition wrapper to the
// definition it decorates.
func unwrapDecorated(node *sitter.Node) *sitter.Node {
	if node.Type() != "decorated_definition" {
		return node
	}
	if def := node.ChildByFieldName("definition"); def != nil {
		return def
	}
	return node
}

// parseTree runs tree-sitter over source and returns the root node plus
// a cleanup func for the tree. Parsing is synchronous; the context is
// checked up front and passed through for the library's own checks.
func parseTree(ctx context.Context, language *sitter.Language, source []byte) (*sitter.Node, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	parser := sitter.NewParser()
	parser.SetLanguage(language)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, nil, fmt.Errorf("parse source: %w", err)
	}
	return tree.RootNode(), tree.Close, nil
}

func fieldContent(node *sitter.Node, field string, source []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return child.Content(source)
}

func moduleEntity(path string, source []byte, language string) Entity {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	text := string(source)
	return Entity{
		Scope:       ScopeModule,
		Name:        name,
		Location:    Location{Path: path, StartLine: 1, EndLine: strings.Count(text, "\n") + 1},
		Source:      text,
		Language:    language,
		Fingerprint: ScopedFingerprint(ScopeModule, text),
	}
}

func newEntity(scope Scope, name, parent, path string, node *sitter.Node, source []byte, language string) Entity {
	text := node.Content(source)
	return Entity{
		Scope:  scope,
		Name:   name,
		Parent: parent,
		Location: Location{
			Path:      path,
			StartLine: int(node.StartPoint().Row) + 1,
			EndLine:   int(node.EndPoint().Row) + 1,
		},
		Source:      text,
		Language:    language,
		Fingerprint: ScopedFingerprint(scope, text),
	}
}
