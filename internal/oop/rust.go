package oop

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

var (
	rustFunctions  = kindSet("function_item", "closure_expression")
	rustLoops      = kindSet("for_expression", "while_expression", "loop_expression")
	rustBoundaries = kindSet("function_item", "closure_expression")
	rustSpecial    = map[string]bool{"fmt": true, "eq": true, "ne": true, "partial_cmp": true, "cmp": true,
		"hash": true, "clone": true, "drop": true, "deref": true, "deref_mut": true, "next": true,
		"from": true, "into": true, "default": true, "as_ref": true}
)

// rustAnalyzer treats structs and traits as classes. Methods come from impl
// blocks in the same file; `impl Trait for Type` makes Trait a base of Type.
type rustAnalyzer struct {
	*treeSitterAnalyzer
}

func newRustAnalyzer() *rustAnalyzer {
	lang := sitter.NewLanguage(rust.Language())
	return &rustAnalyzer{
		treeSitterAnalyzer: newTreeSitterAnalyzer(lang, "rust"),
	}
}

func (a *rustAnalyzer) Analyze(filePath string, source []byte) *FileReport {
	report := newFileReport(filePath, "Rust")

	tree, err := a.parse(source)
	if err != nil {
		report.SyntaxOK = false
		return report
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		report.SyntaxOK = false
		return report
	}

	builders := make(map[string]*classBuilder)
	var order []string
	builder := func(name string) *classBuilder {
		if b, ok := builders[name]; ok {
			return b
		}
		b := newClassBuilder(name, "", filePath)
		builders[name] = b
		order = append(order, name)
		return b
	}

	var impls []*sitter.Node
	ds := &report.DataStructures
	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "struct_item":
			b := builder(nodeText(n.ChildByFieldName("name"), source))
			a.collectFields(n.ChildByFieldName("body"), source, b)
		case "trait_item":
			b := builder(nodeText(n.ChildByFieldName("name"), source))
			body := n.ChildByFieldName("body")
			for i := uint(0); body != nil && i < body.NamedChildCount(); i++ {
				member := body.NamedChild(i)
				if member.Kind() == "function_item" || member.Kind() == "function_signature_item" {
					b.addMethod(nodeText(member.ChildByFieldName("name"), source))
				}
			}
		case "impl_item":
			impls = append(impls, n)
		case "use_declaration":
			report.Imports = appendUnique(report.Imports, nodeText(n.ChildByFieldName("argument"), source))
		case "macro_invocation":
			switch nodeText(n.ChildByFieldName("macro"), source) {
			case "vec":
				ds.ListCount++
			case "hashmap", "btreemap":
				ds.DictCount++
			case "hashset", "btreeset":
				ds.SetCount++
			}
		case "array_expression":
			ds.ListCount++
		case "tuple_expression":
			ds.TupleCount++
		case "call_expression":
			a.inspectCall(n.ChildByFieldName("function"), source, ds)
		}
		return true
	})

	// Impls are applied after every struct in the file is known.
	for _, impl := range impls {
		typeName := rustTypeName(impl.ChildByFieldName("type"), source)
		b, ok := builders[typeName]
		if !ok {
			continue
		}
		if trait := impl.ChildByFieldName("trait"); trait != nil {
			b.addBase(rustTypeName(trait, source))
		}
		body := impl.ChildByFieldName("body")
		for i := uint(0); body != nil && i < body.NamedChildCount(); i++ {
			fn := body.NamedChild(i)
			if fn.Kind() != "function_item" {
				continue
			}
			name := nodeText(fn.ChildByFieldName("name"), source)
			b.addMethod(name)
			if name == "new" {
				b.report.HasConstructor = true
			}
			if rustSpecial[name] {
				b.addSpecial(name)
			}
		}
	}

	for _, name := range order {
		report.Classes = append(report.Classes, builders[name].build())
	}

	measureFunctions(root, rustFunctions, rustLoops, rustBoundaries, &report.Complexity)
	return report
}

// collectFields records named struct fields; fields without pub are private.
func (a *rustAnalyzer) collectFields(body *sitter.Node, source []byte, b *classBuilder) {
	if body == nil || body.Kind() != "field_declaration_list" {
		return
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		field := body.NamedChild(i)
		if field.Kind() != "field_declaration" {
			continue
		}
		private := findChildByType(field, "visibility_modifier") == nil
		b.addAttr(nodeText(field.ChildByFieldName("name"), source), private)
	}
}

func (a *rustAnalyzer) inspectCall(fn *sitter.Node, source []byte, ds *DataStructures) {
	if fn == nil {
		return
	}
	switch fn.Kind() {
	case "scoped_identifier":
		switch rustTypeName(fn.ChildByFieldName("path"), source) {
		case "HashMap", "BTreeMap":
			ds.DictCount++
		case "HashSet", "BTreeSet":
			ds.SetCount++
		case "Vec", "VecDeque", "LinkedList":
			ds.ListCount++
		case "BinaryHeap":
			ds.UsesHeapq = true
		}
	case "field_expression":
		method := nodeText(fn.ChildByFieldName("field"), source)
		switch {
		case strings.HasPrefix(method, "sort"):
			ds.UsesSorted = true
		case strings.HasPrefix(method, "binary_search"):
			ds.UsesBisect = true
		}
	}
}

// rustTypeName strips generics and path qualifiers from a type node.
func rustTypeName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	if node.Kind() == "generic_type" {
		return rustTypeName(node.ChildByFieldName("type"), source)
	}
	return lastSegment(nodeText(node, source))
}
