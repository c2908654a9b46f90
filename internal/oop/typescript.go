package oop

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

var (
	tsFunctions = kindSet("function_declaration", "generator_function_declaration", "method_definition",
		"arrow_function", "function_expression", "function", "generator_function")
	tsLoops      = kindSet("for_statement", "for_in_statement", "while_statement", "do_statement")
	tsBoundaries = kindSet("function_declaration", "generator_function_declaration", "method_definition",
		"arrow_function", "function_expression", "function", "generator_function", "class_body")
	tsSpecial =map[string]bool{"toString": true, "valueOf": true, "toJSON": true,
		"[Symbol.iterator]": true, "[Symbol.asyncIterator]": true, "[Symbol.toPrimitive]": true}
)

// typeScriptAnalyzer analyzes TypeScript and JavaScript files.
type typeScriptAnalyzer struct {
	*treeSitterAnalyzer
	label string
}

func newTypeScriptAnalyzer() *typeScriptAnalyzer {
	lang := sitter.NewLanguage(typescript.LanguageTypescript())
	return &typeScriptAnalyzer{
		treeSitterAnalyzer: newTreeSitterAnalyzer(lang, "typescript"),
		label:              "TypeScript",
	}
}

// newTSXAnalyzer parses .tsx, .jsx and .js files, which may contain JSX.
func newTSXAnalyzer(label string) *typeScriptAnalyzer {
	lang := sitter.NewLanguage(typescript.LanguageTSX())
	return &typeScriptAnalyzer{
		treeSitterAnalyzer: newTreeSitterAnalyzer(lang, "tsx"),
		label:              label,
	}
}

func (a *typeScriptAnalyzer) Analyze(filePath string, source []byte) *FileReport {
	report := newFileReport(filePath, a.label)

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

	ds := &report.DataStructures
	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "class_declaration", "abstract_class_declaration", "class":
			if n.ChildByFieldName("name") != nil {
				report.Classes = append(report.Classes, a.extractClass(n, source, filePath))
			}
		case "import_statement":
			if src := n.ChildByFieldName("source"); src != nil {
				report.Imports = appendUnique(report.Imports, trimQuotes(nodeText(src, source)))
			}
		case "array":
			ds.ListCount++
		case "object":
			ds.DictCount++
		case "new_expression":
			switch nodeText(n.ChildByFieldName("constructor"), source) {
			case "Set", "WeakSet":
				ds.SetCount++
			case "Map", "WeakMap":
				ds.DictCount++
			case "Array":
				ds.ListCount++
			}
		case "call_expression":
			fn := n.ChildByFieldName("function")
			if fn != nil && fn.Kind() == "member_expression" {
				switch nodeText(fn.ChildByFieldName("property"), source) {
				case "sort", "toSorted":
					ds.UsesSorted = true
				}
			}
		}
		return true
	})

	measureFunctions(root, tsFunctions, tsLoops, tsBoundaries, &report.Complexity)
	return report
}

func (a *typeScriptAnalyzer) extractClass(node *sitter.Node, source []byte, filePath string) ClassReport {
	b := newClassBuilder(nodeText(node.ChildByFieldName("name"), source), "", filePath)

	if heritage := findChildByType(node, "class_heritage"); heritage != nil {
		if ext := findChildByType(heritage, "extends_clause"); ext != nil {
			for i := uint(0); i < ext.NamedChildCount(); i++ {
				child := ext.NamedChild(i)
				if child.Kind() == "type_arguments" {
					continue
				}
				b.addBase(lastSegment(nodeText(child, source)))
			}
		}
		if impl := findChildByType(heritage, "implements_clause"); impl != nil {
			for i := uint(0); i < impl.NamedChildCount(); i++ {
				b.addBase(tsTypeName(impl.NamedChild(i), source))
			}
		}
	}

	body := node.ChildByFieldName("body")
	for i := uint(0); body != nil && i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		switch member.Kind() {
		case "method_definition", "method_signature", "abstract_method_signature":
			nameNode := member.ChildByFieldName("name")
			name := nodeText(nameNode, source)
			if name == "constructor" {
				b.report.HasConstructor = true
				a.collectParameterProperties(member, source, b)
			} else {
				b.addMethod(name)
			}
			if tsSpecial[name] {
				b.addSpecial(name)
			}
			a.collectThisAssignments(member.ChildByFieldName("body"), source, b)
		case "public_field_definition", "field_definition":
			nameNode := member.ChildByFieldName("name")
			if nameNode == nil {
				nameNode = member.ChildByFieldName("property")
			}
			b.addAttr(strings.TrimPrefix(nodeText(nameNode, source), "#"), tsIsPrivate(member, nameNode))
		}
	}

	return b.build()
}

// collectParameterProperties records `constructor(private x: T)` shorthand fields.
func (a *typeScriptAnalyzer) collectParameterProperties(ctor *sitter.Node, source []byte, b *classBuilder) {
	params := ctor.ChildByFieldName("parameters")
	for i := uint(0); params != nil && i < params.NamedChildCount(); i++ {
		param := params.NamedChild(i)
		mod := findChildByType(param, "accessibility_modifier")
		if mod == nil && findChildByType(param, "readonly") == nil {
			continue
		}
		name := nodeText(param.ChildByFieldName("pattern"), source)
		access := nodeText(mod, source)
		b.addAttr(name, access == "private" || access == "protected")
	}
}

func (a *typeScriptAnalyzer) collectThisAssignments(body *sitter.Node, source []byte, b *classBuilder) {
	walkTree(body, func(n *sitter.Node) bool {
		if n.Kind() == "class_body" {
			return false
		}
		if n.Kind() != "assignment_expression" {
			return true
		}
		left := n.ChildByFieldName("left")
		if left == nil || left.Kind() != "member_expression" || nodeText(left.ChildByFieldName("object"), source) != "this" {
			return true
		}
		prop := left.ChildByFieldName("property")
		private := prop != nil && prop.Kind() == "private_property_identifier"
		b.addAttr(strings.TrimPrefix(nodeText(prop, source), "#"), private)
		return true
	})
}

func tsIsPrivate(member, nameNode *sitter.Node) bool {
	if nameNode != nil && nameNode.Kind() == "private_property_identifier" {
		return true
	}
	mod := findChildByType(member, "accessibility_modifier")
	if mod == nil {
		return false
	}
	return findChildByType(mod, "private") != nil || findChildByType(mod, "protected") != nil
}

func tsTypeName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	if node.Kind() == "generic_type" && node.NamedChildCount() > 0 {
		return tsTypeName(node.NamedChild(0), source)
	}
	return lastSegment(nodeText(node, source))
}
