package oop

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

var (
	phpFunctions = kindSet("function_definition", "method_declaration", "anonymous_function",
		"anonymous_function_creation_expression", "arrow_function")
	phpLoops      = kindSet("for_statement", "foreach_statement", "while_statement", "do_statement")
	phpBoundaries = kindSet("function_definition", "method_declaration", "anonymous_function",
		"anonymous_function_creation_expression", "arrow_function", "declaration_list")
	phpSortFuncs = map[string]bool{"sort": true, "rsort": true, "usort": true, "uasort": true,
		"uksort": true, "ksort": true, "krsort": true, "asort": true, "arsort": true}
)

// phpAnalyzer analyzes PHP files.
type phpAnalyzer struct {
	*treeSitterAnalyzer
}

func newPHPAnalyzer() *phpAnalyzer {
	lang := sitter.NewLanguage(php.LanguagePHP())
	return &phpAnalyzer{
		treeSitterAnalyzer: newTreeSitterAnalyzer(lang, "php"),
	}
}

func (a *phpAnalyzer) Analyze(filePath string, source []byte) *FileReport {
	report := newFileReport(filePath, "PHP")

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

	if ns := findDescendantByType(root, "namespace_definition"); ns != nil {
		report.Module = nodeText(ns.ChildByFieldName("name"), source)
	}

	ds := &report.DataStructures
	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "class_declaration":
			report.Classes = append(report.Classes, a.extractClass(n, source, report.Module, filePath))
		case "namespace_use_clause":
			if name := findChildByType(n, "qualified_name"); name != nil {
				report.Imports = appendUnique(report.Imports, nodeText(name, source))
			} else if name := findChildByType(n, "name"); name != nil {
				report.Imports = appendUnique(report.Imports, nodeText(name, source))
			}
		case "array_creation_expression":
			if phpIsAssociative(n) {
				ds.DictCount++
			} else {
				ds.ListCount++
			}
		case "object_creation_expression":
			switch lastSegment(nodeText(findChildByType(n, "name"), source)) {
			case "SplPriorityQueue", "SplMinHeap", "SplMaxHeap":
				ds.UsesHeapq = true
			case "SplObjectStorage":
				ds.SetCount++
			case "ArrayObject", "SplFixedArray", "SplDoublyLinkedList":
				ds.ListCount++
			}
		case "function_call_expression":
			name := nodeText(n.ChildByFieldName("function"), source)
			switch {
			case phpSortFuncs[name]:
				ds.UsesSorted = true
			case name == "array_count_values":
				ds.UsesCounter = true
			}
		}
		return true
	})

	measureFunctions(root, phpFunctions, phpLoops, phpBoundaries, &report.Complexity)
	return report
}

func (a *phpAnalyzer) extractClass(node *sitter.Node, source []byte, module, filePath string) ClassReport {
	b := newClassBuilder(nodeText(node.ChildByFieldName("name"), source), module, filePath)

	for _, kind := range []string{"base_clause", "class_interface_clause"} {
		clause := findChildByType(node, kind)
		for i := uint(0); clause != nil && i < clause.NamedChildCount(); i++ {
			b.addBase(lastSegment(nodeText(clause.NamedChild(i), source)))
		}
	}

	body := node.ChildByFieldName("body")
	for i := uint(0); body != nil && i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		switch member.Kind() {
		case "method_declaration":
			name := nodeText(member.ChildByFieldName("name"), source)
			switch {
			case strings.EqualFold(name, "__construct"):
				b.report.HasConstructor = true
				a.collectPromotedProperties(member, source, b)
			case strings.HasPrefix(name, "__"):
				b.addMethod(name)
				b.addSpecial(name)
			default:
				b.addMethod(name)
			}
			a.collectThisAssignments(member.ChildByFieldName("body"), source, b)
		case "property_declaration":
			private := phpIsPrivate(member, source)
			for _, elem := range findChildrenByType(member, "property_element") {
				b.addAttr(phpVariableName(findChildByType(elem, "variable_name"), source), private)
			}
		}
	}

	return b.build()
}

// collectPromotedProperties records constructor property promotion parameters.
func (a *phpAnalyzer) collectPromotedProperties(ctor *sitter.Node, source []byte, b *classBuilder) {
	params := ctor.ChildByFieldName("parameters")
	for i := uint(0); params != nil && i < params.NamedChildCount(); i++ {
		param := params.NamedChild(i)
		if param.Kind() != "property_promotion_parameter" {
			continue
		}
		b.addAttr(phpVariableName(param.ChildByFieldName("name"), source), phpIsPrivate(param, source))
	}
}

func (a *phpAnalyzer) collectThisAssignments(body *sitter.Node, source []byte, b *classBuilder) {
	walkTree(body, func(n *sitter.Node) bool {
		if n.Kind() == "anonymous_class" {
			return false
		}
		if n.Kind() != "assignment_expression" {
			return true
		}
		left := n.ChildByFieldName("left")
		if left == nil || left.Kind() != "member_access_expression" {
			return true
		}
		if nodeText(left.ChildByFieldName("object"), source) == "$this" {
			b.addAttr(nodeText(left.ChildByFieldName("name"), source), false)
		}
		return true
	})
}

// phpIsPrivate treats private and protected members as non-public.
func phpIsPrivate(decl *sitter.Node, source []byte) bool {
	mod := findDescendantByType(decl, "visibility_modifier")
	if mod == nil {
		return false
	}
	switch strings.ToLower(nodeText(mod, source)) {
	case "private", "protected":
		return true
	}
	return false
}

func phpVariableName(node *sitter.Node, source []byte) string {
	return strings.TrimPrefix(nodeText(node, source), "$")
}

// phpIsAssociative reports whether any array element uses key => value.
func phpIsAssociative(array *sitter.Node) bool {
	for i := uint(0); i < array.NamedChildCount(); i++ {
		elem := array.NamedChild(i)
		if elem.Kind() != "array_element_initializer" {
			continue
		}
		for j := uint(0); j < elem.ChildCount(); j++ {
			if elem.Child(j).Kind() == "=>" {
				return true
			}
		}
	}
	return false
}
