package oop

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

var (
	javaFunctions  = kindSet("method_declaration", "constructor_declaration")
	javaLoops      = kindSet("for_statement", "enhanced_for_statement", "while_statement", "do_statement")
	javaBoundaries = kindSet("method_declaration", "constructor_declaration", "class_body", "interface_body", "enum_body")
	javaSpecial    = map[string]bool{"toString": true, "equals": true, "hashCode": true, "compareTo": true}
)

// javaContainers maps collection type names to the data-structure bucket they count toward.
var javaContainers = map[string]func(*DataStructures){
	"ArrayList":     func(d *DataStructures) { d.ListCount++ },
	"LinkedList":    func(d *DataStructures) { d.ListCount++ },
	"List":          func(d *DataStructures) { d.ListCount++ },
	"HashMap":       func(d *DataStructures) { d.DictCount++ },
	"TreeMap":       func(d *DataStructures) { d.DictCount++ },
	"LinkedHashMap": func(d *DataStructures) { d.DictCount++ },
	"Map":           func(d *DataStructures) { d.DictCount++ },
	"HashSet":       func(d *DataStructures) { d.SetCount++ },
	"TreeSet":       func(d *DataStructures) { d.SetCount++ },
	"LinkedHashSet": func(d *DataStructures) { d.SetCount++ },
	"Set":           func(d *DataStructures) { d.SetCount++ },
	"PriorityQueue": func(d *DataStructures) { d.UsesHeapq = true },
	"Collections":   func(d *DataStructures) { d.UsesSorted = true },
}

// javaAnalyzer analyzes Java files.
type javaAnalyzer struct {
	*treeSitterAnalyzer
}

func newJavaAnalyzer() *javaAnalyzer {
	lang := sitter.NewLanguage(java.Language())
	return &javaAnalyzer{
		treeSitterAnalyzer: newTreeSitterAnalyzer(lang, "java"),
	}
}

func (a *javaAnalyzer) Analyze(filePath string, source []byte) *FileReport {
	report := newFileReport(filePath, "Java")

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

	if pkg := findChildByType(root, "package_declaration"); pkg != nil {
		for i := uint(0); i < pkg.NamedChildCount(); i++ {
			child := pkg.NamedChild(i)
			if child.Kind() == "scoped_identifier" || child.Kind() == "identifier" {
				report.Module = nodeText(child, source)
			}
		}
	}

	for _, imp := range findChildrenByType(root, "import_declaration") {
		for i := uint(0); i < imp.NamedChildCount(); i++ {
			child := imp.NamedChild(i)
			if child.Kind() != "scoped_identifier" && child.Kind() != "identifier" {
				continue
			}
			name := nodeText(child, source)
			report.Imports = appendUnique(report.Imports, name)
			if count, ok := javaContainers[lastSegment(name)]; ok {
				count(&report.DataStructures)
			}
		}
	}

	for _, cls := range findChildrenByType(root, "class_declaration") {
		report.Classes = append(report.Classes, a.extractClass(cls, source, report.Module, filePath))
	}

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "object_creation_expression":
			if count, ok := javaContainers[javaTypeName(n.ChildByFieldName("type"), source)]; ok {
				count(&report.DataStructures)
			}
		case "method_invocation":
			object := nodeText(n.ChildByFieldName("object"), source)
			name := nodeText(n.ChildByFieldName("name"), source)
			if object == "Collections" || object == "Arrays" {
				switch name {
				case "sort":
					report.DataStructures.UsesSorted = true
				case "binarySearch":
					report.DataStructures.UsesBisect = true
				}
			}
		}
		return true
	})

	measureFunctions(root, javaFunctions, javaLoops, javaBoundaries, &report.Complexity)
	return report
}

func (a *javaAnalyzer) extractClass(node *sitter.Node, source []byte, module, filePath string) ClassReport {
	b := newClassBuilder(nodeText(node.ChildByFieldName("name"), source), module, filePath)

	if super := node.ChildByFieldName("superclass"); super != nil {
		for i := uint(0); i < super.NamedChildCount(); i++ {
			b.addBase(javaTypeName(super.NamedChild(i), source))
		}
	}
	if ifaces := node.ChildByFieldName("interfaces"); ifaces != nil {
		if list := findChildByType(ifaces, "type_list"); list != nil {
			for i := uint(0); i < list.NamedChildCount(); i++ {
				b.addBase(javaTypeName(list.NamedChild(i), source))
			}
		}
	}

	body := node.ChildByFieldName("body")
	var bodies []*sitter.Node
	for i := uint(0); body != nil && i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		switch member.Kind() {
		case "method_declaration":
			name := nodeText(member.ChildByFieldName("name"), source)
			b.addMethod(name)
			if javaSpecial[name] {
				b.addSpecial(name)
			}
			bodies = append(bodies, member.ChildByFieldName("body"))
		case "constructor_declaration":
			b.report.HasConstructor = true
			bodies = append(bodies, member.ChildByFieldName("body"))
		case "field_declaration":
			private := hasModifier(member, "private")
			for i := uint(0); i < member.NamedChildCount(); i++ {
				decl := member.NamedChild(i)
				if decl.Kind() == "variable_declarator" {
					b.addAttr(nodeText(decl.ChildByFieldName("name"), source), private)
				}
			}
		}
	}

	for _, fnBody := range bodies {
		walkTree(fnBody, func(n *sitter.Node) bool {
			if n.Kind() == "class_body" {
				return false
			}
			if n.Kind() != "assignment_expression" {
				return true
			}
			left := n.ChildByFieldName("left")
			if left != nil && left.Kind() == "field_access" && nodeText(left.ChildByFieldName("object"), source) == "this" {
				// Declared private fields stay private.
				b.addAttr(nodeText(left.ChildByFieldName("field"), source), false)
			}
			return true
		})
	}

	return b.build()
}

// hasModifier checks the declaration's modifiers node for a keyword.
func hasModifier(decl *sitter.Node, keyword string) bool {
	mods := findChildByType(decl, "modifiers")
	if mods == nil {
		return false
	}
	for i := uint(0); i < mods.ChildCount(); i++ {
		if mods.Child(i).Kind() == keyword {
			return true
		}
	}
	return false
}

// javaTypeName resolves a type node to its simple name, dropping generics
// and package qualifiers.
func javaTypeName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "type_identifier", "identifier":
		return nodeText(node, source)
	case "scoped_type_identifier":
		return lastSegment(nodeText(node, source))
	case "generic_type":
		if node.NamedChildCount() > 0 {
			return javaTypeName(node.NamedChild(0), source)
		}
	}
	return lastSegment(nodeText(node, source))
}
