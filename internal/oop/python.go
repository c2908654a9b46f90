package oop

import (
	"path"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

var (
	pythonFunctions  = kindSet("function_definition")
	pythonLoops      = kindSet("for_statement", "while_statement")
	pythonBoundaries = kindSet("function_definition", "class_definition")
)

// pythonAnalyzer analyzes Python files.
type pythonAnalyzer struct {
	*treeSitterAnalyzer
}

func newPythonAnalyzer() *pythonAnalyzer {
	lang := sitter.NewLanguage(python.Language())
	return &pythonAnalyzer{
		treeSitterAnalyzer: newTreeSitterAnalyzer(lang, "python"),
	}
}

// Analyze parses source and returns its FileReport. A file with syntax
// errors yields an otherwise empty report with SyntaxOK unset.
func (a *pythonAnalyzer) Analyze(filePath string, source []byte) *FileReport {
	report := newFileReport(filePath, "Python")
	report.Module = pythonModuleName(filePath)

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

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "class_definition":
			report.Classes = append(report.Classes, a.extractClass(n, source, report.Module, filePath))
		case "import_statement", "import_from_statement":
			a.extractImport(n, source, report)
		case "call":
			a.inspectCall(n, source, &report.DataStructures)
		case "list":
			report.DataStructures.ListCount++
		case "dictionary":
			report.DataStructures.DictCount++
		case "set":
			report.DataStructures.SetCount++
		case "tuple":
			report.DataStructures.TupleCount++
		case "list_comprehension":
			report.DataStructures.ListComp++
		case "dictionary_comprehension":
			report.DataStructures.DictComp++
		case "set_comprehension":
			report.DataStructures.SetComp++
		}
		return true
	})

	measureFunctions(root, pythonFunctions, pythonLoops, pythonBoundaries, &report.Complexity)
	return report
}

func (a *pythonAnalyzer) extractClass(node *sitter.Node, source []byte, module, filePath string) ClassReport {
	b := newClassBuilder(nodeText(node.ChildByFieldName("name"), source), module, filePath)

	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := uint(0); i < supers.NamedChildCount(); i++ {
			base := supers.NamedChild(i)
			switch base.Kind() {
			case "identifier":
				b.addBase(nodeText(base, source))
			case "attribute":
				b.addBase(nodeText(base.ChildByFieldName("attribute"), source))
			case "keyword_argument", "comment":
				// metaclass=... and friends are not bases.
			default:
				b.addBase("<expr>")
			}
		}
	}

	body := node.ChildByFieldName("body")
	for i := uint(0); body != nil && i < body.ChildCount(); i++ {
		method := body.Child(i)
		if method.Kind() == "decorated_definition" {
			method = method.ChildByFieldName("definition")
		}
		if method == nil || method.Kind() != "function_definition" {
			continue
		}

		name := nodeText(method.ChildByFieldName("name"), source)
		b.addMethod(name)
		if name == "__init__" {
			b.report.HasConstructor = true
		}
		if isDunder(name) {
			b.addSpecial(name)
		}
		a.collectSelfAttributes(method.ChildByFieldName("body"), source, b)
	}

	return b.build()
}

// collectSelfAttributes records self.<name> assignment targets in a method body.
func (a *pythonAnalyzer) collectSelfAttributes(body *sitter.Node, source []byte, b *classBuilder) {
	walkTree(body, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "class_definition":
			return false
		case "assignment", "augmented_assignment":
			for _, target := range assignmentTargets(n.ChildByFieldName("left")) {
				if target.Kind() != "attribute" {
					continue
				}
				if nodeText(target.ChildByFieldName("object"), source) != "self" {
					continue
				}
				name := nodeText(target.ChildByFieldName("attribute"), source)
				b.addAttr(name, isPrivatePythonName(name))
			}
		}
		return true
	})
}

// assignmentTargets flattens tuple/list unpacking targets.
func assignmentTargets(left *sitter.Node) []*sitter.Node {
	if left == nil {
		return nil
	}
	switch left.Kind() {
	case "pattern_list", "tuple_pattern", "list_pattern":
		var out []*sitter.Node
		for i := uint(0); i < left.NamedChildCount(); i++ {
			out = append(out, assignmentTargets(left.NamedChild(i))...)
		}
		return out
	default:
		return []*sitter.Node{left}
	}
}

// isPrivatePythonName treats _x and name-mangled __x as private, dunders as public.
func isPrivatePythonName(name string) bool {
	return strings.HasPrefix(name, "_") && !isDunder(name)
}

func (a *pythonAnalyzer) extractImport(node *sitter.Node, source []byte, report *FileReport) {
	ds := &report.DataStructures

	if node.Kind() == "import_statement" {
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			name := child
			if child.Kind() == "aliased_import" {
				name = child.ChildByFieldName("name")
			}
			module := nodeText(name, source)
			if module == "" {
				continue
			}
			report.Imports = appendUnique(report.Imports, module)
			setPythonModuleFlags(module, ds)
		}
		return
	}

	moduleNode := node.ChildByFieldName("module_name")
	module := nodeText(moduleNode, source)
	if module != "" {
		report.Imports = appendUnique(report.Imports, module)
		setPythonModuleFlags(module, ds)
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if moduleNode != nil && child.StartByte() == moduleNode.StartByte() {
			continue
		}
		name := child
		if child.Kind() == "aliased_import" {
			name = child.ChildByFieldName("name")
		}
		imported := nodeText(name, source)
		if module == "collections" {
			switch imported {
			case "defaultdict":
				ds.UsesDefaultdict = true
			case "Counter":
				ds.UsesCounter = true
			}
		}
	}
}

func setPythonModuleFlags(module string, ds *DataStructures) {
	switch module {
	case "heapq":
		ds.UsesHeapq = true
	case "bisect":
		ds.UsesBisect = true
	}
}

func (a *pythonAnalyzer) inspectCall(node *sitter.Node, source []byte, ds *DataStructures) {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}

	switch fn.Kind() {
	case "identifier":
		if nodeText(fn, source) == "sorted" {
			ds.UsesSorted = true
		}
	case "attribute":
		object := nodeText(fn.ChildByFieldName("object"), source)
		attr := nodeText(fn.ChildByFieldName("attribute"), source)
		switch object {
		case "heapq":
			ds.UsesHeapq = true
		case "bisect":
			ds.UsesBisect = true
		case "collections":
			if attr == "defaultdict" {
				ds.UsesDefaultdict = true
			}
			if attr == "Counter" {
				ds.UsesCounter = true
			}
		}
	}
}

// pythonModuleName converts "pkg/sub/mod.py" to "pkg.sub.mod" and
// "pkg/__init__.py" to "pkg".
func pythonModuleName(filePath string) string {
	trimmed := strings.TrimSuffix(filePath, path.Ext(filePath))
	trimmed = strings.TrimSuffix(trimmed, "/__init__")
	if trimmed == "__init__" {
		return ""
	}
	return strings.ReplaceAll(trimmed, "/", ".")
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
