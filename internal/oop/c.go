package oop

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
)

var (
	cFunctions  = kindSet("function_definition")
	cLoops      = kindSet("for_statement", "while_statement", "do_statement")
	cBoundaries = kindSet("function_definition")

	cConstructorVerbs = []string{"create", "new", "init", "alloc"}
	cDestructorVerbs  = []string{"destroy", "free", "delete", "cleanup"}
	cVtableSuffixes   = []string{"ops", "operations", "vtable", "vtbl", "methods", "funcs", "interface"}
)

// cAnalyzer treats structs as classes: function-pointer members are methods
// and an embedded struct as first member is a base.
type cAnalyzer struct {
	*treeSitterAnalyzer
}

func newCAnalyzer() *cAnalyzer {
	lang := sitter.NewLanguage(c.Language())
	return &cAnalyzer{
		treeSitterAnalyzer: newTreeSitterAnalyzer(lang, "c"),
	}
}

type cStruct struct {
	name string
	body *sitter.Node
}

// Analyze marks files with error nodes as syntax failures but still walks
// the recovered tree.
func (a *cAnalyzer) Analyze(filePath string, source []byte) *FileReport {
	report := newFileReport(filePath, "C")

	tree, err := a.parse(source)
	if err != nil {
		return report
	}
	defer tree.Close()
	root := tree.RootNode()
	report.SyntaxOK = !root.HasError()

	var structs []cStruct
	known := make(map[string]string) // tag or typedef alias -> report name
	var functions []string

	walkTree(root, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "struct_specifier":
			body := n.ChildByFieldName("body")
			if body == nil {
				return true
			}
			tag := nodeText(n.ChildByFieldName("name"), source)
			alias := typedefAlias(n, source)
			name := tag
			if name == "" {
				name = alias
			}
			if name == "" {
				return true
			}
			structs = append(structs, cStruct{name: name, body: body})
			known[name] = name
			if alias != "" {
				known[alias] = name
			}
		case "function_definition":
			if fn := cFunctionName(n.ChildByFieldName("declarator"), source); fn != "" {
				functions = append(functions, fn)
			}
		case "declaration":
			if decl := n.ChildByFieldName("declarator"); decl != nil && findDescendantByType(decl, "function_declarator") != nil && findDescendantByType(decl, "parenthesized_declarator") == nil {
				if fn := cFunctionName(decl, source); fn != "" {
					functions = append(functions, fn)
				}
			}
		case "preproc_include":
			if p := n.ChildByFieldName("path"); p != nil {
				report.Imports = appendUnique(report.Imports, trimQuotes(nodeText(p, source)))
			}
		case "call_expression":
			switch nodeText(n.ChildByFieldName("function"), source) {
			case "qsort":
				report.DataStructures.UsesSorted = true
			case "bsearch":
				report.DataStructures.UsesBisect = true
			}
		}
		return true
	})

	for _, s := range structs {
		report.Classes = append(report.Classes, a.buildStruct(s, known, functions, source, filePath))
	}

	measureFunctions(root, cFunctions, cLoops, cBoundaries, &report.Complexity)
	return report
}

func (a *cAnalyzer) buildStruct(s cStruct, known map[string]string, functions []string, source []byte, filePath string) ClassReport {
	b := newClassBuilder(s.name, "", filePath)

	fnPointers := 0
	first := true
	for i := uint(0); i < s.body.NamedChildCount(); i++ {
		field := s.body.NamedChild(i)
		if field.Kind() != "field_declaration" {
			continue
		}

		decl := field.ChildByFieldName("declarator")
		name := ""
		if id := findDescendantByType(decl, "field_identifier"); id != nil {
			name = nodeText(id, source)
		}

		if first {
			first = false
			if base := a.embeddedBase(field, decl, known, source); base != "" && base != s.name {
				b.addBase(base)
				continue
			}
		}

		if isFunctionPointer(decl) {
			fnPointers++
			b.addMethod(name)
			continue
		}
		b.addAttr(name, strings.HasPrefix(name, "_"))
	}

	for _, fn := range functions {
		switch {
		case matchesLifecycle(fn, s.name, cConstructorVerbs):
			b.report.HasConstructor = true
			b.addSpecial(fn)
		case matchesLifecycle(fn, s.name, cDestructorVerbs):
			b.addSpecial(fn)
		}
	}

	vtable := fnPointers >= 2 && isVtableName(s.name)
	b.report.IsVtable = &vtable
	return b.build()
}

// embeddedBase returns the struct embedded by value as the first member, if any.
func (a *cAnalyzer) embeddedBase(field, decl *sitter.Node, known map[string]string, source []byte) string {
	if decl == nil || decl.Kind() != "field_identifier" {
		return ""
	}
	typ := field.ChildByFieldName("type")
	if typ == nil {
		return ""
	}
	switch typ.Kind() {
	case "struct_specifier":
		tag := nodeText(typ.ChildByFieldName("name"), source)
		if canonical, ok := known[tag]; ok {
			return canonical
		}
		return tag
	case "type_identifier":
		name := nodeText(typ, source)
		if canonical, ok := known[name]; ok {
			return canonical
		}
		return name
	}
	return ""
}

// typedefAlias returns the typedef name when the struct is declared as
// `typedef struct {...} Name;`.
func typedefAlias(structNode *sitter.Node, source []byte) string {
	parent := structNode.Parent()
	if parent == nil || parent.Kind() != "type_definition" {
		return ""
	}
	decl := parent.ChildByFieldName("declarator")
	if decl != nil && decl.Kind() == "type_identifier" {
		return nodeText(decl, source)
	}
	return ""
}

// isFunctionPointer matches declarators such as (*open)(int) and *(*alloc)(size_t).
func isFunctionPointer(decl *sitter.Node) bool {
	fn := findDescendantByType(decl, "function_declarator")
	if fn == nil {
		return false
	}
	return findDescendantByType(fn.ChildByFieldName("declarator"), "pointer_declarator") != nil
}

// cFunctionName finds the identifier inside a (possibly pointer) function declarator.
func cFunctionName(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "identifier":
		return nodeText(node, source)
	case "function_declarator", "pointer_declarator":
		return cFunctionName(node.ChildByFieldName("declarator"), source)
	}
	return ""
}

// matchesLifecycle reports whether fn is <struct>_<verb> or <verb>_<struct>.
func matchesLifecycle(fn, structName string, verbs []string) bool {
	base := normalizeCName(structName)
	if base == "" {
		return false
	}
	lower := strings.ToLower(fn)
	for _, verb := range verbs {
		if strings.HasSuffix(lower, "_"+verb) && normalizeCName(strings.TrimSuffix(lower, "_"+verb)) == base {
			return true
		}
		if strings.HasPrefix(lower, verb+"_") && normalizeCName(strings.TrimPrefix(lower, verb+"_")) == base {
			return true
		}
	}
	return false
}

// normalizeCName folds "List_Node_t", "list_node" and "ListNode" to "listnode".
func normalizeCName(name string) string {
	name = strings.ToLower(name)
	name = strings.TrimSuffix(name, "_t")
	return strings.ReplaceAll(name, "_", "")
}

func isVtableName(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range cVtableSuffixes {
		if strings.HasSuffix(lower, "_"+suffix) {
			return true
		}
		// CamelCase form, e.g. FileOps.
		title := strings.ToUpper(suffix[:1]) + suffix[1:]
		if strings.HasSuffix(name, title) && len(name) > len(title) {
			return true
		}
	}
	return false
}
