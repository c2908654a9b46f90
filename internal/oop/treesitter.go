package oop

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// treeSitterAnalyzer provides common tree-sitter parsing functionality.
type treeSitterAnalyzer struct {
	language *sitter.Language
	lang     string
}

func newTreeSitterAnalyzer(language *sitter.Language, lang string) *treeSitterAnalyzer {
	return &treeSitterAnalyzer{
		language: language,
		lang:     lang,
	}
}

// parse returns the syntax tree for source. The caller closes the tree.
func (a *treeSitterAnalyzer) parse(source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(a.language); err != nil {
		return nil, fmt.Errorf("failed to load %s grammar: %w", a.lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s source", a.lang)
	}
	return tree, nil
}

// nodeText extracts the text content of a tree-sitter node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// walkTree visits node and its descendants depth-first. Returning false from
// visitor skips the node's children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), visitor)
	}
}

// findChildByType finds the first direct child with the given kind.
func findChildByType(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

// findChildrenByType finds all direct children with the given kind.
func findChildrenByType(node *sitter.Node, kind string) []*sitter.Node {
	var results []*sitter.Node
	if node == nil {
		return results
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			results = append(results, child)
		}
	}
	return results
}

// findDescendantByType returns the first node of kind in a pre-order walk.
func findDescendantByType(node *sitter.Node, kind string) *sitter.Node {
	var found *sitter.Node
	walkTree(node, func(n *sitter.Node) bool {
		if found != nil {
			return false
		}
		if n.Kind() == kind {
			found = n
			return false
		}
		return true
	})
	return found
}

// kindSet builds a lookup set of node kinds.
func kindSet(kinds ...string) map[string]bool {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}

// maxLoopDepth returns the deepest nesting of loop nodes under node. Subtrees
// rooted at a boundary kind (nested functions and classes) are not entered;
// they are measured on their own.
func maxLoopDepth(node *sitter.Node, loops, boundaries map[string]bool) int {
	var visit func(n *sitter.Node, depth int) int
	visit = func(n *sitter.Node, depth int) int {
		best := depth
		for i := uint(0); i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child == nil || boundaries[child.Kind()] {
				continue
			}
			d := depth
			if loops[child.Kind()] {
				d++
			}
			if got := visit(child, d); got > best {
				best = got
			}
		}
		return best
	}
	if node == nil {
		return 0
	}
	return visit(node, 0)
}

// measureFunctions records loop depth for every node of a function kind.
func measureFunctions(root *sitter.Node, functions, loops, boundaries map[string]bool, c *Complexity) {
	walkTree(root, func(n *sitter.Node) bool {
		if functions[n.Kind()] {
			c.recordFunction(maxLoopDepth(n, loops, boundaries))
		}
		return true
	})
}

// lastSegment returns the final component of a dotted, scoped or namespaced name.
func lastSegment(name string) string {
	name = strings.TrimSpace(name)
	for _, sep := range []string{"::", "\\", ".", "/"} {
		if i := strings.LastIndex(name, sep); i >= 0 {
			name = name[i+len(sep):]
		}
	}
	return name
}

// isDunder reports whether name has the __x__ form.
func isDunder(name string) bool {
	return len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// trimQuotes strips matching quote characters around a string literal.
func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'' || first == '`' || first == '<') && (last == first || (first == '<' && last == '>')) {
			return s[1 : len(s)-1]
		}
	}
	return s
}
