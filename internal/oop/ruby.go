package oop

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

var (
	rubyFunctions  = kindSet("method", "singleton_method")
	rubyLoops      = kindSet("while", "until", "for", "while_modifier", "until_modifier")
	rubyBoundaries = kindSet("method", "singleton_method", "class", "module")
	rubySpecial    = map[string]bool{"to_s": true, "inspect": true, "==": true, "<=>": true,
		"eql?": true, "hash": true, "each": true, "to_str": true, "coerce": true}
	rubyIterators = map[string]bool{"each": true, "times": true, "each_with_index": true,
		"map": true, "each_pair": true, "upto": true, "downto": true, "step": true, "loop": true}
)

// rubyAnalyzer analyzes Ruby files.
type rubyAnalyzer struct {
	*treeSitterAnalyzer
}

func newRubyAnalyzer() *rubyAnalyzer {
	lang := sitter.NewLanguage(ruby.Language())
	return &rubyAnalyzer{
		treeSitterAnalyzer: newTreeSitterAnalyzer(lang, "ruby"),
	}
}

func (a *rubyAnalyzer) Analyze(filePath string, source []byte) *FileReport {
	report := newFileReport(filePath, "Ruby")

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
		case "class":
			report.Classes = append(report.Classes, a.extractClass(n, source, filePath))
		case "array":
			ds.ListCount++
		case "hash":
			ds.DictCount++
		case "call":
			method := nodeText(n.ChildByFieldName("method"), source)
			receiver := nodeText(n.ChildByFieldName("receiver"), source)
			switch {
			case method == "require" || method == "require_relative":
				if arg := findDescendantByType(n.ChildByFieldName("arguments"), "string_content"); arg != nil {
					report.Imports = appendUnique(report.Imports, nodeText(arg, source))
				}
			case method == "new" && receiver == "Set":
				ds.SetCount++
			case method == "new" && receiver == "Hash":
				ds.DictCount++
			case method == "sort" || method == "sort_by":
				ds.UsesSorted = true
			case method == "bsearch":
				ds.UsesBisect = true
			case method == "tally":
				ds.UsesCounter = true
			}
		}
		return true
	})

	measureRubyFunctions(root, source, &report.Complexity)
	return report
}

func (a *rubyAnalyzer) extractClass(node *sitter.Node, source []byte, filePath string) ClassReport {
	b := newClassBuilder(lastSegment(nodeText(node.ChildByFieldName("name"), source)), "", filePath)

	if super := node.ChildByFieldName("superclass"); super != nil && super.NamedChildCount() > 0 {
		b.addBase(lastSegment(nodeText(super.NamedChild(0), source)))
	}

	for _, member := range rubyClassMembers(node) {
		switch member.Kind() {
		case "method":
			name := nodeText(member.ChildByFieldName("name"), source)
			if name == "initialize" {
				b.report.HasConstructor = true
			} else {
				b.addMethod(name)
			}
			if rubySpecial[name] {
				b.addSpecial(name)
			}
			a.collectInstanceVariables(member, source, b)
		case "singleton_method":
			b.addMethod(nodeText(member.ChildByFieldName("name"), source))
		case "call":
			a.collectAttrMacros(member, source, b)
		}
	}

	return b.build()
}

// rubyClassMembers returns direct members whether or not the grammar wraps
// them in a body_statement.
func rubyClassMembers(class *sitter.Node) []*sitter.Node {
	var members []*sitter.Node
	for i := uint(0); i < class.NamedChildCount(); i++ {
		child := class.NamedChild(i)
		if child.Kind() == "body_statement" {
			for j := uint(0); j < child.NamedChildCount(); j++ {
				members = append(members, child.NamedChild(j))
			}
			continue
		}
		members = append(members, child)
	}
	return members
}

// collectInstanceVariables records @ivar assignments; instance variables are
// private to the object.
func (a *rubyAnalyzer) collectInstanceVariables(method *sitter.Node, source []byte, b *classBuilder) {
	walkTree(method, func(n *sitter.Node) bool {
		if n.Kind() == "class" {
			return false
		}
		if n.Kind() == "assignment" || n.Kind() == "operator_assignment" {
			left := n.ChildByFieldName("left")
			if left != nil && left.Kind() == "instance_variable" {
				b.addAttr(strings.TrimPrefix(nodeText(left, source), "@"), true)
			}
		}
		return true
	})
}

// collectAttrMacros records attr_accessor/attr_reader/attr_writer names as public.
func (a *rubyAnalyzer) collectAttrMacros(call *sitter.Node, source []byte, b *classBuilder) {
	switch nodeText(call.ChildByFieldName("method"), source) {
	case "attr_accessor", "attr_reader", "attr_writer":
	default:
		return
	}
	args := call.ChildByFieldName("arguments")
	for i := uint(0); args != nil && i < args.NamedChildCount(); i++ {
		arg := args.NamedChild(i)
		if arg.Kind() == "simple_symbol" {
			name := strings.TrimPrefix(nodeText(arg, source), ":")
			b.addAttr(name, false)
		}
	}
}

// measureRubyFunctions counts while/until/for and iterator blocks as loops.
func measureRubyFunctions(root *sitter.Node, source []byte, c *Complexity) {
	var depth func(n *sitter.Node, d int) int
	depth = func(n *sitter.Node, d int) int {
		best := d
		for i := uint(0); i < n.ChildCount(); i++ {
			child := n.Child(i)
			if child == nil || rubyBoundaries[child.Kind()] {
				continue
			}
			next := d
			if rubyLoops[child.Kind()] || isRubyIteratorBlock(child, source) {
				next++
			}
			if got := depth(child, next); got > best {
				best = got
			}
		}
		return best
	}
	walkTree(root, func(n *sitter.Node) bool {
		if rubyFunctions[n.Kind()] {
			c.recordFunction(depth(n, 0))
		}
		return true
	})
}

// isRubyIteratorBlock matches the block attached to calls like xs.each { }.
func isRubyIteratorBlock(n *sitter.Node, source []byte) bool {
	if n.Kind() != "block" && n.Kind() != "do_block" {
		return false
	}
	parent := n.Parent()
	if parent == nil || parent.Kind() != "call" {
		return false
	}
	return rubyIterators[nodeText(parent.ChildByFieldName("method"), source)]
}
