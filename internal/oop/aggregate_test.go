package oop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Aggregate:
// - Inheritance and override counting across files (S4)
// - Degenerate bases do not count as inheritance
// - Empty input rates "none" with a zero score
// - Score stays within [0, 1] and maps to the rating thresholds
// - Inheritance depth follows chains and tolerates cycles
// - Narrative is deterministic
// - Syntax errors and per-language counts are reported

func class(name string, bases []string, methods ...string) ClassReport {
	return ClassReport{Name: name, Bases: bases, Methods: methods}
}

func TestAggregate_InheritanceAndOverride(t *testing.T) {
	t.Parallel()

	src := `class Base:
    def foo(self):
        pass

class Child(Base):
    def foo(self):
        pass

    def extra(self):
        pass
`
	report := newPythonAnalyzer().Analyze("shapes.py", []byte(src))
	m := Aggregate([]*FileReport{report}, 1)

	assert.Equal(t, 2, m.Classes.Count)
	assert.Equal(t, 1, m.Classes.WithInheritance)
	assert.Equal(t, 1, m.Classes.OverrideClasses)
	assert.Equal(t, 1, m.Classes.OverrideMethodCount)
	assert.Equal(t, 1, m.Classes.MaxInheritanceDepth)
	assert.InDelta(t, 1.5, m.Classes.AvgMethodsPerClass, 1e-9)
	assert.NotEqual(t, RatingNone, m.Rating)
	// 0.25*0.3 + 0.20*0.5 + 0.25*1.0
	assert.InDelta(t, 0.425, m.OOPScore, 1e-9)
	assert.Equal(t, RatingMedium, m.Rating)
}

func TestAggregate_OverridesAcrossFiles(t *testing.T) {
	t.Parallel()

	base := &FileReport{FilePath: "a.py", Language: "Python", SyntaxOK: true, Classes: []ClassReport{
		class("Base", nil, "run", "stop"),
	}}
	child := &FileReport{FilePath: "b.py", Language: "Python", SyntaxOK: true, Classes: []ClassReport{
		class("Child", []string{"Base"}, "run", "stop", "pause"),
	}}

	m := Aggregate([]*FileReport{base, child}, 2)

	assert.Equal(t, 1, m.Classes.OverrideClasses)
	assert.Equal(t, 2, m.Classes.OverrideMethodCount)
}

func TestAggregate_DegenerateBases(t *testing.T) {
	t.Parallel()

	report := &FileReport{FilePath: "a.py", Language: "Python", SyntaxOK: true, Classes: []ClassReport{
		class("A", []string{"object"}),
		class("B", []string{"<expr>"}),
		class("C", []string{"object", "Mixin"}),
	}}

	m := Aggregate([]*FileReport{report}, 1)

	assert.Equal(t, 1, m.Classes.WithInheritance)
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()

	m := Aggregate(nil, 0)

	assert.Equal(t, 0, m.Classes.Count)
	assert.Equal(t, 0.0, m.Classes.AvgMethodsPerClass)
	assert.Equal(t, 0.0, m.OOPScore)
	assert.Equal(t, RatingNone, m.Rating)
	assert.NotNil(t, m.SyntaxErrors)
	assert.Contains(t, m.Narrative.OOP, "No classes")
}

func TestAggregate_ScoreBoundsAndRating(t *testing.T) {
	t.Parallel()

	private := class("Rich", []string{"Base"}, "a", "b", "c", "d", "e", "f")
	private.PrivateAttrs = []string{"_x"}
	private.SpecialMethods = []string{"__eq__", "__repr__"}
	base := class("Base", nil, "a")
	base.PrivateAttrs = []string{"_y"}
	base.SpecialMethods = []string{"__eq__", "__hash__"}

	m := Aggregate([]*FileReport{{FilePath: "r.py", Language: "Python", SyntaxOK: true, Classes: []ClassReport{private, base}}}, 1)

	assert.GreaterOrEqual(t, m.OOPScore, 0.0)
	assert.LessOrEqual(t, m.OOPScore, 1.0)
	assert.Equal(t, RatingHigh, m.Rating)

	lone := Aggregate([]*FileReport{{FilePath: "l.py", Language: "Python", SyntaxOK: true, Classes: []ClassReport{class("Lone", nil)}}}, 1)
	assert.Equal(t, 0.0, lone.OOPScore)
	assert.Equal(t, RatingLow, lone.Rating)
}

func TestInheritanceDepth(t *testing.T) {
	t.Parallel()

	chain := []ClassReport{
		class("A", nil),
		class("B", []string{"A"}),
		class("C", []string{"B"}),
		class("D", []string{"C", "External"}),
	}
	assert.Equal(t, 3, inheritanceDepth(chain))

	cycle := []ClassReport{
		class("X", []string{"Y"}),
		class("Y", []string{"X"}),
	}
	assert.Equal(t, 1, inheritanceDepth(cycle))

	assert.Equal(t, 0, inheritanceDepth(nil))
}

func TestAggregate_SyntaxErrorsAndLanguages(t *testing.T) {
	t.Parallel()

	reports := []*FileReport{
		{FilePath: "z.py", Language: "Python", SyntaxOK: false},
		{FilePath: "a.py", Language: "Python", SyntaxOK: false},
		{FilePath: "Main.java", Language: "Java", SyntaxOK: true},
	}

	m := Aggregate(reports, 3)

	assert.Equal(t, 3, m.FilesAnalyzed)
	assert.Equal(t, []string{"a.py", "z.py"}, m.SyntaxErrors)
	assert.Equal(t, map[string]int{"Python": 2, "Java": 1}, m.Languages)
	assert.Contains(t, m.Narrative.Complexity, "2 files could not be parsed")
}

func TestAggregate_NarrativeDeterministic(t *testing.T) {
	t.Parallel()

	build := func() *ProjectMetrics {
		report := newPythonAnalyzer().Analyze("zoo.py", []byte(pythonZoo))
		return Aggregate([]*FileReport{report}, 1)
	}

	first, second := build(), build()
	require.Equal(t, first.Narrative, second.Narrative)
	assert.Contains(t, first.Narrative.DataStructures, "defaultdict")
	assert.Contains(t, first.Narrative.Complexity, "deepest loop nesting is 2")
}
