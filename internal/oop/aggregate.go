package oop

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"
)

// Rating labels for ProjectMetrics.Rating.
const (
	RatingNone   = "none"
	RatingLow    = "low"
	RatingMedium = "medium"
	RatingHigh   = "high"
)

// ClassMetrics summarizes class-level design signals.
type ClassMetrics struct {
	Count               int     `json:"count"`
	AvgMethodsPerClass  float64 `json:"avg_methods_per_class"`
	WithInheritance     int     `json:"with_inheritance"`
	WithInit            int     `json:"with_init"`
	WithPrivateAttrs    int     `json:"with_private_attrs"`
	OverrideClasses     int     `json:"override_classes"`
	OverrideMethodCount int     `json:"override_method_count"`
	DunderRich          int     `json:"dunder_rich"`
	MaxInheritanceDepth int     `json:"max_inheritance_depth"`
}

// Narrative holds the three prose blocks derived from the metrics.
type Narrative struct {
	OOP            string `json:"oop"`
	DataStructures string `json:"data_structures"`
	Complexity     string `json:"complexity"`
}

// ProjectMetrics is the project-level aggregation of FileReports.
type ProjectMetrics struct {
	FilesAnalyzed  int            `json:"files_analyzed"`
	Classes        ClassMetrics   `json:"classes"`
	DataStructures DataStructures `json:"data_structures"`
	Complexity     Complexity     `json:"complexity"`
	OOPScore       float64        `json:"oop_score"`
	Rating         string         `json:"rating"`
	Narrative      Narrative      `json:"narrative"`
	SyntaxErrors   []string       `json:"syntax_errors"`
	Languages      map[string]int `json:"languages"`
}

// Score weights.
const (
	weightRichness      = 0.25
	weightInheritance   = 0.20
	weightEncapsulation = 0.25
	weightPolymorphism  = 0.25
	weightDunder        = 0.05
)

// Aggregate merges per-file reports into project metrics. filesAnalyzed is
// the number of files handed to the analyzer.
func Aggregate(reports []*FileReport, filesAnalyzed int) *ProjectMetrics {
	m := &ProjectMetrics{
		FilesAnalyzed: filesAnalyzed,
		SyntaxErrors:  []string{},
		Languages:     make(map[string]int),
	}

	var classes []ClassReport
	for _, r := range reports {
		m.Languages[r.Language]++
		if !r.SyntaxOK {
			m.SyntaxErrors = append(m.SyntaxErrors, r.FilePath)
		}
		m.DataStructures.Add(r.DataStructures)
		m.Complexity.Add(r.Complexity)
		classes = append(classes, r.Classes...)
	}
	sort.Strings(m.SyntaxErrors)

	methodsByClass := make(map[string]map[string]bool)
	for _, c := range classes {
		set, ok := methodsByClass[c.Name]
		if !ok {
			set = make(map[string]bool)
			methodsByClass[c.Name] = set
		}
		for _, method := range c.Methods {
			set[method] = true
		}
	}

	cm := &m.Classes
	cm.Count = len(classes)
	totalMethods := 0
	for _, c := range classes {
		totalMethods += len(c.Methods)
		if hasRealBases(c.Bases) {
			cm.WithInheritance++
		}
		if c.HasConstructor {
			cm.WithInit++
		}
		if len(c.PrivateAttrs) > 0 {
			cm.WithPrivateAttrs++
		}
		if len(c.SpecialMethods) >= 2 {
			cm.DunderRich++
		}

		if overrides := countOverrides(c, methodsByClass); overrides > 0 {
			cm.OverrideClasses++
			cm.OverrideMethodCount += overrides
		}
	}
	if cm.Count > 0 {
		cm.AvgMethodsPerClass = float64(totalMethods) / float64(cm.Count)
	}
	cm.MaxInheritanceDepth = inheritanceDepth(classes)

	m.OOPScore = score(cm)
	m.Rating = rating(cm.Count, m.OOPScore)
	m.Narrative = narrate(m)
	return m
}

// hasRealBases is false for no bases and for the degenerate object / <expr> sets.
func hasRealBases(bases []string) bool {
	for _, b := range bases {
		if !isDegenerateBase(b) {
			return true
		}
	}
	return false
}

func isDegenerateBase(name string) bool {
	return name == "object" || name == "<expr>"
}

// countOverrides returns |methods ∩ union of the listed bases' methods|.
func countOverrides(c ClassReport, methodsByClass map[string]map[string]bool) int {
	inherited := make(map[string]bool)
	for _, base := range c.Bases {
		if base == c.Name {
			continue
		}
		for method := range methodsByClass[base] {
			inherited[method] = true
		}
	}

	count := 0
	seen := make(map[string]bool)
	for _, method := range c.Methods {
		if inherited[method] && !seen[method] {
			seen[method] = true
			count++
		}
	}
	return count
}

// inheritanceDepth returns the longest class→base chain. Bases that are not
// classes in the project are leaves; edges that would close a cycle are dropped.
func inheritanceDepth(classes []ClassReport) int {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	addVertex := func(name string) {
		// Duplicate class names share one vertex.
		_ = g.AddVertex(name)
	}
	for _, c := range classes {
		addVertex(c.Name)
	}
	for _, c := range classes {
		for _, base := range c.Bases {
			if isDegenerateBase(base) || base == c.Name {
				continue
			}
			addVertex(base)
			// Duplicate and cycle-closing edges are ignored.
			_ = g.AddEdge(c.Name, base)
		}
	}

	adjacency, err := g.AdjacencyMap()
	if err != nil {
		return 0
	}

	memo := make(map[string]int, len(adjacency))
	var depth func(string) int
	depth = func(v string) int {
		if d, ok := memo[v]; ok {
			return d
		}
		best := 0
		for base := range adjacency[v] {
			if d := depth(base) + 1; d > best {
				best = d
			}
		}
		memo[v] = best
		return best
	}

	deepest := 0
	for v := range adjacency {
		if d := depth(v); d > deepest {
			deepest = d
		}
	}
	return deepest
}

func score(cm *ClassMetrics) float64 {
	if cm.Count == 0 {
		return 0
	}
	n := float64(cm.Count)

	richness := cm.AvgMethodsPerClass / 5.0
	if richness > 1 {
		richness = 1
	}
	inheritance := float64(cm.WithInheritance) / n
	encapsulation := float64(cm.WithPrivateAttrs) / n
	polymorphism := 0.0
	if cm.WithInheritance > 0 {
		polymorphism = float64(cm.OverrideClasses) / float64(cm.WithInheritance)
	}
	dunder := float64(cm.DunderRich) / n

	s := weightRichness*richness + weightInheritance*inheritance + weightEncapsulation*encapsulation +
		weightPolymorphism*polymorphism + weightDunder*dunder
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

func rating(classCount int, score float64) string {
	switch {
	case classCount == 0:
		return RatingNone
	case score < 0.3:
		return RatingLow
	case score < 0.6:
		return RatingMedium
	default:
		return RatingHigh
	}
}

func narrate(m *ProjectMetrics) Narrative {
	cm := m.Classes
	var n Narrative

	if cm.Count == 0 {
		n.OOP = "No classes were detected; the code is primarily procedural."
	} else {
		n.OOP = fmt.Sprintf(
			"Defines %d %s averaging %.1f methods each. %d %s inheritance (max depth %d) and %d override inherited methods (%d overridden in total). %d encapsulate private state, %d define constructors and %d implement two or more special methods. OOP score %.2f (%s).",
			cm.Count, plural(cm.Count, "class", "classes"), cm.AvgMethodsPerClass,
			cm.WithInheritance, plural(cm.WithInheritance, "uses", "use"), cm.MaxInheritanceDepth,
			cm.OverrideClasses, cm.OverrideMethodCount,
			cm.WithPrivateAttrs, cm.WithInit, cm.DunderRich,
			m.OOPScore, m.Rating,
		)
	}

	ds := m.DataStructures
	comps := ds.ListComp + ds.DictComp + ds.SetComp
	n.DataStructures = fmt.Sprintf(
		"Uses %d list, %d dict, %d set and %d tuple literals with %d comprehensions.",
		ds.ListCount, ds.DictCount, ds.SetCount, ds.TupleCount, comps,
	)
	var helpers []string
	for _, h := range []struct {
		used bool
		name string
	}{
		{ds.UsesDefaultdict, "defaultdict"},
		{ds.UsesCounter, "Counter"},
		{ds.UsesHeapq, "heaps"},
		{ds.UsesBisect, "binary search"},
		{ds.UsesSorted, "sorting"},
	} {
		if h.used {
			helpers = append(helpers, h.name)
		}
	}
	if len(helpers) > 0 {
		n.DataStructures += " Algorithmic helpers: " + strings.Join(helpers, ", ") + "."
	} else {
		n.DataStructures += " No algorithmic helpers detected."
	}

	c := m.Complexity
	n.Complexity = fmt.Sprintf(
		"Analyzed %d %s; %d contain nested loops and the deepest loop nesting is %d.",
		c.TotalFunctions, plural(c.TotalFunctions, "function", "functions"),
		c.FunctionsWithNestedLoops, c.MaxLoopDepth,
	)
	if len(m.SyntaxErrors) > 0 {
		n.Complexity += fmt.Sprintf(" %d %s could not be parsed.", len(m.SyntaxErrors), plural(len(m.SyntaxErrors), "file", "files"))
	}
	return n
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
