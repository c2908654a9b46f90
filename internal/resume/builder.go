// Package resume turns analysis results into résumé text: a one-sentence
// summary, a list of highlights, and a rendered portfolio page.
package resume

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/project-portfolio/internal/oop"
	"github.com/mvp-joe/project-portfolio/internal/skills"
	"github.com/mvp-joe/project-portfolio/internal/stack"
)

// Input is everything the builder needs about one analyzed project.
type Input struct {
	ProjectName  string
	ProjectType  string // individual, collaborative or unknown
	Languages    []string
	Frameworks   []string
	Skills       []string
	Contributors int
	Duration     string
	OOP          *oop.ProjectMetrics
}

// Item is a résumé entry for one project.
type Item struct {
	Summary    string   `json:"summary"`
	Highlights []string `json:"highlights"`
}

// Build composes the summary and highlights. The summary always starts with
// "Built" and the first highlight with "Implemented core functionality".
func Build(in Input) Item {
	return Item{
		Summary:    summary(in),
		Highlights: highlights(in),
	}
}

func summary(in Input) string {
	name := in.ProjectName
	if name == "" {
		name = "a software project"
	}

	var b strings.Builder
	b.WriteString("Built ")
	b.WriteString(name)

	switch in.ProjectType {
	case "individual":
		b.WriteString(", an individual project")
	case "collaborative":
		b.WriteString(", a collaborative project")
	}

	if len(in.Languages) > 0 {
		b.WriteString(" using ")
		b.WriteString(joinList(in.Languages))
	}
	if len(in.Frameworks) > 0 {
		b.WriteString(" with ")
		b.WriteString(joinList(in.Frameworks))
	}
	b.WriteString(".")
	return b.String()
}

func highlights(in Input) []string {
	core := "Implemented core functionality"
	if len(in.Languages) > 0 {
		core += " in " + joinList(in.Languages)
	}
	if len(in.Frameworks) > 0 {
		core += " on top of " + joinList(in.Frameworks)
	}
	out := []string{core + "."}

	if extra := skills.NonIdentity(in.Skills, stack.Result{Languages: in.Languages, Frameworks: in.Frameworks}); len(extra) > 0 {
		out = append(out, "Applied "+joinList(extra)+" skills across the codebase.")
	}

	switch in.ProjectType {
	case "collaborative":
		if in.Contributors > 1 {
			out = append(out, fmt.Sprintf("Collaborated with %d other contributors on a shared codebase.", in.Contributors-1))
		} else {
			out = append(out, "Collaborated with other contributors on a shared codebase.")
		}
	case "individual":
		out = append(out, "Designed and delivered the project independently.")
	}

	if m := in.OOP; m != nil && m.Classes.Count > 0 {
		out = append(out, fmt.Sprintf("Structured the code into %d %s with %s object-oriented design quality.",
			m.Classes.Count, plural(m.Classes.Count, "class", "classes"), m.Rating))
	}

	if in.Duration != "" && !strings.HasPrefix(in.Duration, "unavailable") {
		out = append(out, "Active development span: "+in.Duration+".")
	}
	return out
}

// joinList renders "A", "A and B" or "A, B and C".
func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
