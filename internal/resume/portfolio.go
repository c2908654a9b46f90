package resume

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mvp-joe/project-portfolio/internal/insight"
)

var (
	colorPrimary = lipgloss.Color("#64b5f6")
	colorAccent  = lipgloss.Color("#66bb6a")
	colorMuted   = lipgloss.Color("#888888")
)

var (
	styleTitle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleSection = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).MarginTop(1)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	stylePage    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 2)
)

// SetNoColor swaps every portfolio style for an unstyled one. Borders are
// kept so the page layout is unchanged.
func SetNoColor(disabled bool) {
	if !disabled {
		return
	}
	plain := lipgloss.NewStyle()
	styleTitle = plain
	styleSection = plain.MarginTop(1)
	styleMuted = plain
	stylePage = plain.Border(lipgloss.RoundedBorder()).Padding(0, 2)
}

// RenderPortfolio renders one insight as a bordered portfolio page: title,
// summary, highlights, skills, contributors and the OOP narrative.
func RenderPortfolio(in insight.Insight) string {
	var sections []string

	title := in.ProjectName
	if title == "" {
		title = "Untitled project"
	}
	sections = append(sections, styleTitle.Render(title))

	meta := []string{in.ProjectType, "detected via " + in.DetectionMode}
	if in.DurationEstimate != "" {
		meta = append(meta, "span "+in.DurationEstimate)
	}
	if !in.AnalyzedAt.IsZero() {
		meta = append(meta, "analyzed "+in.AnalyzedAt.UTC().Format("2006-01-02"))
	}
	sections = append(sections, styleMuted.Render(strings.Join(meta, " · ")))

	if in.Summary != "" {
		sections = append(sections, "", in.Summary)
	}

	if len(in.Highlights) > 0 {
		sections = append(sections, styleSection.Render("Highlights"))
		for _, h := range in.Highlights {
			sections = append(sections, "• "+h)
		}
	}

	if len(in.Skills) > 0 {
		sections = append(sections, styleSection.Render("Skills"), strings.Join(in.Skills, ", "))
	}

	if rows := contributorRows(in.Contributors); len(rows) > 0 {
		sections = append(sections, styleSection.Render("Contributors"))
		sections = append(sections, rows...)
	}

	if m := in.OOPMetrics; m != nil && m.FilesAnalyzed > 0 {
		sections = append(sections, styleSection.Render(fmt.Sprintf("Code Structure (OOP score %.2f, %s)", m.OOPScore, m.Rating)))
		for _, line := range []string{m.Narrative.OOP, m.Narrative.DataStructures, m.Narrative.Complexity} {
			if line != "" {
				sections = append(sections, line)
			}
		}
	}

	return stylePage.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// contributorRows lists named contributors by descending file count, then name.
func contributorRows(contributors map[string]insight.Contributor) []string {
	names := make([]string, 0, len(contributors))
	width := 0
	for name := range contributors {
		if !insight.IsNamed(name) {
			continue
		}
		names = append(names, name)
		if len(name) > width {
			width = len(name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := contributors[names[i]].FileCount, contributors[names[j]].FileCount
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})

	rows := make([]string, 0, len(names))
	for _, name := range names {
		c := contributors[name]
		rows = append(rows, fmt.Sprintf("%-*s  %4d %s  %s", width, name, c.FileCount,
			plural(c.FileCount, "file ", "files"), styleMuted.Render(c.Percentage)))
	}
	return rows
}
