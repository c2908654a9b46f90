package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"

	"github.com/mvp-joe/project-portfolio/internal/archive"
	"github.com/mvp-joe/project-portfolio/internal/insight"
)

const (
	defaultTableWidth = 120
	shortIDLength     = 8
)

var (
	strongScore   = color.New(color.FgGreen, color.Bold)
	moderateScore = color.New(color.FgYellow)
	weakScore     = color.New(color.FgHiBlack)
)

// tableWidth is the terminal width, or a fixed default when stdout is not a terminal.
func tableWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return defaultTableWidth
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

// truncate shortens s to at most width runes, marking the cut with "...".
func truncate(s string, width int) string {
	runes := []rune(s)
	if width <= 3 || len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// colorScore colors a score by its share of the best score in the result.
func colorScore(score, best float64) string {
	text := strconv.FormatFloat(score, 'f', 2, 64)
	switch {
	case best <= 0:
		return text
	case score >= 0.75*best:
		return strongScore.Sprint(text)
	case score >= 0.4*best:
		return moderateScore.Sprint(text)
	default:
		return weakScore.Sprint(text)
	}
}

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func writeInsightTable(w io.Writer, records []insight.Insight) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No insights recorded.")
		return err
	}
	listWidth := max(tableWidth()/5, 12)
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			shortID(r.ID),
			r.ProjectName,
			formatDate(r.AnalyzedAt),
			r.ProjectType,
			truncate(strings.Join(r.Languages, ", "), listWidth),
			truncate(strings.Join(r.Skills, ", "), listWidth),
		})
	}
	return renderTable(w, []string{"ID", "Project", "Analyzed", "Type", "Languages", "Skills"}, rows)
}

func writeRankTable(w io.Writer, ranked []insight.Ranked) error {
	if len(ranked) == 0 {
		_, err := fmt.Fprintln(w, "No projects to rank.")
		return err
	}
	best := ranked[0].Score
	rows := make([][]string, 0, len(ranked))
	for i, r := range ranked {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			r.Insight.ProjectName,
			colorScore(r.Score, best),
			r.Insight.ProjectType,
			strings.Join(r.Insight.Languages, ", "),
			formatDate(r.Insight.AnalyzedAt),
		})
	}
	return renderTable(w, []string{"Rank", "Project", "Score", "Type", "Languages", "Analyzed"}, rows)
}

func writeSearchTable(w io.Writer, hits []insight.SearchHit) error {
	if len(hits) == 0 {
		_, err := fmt.Fprintln(w, "No matching projects.")
		return err
	}
	summaryWidth := max(tableWidth()/2, 30)
	rows := make([][]string, 0, len(hits))
	for i, h := range hits {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			h.Insight.ProjectName,
			strconv.FormatFloat(h.Score, 'f', 3, 64),
			truncate(h.Insight.Summary, summaryWidth),
		})
	}
	return renderTable(w, []string{"Rank", "Project", "Relevance", "Summary"}, rows)
}

func writeArchiveTable(w io.Writer, entries []archive.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No archived analyses.")
		return err
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.ID,
			e.ProjectName,
			e.AnalyzedAt.UTC().Format(time.RFC3339),
			e.ProjectRoot,
		})
	}
	return renderTable(w, []string{"ID", "Project", "Analyzed", "Root"}, rows)
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
