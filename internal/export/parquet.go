// Package export writes the insight log to columnar files using
// github.com/parquet-go/parquet-go.
package export

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/mvp-joe/project-portfolio/internal/insight"
)

// InsightRow is one insight flattened for analytics. List fields are joined
// with ", " and the OOP metrics are reduced to score and rating.
type InsightRow struct {
	ID                     string    `parquet:"id,snappy"`
	ProjectName            string    `parquet:"project_name,snappy"`
	ProjectRoot            string    `parquet:"project_root,snappy"`
	AnalyzedAt             time.Time `parquet:"analyzed_at,snappy"`
	ProjectType            string    `parquet:"project_type,snappy"`
	DetectionMode          string    `parquet:"detection_mode,snappy"`
	Languages              string    `parquet:"languages,snappy"`
	Frameworks             string    `parquet:"frameworks,snappy"`
	Skills                 string    `parquet:"skills,snappy"`
	Summary                string    `parquet:"summary,snappy"`
	Contributors           string    `parquet:"contributors,snappy"`
	TotalFileContributions int32     `parquet:"total_file_contributions,snappy"`
	ContributorsCount      int32     `parquet:"contributors_count,snappy"`
	DurationEstimate       string    `parquet:"duration_estimate,snappy"`
	OOPScore               *float64  `parquet:"oop_score,optional,snappy"`
	OOPRating              *string   `parquet:"oop_rating,optional,snappy"`
	ClassCount             *int32    `parquet:"class_count,optional,snappy"`
}

// Rows flattens insights in the given order.
func Rows(records []insight.Insight) []InsightRow {
	rows := make([]InsightRow, 0, len(records))
	for _, r := range records {
		row := InsightRow{
			ID:                     r.ID,
			ProjectName:            r.ProjectName,
			ProjectRoot:            r.ProjectRoot,
			AnalyzedAt:             r.AnalyzedAt.UTC(),
			ProjectType:            r.ProjectType,
			DetectionMode:          r.DetectionMode,
			Languages:              strings.Join(r.Languages, ", "),
			Frameworks:             strings.Join(r.Frameworks, ", "),
			Skills:                 strings.Join(r.Skills, ", "),
			Summary:                r.Summary,
			Contributors:           contributorList(r.Contributors),
			TotalFileContributions: int32(r.Stats.TotalFileContributions),
			ContributorsCount:      int32(r.Stats.ContributorsCount),
			DurationEstimate:       r.DurationEstimate,
		}
		if m := r.OOPMetrics; m != nil {
			score, rating, classes := m.OOPScore, m.Rating, int32(m.Classes.Count)
			row.OOPScore = &score
			row.OOPRating = &rating
			row.ClassCount = &classes
		}
		rows = append(rows, row)
	}
	return rows
}

// contributorList renders "name (count)" pairs sorted by name, sentinels excluded.
func contributorList(contributors map[string]insight.Contributor) string {
	names := make([]string, 0, len(contributors))
	for name := range contributors {
		if insight.IsNamed(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s (%d)", name, contributors[name].FileCount)
	}
	return strings.Join(parts, ", ")
}

// WriteParquet writes records to a Parquet file at outputPath.
func WriteParquet(outputPath string, records []insight.Insight) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[InsightRow](file)
	if _, err := writer.Write(Rows(records)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
