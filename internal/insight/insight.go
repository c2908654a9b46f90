// Package insight defines the ProjectInsight record and the append-only log
// that stores one record per analysis.
package insight

import (
	"fmt"
	"strings"
	"time"

	"github.com/mvp-joe/project-portfolio/internal/oop"
)

// Unavailable prefixes duration estimates that could not be computed.
const Unavailable = "unavailable"

// Contributor summarizes one contributor bucket of an insight.
type Contributor struct {
	FileCount         int      `json:"file_count"`
	Percentage        string   `json:"percentage"`
	FilesOwned        []string `json:"files_owned"`
	FilesFromMetadata []string `json:"files_from_metadata"`
	FilesFromText     []string `json:"files_from_text"`
}

// Stats holds contribution totals over named contributors.
type Stats struct {
	TotalFileContributions int `json:"total_file_contributions"`
	ContributorsCount      int `json:"contributors_count"`
}

// Insight is the normalized result of analyzing one project. Insights are
// never mutated once appended to the log.
type Insight struct {
	ID               string                 `json:"id"`
	ProjectName      string                 `json:"project_name"`
	ProjectRoot      string                 `json:"project_root"`
	AnalyzedAt       time.Time              `json:"analyzed_at"`
	ProjectType      string                 `json:"project_type"`
	DetectionMode    string                 `json:"detection_mode"`
	Languages        []string               `json:"languages"`
	Frameworks       []string               `json:"frameworks"`
	Skills           []string               `json:"skills"`
	FrameworkSources map[string][]string    `json:"framework_sources"`
	Summary          string                 `json:"summary"`
	Highlights       []string               `json:"highlights"`
	Contributors     map[string]Contributor `json:"contributors"`
	Stats            Stats                  `json:"stats"`
	DurationEstimate string                 `json:"duration_estimate"`
	OOPMetrics       *oop.ProjectMetrics    `json:"oop_metrics"`
}

// normalize replaces nil collections with empty ones so the log always
// carries arrays and objects, and forces analyzed_at to UTC.
func (in *Insight) normalize() {
	in.AnalyzedAt = in.AnalyzedAt.UTC()
	if in.Languages == nil {
		in.Languages = []string{}
	}
	if in.Frameworks == nil {
		in.Frameworks = []string{}
	}
	if in.Skills == nil {
		in.Skills = []string{}
	}
	if in.Highlights == nil {
		in.Highlights = []string{}
	}
	if in.FrameworkSources == nil {
		in.FrameworkSources = map[string][]string{}
	}
	if in.Contributors == nil {
		in.Contributors = map[string]Contributor{}
	}
}

// IsNamed reports whether a contributor key names a person rather than a
// sentinel bucket such as "<unattributed>".
func IsNamed(name string) bool {
	return name != "" && !strings.HasPrefix(name, "<")
}

// FormatPercentage renders count/total as "NN.NN%"; a zero total yields "0.00%".
func FormatPercentage(count, total int) string {
	if total <= 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(count)/float64(total)*100)
}

// Filter narrows List and Rank results. Zero fields match everything.
type Filter struct {
	Language string
	Skill    string
	Since    time.Time
}

// Matches reports whether in passes every set field of f. Language and
// skill comparisons ignore case.
func (f Filter) Matches(in Insight) bool {
	if f.Language != "" && !containsFold(in.Languages, f.Language) {
		return false
	}
	if f.Skill != "" && !containsFold(in.Skills, f.Skill) {
		return false
	}
	if !f.Since.IsZero() && in.AnalyzedAt.Before(f.Since) {
		return false
	}
	return true
}

func containsFold(list []string, want string) bool {
	for _, v := range list {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
