// Package analyzer runs the full static analysis of one project root and
// produces the insight record and the detailed analysis output.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mvp-joe/project-portfolio/internal/contrib"
	"github.com/mvp-joe/project-portfolio/internal/git"
	"github.com/mvp-joe/project-portfolio/internal/insight"
	"github.com/mvp-joe/project-portfolio/internal/oop"
	"github.com/mvp-joe/project-portfolio/internal/resume"
	"github.com/mvp-joe/project-portfolio/internal/scanner"
	"github.com/mvp-joe/project-portfolio/internal/skills"
	"github.com/mvp-joe/project-portfolio/internal/stack"
)

// DurationUnavailable is recorded when no file carries usable timestamps.
const DurationUnavailable = insight.Unavailable + " (EmptyProject)"

// Config controls one analysis run.
type Config struct {
	// IgnorePatterns are extra globs applied on top of the fixed ignore list.
	IgnorePatterns []string
	// OOPLanguages limits the OOP analyzer; empty means every supported language.
	OOPLanguages []string
	// Quiet suppresses phase messages.
	Quiet bool
	// Verbose logs every analyzed file.
	Verbose bool
}

// ContributionSummary is the full attribution, sentinel bucket included.
type ContributionSummary struct {
	Mode         string            `json:"mode"`
	TotalFiles   int               `json:"total_files"`
	TrackedFiles int               `json:"tracked_files,omitempty"`
	Buckets      []*contrib.Bucket `json:"buckets"`
}

// Output is the analysis output format: the insight plus the scanned
// hierarchy and the complete contribution summary.
type Output struct {
	insight.Insight
	Hierarchy           *scanner.FileNode   `json:"hierarchy"`
	ContributionSummary ContributionSummary `json:"contribution_summary"`
}

// Analyzer runs analyses. It holds no per-run state and may be reused.
type Analyzer struct {
	cfg      Config
	git      git.Operations
	progress oop.ProgressReporter
	now      func() time.Time
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithGit replaces the git implementation (tests use git.MockOperations).
func WithGit(ops git.Operations) Option {
	return func(a *Analyzer) { a.git = ops }
}

// WithProgress reports per-file OOP analysis progress.
func WithProgress(p oop.ProgressReporter) Option {
	return func(a *Analyzer) { a.progress = p }
}

// WithClock sets the clock used for analyzed_at.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) { a.now = now }
}

// New creates an Analyzer backed by the system git binary.
func New(cfg Config, opts ...Option) *Analyzer {
	a := &Analyzer{
		cfg:      cfg,
		git:      git.NewOperations(),
		progress: &oop.NoOpProgressReporter{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze scans root and composes every sub-analysis into an Output.
// It fails only when root is not a directory (scanner.ErrInputNotFound) or
// the configuration is invalid; git problems fall back to filesystem
// metadata and per-file problems are logged and skipped.
func (a *Analyzer) Analyze(ctx context.Context, root string) (*Output, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", scanner.ErrInputNotFound, root, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", scanner.ErrInputNotFound, abs)
	}

	sc, err := scanner.New(a.cfg.IgnorePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid ignore pattern: %w", err)
	}

	a.logf("Scanning %s...", abs)
	snap := sc.Scan(abs)
	a.logf("Found %d files", len(snap.Files))

	detected := stack.Detect(snap.Files)
	skillList := skills.Infer(detected, snap.Files)

	metrics, err := a.analyzeOOP(snap.Files)
	if err != nil {
		return nil, err
	}

	a.logf("Detecting project type...")
	det := contrib.NewDetector(a.git).Detect(ctx, abs, snap.Files)
	attr := a.attribute(ctx, abs, det, snap.Files, sc.IsIgnored)

	duration := DurationUnavailable
	if d, err := scanner.EstimateDuration(snap.Root); err == nil {
		duration = scanner.FormatDuration(d)
	} else if !errors.Is(err, scanner.ErrEmptyProject) {
		return nil, err
	}

	contributors, stats := summarizeContributors(attr)

	item := resume.Build(resume.Input{
		ProjectName:  filepath.Base(abs),
		ProjectType:  string(det.Type),
		Languages:    detected.Languages,
		Frameworks:   detected.Frameworks,
		Skills:       skillList,
		Contributors: stats.ContributorsCount,
		Duration:     duration,
		OOP:          metrics,
	})

	out := &Output{
		Insight: insight.Insight{
			ID:               uuid.NewString(),
			ProjectName:      filepath.Base(abs),
			ProjectRoot:      abs,
			AnalyzedAt:       a.now().UTC(),
			ProjectType:      string(det.Type),
			DetectionMode:    string(det.Mode),
			Languages:        nonNil(detected.Languages),
			Frameworks:       nonNil(detected.Frameworks),
			Skills:           nonNil(skillList),
			FrameworkSources: detected.FrameworkSources,
			Summary:          item.Summary,
			Highlights:       item.Highlights,
			Contributors:     contributors,
			Stats:            stats,
			DurationEstimate: duration,
			OOPMetrics:       metrics,
		},
		Hierarchy:           snap.Root,
		ContributionSummary: contributionSummary(attr),
	}
	if out.FrameworkSources == nil {
		out.FrameworkSources = map[string][]string{}
	}

	a.logf("✓ Analyzed %s: %s project, %d languages, %d skills",
		out.ProjectName, out.ProjectType, len(out.Languages), len(out.Skills))
	return out, nil
}

func (a *Analyzer) analyzeOOP(files []scanner.FileEntry) (*oop.ProjectMetrics, error) {
	oa, err := oop.NewAnalyzer(a.cfg.OOPLanguages, oop.WithProgress(a.progress), oop.WithVerbose(a.cfg.Verbose))
	if err != nil {
		return nil, err
	}
	defer oa.Close()

	a.logf("Analyzing code structure...")
	reports := oa.AnalyzeFiles(files)
	return oop.Aggregate(reports, len(reports)), nil
}

// attribute assigns files to contributors. Collaborative projects are
// attributed from git when detection used git, else from file metadata.
// Individual projects put every file in the single detected identity.
// Unknown projects have no attribution.
func (a *Analyzer) attribute(ctx context.Context, root string, det contrib.Detection, files []scanner.FileEntry, isIgnored func(string) bool) *contrib.Attribution {
	switch det.Type {
	case contrib.Collaborative:
		attributor := contrib.NewAttributor(a.git, isIgnored)
		if det.Mode == contrib.ModeGit {
			attr, err := attributor.AttributeGit(ctx, root, files, det.TextNames)
			if err == nil {
				return attr
			}
			log.Printf("Warning: git attribution failed, using filesystem metadata: %v", err)
		}
		return attributor.AttributeLocal(files, det.TextNames)

	case contrib.Individual:
		paths := make([]string, len(files))
		for i, f := range files {
			paths[i] = f.RelPath
		}
		return contrib.SingleBucket(det.Mode, soleIdentity(det), paths)
	}
	return nil
}

// soleIdentity names the one person behind an individual project.
func soleIdentity(det contrib.Detection) string {
	switch {
	case det.Mode == contrib.ModeGit && len(det.Authors) > 0:
		return det.Authors[0]
	case len(det.Owners) > 0:
		return det.Owners[0]
	case len(det.TextNames) > 0:
		return det.TextNames[0]
	}
	return contrib.UnknownName
}

// summarizeContributors converts buckets to insight contributors. The
// sentinel and named contributors without files are left out when empty.
// Percentages are relative to the tracked files in git mode and to every
// attributed file otherwise.
func summarizeContributors(attr *contrib.Attribution) (map[string]insight.Contributor, insight.Stats) {
	out := make(map[string]insight.Contributor)
	var stats insight.Stats
	if attr == nil {
		return out, stats
	}

	total := attr.PercentBase()
	for _, name := range attr.Names() {
		b := attr.Buckets[name]
		if b.FileCount() == 0 {
			continue
		}
		out[name] = insight.Contributor{
			FileCount:         b.FileCount(),
			Percentage:        insight.FormatPercentage(b.FileCount(), total),
			FilesOwned:        b.FilesOwned,
			FilesFromMetadata: b.FilesFromMetadata,
			FilesFromText:     b.FilesFromText,
		}
		if insight.IsNamed(name) {
			stats.TotalFileContributions += b.FileCount()
			stats.ContributorsCount++
		}
	}
	return out, stats
}

func contributionSummary(attr *contrib.Attribution) ContributionSummary {
	if attr == nil {
		return ContributionSummary{Buckets: []*contrib.Bucket{}}
	}
	summary := ContributionSummary{Mode: string(attr.Mode), TotalFiles: attr.TotalFiles(), TrackedFiles: attr.Tracked}
	for _, name := range attr.Names() {
		summary.Buckets = append(summary.Buckets, attr.Buckets[name])
	}
	return summary
}

func (a *Analyzer) logf(format string, args ...interface{}) {
	if !a.cfg.Quiet {
		log.Printf(format, args...)
	}
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
