package insight

import (
	"math"
	"sort"
	"time"

	"github.com/mvp-joe/project-portfolio/internal/contrib"
)

const (
	skillWeight   = 0.5
	recencyMax    = 10.0
	recencyWindow = 365.0
	hoursPerDay   = 24.0
)

// Ranked is an insight with its composite score.
type Ranked struct {
	Insight Insight `json:"insight"`
	Score   float64 `json:"score"`
}

// Score computes the composite ranking score of in at now:
//
//	base     = file count of contributor, or of all named contributors
//	skills   = 0.5 per skill
//	recency  = 10 * (1 - min(age_days, 365)/365), never negative
func Score(in Insight, contributor string, now time.Time) float64 {
	base := 0
	if contributor != "" {
		base = fileCountFor(in, contributor)
	} else {
		for name, c := range in.Contributors {
			if IsNamed(name) {
				base += c.FileCount
			}
		}
	}

	skillBonus := float64(len(in.Skills)) * skillWeight

	ageDays := math.Max(0, now.Sub(in.AnalyzedAt).Hours()/hoursPerDay)
	recency := math.Max(0, recencyMax*(1-math.Min(ageDays, recencyWindow)/recencyWindow))

	return float64(base) + recency + skillBonus
}

// fileCountFor returns the file count of the bucket named contributor,
// falling back to the first bucket whose name matches it.
func fileCountFor(in Insight, contributor string) int {
	if c, ok := in.Contributors[contributor]; ok {
		return c.FileCount
	}
	names := make([]string, 0, len(in.Contributors))
	for name := range in.Contributors {
		if IsNamed(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if contrib.NameMatches(name, contributor) {
			return in.Contributors[name].FileCount
		}
	}
	return 0
}

// Rank scores records and sorts them by descending score, keeping input
// order on ties. A nil topN returns every record; zero or negative returns
// none.
func Rank(records []Insight, contributor string, topN *int, now time.Time) []Ranked {
	if topN != nil && *topN <= 0 {
		return []Ranked{}
	}

	ranked := make([]Ranked, len(records))
	for i, r := range records {
		ranked[i] = Ranked{Insight: r, Score: Score(r, contributor, now)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if topN != nil && len(ranked) > *topN {
		return ranked[:*topN]
	}
	return ranked
}
