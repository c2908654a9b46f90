package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withContributors(id string, at time.Time, counts map[string]int) Insight {
	in := Insight{ID: id, ProjectName: id, AnalyzedAt: at, Contributors: map[string]Contributor{}}
	for name, n := range counts {
		in.Contributors[name] = Contributor{FileCount: n}
	}
	return in
}

func intPtr(n int) *int { return &n }

func TestRank_GlobalAndPerContributor(t *testing.T) {
	t.Parallel()

	gamma := withContributors("Gamma", t0, map[string]int{"User": 10})
	delta := withContributors("Delta", t0, map[string]int{"User": 3, "Peer": 20})
	records := []Insight{gamma, delta}

	global := Rank(records, "", nil, t0)
	assert.Equal(t, []string{"Delta", "Gamma"}, rankedIDs(global))

	perUser := Rank(records, "User", nil, t0)
	assert.Equal(t, []string{"Gamma", "Delta"}, rankedIDs(perUser))
}

func TestRank_TopN(t *testing.T) {
	t.Parallel()

	records := []Insight{
		withContributors("a", t0, map[string]int{"x": 1}),
		withContributors("b", t0, map[string]int{"x": 5}),
		withContributors("c", t0, map[string]int{"x": 3}),
	}

	assert.Equal(t, []string{"b", "c", "a"}, rankedIDs(Rank(records, "", nil, t0)))
	assert.Equal(t, []string{"b", "c"}, rankedIDs(Rank(records, "", intPtr(2), t0)))
	assert.Equal(t, []string{"b", "c", "a"}, rankedIDs(Rank(records, "", intPtr(10), t0)))
	assert.Empty(t, Rank(records, "", intPtr(0), t0))
	assert.Empty(t, Rank(records, "", intPtr(-1), t0))
}

func TestRank_StableOnTies(t *testing.T) {
	t.Parallel()

	records := []Insight{
		withContributors("first", t0, map[string]int{"x": 2}),
		withContributors("second", t0, map[string]int{"x": 2}),
	}
	assert.Equal(t, []string{"first", "second"}, rankedIDs(Rank(records, "", nil, t0)))
}

func TestScore(t *testing.T) {
	t.Parallel()

	in := withContributors("p", t0, map[string]int{"Alice": 4, "Bob": 2, "<unattributed>": 7})
	in.Skills = []string{"Go", "Docker"}

	assert.InDelta(t, 6+10+1.0, Score(in, "", t0), 1e-9, "fresh, sentinel excluded")
	assert.InDelta(t, 4+10+1.0, Score(in, "alice", t0), 1e-9, "contributor matched by name")
	assert.InDelta(t, 0+10+1.0, Score(in, "Nobody Else", t0), 1e-9)

	halfYear := t0.Add(time.Duration(365*24/2) * time.Hour)
	assert.InDelta(t, 6+5+1.0, Score(in, "", halfYear), 1e-9)

	assert.InDelta(t, 6+0+1.0, Score(in, "", t0.AddDate(2, 0, 0)), 1e-9, "old insights get no recency bonus")
	assert.InDelta(t, 6+10+1.0, Score(in, "", t0.Add(-time.Hour)), 1e-9, "future analyses clamp to age zero")
}

func TestStore_Rank(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir() + "/insights.json")
	store.now = func() time.Time { return t0 }

	for _, rec := range []Insight{
		withContributors("low", t0, map[string]int{"dev": 1}),
		withContributors("high", t0, map[string]int{"dev": 9}),
	} {
		_, err := store.Append(rec)
		require.NoError(t, err)
	}

	ranked, err := store.Rank(Filter{}, "", intPtr(1))
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "high", ranked[0].Insight.ID)
	assert.InDelta(t, 19.0, ranked[0].Score, 1e-9)
}

func rankedIDs(ranked []Ranked) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.Insight.ID
	}
	return out
}
