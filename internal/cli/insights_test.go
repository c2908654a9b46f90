package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-portfolio/internal/export"
	"github.com/mvp-joe/project-portfolio/internal/insight"
)

// Test Plan for Insights Commands:
// - list prints a table or JSON and honours filters
// - rank orders by contributor score and respects --top, including 0
// - search finds projects by skill and rejects blank queries
// - export writes every record to Parquet
// - parseSince accepts RFC 3339 and plain dates

var seedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedStore(t *testing.T) *insight.Store {
	t.Helper()
	store := insight.NewStore(filepath.Join(t.TempDir(), "insights.json"))
	for _, rec := range []insight.Insight{
		{
			ID:          "web-0001-aaaa",
			ProjectName: "storefront",
			AnalyzedAt:  seedTime,
			ProjectType: "collaborative",
			Languages:   []string{"Python"},
			Skills:      []string{"Python", "Flask", "Web Development"},
			Summary:     "Built storefront, a collaborative project using Python with Flask.",
			Contributors: map[string]insight.Contributor{
				"Alice": {FileCount: 8},
				"Bob":   {FileCount: 2},
			},
		},
		{
			ID:          "cli-0002-bbbb",
			ProjectName: "kubectl-tree",
			AnalyzedAt:  seedTime.Add(48 * time.Hour),
			ProjectType: "individual",
			Languages:   []string{"Go"},
			Skills:      []string{"Go", "Kubernetes"},
			Summary:     "Built kubectl-tree, an individual project using Go.",
			Contributors: map[string]insight.Contributor{
				"Bob": {FileCount: 12},
			},
		},
	} {
		_, err := store.Append(rec)
		require.NoError(t, err)
	}
	return store
}

func TestExecuteList(t *testing.T) {
	applyColor(false)
	store := seedStore(t)

	var table bytes.Buffer
	require.NoError(t, executeList(&table, store, insight.Filter{}, false))
	assert.Contains(t, table.String(), "storefront")
	assert.Contains(t, table.String(), "kubectl-tree")
	assert.Contains(t, table.String(), "web-0001")
	assert.NotContains(t, table.String(), "web-0001-aaaa")

	var out bytes.Buffer
	require.NoError(t, executeList(&out, store, insight.Filter{Skill: "flask"}, true))
	var records []insight.Insight
	require.NoError(t, json.Unmarshal(out.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "storefront", records[0].ProjectName)
}

func TestExecuteList_Empty(t *testing.T) {
	store := insight.NewStore(filepath.Join(t.TempDir(), "insights.json"))

	var buf bytes.Buffer
	require.NoError(t, executeList(&buf, store, insight.Filter{}, false))
	assert.Equal(t, "No insights recorded.\n", buf.String())
}

func TestExecuteRank(t *testing.T) {
	applyColor(false)
	store := seedStore(t)

	var out bytes.Buffer
	require.NoError(t, executeRank(&out, store, insight.Filter{}, "Bob", nil, true))
	var ranked []insight.Ranked
	require.NoError(t, json.Unmarshal(out.Bytes(), &ranked))
	require.Len(t, ranked, 2)
	assert.Equal(t, "kubectl-tree", ranked[0].Insight.ProjectName)

	one := 1
	var top bytes.Buffer
	require.NoError(t, executeRank(&top, store, insight.Filter{}, "", &one, false))
	assert.Contains(t, top.String(), "kubectl-tree")
	assert.NotContains(t, top.String(), "storefront")

	zero := 0
	var none bytes.Buffer
	require.NoError(t, executeRank(&none, store, insight.Filter{}, "", &zero, false))
	assert.Equal(t, "No projects to rank.\n", none.String())
}

func TestExecuteSearch(t *testing.T) {
	applyColor(false)
	store := seedStore(t)

	var out bytes.Buffer
	require.NoError(t, executeSearch(&out, store, "skills:kubernetes", 10, true))
	var hits []insight.SearchHit
	require.NoError(t, json.Unmarshal(out.Bytes(), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "kubectl-tree", hits[0].Insight.ProjectName)

	var table bytes.Buffer
	require.NoError(t, executeSearch(&table, store, "zeppelin", 10, false))
	assert.Equal(t, "No matching projects.\n", table.String())

	assert.Error(t, executeSearch(&table, store, "  ", 10, false))
}

func TestExecuteExport(t *testing.T) {
	store := seedStore(t)
	path := filepath.Join(t.TempDir(), "insights.parquet")

	var buf bytes.Buffer
	require.NoError(t, executeExport(&buf, store, path))
	assert.Contains(t, buf.String(), "Exported 2 insights")

	rows, err := parquet.ReadFile[export.InsightRow](path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "storefront", rows[0].ProjectName)
	assert.Equal(t, "Bob (12)", rows[1].Contributors)
}

func TestParseSince(t *testing.T) {
	t.Parallel()

	got, err := parseSince("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = parseSince("2026-03-02T08:00:00+02:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)))

	got, err = parseSince("2026-03-02")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)))

	_, err = parseSince("March 2nd")
	assert.Error(t, err)
}
