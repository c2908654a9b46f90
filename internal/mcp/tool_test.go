package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-portfolio/internal/insight"
)

// Test Plan for insight tools:
// - Server requires a store
// - list_insights returns every record, filtered by language/skill/since
// - rank_insights honours contributor and top_n (including 0)
// - search_insights requires a query and returns matching projects
// - Invalid arguments produce tool errors, not protocol errors

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedStore(t *testing.T) *insight.Store {
	t.Helper()
	store := insight.NewStore(filepath.Join(t.TempDir(), "insights.json"))

	records := []insight.Insight{
		{
			ID:          "web",
			ProjectName: "storefront",
			AnalyzedAt:  base,
			Languages:   []string{"Python"},
			Skills:      []string{"Python", "Flask", "Web Development"},
			Summary:     "Built storefront, a collaborative project using Python with Flask.",
			Contributors: map[string]insight.Contributor{
				"Alice": {FileCount: 8},
				"Bob":   {FileCount: 2},
			},
		},
		{
			ID:          "cli",
			ProjectName: "kubectl-tree",
			AnalyzedAt:  base.Add(48 * time.Hour),
			Languages:   []string{"Go"},
			Skills:      []string{"Go", "Kubernetes"},
			Summary:     "Built kubectl-tree, an individual project using Go.",
			Contributors: map[string]insight.Contributor{
				"Bob": {FileCount: 12},
			},
		},
	}
	for _, rec := range records {
		_, err := store.Append(rec)
		require.NoError(t, err)
	}
	return store
}

func call(t *testing.T, handler toolHandler, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	result, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	})
	require.NoError(t, err, "should not return system error")
	require.NotNil(t, result)
	return result
}

func decode(t *testing.T, result *mcp.CallToolResult, v interface{}) {
	t.Helper()
	require.False(t, result.IsError, "should not be error result")
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")
	require.NoError(t, json.Unmarshal([]byte(text.Text), v))
}

func TestNewServer_RegistersTools(t *testing.T) {
	t.Parallel()

	s, err := NewServer(seedStore(t), "test")
	require.NoError(t, err)

	assert.NotNil(t, s.MCP(), "server should exist")

	_, err = NewServer(nil, "test")
	assert.Error(t, err)
}

func TestListHandler(t *testing.T) {
	t.Parallel()

	handler := createListHandler(seedStore(t))

	var all ListResponse
	decode(t, call(t, handler, map[string]interface{}{}), &all)
	assert.Equal(t, 2, all.Total)
	assert.Equal(t, "web", all.Insights[0].ID)
	assert.Equal(t, "cli", all.Insights[1].ID)

	var goOnly ListResponse
	decode(t, call(t, handler, map[string]interface{}{"language": "go"}), &goOnly)
	require.Equal(t, 1, goOnly.Total)
	assert.Equal(t, "cli", goOnly.Insights[0].ID)

	var recent ListResponse
	decode(t, call(t, handler, map[string]interface{}{"since": "2026-03-02"}), &recent)
	require.Equal(t, 1, recent.Total)
	assert.Equal(t, "cli", recent.Insights[0].ID)

	result := call(t, handler, map[string]interface{}{"since": "yesterday"})
	assert.True(t, result.IsError)
}

func TestRankHandler(t *testing.T) {
	t.Parallel()

	handler := createRankHandler(seedStore(t))

	var forBob RankResponse
	decode(t, call(t, handler, map[string]interface{}{"contributor": "Bob"}), &forBob)
	require.Equal(t, 2, forBob.Total)
	assert.Equal(t, "cli", forBob.Results[0].Insight.ID)
	assert.GreaterOrEqual(t, forBob.Results[0].Score, forBob.Results[1].Score)

	var top RankResponse
	decode(t, call(t, handler, map[string]interface{}{"top_n": float64(1)}), &top)
	assert.Equal(t, 1, top.Total)

	var none RankResponse
	decode(t, call(t, handler, map[string]interface{}{"top_n": float64(0)}), &none)
	assert.Equal(t, 0, none.Total)

	result := call(t, handler, map[string]interface{}{"top_n": "three"})
	assert.True(t, result.IsError)
}

func TestSearchHandler(t *testing.T) {
	t.Parallel()

	handler := createSearchHandler(seedStore(t))

	var resp SearchResponse
	decode(t, call(t, handler, map[string]interface{}{"query": "kubernetes"}), &resp)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "cli", resp.Results[0].Insight.ID)
	assert.Equal(t, "kubernetes", resp.Query)

	missing := call(t, handler, map[string]interface{}{})
	assert.True(t, missing.IsError)

	blank := call(t, handler, map[string]interface{}{"query": "   "})
	assert.True(t, blank.IsError)
}

func TestSearchHandler_EmptyStore(t *testing.T) {
	t.Parallel()

	store := insight.NewStore(filepath.Join(t.TempDir(), "insights.json"))
	var resp SearchResponse
	decode(t, call(t, createSearchHandler(store), map[string]interface{}{"query": "anything"}), &resp)
	assert.Equal(t, 0, resp.Total)
}
