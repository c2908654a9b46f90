package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/project-portfolio/internal/insight"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
)

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ListResponse is the list_insights payload.
type ListResponse struct {
	Insights []insight.Insight `json:"insights"`
	Total    int               `json:"total"`
}

// RankResponse is the rank_insights payload.
type RankResponse struct {
	Results []insight.Ranked `json:"results"`
	Total   int              `json:"total"`
}

// SearchResponse is the search_insights payload.
type SearchResponse struct {
	Query   string              `json:"query"`
	Results []insight.SearchHit `json:"results"`
	Total   int                 `json:"total"`
}

func filterOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("language",
			mcp.Description("Only insights whose languages include this one (case-insensitive)")),
		mcp.WithString("skill",
			mcp.Description("Only insights whose skills include this one (case-insensitive)")),
		mcp.WithString("since",
			mcp.Description("Only insights analyzed at or after this time (RFC 3339 or YYYY-MM-DD)")),
	}
}

// AddListInsightsTool registers list_insights.
func AddListInsightsTool(s *server.MCPServer, store *insight.Store) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("List stored project insights in chronological order, optionally filtered by language, skill or date."),
	}, filterOptions()...)
	s.AddTool(mcp.NewTool("list_insights", opts...), createListHandler(store))
}

// AddRankInsightsTool registers rank_insights.
func AddRankInsightsTool(s *server.MCPServer, store *insight.Store) {
	opts := append([]mcp.ToolOption{
		mcp.WithDescription("Rank stored projects by contribution size, skill breadth and recency. Scores are relative to a contributor when one is given."),
		mcp.WithString("contributor",
			mcp.Description("Contributor name to score against (matches first names and initials)")),
		mcp.WithNumber("top_n",
			mcp.Description("Keep only the best N projects; 0 or less returns nothing")),
	}, filterOptions()...)
	s.AddTool(mcp.NewTool("rank_insights", opts...), createRankHandler(store))
}

// AddSearchInsightsTool registers search_insights.
func AddSearchInsightsTool(s *server.MCPServer, store *insight.Store) {
	tool := mcp.NewTool(
		"search_insights",
		mcp.WithDescription("Full-text search over project names, summaries, highlights, skills, languages and frameworks. Supports field scoping such as 'skills:flask'."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query (e.g., 'kubernetes operator', 'languages:go')")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (1-100, default: 10)")),
	)
	s.AddTool(tool, createSearchHandler(store))
}

func parseFilter(args toolArgs) (insight.Filter, error) {
	var f insight.Filter
	var err error
	if f.Language, err = args.str("language", false); err != nil {
		return f, err
	}
	if f.Skill, err = args.str("skill", false); err != nil {
		return f, err
	}
	f.Since, err = args.since("since")
	return f, err
}

func createListHandler(store *insight.Store) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := argsOf(request.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filter, err := parseFilter(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		records, err := store.List(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to list insights: %w", err)
		}
		return jsonResult(&ListResponse{Insights: records, Total: len(records)})
	}
}

func createRankHandler(store *insight.Store) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := argsOf(request.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filter, err := parseFilter(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		contributor, err := args.str("contributor", false)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		topN, err := args.intPtr("top_n")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		ranked, err := store.Rank(filter, contributor, topN)
		if err != nil {
			return nil, fmt.Errorf("failed to rank insights: %w", err)
		}
		return jsonResult(&RankResponse{Results: ranked, Total: len(ranked)})
	}
}

func createSearchHandler(store *insight.Store) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := argsOf(request.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		query, err := args.str("query", true)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		limit := args.clamped("limit", defaultSearchLimit, 1, maxSearchLimit)

		records, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load insights: %w", err)
		}
		hits, err := insight.Search(records, query, limit)
		if errors.Is(err, insight.ErrEmptyQuery) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}
		return jsonResult(&SearchResponse{Query: query, Results: hits, Total: len(hits)})
	}
}

// jsonResult returns v as a JSON text result.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
