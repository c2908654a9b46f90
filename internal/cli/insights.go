package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-portfolio/internal/export"
	"github.com/mvp-joe/project-portfolio/internal/insight"
)

var (
	filterLanguage string
	filterSkill    string
	filterSince    string
	rankContrib    string
	rankTop        int
	searchLimit    int
	jsonOutput     bool
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Query the insight log",
}

var insightsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded insights, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, filter, err := openStoreWithFilter()
		if err != nil {
			return err
		}
		return executeList(cmd.OutOrStdout(), store, filter, jsonOutput)
	},
}

var insightsRankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank projects by contribution, skill breadth and recency",
	Long: `Rank scores every recorded project:

  score = file count + 0.5 per skill + up to 10 points for recency

The file count is the named contributor's when --contributor is given, and the
total of all named contributors otherwise. Recency decays linearly to zero
over a year.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, filter, err := openStoreWithFilter()
		if err != nil {
			return err
		}
		var topN *int
		if cmd.Flags().Changed("top") {
			topN = &rankTop
		}
		return executeRank(cmd.OutOrStdout(), store, filter, rankContrib, topN, jsonOutput)
	},
}

var insightsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over recorded insights",
	Long: `Search project names, summaries, highlights, skills, languages and
frameworks. Field scoping is supported, for example:

  portfolio insights search 'skills:flask'
  portfolio insights search '+languages:go kubernetes'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return executeSearch(cmd.OutOrStdout(), insight.NewStore(cfg.InsightLogPath()), args[0], searchLimit, jsonOutput)
	},
}

var insightsExportCmd = &cobra.Command{
	Use:   "export <file.parquet>",
	Short: "Export the insight log to a Parquet file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return executeExport(cmd.OutOrStdout(), insight.NewStore(cfg.InsightLogPath()), args[0])
	},
}

func init() {
	for _, c := range []*cobra.Command{insightsListCmd, insightsRankCmd} {
		c.Flags().StringVar(&filterLanguage, "language", "", "only projects using this language")
		c.Flags().StringVar(&filterSkill, "skill", "", "only projects demonstrating this skill")
		c.Flags().StringVar(&filterSince, "since", "", "only projects analyzed at or after this time (RFC 3339 or YYYY-MM-DD)")
	}
	for _, c := range []*cobra.Command{insightsListCmd, insightsRankCmd, insightsSearchCmd} {
		c.Flags().BoolVar(&jsonOutput, "json", false, "print JSON instead of a table")
	}
	insightsRankCmd.Flags().StringVar(&rankContrib, "contributor", "", "score projects by this contributor's files")
	insightsRankCmd.Flags().IntVar(&rankTop, "top", 0, "keep only the best N projects")
	insightsSearchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum number of results")

	insightsCmd.AddCommand(insightsListCmd, insightsRankCmd, insightsSearchCmd, insightsExportCmd)
	rootCmd.AddCommand(insightsCmd)
}

func openStoreWithFilter() (*insight.Store, insight.Filter, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, insight.Filter{}, err
	}
	since, err := parseSince(filterSince)
	if err != nil {
		return nil, insight.Filter{}, err
	}
	filter := insight.Filter{Language: filterLanguage, Skill: filterSkill, Since: since}
	return insight.NewStore(cfg.InsightLogPath()), filter, nil
}

// parseSince accepts RFC 3339 timestamps and plain dates. Empty means no bound.
func parseSince(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: use RFC 3339 or YYYY-MM-DD", value)
	}
	return t, nil
}

func executeList(w io.Writer, store *insight.Store, filter insight.Filter, asJSON bool) error {
	records, err := store.List(filter)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(w, records)
	}
	return writeInsightTable(w, records)
}

func executeRank(w io.Writer, store *insight.Store, filter insight.Filter, contributor string, topN *int, asJSON bool) error {
	ranked, err := store.Rank(filter, contributor, topN)
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(w, ranked)
	}
	return writeRankTable(w, ranked)
}

func executeSearch(w io.Writer, store *insight.Store, query string, limit int, asJSON bool) error {
	records, err := store.Load()
	if err != nil {
		return err
	}
	hits, err := insight.Search(records, query, limit)
	if errors.Is(err, insight.ErrEmptyQuery) {
		return fmt.Errorf("search query cannot be empty")
	}
	if err != nil {
		return err
	}
	if asJSON {
		return writeJSON(w, hits)
	}
	return writeSearchTable(w, hits)
}

func executeExport(w io.Writer, store *insight.Store, path string) error {
	records, err := store.List(insight.Filter{})
	if err != nil {
		return err
	}
	if err := export.WriteParquet(path, records); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "✓ Exported %s insights to %s\n", formatNumber(len(records)), path)
	return err
}
