package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-portfolio/internal/analyzer"
	"github.com/mvp-joe/project-portfolio/internal/archive"
	"github.com/mvp-joe/project-portfolio/internal/config"
	"github.com/mvp-joe/project-portfolio/internal/insight"
	"github.com/mvp-joe/project-portfolio/internal/resume"
)

var (
	saveOutput string
	noStore    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <root>",
	Short: "Analyze a project folder and record its insight",
	Long: `Analyze scans a project folder, detects its languages, frameworks and
skills, attributes files to contributors, measures object-oriented structure
and estimates how long the project was active.

The resulting insight is appended to the insight log and the full output is
archived, then a portfolio page is printed.

Example:
  portfolio analyze ~/code/storefront --save-output storefront.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&saveOutput, "save-output", "", "also write the full analysis output as JSON to this file")
	analyzeCmd.Flags().BoolVar(&noStore, "no-store", false, "do not append to the insight log or the archive")
	rootCmd.AddCommand(analyzeCmd)
}

type analyzeOptions struct {
	saveOutput string
	noStore    bool
	quiet      bool
	verbose    bool
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := analyzeOptions{saveOutput: saveOutput, noStore: noStore, quiet: quiet, verbose: verbose}
	_, err = executeAnalyze(cmd.Context(), cmd.OutOrStdout(), cfg, args[0], opts,
		analyzer.WithProgress(NewCLIProgressReporter(quiet)))
	return err
}

// executeAnalyze runs one analysis and persists it according to cfg and opts.
func executeAnalyze(ctx context.Context, w io.Writer, cfg *config.Config, root string, opts analyzeOptions, extra ...analyzer.Option) (*analyzer.Output, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	a := analyzer.New(analyzer.Config{
		IgnorePatterns: cfg.Scan.Ignore,
		OOPLanguages:   cfg.Analysis.OOPLanguages,
		Quiet:          opts.quiet,
		Verbose:        opts.verbose,
	}, extra...)

	out, err := a.Analyze(ctx, root)
	if err != nil {
		return nil, err
	}

	if opts.saveOutput != "" {
		if err := writeJSONFile(opts.saveOutput, out); err != nil {
			return nil, err
		}
	}

	if !opts.noStore {
		if err := storeOutput(ctx, cfg, out, opts.quiet); err != nil {
			return nil, err
		}
	}

	if _, err := fmt.Fprintln(w, resume.RenderPortfolio(out.Insight)); err != nil {
		return nil, err
	}
	return out, nil
}

// storeOutput appends the insight to the log and archives the full output.
func storeOutput(ctx context.Context, cfg *config.Config, out *analyzer.Output, quiet bool) error {
	store := insight.NewStore(cfg.InsightLogPath())
	res, err := store.Append(out.Insight)
	if err != nil {
		return fmt.Errorf("failed to record insight: %w", err)
	}
	if !quiet {
		log.Printf("Recorded insight %s in %s (%d total)", shortID(out.ID), store.Path(), res.Records)
	}

	path := cfg.ArchivePath()
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}
	arch, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer arch.Close()
	return arch.Save(ctx, out)
}

func writeJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
