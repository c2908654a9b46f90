package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-portfolio/internal/config"
	"github.com/mvp-joe/project-portfolio/internal/resume"
)

var (
	cfgFile string
	verbose bool
	quiet   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Portfolio - turn project folders into résumé insights",
	Long: `Portfolio scans a local project folder and reports what it is built with,
who built it, how its code is structured and how long it was worked on.

Every analysis is appended to a local insight log that can be listed,
ranked, searched and exported later.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.portfolio/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
}

// loadConfig loads the configuration for this invocation and applies its
// output settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	applyColor(cfg.Output.Color && isatty.IsTerminal(os.Stdout.Fd()) && os.Getenv("NO_COLOR") == "")
	if verbose {
		fmt.Fprintf(os.Stderr, "Insight log: %s\n", cfg.InsightLogPath())
	}
	return cfg, nil
}

func applyColor(enabled bool) {
	color.NoColor = !enabled
	resume.SetNoColor(!enabled)
}
