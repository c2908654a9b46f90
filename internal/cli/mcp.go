package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/project-portfolio/internal/insight"
	"github.com/mvp-joe/project-portfolio/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server over the insight log",
	Long: `Start a Model Context Protocol (MCP) server so coding assistants can query
your recorded project insights.

The MCP server:
- Reads the insight log on every call, so new analyses appear immediately
- Provides list_insights, rank_insights and search_insights tools
- Communicates via stdio (standard MCP transport)

Example:
  portfolio mcp`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Portfolio MCP Server\n")
	fmt.Fprintf(os.Stderr, "Insight log: %s\n", cfg.InsightLogPath())

	server, err := mcp.NewServer(insight.NewStore(cfg.InsightLogPath()), Version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server.Serve(cmd.Context())
}
