package cmd

import (
	"github.com/spf13/cobra"

	"github.com/prismscan/prism/internal/mcp"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Prism MCP server",
	Long: `Launch an MCP server that allows AI agents to run pattern analysis via standard tools.

Exposed tools:
  analyze_source  - analyze one source file and return its scored verdict
  get_analysis    - fetch a stored analysis by id
  list_patterns   - list the detection rules of a language catalog
  get_usage_stats - aggregate usage counters over the history ledger

The server speaks the protocol over stdio; diagnostics go to stderr.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, engine)
	},
}
