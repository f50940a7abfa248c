package cmd

import (
	"github.com/spf13/cobra"

	"github.com/prismscan/prism/core"
	"github.com/prismscan/prism/internal/contract"
)

// resultCmd fetches a single analysis by id.
var resultCmd = &cobra.Command{
	Use:   "result <analysis-id>",
	Short: "Show the full report for one stored analysis.",
	Long: `Fetch a stored analysis by id and print its full report.

Displays:
- Status, language and user attribution
- Component and global scores with quality labels
- Every issue with severity, position and suggestion
- Raw metrics collected by the plugins

The id is printed by 'prism scan' and listed by 'prism analyses'.

Examples:
  # Show one analysis as a readable report
  prism result 3f2a54e2-9c1b-4f3d-a2e1-0b9c8d7e6f5a

  # Pull the raw record for scripting
  prism result 3f2a54e2-9c1b-4f3d-a2e1-0b9c8d7e6f5a --format json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteResult(rootCtx, cfg, engine, args[0]); err != nil {
			contract.LogFatal("Cannot fetch analysis result", err)
		}
	},
}
