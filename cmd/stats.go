package cmd

import (
	"github.com/spf13/cobra"

	"github.com/prismscan/prism/core"
	"github.com/prismscan/prism/internal/contract"
)

// statsCmd summarizes usage from the analysis ledger.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize analyzer usage and aggregate scores.",
	Long: `Summarize the analysis ledger into usage statistics.

Displays:
- Total analyses and error rate
- Per-analyzer and per-day run counts
- Average global score and complexity across all runs
- Total issues found and the last analysis timestamp

Use this to:
- See which analyzers actually get exercised
- Track whether scores trend up as cleanups land
- Spot elevated error rates after a plugin change

Examples:
  # Human-readable summary
  prism stats

  # Feed a dashboard
  prism stats --format json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteStats(rootCtx, cfg, engine); err != nil {
			contract.LogFatal("Cannot compute stats", err)
		}
	},
}
