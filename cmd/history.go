package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prismscan/prism/core"
	"github.com/prismscan/prism/internal/contract"
)

// historyCmd shows the append-only analysis ledger.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent entries from the analysis ledger.",
	Long: `Show the most recent entries from the append-only analysis ledger.

Every finished analysis leaves one ledger entry recording the filename,
which analyzers ran, how many issues they found and the measured
complexity. The ledger survives individual analysis deletions, so it is
the place to look for "what ran last week".

Examples:
  # Last entries, newest first
  prism history

  # Dig further back
  prism history --limit 100

  # Machine-readable for dashboards
  prism history --format json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHistory(rootCtx, cfg, engine); err != nil {
			contract.LogFatal("Cannot show history", err)
		}
	},
}

// historyClearCmd wipes the analysis ledger.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every entry from the analysis ledger.",
	Long: `Delete all entries from the append-only analysis ledger.

WARNING: This action cannot be undone. Consider exporting data first
with 'prism export'.

Use this when:
- Resetting usage tracking for a fresh baseline
- Clearing test noise before real measurements
- Reclaiming space in the history table

Examples:
  # Export before clearing
  prism export --out backup
  prism history clear`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := statsService.Clear(rootCtx); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}
