package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prismscan/prism/core"
	"github.com/prismscan/prism/internal/contract"
)

// analysesCmd lists stored analyses by user or status.
var analysesCmd = &cobra.Command{
	Use:   "analyses",
	Short: "List stored analyses filtered by user or status.",
	Long: `List stored analyses from the configured backend.

Exactly one filter is required:
- --user lists a user's analyses, newest first, with --offset/--limit paging
- --status lists every analysis in a lifecycle state (pending, processing,
  completed, failed)

Use this to:
- Review what a teammate has been scanning
- Find analyses stuck in processing after a crash
- Audit failed analyses and their fault reasons

Examples:
  # Latest analyses for one user
  prism analyses --user alice --limit 10

  # Page through older results
  prism analyses --user alice --offset 25 --limit 25

  # Everything that failed
  prism analyses --status failed`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyses(rootCtx, cfg, engine, viper.GetString("status")); err != nil {
			contract.LogFatal("Cannot list analyses", err)
		}
	},
}
