package cmd

import (
	"github.com/spf13/cobra"

	"github.com/prismscan/prism/core"
	"github.com/prismscan/prism/internal/contract"
)

// scanCmd performs pattern analysis over files and directories.
var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Analyze files with every applicable plugin and rank them by score.",
	Long: `Submit files to the analysis engine and rank them by global score.

Each file is matched against the pattern catalogs of every applicable
plugin, helping you:
- Catch dangerous constructs (eval, injection, hardcoded secrets)
- Flag maintainability problems before review
- Spot risky SQL statements in migration scripts
- Gate CI pipelines on a minimum quality score

Directories are walked recursively. Files matching --exclude patterns or
without a recognizable language are skipped; results are ranked worst
first so the riskiest files surface at the top.

Examples:
  # Scan the current directory
  prism scan

  # Scan specific paths and record who asked
  prism scan src/ migrations/init.sql --user alice

  # Only surface high severity issues and gate CI on the score
  prism scan src/ --min-severity high --fail-under 7.0

  # Export findings to CSV for tracking
  prism scan src/ --format csv --output-file findings.csv`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteScan(rootCtx, cfg, engine, args); err != nil {
			contract.LogFatal("Cannot run scan", err)
		}
	},
}
