package cmd

import (
	"github.com/spf13/cobra"

	"github.com/prismscan/prism/core"
	"github.com/prismscan/prism/internal/contract"
)

// patternsCmd displays the rule catalog for a language.
var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "Display the detection rules registered for a language.",
	Long: `Show every pattern rule in the catalog for one language.

Provides complete transparency into what the plugins look for, including:
- Rule id and the regular expression behind it
- Severity and category assigned to matches
- The message and suggestion reported on a hit

No files are analyzed - this is purely informational.

Use this to:
- Understand why a rule fired on your code
- Explain findings to your team
- Review catalog coverage before adding custom rules

Examples:
  # List the TypeScript rules
  prism patterns --language typescript

  # Dump the SQL catalog for documentation
  prism patterns --language sql --format json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecutePatterns(cfg); err != nil {
			contract.LogFatal("Cannot display patterns", err)
		}
	},
}
