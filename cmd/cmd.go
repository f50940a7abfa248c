// Package cmd defines the command-line interface for prism.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(resultCmd)
	rootCmd.AddCommand(analysesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)

	// Add the db subcommands to the parent db command
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbClearCmd)
	dbCmd.AddCommand(dbMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("exclude", "", "Comma-separated list of path prefixes or patterns to skip during directory scans")
	rootCmd.PersistentFlags().String("language", "", "Language override: typescript or javascript or python or sql (default: detect from filename)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().String("format", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("score-mode", string(schema.BalancedMode), "Scoring mode: balanced or strict")
	rootCmd.PersistentFlags().String("timeout", "30s", "Per-submission analysis deadline (e.g. 30s, 2m)")
	rootCmd.PersistentFlags().StringP("user", "u", "", "User identifier recorded on submissions")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().Int("history-limit", contract.DefaultHistoryLimit, "Default number of history entries to read")
	rootCmd.PersistentFlags().String("backend", string(schema.SQLiteBackend), "Persistence backend: sqlite or mysql or postgresql or memory or none")
	rootCmd.PersistentFlags().String("database-connection-string", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("use-colors", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("use-emojis", "no", "Enable emoji in section headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of scanCmd to Viper
	scanCmd.Flags().String("min-severity", "", "Drop issues below this severity: low, medium, high, critical")
	scanCmd.Flags().Float64("fail-under", 0.0, "Exit non-zero when any file scores below this global score (0 disables)")
	if err := viper.BindPFlags(scanCmd.Flags()); err != nil {
		contract.LogFatal("Error binding scan flags", err)
	}

	// Bind all flags of analysesCmd to Viper
	analysesCmd.Flags().String("status", "", "Filter analyses by status: pending, processing, completed, failed")
	analysesCmd.Flags().Int("offset", 0, "Number of results to skip for pagination")
	if err := viper.BindPFlags(analysesCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analyses flags", err)
	}

	// Bind all flags of exportCmd to Viper
	exportCmd.Flags().String("out", "", "Output path prefix for the generated Parquet files")
	if err := viper.BindPFlags(exportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding export flags", err)
	}

	// Bind all flags of dbMigrateCmd to Viper
	dbMigrateCmd.Flags().Int("target", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(dbMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding db migrate flags", err)
	}
}
