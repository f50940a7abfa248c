package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/internal/iostore"
)

// exportCmd exports stored data to Parquet files.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored analyses and history to Parquet for analytics.",
	Long: `Export all stored data to Parquet format for use with analytics tools.

Exports two datasets:
- Analyses - every stored analysis with scores and issue counts
- History - the append-only ledger of analyzer runs

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools (Tableau, Metabase, etc.)

Requires: --out parameter. Files are written as <out>.analyses.parquet
and <out>.history.parquet.

Examples:
  # Export all data
  prism export --out prism-data

  # Use with DuckDB for analysis
  prism export --out data
  duckdb -c "SELECT * FROM read_parquet('data.analyses.parquet') LIMIT 10"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ExecuteExport(rootCtx, viper.GetString("out")); err != nil {
			contract.LogFatal("Failed to export data", err)
		}
	},
}
