package iostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/prismscan/prism/internal/parquet"
)

// ExecuteExport performs the actual export of analysis and history data to Parquet files.
func ExecuteExport(ctx context.Context, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--out is required for export command")
	}

	// Get the analysis store
	store := Manager.GetAnalysisStore()

	// Check if there's any data to export
	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}

	if status.TotalAnalyses == 0 {
		return errors.New("no analysis data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total analyses: %d\n", status.TotalAnalyses)

	// Retrieve all analyses
	analyses, err := store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve analyses: %w", err)
	}

	// Retrieve the full history log
	history, err := Manager.GetHistoryStore().History(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to retrieve history: %w", err)
	}

	// Convert to Parquet format
	parquetAnalyses := parquet.ConvertAnalyses(analyses)
	parquetHistory := parquet.ConvertHistoryRecords(history)

	// Write analyses to Parquet
	analysesFile := outputFile + ".analyses.parquet"
	if err := parquet.WriteAnalysesParquet(parquetAnalyses, analysesFile); err != nil {
		return fmt.Errorf("failed to write analyses: %w", err)
	}
	fmt.Printf("Exported %d analyses to: %s\n", len(parquetAnalyses), analysesFile)

	// Write history to Parquet
	historyFile := outputFile + ".history.parquet"
	if err := parquet.WriteHistoryParquet(parquetHistory, historyFile); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	fmt.Printf("Exported %d history entries to: %s\n", len(parquetHistory), historyFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
