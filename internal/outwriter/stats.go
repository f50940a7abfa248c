package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/schema"
)

// statsRenderModel bundles the counters and summary for output.
type statsRenderModel struct {
	Stats   schema.UsageStats   `json:"stats"`
	Summary schema.UsageSummary `json:"summary"`
}

// analyzerCount is one by-analyzer usage row, ordered for display.
type analyzerCount struct {
	Name  string
	Count int
}

// PrintStats outputs the usage counters and summary, dispatching based on the
// output format configured.
func PrintStats(stats schema.UsageStats, summary schema.UsageSummary, cfg *contract.Config) error {
	model := statsRenderModel{Stats: stats, Summary: summary}
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, model)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeStatsCSV(csvWriter, model, fmtFloat, intFmt)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeStatsText(w, model, cfg, fmtFloat)
		}, "Wrote text")
	}
}

// sortedAnalyzerCounts orders by-analyzer rows by count, busiest first,
// breaking ties by name for deterministic output.
func sortedAnalyzerCounts(byAnalyzer map[string]int) []analyzerCount {
	rows := make([]analyzerCount, 0, len(byAnalyzer))
	for name, count := range byAnalyzer {
		rows = append(rows, analyzerCount{Name: name, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// sortedDates orders by-date keys chronologically.
func sortedDates(byDate map[string]int) []string {
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// writeStatsText renders the human-readable usage report.
func writeStatsText(w io.Writer, model statsRenderModel, cfg *contract.Config, fmtFloat func(float64) string) error {
	title := header(cfg, "📊", "Prism usage")
	if _, err := fmt.Fprintf(w, "%s\n", title); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\n"); err != nil {
		return err
	}

	stats := model.Stats
	if _, err := fmt.Fprintf(w, "Total analyses: %d\n", stats.TotalAnalyses); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Errors: %d\n", stats.ErrorCount); err != nil {
		return err
	}
	if stats.TotalAnalyses == 0 {
		_, err := fmt.Fprintf(w, "\nNo analyses recorded yet.\n")
		return err
	}
	if _, err := fmt.Fprintf(w, "Last analysis: %s\n", stats.LastAnalysisTime.Format(contract.DateTimeFormat)); err != nil {
		return err
	}

	if len(stats.ByAnalyzer) > 0 {
		if _, err := fmt.Fprintf(w, "\nBy analyzer:\n"); err != nil {
			return err
		}
		for _, row := range sortedAnalyzerCounts(stats.ByAnalyzer) {
			if _, err := fmt.Fprintf(w, "  %-40s %d\n", row.Name, row.Count); err != nil {
				return err
			}
		}
	}

	if len(stats.ByDate) > 0 {
		if _, err := fmt.Fprintf(w, "\nBy date:\n"); err != nil {
			return err
		}
		for _, date := range sortedDates(stats.ByDate) {
			if _, err := fmt.Fprintf(w, "  %s  %d\n", date, stats.ByDate[date]); err != nil {
				return err
			}
		}
	}

	summary := model.Summary
	if _, err := fmt.Fprintf(w, "\nSummary:\n"); err != nil {
		return err
	}
	rows := []struct {
		name  string
		value string
	}{
		{"Files analyzed", fmt.Sprintf("%d", summary.TotalFiles)},
		{"Average score", fmt.Sprintf("%s %s", fmtFloat(summary.AverageScore), scoreLabel(cfg, summary.AverageScore))},
		{"Average complexity", fmtFloat(summary.AverageComplexity)},
		{"Total issues", fmt.Sprintf("%d", summary.TotalIssues)},
		{"Error rate", fmt.Sprintf("%.1f%%", summary.ErrorRate*100)},
		{"Last analysis", summary.LastAnalysis.Format(contract.DateTimeFormat)},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "  %-20s %s\n", row.name, row.value); err != nil {
			return err
		}
	}
	return nil
}

// writeStatsCSV flattens the counters and summary into metric,value rows.
func writeStatsCSV(w *csv.Writer, model statsRenderModel, fmtFloat func(float64) string, intFmt string) error {
	headerRow := []string{"metric", "value"}
	if err := w.Write(headerRow); err != nil {
		return err
	}

	stats := model.Stats
	summary := model.Summary
	records := [][]string{
		{"total_analyses", fmt.Sprintf(intFmt, stats.TotalAnalyses)},
		{"error_count", fmt.Sprintf(intFmt, stats.ErrorCount)},
		{"last_analysis_time", formatStatsTime(stats.LastAnalysisTime)},
		{"total_files", fmt.Sprintf(intFmt, summary.TotalFiles)},
		{"average_score", fmtFloat(summary.AverageScore)},
		{"average_complexity", fmtFloat(summary.AverageComplexity)},
		{"total_issues", fmt.Sprintf(intFmt, summary.TotalIssues)},
		{"error_rate", fmtFloat(summary.ErrorRate)},
	}
	for _, row := range sortedAnalyzerCounts(stats.ByAnalyzer) {
		records = append(records, []string{"by_analyzer:" + row.Name, fmt.Sprintf(intFmt, row.Count)})
	}
	for _, date := range sortedDates(stats.ByDate) {
		records = append(records, []string{"by_date:" + date, fmt.Sprintf(intFmt, stats.ByDate[date])})
	}

	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// formatStatsTime renders a timestamp, leaving the zero value empty.
func formatStatsTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(contract.DateTimeFormat)
}
