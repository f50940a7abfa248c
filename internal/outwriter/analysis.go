package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/schema"
)

// PrintAnalysisDetail outputs a single analysis in full, dispatching based on
// the output format configured.
func PrintAnalysisDetail(analysis *schema.Analysis, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, analysis)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeIssueCSVRows(csvWriter, analysis)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAnalysisDetailText(w, analysis, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// PrintAnalysisList outputs a ranked list of analyses, dispatching based on
// the output format configured.
func PrintAnalysisList(analyses []*schema.Analysis, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAnalysisListJSON(w, analyses)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeAnalysisListCSV(csvWriter, analyses, fmtFloat, intFmt)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAnalysisListTable(w, analyses, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// writeAnalysisDetailText renders the human-readable report for one analysis.
func writeAnalysisDetailText(w io.Writer, analysis *schema.Analysis, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	title := header(cfg, "🔬", fmt.Sprintf("Analysis %s (%s)", analysis.ID, analysis.Status))
	if _, err := fmt.Fprintf(w, "%s\n", title); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "File: %s (%s)\n", analysis.Filename, analysis.Language); err != nil {
		return err
	}
	if analysis.UserID != "" {
		if _, err := fmt.Fprintf(w, "User: %s\n", analysis.UserID); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Created: %s\n", analysis.CreatedAt.Format(contract.DateTimeFormat)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Updated: %s\n", analysis.UpdatedAt.Format(contract.DateTimeFormat)); err != nil {
		return err
	}

	if analysis.Status == schema.StatusFailed {
		if _, err := fmt.Fprintf(w, "Failure: %s (%s)\n", analysis.FailureKind, analysis.FailureDetail); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\nScores:\n"); err != nil {
		return err
	}
	scoreRows := []struct {
		name  string
		value float64
		label bool
	}{
		{"Global", analysis.GlobalScore, true},
		{"Security", analysis.SecurityScore, false},
		{"Quality", analysis.QualityScore, false},
		{"Complexity", analysis.ComplexityScore, false},
		{"Performance", analysis.PerformanceScore, false},
	}
	for _, row := range scoreRows {
		line := fmt.Sprintf("  %-12s %6s", row.name, fmtFloat(row.value))
		if row.label {
			line += "  " + scoreLabel(cfg, row.value)
		}
		if _, err := fmt.Fprintf(w, "%s\n", line); err != nil {
			return err
		}
	}

	if len(analysis.Metrics) > 0 {
		if _, err := fmt.Fprintf(w, "\nMetrics:\n"); err != nil {
			return err
		}
		keys := make([]string, 0, len(analysis.Metrics))
		for k := range analysis.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "  %-20s %s\n", k, fmtFloat(analysis.Metrics[k])); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintf(w, "\nIssues (%d):\n", len(analysis.Issues)); err != nil {
		return err
	}
	if len(analysis.Issues) > 0 {
		if err := writeIssueTable(w, analysis.Issues, cfg); err != nil {
			return err
		}
	}

	if len(analysis.Suggestions) > 0 {
		if _, err := fmt.Fprintf(w, "\nSuggestions (%d):\n", len(analysis.Suggestions)); err != nil {
			return err
		}
		for _, s := range analysis.Suggestions {
			if _, err := fmt.Fprintf(w, "  - %s\n", s); err != nil {
				return err
			}
		}
	}

	if len(analysis.Skipped) > 0 {
		if _, err := fmt.Fprintf(w, "\nSkipped plugins: %v\n", analysis.Skipped); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nCompleted in %v. Backend: %s\n", duration, cfg.Backend)
	return err
}

// writeIssueTable renders the issues of one analysis as a table.
func writeIssueTable(w io.Writer, issues []schema.Issue, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Severity", "Line", "Rule", "Message", "Ref"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for i, issue := range issues {
		location := strconv.Itoa(issue.Line)
		if issue.Column > 0 {
			location = fmt.Sprintf("%d:%d", issue.Line, issue.Column)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			severityLabel(cfg, issue.Severity),
			location,
			issue.Type,
			issue.Message,
			issue.Reference,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeIssueCSVRows writes one CSV row per issue of the analysis.
func writeIssueCSVRows(w *csv.Writer, analysis *schema.Analysis) error {
	headerRow := []string{
		"analysis_id",
		"filename",
		"language",
		"status",
		"rule",
		"severity",
		"category",
		"line",
		"column",
		"message",
		"reference",
		"suggestion",
	}
	if err := w.Write(headerRow); err != nil {
		return err
	}
	for _, issue := range analysis.Issues {
		rec := []string{
			analysis.ID,
			analysis.Filename,
			string(analysis.Language),
			string(analysis.Status),
			issue.Type,
			string(issue.Severity),
			string(issue.Category),
			strconv.Itoa(issue.Line),
			strconv.Itoa(issue.Column),
			issue.Message,
			issue.Reference,
			issue.Suggestion,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeAnalysisListTable generates and writes the human-readable list table.
func writeAnalysisListTable(w io.Writer, analyses []*schema.Analysis, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "File", "ID", "Language", "Status", "Issues", "Score", "Label"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	totalIssues := 0
	for i, a := range analyses {
		totalIssues += len(a.Issues)
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(a.Filename, getMaxTableFileWidth(cfg)),
			shortID(a.ID),
			string(a.Language),
			string(a.Status),
			strconv.Itoa(len(a.Issues)),
			fmtFloat(a.GlobalScore),
			scoreLabel(cfg, a.GlobalScore),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Showing %d analyses (total issues: %d)\n", len(analyses), totalIssues); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Completed in %v with %d workers. Backend: %s\n", duration, cfg.Workers, cfg.Backend)
	return err
}

// writeAnalysisListCSV writes the list of analyses in CSV format.
func writeAnalysisListCSV(w *csv.Writer, analyses []*schema.Analysis, fmtFloat func(float64) string, intFmt string) error {
	headerRow := []string{
		"rank",
		"id",
		"user",
		"filename",
		"language",
		"status",
		"issues",
		"security_score",
		"complexity_score",
		"performance_score",
		"quality_score",
		"global_score",
		"label",
		"created_at",
	}
	if err := w.Write(headerRow); err != nil {
		return err
	}
	for i, a := range analyses {
		rec := []string{
			strconv.Itoa(i + 1),
			a.ID,
			a.UserID,
			a.Filename,
			string(a.Language),
			string(a.Status),
			fmt.Sprintf(intFmt, len(a.Issues)),
			fmtFloat(a.SecurityScore),
			fmtFloat(a.ComplexityScore),
			fmtFloat(a.PerformanceScore),
			fmtFloat(a.QualityScore),
			fmtFloat(a.GlobalScore),
			schema.GetScoreLabel(a.GlobalScore),
			a.CreatedAt.Format(contract.DateTimeFormat),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeAnalysisListJSON writes the list of analyses in JSON format.
func writeAnalysisListJSON(w io.Writer, analyses []*schema.Analysis) error {
	// Prepare the data structure for JSON with rank and label added
	type JSONAnalysisResult struct {
		Rank  int    `json:"rank"`
		Label string `json:"label"`
		*schema.Analysis
	}

	output := make([]JSONAnalysisResult, len(analyses))
	for i, a := range analyses {
		output[i] = JSONAnalysisResult{
			Rank:     i + 1,
			Label:    schema.GetScoreLabel(a.GlobalScore),
			Analysis: a,
		}
	}

	return writeJSON(w, output)
}
