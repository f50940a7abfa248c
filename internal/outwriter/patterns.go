package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/prismscan/prism/analyzer/pattern"
	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/schema"
)

// patternRow is the marshalable view of one detection rule. The compiled
// matcher is rendered as its source expression.
type patternRow struct {
	Language   schema.Language `json:"language"`
	ID         string          `json:"id"`
	Expression string          `json:"expression"`
	Severity   schema.Severity `json:"severity"`
	Category   schema.Category `json:"category"`
	Message    string          `json:"message"`
	Suggestion string          `json:"suggestion,omitempty"`
	Reference  string          `json:"reference,omitempty"`
}

// PrintPatterns outputs the detection rules of one language catalog,
// dispatching based on the output format configured.
func PrintPatterns(lang schema.Language, patterns []pattern.Pattern, cfg *contract.Config) error {
	rows := make([]patternRow, len(patterns))
	for i, p := range patterns {
		rows[i] = patternRow{
			Language:   lang,
			ID:         p.ID,
			Expression: p.Matcher.String(),
			Severity:   p.Severity,
			Category:   p.Category,
			Message:    p.Description,
			Suggestion: p.Suggestion,
			Reference:  p.Reference,
		}
	}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rows)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writePatternsCSV(csvWriter, rows)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePatternsTable(w, lang, rows, cfg)
		}, "Wrote table")
	}
}

// writePatternsTable generates and writes the human-readable rule table.
func writePatternsTable(w io.Writer, lang schema.Language, rows []patternRow, cfg *contract.Config) error {
	title := header(cfg, "🧩", fmt.Sprintf("%s catalog (%d rules)", lang, len(rows)))
	if _, err := fmt.Fprintf(w, "%s\n", title); err != nil {
		return err
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintf(w, "No rules registered for this language.\n")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Rule", "Severity", "Category", "Message", "Ref"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for i, row := range rows {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			row.ID,
			severityLabel(cfg, row.Severity),
			string(row.Category),
			row.Message,
			row.Reference,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writePatternsCSV writes the rule catalog in CSV format.
func writePatternsCSV(w *csv.Writer, rows []patternRow) error {
	headerRow := []string{
		"language",
		"id",
		"expression",
		"severity",
		"category",
		"message",
		"suggestion",
		"reference",
	}
	if err := w.Write(headerRow); err != nil {
		return err
	}
	for _, row := range rows {
		rec := []string{
			string(row.Language),
			row.ID,
			row.Expression,
			string(row.Severity),
			string(row.Category),
			row.Message,
			row.Suggestion,
			row.Reference,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}
