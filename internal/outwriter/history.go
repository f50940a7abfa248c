package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/schema"
)

// PrintHistory outputs the analysis history ledger, dispatching based on the
// output format configured. Records arrive newest first.
func PrintHistory(records []schema.HistoryRecord, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, records)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeHistoryCSV(csvWriter, records, fmtFloat, intFmt)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryTable(w, records, cfg, fmtFloat)
		}, "Wrote table")
	}
}

// writeHistoryTable generates and writes the human-readable history table.
func writeHistoryTable(w io.Writer, records []schema.HistoryRecord, cfg *contract.Config, fmtFloat func(float64) string) error {
	title := header(cfg, "🗂️", fmt.Sprintf("Analysis history (%d entries)", len(records)))
	if _, err := fmt.Fprintf(w, "%s\n", title); err != nil {
		return err
	}
	if len(records) == 0 {
		_, err := fmt.Fprintf(w, "No analyses recorded yet.\n")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Time", "File", "Analyzer", "Issues", "Complexity"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, rec := range records {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			rec.Timestamp.Format(time.DateTime),
			contract.TruncatePath(rec.Filename, getMaxTableFileWidth(cfg)),
			rec.AnalyzerUsed,
			strconv.Itoa(rec.IssuesCount),
			fmtFloat(rec.Complexity),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeHistoryCSV writes the history ledger in CSV format.
func writeHistoryCSV(w *csv.Writer, records []schema.HistoryRecord, fmtFloat func(float64) string, intFmt string) error {
	headerRow := []string{
		"timestamp",
		"filename",
		"analyzer_used",
		"issues_count",
		"complexity",
	}
	if err := w.Write(headerRow); err != nil {
		return err
	}
	for _, rec := range records {
		record := []string{
			rec.Timestamp.Format(contract.DateTimeFormat),
			rec.Filename,
			rec.AnalyzerUsed,
			fmt.Sprintf(intFmt, rec.IssuesCount),
			fmtFloat(rec.Complexity),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}
