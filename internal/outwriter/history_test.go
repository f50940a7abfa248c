package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismscan/prism/schema"
)

func sampleHistory() []schema.HistoryRecord {
	return []schema.HistoryRecord{
		{
			Filename:     "handler.ts",
			AnalyzerUsed: "metrics,tsquality,tssec",
			IssuesCount:  3,
			Complexity:   12,
			Timestamp:    time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
		},
		{
			Filename:     "query.sql",
			AnalyzerUsed: "metrics,sqlreview",
			IssuesCount:  1,
			Complexity:   2,
			Timestamp:    time.Date(2026, 8, 24, 9, 30, 0, 0, time.UTC),
		},
	}
}

func TestWriteHistoryTable(t *testing.T) {
	cfg := testConfig()
	fmtFloat, _ := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	err := writeHistoryTable(&buf, sampleHistory(), cfg, fmtFloat)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Analysis history (2 entries)")
	assert.Contains(t, out, "handler.ts")
	assert.Contains(t, out, "query.sql")
	assert.Contains(t, out, "metrics,sqlreview")
}

func TestWriteHistoryTableEmpty(t *testing.T) {
	cfg := testConfig()
	fmtFloat, _ := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	err := writeHistoryTable(&buf, nil, cfg, fmtFloat)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "No analyses recorded yet.")
}

func TestWriteHistoryCSV(t *testing.T) {
	fmtFloat, intFmt := createFormatters(1)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	err := writeHistoryCSV(w, sampleHistory(), fmtFloat, intFmt)
	require.NoError(t, err)
	w.Flush()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3) // header + 2 rows

	assert.Contains(t, lines[0], "analyzer_used")
	assert.Contains(t, lines[1], "handler.ts")
	assert.Contains(t, lines[1], "12.0")
	assert.Contains(t, lines[2], "query.sql")
}

func TestPrintHistoryJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	err := writeJSON(&buf, sampleHistory())
	require.NoError(t, err)

	var decoded []schema.HistoryRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "handler.ts", decoded[0].Filename)
	assert.Equal(t, 3, decoded[0].IssuesCount)
}
