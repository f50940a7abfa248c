package outwriter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prismscan/prism/schema"
)

func sampleStatsModel() statsRenderModel {
	return statsRenderModel{
		Stats: schema.UsageStats{
			TotalAnalyses: 12,
			ByAnalyzer: map[string]int{
				"metrics,tsquality,tssec": 8,
				"metrics,sqlreview":       3,
				"none":                    1,
			},
			ByDate: map[string]int{
				"2026-08-24": 4,
				"2026-08-25": 8,
			},
			ErrorCount:       1,
			LastAnalysisTime: time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
		},
		Summary: schema.UsageSummary{
			TotalFiles:        12,
			AverageScore:      8.3,
			TotalIssues:       37,
			AverageComplexity: 4.2,
			ErrorRate:         1.0 / 12.0,
			LastAnalysis:      time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
		},
	}
}

func TestSortedAnalyzerCounts(t *testing.T) {
	rows := sortedAnalyzerCounts(map[string]int{
		"metrics":   5,
		"tssec":     9,
		"tsquality": 5,
	})

	require.Len(t, rows, 3)
	assert.Equal(t, "tssec", rows[0].Name)
	// Ties break by name
	assert.Equal(t, "metrics", rows[1].Name)
	assert.Equal(t, "tsquality", rows[2].Name)
}

func TestSortedDates(t *testing.T) {
	dates := sortedDates(map[string]int{
		"2026-08-25": 1,
		"2026-08-01": 2,
		"2026-08-10": 3,
	})
	assert.Equal(t, []string{"2026-08-01", "2026-08-10", "2026-08-25"}, dates)
}

func TestWriteStatsText(t *testing.T) {
	cfg := testConfig()
	fmtFloat, _ := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	err := writeStatsText(&buf, sampleStatsModel(), cfg, fmtFloat)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Prism usage")
	assert.Contains(t, out, "Total analyses: 12")
	assert.Contains(t, out, "Errors: 1")
	assert.Contains(t, out, "By analyzer:")
	assert.Contains(t, out, "metrics,tsquality,tssec")
	assert.Contains(t, out, "By date:")
	assert.Contains(t, out, "2026-08-25")
	assert.Contains(t, out, "Summary:")
	assert.Contains(t, out, "Error rate")
	assert.Contains(t, out, "8.3%")

	// Busiest analyzer is listed before the rest
	assert.Less(t,
		strings.Index(out, "metrics,tsquality,tssec"),
		strings.Index(out, "metrics,sqlreview"))
}

func TestWriteStatsTextEmpty(t *testing.T) {
	cfg := testConfig()
	fmtFloat, _ := createFormatters(cfg.Precision)

	var buf bytes.Buffer
	err := writeStatsText(&buf, statsRenderModel{}, cfg, fmtFloat)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Total analyses: 0")
	assert.Contains(t, out, "No analyses recorded yet.")
	assert.NotContains(t, out, "Summary:")
}

func TestWriteStatsCSV(t *testing.T) {
	fmtFloat, intFmt := createFormatters(2)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	err := writeStatsCSV(w, sampleStatsModel(), fmtFloat, intFmt)
	require.NoError(t, err)
	w.Flush()

	out := buf.String()
	assert.Contains(t, out, "metric,value")
	assert.Contains(t, out, "total_analyses,12")
	assert.Contains(t, out, "error_count,1")
	assert.Contains(t, out, "average_score,8.30")
	assert.Contains(t, out, "by_analyzer:none,1")
	assert.Contains(t, out, "by_date:2026-08-24,4")
}

func TestFormatStatsTime(t *testing.T) {
	assert.Empty(t, formatStatsTime(time.Time{}))
	assert.Equal(t, "2026-08-25T10:00:00Z",
		formatStatsTime(time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)))
}
