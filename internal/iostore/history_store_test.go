package iostore

import (
	"context"
	"testing"
	"time"

	"github.com/prismscan/prism/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHistoryRecord builds a history entry for store tests.
func testHistoryRecord(filename, analyzer string, issues int, ts time.Time) schema.HistoryRecord {
	return schema.HistoryRecord{
		Filename:     filename,
		AnalyzerUsed: analyzer,
		IssuesCount:  issues,
		Complexity:   float64(issues) + 1,
		Timestamp:    ts,
	}
}

func TestHistoryStore_NoneBackend(t *testing.T) {
	ctx := context.Background()
	store, err := NewHistoryStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	err = store.Append(ctx, testHistoryRecord("a.ts", "typescript-security", 1, time.Now()), 7.5, false)
	assert.NoError(t, err)

	records, err := store.History(ctx, 0)
	assert.NoError(t, err)
	assert.Empty(t, records)

	stats, err := store.UsageStats(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, stats.TotalAnalyses)

	summary, err := store.Summary(ctx)
	assert.NoError(t, err)
	assert.Equal(t, schema.UsageSummary{}, summary)

	assert.NoError(t, store.Clear(ctx))
	assert.NoError(t, store.Close())
}

func TestHistoryStore_AppendAndHistory(t *testing.T) {
	ctx := context.Background()
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, testHistoryRecord("a.ts", "typescript-security", 2, base), 7.5, false))
	require.NoError(t, store.Append(ctx, testHistoryRecord("b.py", "python-security", 0, base.Add(time.Minute)), 10.0, false))
	require.NoError(t, store.Append(ctx, testHistoryRecord("c.sql", "sql-review", 1, base.Add(2*time.Minute)), 8.2, false))

	// Full history, newest first
	records, err := store.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "c.sql", records[0].Filename)
	assert.Equal(t, "b.py", records[1].Filename)
	assert.Equal(t, "a.ts", records[2].Filename)
	assert.Equal(t, 2, records[2].IssuesCount)
	assert.True(t, records[2].Timestamp.Equal(base), "Timestamp should round-trip")

	// Limited history keeps only the newest entries
	records, err = store.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c.sql", records[0].Filename)
	assert.Equal(t, "b.py", records[1].Filename)
}

func TestHistoryStore_UsageStats(t *testing.T) {
	ctx := context.Background()
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	// Empty store yields zero counters with allocated maps
	stats, err := store.UsageStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalAnalyses)
	assert.NotNil(t, stats.ByAnalyzer)
	assert.NotNil(t, stats.ByDate)

	day1 := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 1, 16, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, testHistoryRecord("a.ts", "typescript-security", 2, day1), 7.5, false))
	require.NoError(t, store.Append(ctx, testHistoryRecord("b.ts", "typescript-security", 0, day1.Add(time.Hour)), 10.0, false))
	require.NoError(t, store.Append(ctx, testHistoryRecord("c.py", "python-security", 1, day2), 0.0, true))

	stats, err = store.UsageStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalAnalyses)
	assert.Equal(t, 1, stats.ErrorCount)
	assert.Equal(t, map[string]int{"typescript-security": 2, "python-security": 1}, stats.ByAnalyzer)
	assert.Equal(t, map[string]int{"2026-01-15": 2, "2026-01-16": 1}, stats.ByDate)
	assert.True(t, stats.LastAnalysisTime.Equal(day2))
}

func TestHistoryStore_Summary(t *testing.T) {
	ctx := context.Background()
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	// Empty ledger yields the zero summary
	summary, err := store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, schema.UsageSummary{}, summary)

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	latest := base.Add(time.Hour)
	require.NoError(t, store.Append(ctx, testHistoryRecord("a.ts", "typescript-security", 2, base), 8.0, false))
	require.NoError(t, store.Append(ctx, testHistoryRecord("b.py", "python-security", 4, latest), 4.0, true))

	summary, err = store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalFiles)
	assert.InDelta(t, 6.0, summary.AverageScore, 0.001)
	assert.Equal(t, 6, summary.TotalIssues)
	assert.InDelta(t, 4.0, summary.AverageComplexity, 0.001) // (3 + 5) / 2
	assert.InDelta(t, 0.5, summary.ErrorRate, 0.001)
	assert.True(t, summary.LastAnalysis.Equal(latest))
}

func TestHistoryStore_Clear(t *testing.T) {
	ctx := context.Background()
	store, err := NewHistoryStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, testHistoryRecord("a.ts", "typescript-security", 2, base), 7.5, false))
	require.NoError(t, store.Append(ctx, testHistoryRecord("b.py", "python-security", 0, base.Add(time.Minute)), 10.0, true))

	require.NoError(t, store.Clear(ctx))

	records, err := store.History(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	stats, err := store.UsageStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalAnalyses)
	assert.Equal(t, 0, stats.ErrorCount)

	summary, err := store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, schema.UsageSummary{}, summary)
}
