package iostore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/prismscan/prism/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAnalysis builds a fully populated analysis for store tests.
func testAnalysis(id, userID string, status schema.Status, createdAt time.Time) *schema.Analysis {
	return &schema.Analysis{
		ID:       id,
		UserID:   userID,
		Filename: "handler.ts",
		Language: schema.LanguageTypeScript,
		Status:   status,
		Metrics:  map[string]float64{"complexity": 4, "loc": 120},
		Issues: []schema.Issue{
			{
				Type:     "eval_usage",
				Severity: schema.SeverityHigh,
				Category: schema.CategorySecurity,
				Message:  "Use of eval() allows arbitrary code execution",
				File:     "handler.ts",
				Line:     3,
				Column:   10,
			},
		},
		Suggestions:      []string{"Avoid eval(); use JSON.parse for data"},
		Skipped:          []string{"sql-review"},
		SecurityScore:    7.5,
		ComplexityScore:  9.0,
		PerformanceScore: 10.0,
		QualityScore:     0.82,
		GlobalScore:      7.9,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
}

func TestAnalysisStore_NoneBackend(t *testing.T) {
	ctx := context.Background()
	store, err := NewAnalysisStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	// Save should be a silent no-op for NoneBackend
	err = store.Save(ctx, testAnalysis("a-1", "alice", schema.StatusCompleted, time.Now()))
	assert.NoError(t, err)

	// Reads report nothing
	_, err = store.Get(ctx, "a-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	analyses, err := store.GetByUser(ctx, "alice", 0, 10)
	assert.NoError(t, err)
	assert.Empty(t, analyses)

	status, err := store.GetStatus(ctx)
	assert.NoError(t, err)
	assert.False(t, status.Connected)

	err = store.Close()
	assert.NoError(t, err)
}

func TestAnalysisStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() { _ = store.Close() }()

	createdAt := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	original := testAnalysis("a-1", "alice", schema.StatusCompleted, createdAt)
	require.NoError(t, store.Save(ctx, original))

	got, err := store.Get(ctx, "a-1")
	require.NoError(t, err)

	assert.Equal(t, original.ID, got.ID)
	assert.Equal(t, original.UserID, got.UserID)
	assert.Equal(t, original.Filename, got.Filename)
	assert.Equal(t, original.Language, got.Language)
	assert.Equal(t, original.Status, got.Status)
	assert.Equal(t, original.Metrics, got.Metrics)
	assert.Equal(t, original.Issues, got.Issues)
	assert.Equal(t, original.Suggestions, got.Suggestions)
	assert.Equal(t, original.Skipped, got.Skipped)
	assert.InDelta(t, original.SecurityScore, got.SecurityScore, 0.001)
	assert.InDelta(t, original.GlobalScore, got.GlobalScore, 0.001)
	assert.True(t, got.CreatedAt.Equal(createdAt), "CreatedAt should round-trip")
	assert.True(t, got.UpdatedAt.Equal(createdAt), "UpdatedAt should round-trip")
}

func TestAnalysisStore_GetMissing(t *testing.T) {
	ctx := context.Background()
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.Get(ctx, "no-such-id")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAnalysisStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	createdAt := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	pending := testAnalysis("a-1", "alice", schema.StatusPending, createdAt)
	pending.Issues = nil
	pending.Metrics = nil
	require.NoError(t, store.Save(ctx, pending))

	// Saving the same ID again must replace, not duplicate
	completed := testAnalysis("a-1", "alice", schema.StatusCompleted, createdAt)
	completed.UpdatedAt = createdAt.Add(2 * time.Second)
	require.NoError(t, store.Save(ctx, completed))

	got, err := store.Get(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, schema.StatusCompleted, got.Status)
	assert.Len(t, got.Issues, 1)
	assert.True(t, got.UpdatedAt.Equal(completed.UpdatedAt))

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "Upsert should not create a second row")
}

func TestAnalysisStore_GetByUser(t *testing.T) {
	ctx := context.Background()
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	ids := []string{"a-1", "a-2", "a-3", "a-4", "a-5"}
	for i, id := range ids {
		analysis := testAnalysis(id, "alice", schema.StatusCompleted, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.Save(ctx, analysis))
	}
	require.NoError(t, store.Save(ctx, testAnalysis("b-1", "bob", schema.StatusCompleted, base)))

	// First page, newest first
	page, err := store.GetByUser(ctx, "alice", 0, 3)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, "a-5", page[0].ID)
	assert.Equal(t, "a-4", page[1].ID)
	assert.Equal(t, "a-3", page[2].ID)

	// Second page
	page, err = store.GetByUser(ctx, "alice", 3, 3)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "a-2", page[0].ID)
	assert.Equal(t, "a-1", page[1].ID)

	// Unknown user yields nothing
	page, err = store.GetByUser(ctx, "carol", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestAnalysisStore_GetByStatus(t *testing.T) {
	ctx := context.Background()
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, testAnalysis("a-1", "alice", schema.StatusCompleted, base)))
	require.NoError(t, store.Save(ctx, testAnalysis("a-2", "alice", schema.StatusFailed, base.Add(time.Minute))))
	require.NoError(t, store.Save(ctx, testAnalysis("a-3", "bob", schema.StatusCompleted, base.Add(2*time.Minute))))

	completed, err := store.GetByStatus(ctx, schema.StatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 2)
	assert.Equal(t, "a-3", completed[0].ID)
	assert.Equal(t, "a-1", completed[1].ID)

	failed, err := store.GetByStatus(ctx, schema.StatusFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "a-2", failed[0].ID)

	processing, err := store.GetByStatus(ctx, schema.StatusProcessing)
	require.NoError(t, err)
	assert.Empty(t, processing)
}

func TestAnalysisStore_GetWithMetrics(t *testing.T) {
	ctx := context.Background()
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	withMetrics := testAnalysis("a-1", "alice", schema.StatusCompleted, base)
	require.NoError(t, store.Save(ctx, withMetrics))

	noMetrics := testAnalysis("a-2", "alice", schema.StatusPending, base)
	noMetrics.Metrics = nil
	require.NoError(t, store.Save(ctx, noMetrics))

	metrics, err := store.GetWithMetrics(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"complexity": 4, "loc": 120}, metrics)

	// An analysis without metrics yields an empty map, not an error
	metrics, err = store.GetWithMetrics(ctx, "a-2")
	require.NoError(t, err)
	assert.NotNil(t, metrics)
	assert.Empty(t, metrics)

	// A missing analysis is still a miss
	_, err = store.GetWithMetrics(ctx, "no-such-id")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAnalysisStore_GetAll(t *testing.T) {
	ctx := context.Background()
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, testAnalysis("a-2", "alice", schema.StatusCompleted, base.Add(time.Minute))))
	require.NoError(t, store.Save(ctx, testAnalysis("a-1", "alice", schema.StatusCompleted, base)))

	all, err = store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a-1", all[0].ID, "GetAll should order oldest first")
	assert.Equal(t, "a-2", all[1].ID)
}

func TestAnalysisStore_GetStatus(t *testing.T) {
	ctx := context.Background()
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(schema.SQLiteBackend), status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalAnalyses)

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	latest := base.Add(time.Minute)
	require.NoError(t, store.Save(ctx, testAnalysis("a-1", "alice", schema.StatusCompleted, base)))
	require.NoError(t, store.Save(ctx, testAnalysis("a-2", "alice", schema.StatusCompleted, latest)))

	status, err = store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalAnalyses)
	assert.Equal(t, int64(2), status.TableSizes[analysesTable])
	assert.True(t, status.LastAnalysisTime.Equal(latest))
}

func TestAnalysisStore_TimeOrderingAcrossSubsecond(t *testing.T) {
	// Stored text timestamps must order chronologically even when the
	// fractional seconds have different magnitudes.
	ctx := context.Background()
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	base := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	older := testAnalysis("a-1", "alice", schema.StatusCompleted, base.Add(100*time.Nanosecond))
	newer := testAnalysis("a-2", "alice", schema.StatusCompleted, base.Add(100*time.Millisecond))
	require.NoError(t, store.Save(ctx, older))
	require.NoError(t, store.Save(ctx, newer))

	page, err := store.GetByUser(ctx, "alice", 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "a-2", page[0].ID)
	assert.Equal(t, "a-1", page[1].ID)
}
