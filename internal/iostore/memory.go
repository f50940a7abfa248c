package iostore

import (
	"context"
	"database/sql"
	"sync"

	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/schema"
)

// MemoryAnalysisStore is a process-local AnalysisStore. It backs the
// memory backend and the unit tests of packages that need a store.
type MemoryAnalysisStore struct {
	mu       sync.RWMutex
	analyses map[string]*schema.Analysis
	order    []string // IDs in first-save order
}

var _ contract.AnalysisStore = &MemoryAnalysisStore{} // Compile-time check

// NewMemoryAnalysisStore creates an empty in-memory analysis store.
func NewMemoryAnalysisStore() *MemoryAnalysisStore {
	return &MemoryAnalysisStore{analyses: make(map[string]*schema.Analysis)}
}

// Save stores a deep copy of the analysis, replacing any previous version.
func (ms *MemoryAnalysisStore) Save(_ context.Context, analysis *schema.Analysis) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.analyses[analysis.ID]; !exists {
		ms.order = append(ms.order, analysis.ID)
	}
	ms.analyses[analysis.ID] = analysis.Clone()
	return nil
}

// Get returns a copy of the analysis with the given ID.
func (ms *MemoryAnalysisStore) Get(_ context.Context, id string) (*schema.Analysis, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	analysis, ok := ms.analyses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return analysis.Clone(), nil
}

// GetByUser returns analyses submitted by a user, newest first.
func (ms *MemoryAnalysisStore) GetByUser(_ context.Context, userID string, offset, limit int) ([]*schema.Analysis, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var results []*schema.Analysis
	skipped := 0
	for i := len(ms.order) - 1; i >= 0; i-- {
		analysis := ms.analyses[ms.order[i]]
		if analysis.UserID != userID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(results) >= limit {
			break
		}
		results = append(results, analysis.Clone())
	}
	return results, nil
}

// GetByStatus returns all analyses in the given status, newest first.
func (ms *MemoryAnalysisStore) GetByStatus(_ context.Context, status schema.Status) ([]*schema.Analysis, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var results []*schema.Analysis
	for i := len(ms.order) - 1; i >= 0; i-- {
		analysis := ms.analyses[ms.order[i]]
		if analysis.Status == status {
			results = append(results, analysis.Clone())
		}
	}
	return results, nil
}

// GetWithMetrics returns a copy of the metric map for an analysis.
func (ms *MemoryAnalysisStore) GetWithMetrics(_ context.Context, id string) (map[string]float64, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	analysis, ok := ms.analyses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}

	metrics := make(map[string]float64, len(analysis.Metrics))
	for k, v := range analysis.Metrics {
		metrics[k] = v
	}
	return metrics, nil
}

// GetAll returns every stored analysis, oldest first.
func (ms *MemoryAnalysisStore) GetAll(_ context.Context) ([]*schema.Analysis, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	results := make([]*schema.Analysis, 0, len(ms.order))
	for _, id := range ms.order {
		results = append(results, ms.analyses[id].Clone())
	}
	return results, nil
}

// GetStatus returns status information about the memory store.
func (ms *MemoryAnalysisStore) GetStatus(_ context.Context) (schema.StoreStatus, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	status := schema.StoreStatus{
		Backend:       string(schema.MemoryBackend),
		Connected:     true,
		TotalAnalyses: len(ms.analyses),
		TableSizes:    map[string]int64{analysesTable: int64(len(ms.analyses))},
	}
	for _, analysis := range ms.analyses {
		if analysis.CreatedAt.After(status.LastAnalysisTime) {
			status.LastAnalysisTime = analysis.CreatedAt
		}
	}
	return status, nil
}

// Close is a no-op for the memory store.
func (ms *MemoryAnalysisStore) Close() error {
	return nil
}

// MemoryHistoryStore is a process-local HistoryStore. Counters are
// materialized and folded under the same lock as the append.
type MemoryHistoryStore struct {
	mu      sync.Mutex
	records []schema.HistoryRecord
	stats   schema.UsageStats

	totalScore      float64
	totalComplexity float64
	totalIssues     int
}

var _ contract.HistoryStore = &MemoryHistoryStore{} // Compile-time check

// NewMemoryHistoryStore creates an empty in-memory history store.
func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{
		stats: schema.UsageStats{
			ByAnalyzer: make(map[string]int),
			ByDate:     make(map[string]int),
		},
	}
}

// Append adds a history record and folds the usage counters in the same
// critical section.
func (ms *MemoryHistoryStore) Append(_ context.Context, rec schema.HistoryRecord, score float64, failed bool) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.records = append(ms.records, rec)

	ms.stats.TotalAnalyses++
	ms.stats.ByAnalyzer[rec.AnalyzerUsed]++
	ms.stats.ByDate[schema.DateBucket(rec.Timestamp)]++
	if failed {
		ms.stats.ErrorCount++
	}
	if rec.Timestamp.After(ms.stats.LastAnalysisTime) {
		ms.stats.LastAnalysisTime = rec.Timestamp
	}

	ms.totalScore += score
	ms.totalComplexity += rec.Complexity
	ms.totalIssues += rec.IssuesCount
	return nil
}

// History returns the most recent records, newest first.
func (ms *MemoryHistoryStore) History(_ context.Context, limit int) ([]schema.HistoryRecord, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	count := len(ms.records)
	if limit > 0 && limit < count {
		count = limit
	}

	records := make([]schema.HistoryRecord, 0, count)
	for i := len(ms.records) - 1; i >= 0 && len(records) < count; i-- {
		records = append(records, ms.records[i])
	}
	return records, nil
}

// UsageStats returns a snapshot of the aggregate usage counters.
func (ms *MemoryHistoryStore) UsageStats(_ context.Context) (schema.UsageStats, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.stats.Clone(), nil
}

// Summary condenses the ledger into headline numbers.
func (ms *MemoryHistoryStore) Summary(_ context.Context) (schema.UsageSummary, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	total := len(ms.records)
	if total == 0 {
		return schema.UsageSummary{}, nil
	}

	return schema.UsageSummary{
		TotalFiles:        total,
		AverageScore:      ms.totalScore / float64(total),
		TotalIssues:       ms.totalIssues,
		AverageComplexity: ms.totalComplexity / float64(total),
		ErrorRate:         float64(ms.stats.ErrorCount) / float64(total),
		LastAnalysis:      ms.stats.LastAnalysisTime,
	}, nil
}

// Clear removes all records and resets the counters.
func (ms *MemoryHistoryStore) Clear(_ context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.records = nil
	ms.stats = schema.UsageStats{
		ByAnalyzer: make(map[string]int),
		ByDate:     make(map[string]int),
	}
	ms.totalScore = 0
	ms.totalComplexity = 0
	ms.totalIssues = 0
	return nil
}

// Close is a no-op for the memory store.
func (ms *MemoryHistoryStore) Close() error {
	return nil
}
