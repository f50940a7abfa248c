// Package stats records terminal analysis outcomes and serves usage reporting.
package stats

import (
	"context"
	"time"

	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/schema"
)

// Service wraps a HistoryStore with recording and reporting behavior.
// Atomicity of an append with its counters is the store's contract, so
// the service itself holds no state and is safe for concurrent use.
type Service struct {
	store        contract.HistoryStore
	defaultLimit int
}

// NewService creates a stats service over the given history store.
// defaultLimit caps History calls that do not name their own limit.
func NewService(store contract.HistoryStore, defaultLimit int) *Service {
	if defaultLimit <= 0 {
		defaultLimit = contract.DefaultHistoryLimit
	}
	return &Service{store: store, defaultLimit: defaultLimit}
}

// Record appends one history entry for a terminal analysis. Failed
// analyses are recorded too and counted as errors.
func (s *Service) Record(ctx context.Context, analysis *schema.Analysis, analyzer string) error {
	timestamp := analysis.UpdatedAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	rec := schema.HistoryRecord{
		Filename:     analysis.Filename,
		AnalyzerUsed: analyzer,
		IssuesCount:  len(analysis.Issues),
		Complexity:   analysis.Metrics[schema.MetricComplexity],
		Timestamp:    timestamp,
	}

	failed := analysis.Status == schema.StatusFailed
	return s.store.Append(ctx, rec, analysis.GlobalScore, failed)
}

// History returns recent entries, newest first. A non-positive limit
// falls back to the configured default.
func (s *Service) History(ctx context.Context, limit int) ([]schema.HistoryRecord, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	return s.store.History(ctx, limit)
}

// UsageStats returns the aggregate usage counters.
func (s *Service) UsageStats(ctx context.Context) (schema.UsageStats, error) {
	return s.store.UsageStats(ctx)
}

// Summary returns the condensed reporting view of the ledger.
func (s *Service) Summary(ctx context.Context) (schema.UsageSummary, error) {
	return s.store.Summary(ctx)
}

// Clear removes all history entries and resets the counters.
func (s *Service) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}
