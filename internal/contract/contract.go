// Package contract provides interfaces and shared utilities for the Prism CLI's internal architecture.
package contract

import (
	"context"
	"errors"

	"github.com/prismscan/prism/schema"
)

// ErrUnknownBackend indicates a persistence backend name that prism does not support.
var ErrUnknownBackend = errors.New("unknown storage backend")

// AnalysisStore defines the interface for persisting and querying analysis runs.
// This allows the storage layer to be mocked for testing.
type AnalysisStore interface {
	// Save atomically writes the full analysis record. Readers never
	// observe a partially written issue list or metric set.
	Save(ctx context.Context, analysis *schema.Analysis) error

	// Get returns the analysis with the given ID. A missing ID yields
	// sql.ErrNoRows regardless of backend.
	Get(ctx context.Context, id string) (*schema.Analysis, error)

	// GetByUser returns analyses submitted by a user, newest first,
	// skipping offset rows and returning at most limit rows.
	GetByUser(ctx context.Context, userID string, offset, limit int) ([]*schema.Analysis, error)

	// GetByStatus returns all analyses currently in the given lifecycle status.
	GetByStatus(ctx context.Context, status schema.Status) ([]*schema.Analysis, error)

	// GetWithMetrics returns the metric map for an analysis. An analysis
	// without metrics yields an empty map, not an error; a missing ID
	// yields sql.ErrNoRows.
	GetWithMetrics(ctx context.Context, id string) (map[string]float64, error)

	// GetAll returns every stored analysis, oldest first. Used by export.
	GetAll(ctx context.Context) ([]*schema.Analysis, error)

	// GetStatus returns status information about the analysis store.
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// HistoryStore defines the interface for the analysis history ledger and
// its derived usage counters. Append folds the counters in the same
// atomic step as the record insert, so readers see either the state
// before a record or the state after it, never in between.
type HistoryStore interface {
	// Append adds a history record and updates the usage counters.
	// The score and failed flag feed the summary aggregates.
	Append(ctx context.Context, rec schema.HistoryRecord, score float64, failed bool) error

	// History returns the most recent records, newest first, capped at
	// limit. A limit of zero or less returns every record.
	History(ctx context.Context, limit int) ([]schema.HistoryRecord, error)

	// UsageStats returns a snapshot of the aggregate usage counters.
	UsageStats(ctx context.Context) (schema.UsageStats, error)

	// Summary condenses the ledger into headline numbers.
	Summary(ctx context.Context) (schema.UsageSummary, error)

	// Clear removes all records and resets the counters.
	Clear(ctx context.Context) error

	// Close closes the underlying connection.
	Close() error
}

// StoreManager defines the interface for managing persistence stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetAnalysisStore() AnalysisStore
	GetHistoryStore() HistoryStore
}
