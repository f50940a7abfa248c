package iostore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/schema"
)

// historyTable is the name of the table for the analysis history ledger.
const historyTable = "prism_history"

// HistoryStoreImpl implements the HistoryStore interface on SQL backends.
// Counters and summaries are derived from the ledger itself, so a single
// INSERT is the whole atomic step for Append.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	switch backend {
	case schema.MemoryBackend:
		return NewMemoryHistoryStore(), nil

	case schema.NoneBackend:
		// Return a no-op store for disabled persistence
		return &HistoryStoreImpl{db: nil, backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(getCreateHistoryQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", historyTable, err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// getCreateHistoryQuery returns the CREATE TABLE query for prism_history.
func getCreateHistoryQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(historyTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id BIGINT AUTO_INCREMENT PRIMARY KEY,
				filename VARCHAR(512) NOT NULL,
				analyzer VARCHAR(100) NOT NULL,
				issues_count INT NOT NULL,
				complexity DOUBLE NOT NULL,
				score DOUBLE NOT NULL,
				failed TINYINT NOT NULL,
				day VARCHAR(10) NOT NULL,
				created_at DATETIME(6) NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id BIGSERIAL PRIMARY KEY,
				filename TEXT NOT NULL,
				analyzer TEXT NOT NULL,
				issues_count INT NOT NULL,
				complexity DOUBLE PRECISION NOT NULL,
				score DOUBLE PRECISION NOT NULL,
				failed SMALLINT NOT NULL,
				day VARCHAR(10) NOT NULL,
				created_at TIMESTAMPTZ NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				filename TEXT NOT NULL,
				analyzer TEXT NOT NULL,
				issues_count INTEGER NOT NULL,
				complexity REAL NOT NULL,
				score REAL NOT NULL,
				failed INTEGER NOT NULL,
				day TEXT NOT NULL,
				created_at TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// Append adds a history record. The day bucket is computed on write so
// that per-date grouping behaves identically on every backend.
func (hs *HistoryStoreImpl) Append(ctx context.Context, rec schema.HistoryRecord, score float64, failed bool) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	failedInt := 0
	if failed {
		failedInt = 1
	}

	var query string
	switch hs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (filename, analyzer, issues_count, complexity, score, failed, day, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, quoteTableName(historyTable, hs.backend))
	default: // SQLite and MySQL
		query = fmt.Sprintf(`INSERT INTO %s (filename, analyzer, issues_count, complexity, score, failed, day, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, quoteTableName(historyTable, hs.backend))
	}

	_, err := hs.db.ExecContext(ctx, query,
		rec.Filename, rec.AnalyzerUsed, rec.IssuesCount, rec.Complexity,
		score, failedInt, schema.DateBucket(rec.Timestamp), formatTime(rec.Timestamp, hs.backend))
	if err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}
	return nil
}

// History returns the most recent records, newest first.
func (hs *HistoryStoreImpl) History(ctx context.Context, limit int) ([]schema.HistoryRecord, error) {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT filename, analyzer, issues_count, complexity, created_at FROM %s ORDER BY id DESC`,
		quoteTableName(historyTable, hs.backend))
	var args []any
	if limit > 0 {
		switch hs.backend {
		case schema.PostgreSQLBackend:
			query += " LIMIT $1"
		default: // SQLite and MySQL
			query += " LIMIT ?"
		}
		args = append(args, limit)
	}

	rows, err := hs.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.HistoryRecord
	for rows.Next() {
		var rec schema.HistoryRecord

		switch hs.backend {
		case schema.SQLiteBackend:
			var createdStr string
			if err := rows.Scan(&rec.Filename, &rec.AnalyzerUsed, &rec.IssuesCount, &rec.Complexity, &createdStr); err != nil {
				return nil, fmt.Errorf("failed to scan history record: %w", err)
			}
			created, err := time.Parse(time.RFC3339Nano, createdStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse history timestamp: %w", err)
			}
			rec.Timestamp = created
		default: // MySQL and PostgreSQL store as native datetime
			if err := rows.Scan(&rec.Filename, &rec.AnalyzerUsed, &rec.IssuesCount, &rec.Complexity, &rec.Timestamp); err != nil {
				return nil, fmt.Errorf("failed to scan history record: %w", err)
			}
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}
	return records, nil
}

// UsageStats derives the aggregate counters from the ledger inside one
// read transaction so that the counts come from a consistent snapshot.
func (hs *HistoryStoreImpl) UsageStats(ctx context.Context) (schema.UsageStats, error) {
	stats := schema.UsageStats{
		ByAnalyzer: make(map[string]int),
		ByDate:     make(map[string]int),
	}

	// Nothing recorded for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return stats, nil
	}

	tx, err := hs.db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to begin stats transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	quotedTableName := quoteTableName(historyTable, hs.backend)

	totalsQuery := fmt.Sprintf("SELECT COUNT(*), COALESCE(SUM(failed), 0) FROM %s", quotedTableName)
	if err := tx.QueryRowContext(ctx, totalsQuery).Scan(&stats.TotalAnalyses, &stats.ErrorCount); err != nil {
		return stats, fmt.Errorf("failed to get history totals: %w", err)
	}

	if stats.TotalAnalyses == 0 {
		return stats, nil
	}

	lastQuery := fmt.Sprintf("SELECT MAX(created_at) FROM %s", quotedTableName)
	row := tx.QueryRowContext(ctx, lastQuery)
	switch hs.backend {
	case schema.SQLiteBackend:
		var lastStr string
		if err := row.Scan(&lastStr); err != nil {
			return stats, fmt.Errorf("failed to get last analysis time: %w", err)
		}
		last, err := time.Parse(time.RFC3339Nano, lastStr)
		if err != nil {
			return stats, fmt.Errorf("failed to parse last analysis time: %w", err)
		}
		stats.LastAnalysisTime = last
	default: // MySQL and PostgreSQL store as native datetime
		if err := row.Scan(&stats.LastAnalysisTime); err != nil {
			return stats, fmt.Errorf("failed to get last analysis time: %w", err)
		}
	}

	if err := hs.scanGroupCounts(ctx, tx, "analyzer", stats.ByAnalyzer); err != nil {
		return stats, err
	}
	if err := hs.scanGroupCounts(ctx, tx, "day", stats.ByDate); err != nil {
		return stats, err
	}

	if err := tx.Commit(); err != nil {
		return stats, fmt.Errorf("failed to commit stats transaction: %w", err)
	}
	return stats, nil
}

// scanGroupCounts fills target with COUNT(*) grouped by the given column.
func (hs *HistoryStoreImpl) scanGroupCounts(ctx context.Context, tx *sql.Tx, column string, target map[string]int) error {
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s GROUP BY %s",
		column, quoteTableName(historyTable, hs.backend), column)

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to group history by %s: %w", column, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan %s group: %w", column, err)
		}
		target[key] = count
	}
	return rows.Err()
}

// Summary condenses the ledger into headline numbers with one aggregate query.
func (hs *HistoryStoreImpl) Summary(ctx context.Context) (schema.UsageSummary, error) {
	var summary schema.UsageSummary

	// Nothing recorded for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return summary, nil
	}

	quotedTableName := quoteTableName(historyTable, hs.backend)
	query := fmt.Sprintf(`SELECT COUNT(*), COALESCE(AVG(score), 0), COALESCE(SUM(issues_count), 0),
		COALESCE(AVG(complexity), 0), COALESCE(SUM(failed), 0), MAX(created_at) FROM %s`, quotedTableName)

	// MAX over an empty table is NULL, so the timestamp needs a nullable target.
	var errorCount int
	var lastRaw any
	switch hs.backend {
	case schema.SQLiteBackend:
		lastRaw = new(sql.NullString)
	default:
		lastRaw = new(sql.NullTime)
	}

	row := hs.db.QueryRowContext(ctx, query)
	if err := row.Scan(&summary.TotalFiles, &summary.AverageScore, &summary.TotalIssues,
		&summary.AverageComplexity, &errorCount, lastRaw); err != nil {
		return summary, fmt.Errorf("failed to get history summary: %w", err)
	}

	if summary.TotalFiles == 0 {
		return schema.UsageSummary{}, nil
	}

	summary.ErrorRate = float64(errorCount) / float64(summary.TotalFiles)

	switch v := lastRaw.(type) {
	case *sql.NullString:
		if v.Valid {
			last, err := time.Parse(time.RFC3339Nano, v.String)
			if err != nil {
				return summary, fmt.Errorf("failed to parse last analysis time: %w", err)
			}
			summary.LastAnalysis = last
		}
	case *sql.NullTime:
		summary.LastAnalysis = v.Time
	}

	return summary, nil
}

// Clear removes all records and resets the counters.
func (hs *HistoryStoreImpl) Clear(ctx context.Context) error {
	// Skip for NoneBackend
	if hs.backend == schema.NoneBackend || hs.db == nil {
		return nil
	}

	query := fmt.Sprintf("DELETE FROM %s", quoteTableName(historyTable, hs.backend))
	if _, err := hs.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}
