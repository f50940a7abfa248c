package iostore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/schema"
)

// analysesTable is the name of the table for analysis records.
const analysesTable = "prism_analyses"

// analysisColumns is the column list shared by every analysis query.
const analysisColumns = `id, user_id, filename, language, status, metrics, issues, suggestions, skipped,
	security_score, complexity_score, performance_score, quality_score, global_score,
	failure_kind, failure_detail, created_at, updated_at`

// AnalysisStoreImpl implements the AnalysisStore interface on SQL backends.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	switch backend {
	case schema.MemoryBackend:
		return NewMemoryAnalysisStore(), nil

	case schema.NoneBackend:
		// Return a no-op store for disabled persistence
		return &AnalysisStoreImpl{db: nil, backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(getCreateAnalysesQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", analysesTable, err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// getCreateAnalysesQuery returns the CREATE TABLE query for prism_analyses.
func getCreateAnalysesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(analysesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(100) NOT NULL,
				filename VARCHAR(512) NOT NULL,
				language VARCHAR(30) NOT NULL,
				status VARCHAR(20) NOT NULL,
				metrics TEXT,
				issues MEDIUMTEXT,
				suggestions TEXT,
				skipped TEXT,
				security_score DOUBLE NOT NULL,
				complexity_score DOUBLE NOT NULL,
				performance_score DOUBLE NOT NULL,
				quality_score DOUBLE NOT NULL,
				global_score DOUBLE NOT NULL,
				failure_kind VARCHAR(30),
				failure_detail TEXT,
				created_at DATETIME(6) NOT NULL,
				updated_at DATETIME(6) NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				filename TEXT NOT NULL,
				language TEXT NOT NULL,
				status TEXT NOT NULL,
				metrics TEXT,
				issues TEXT,
				suggestions TEXT,
				skipped TEXT,
				security_score DOUBLE PRECISION NOT NULL,
				complexity_score DOUBLE PRECISION NOT NULL,
				performance_score DOUBLE PRECISION NOT NULL,
				quality_score DOUBLE PRECISION NOT NULL,
				global_score DOUBLE PRECISION NOT NULL,
				failure_kind TEXT,
				failure_detail TEXT,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				filename TEXT NOT NULL,
				language TEXT NOT NULL,
				status TEXT NOT NULL,
				metrics TEXT,
				issues TEXT,
				suggestions TEXT,
				skipped TEXT,
				security_score REAL NOT NULL,
				complexity_score REAL NOT NULL,
				performance_score REAL NOT NULL,
				quality_score REAL NOT NULL,
				global_score REAL NOT NULL,
				failure_kind TEXT,
				failure_detail TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// getUpsertAnalysisQuery returns the UPSERT query for the backend.
func getUpsertAnalysisQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(analysesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE
				user_id = new.user_id, filename = new.filename, language = new.language,
				status = new.status, metrics = new.metrics, issues = new.issues,
				suggestions = new.suggestions, skipped = new.skipped,
				security_score = new.security_score, complexity_score = new.complexity_score,
				performance_score = new.performance_score, quality_score = new.quality_score,
				global_score = new.global_score, failure_kind = new.failure_kind,
				failure_detail = new.failure_detail, created_at = new.created_at,
				updated_at = new.updated_at`, quotedTableName, analysisColumns)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
			ON CONFLICT (id) DO UPDATE SET
				user_id = EXCLUDED.user_id, filename = EXCLUDED.filename, language = EXCLUDED.language,
				status = EXCLUDED.status, metrics = EXCLUDED.metrics, issues = EXCLUDED.issues,
				suggestions = EXCLUDED.suggestions, skipped = EXCLUDED.skipped,
				security_score = EXCLUDED.security_score, complexity_score = EXCLUDED.complexity_score,
				performance_score = EXCLUDED.performance_score, quality_score = EXCLUDED.quality_score,
				global_score = EXCLUDED.global_score, failure_kind = EXCLUDED.failure_kind,
				failure_detail = EXCLUDED.failure_detail, created_at = EXCLUDED.created_at,
				updated_at = EXCLUDED.updated_at`, quotedTableName, analysisColumns)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, quotedTableName, analysisColumns)
	}
}

// Save atomically writes the full analysis record via a single UPSERT.
func (as *AnalysisStoreImpl) Save(ctx context.Context, analysis *schema.Analysis) error {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	metricsJSON, err := json.Marshal(analysis.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	issuesJSON, err := json.Marshal(analysis.Issues)
	if err != nil {
		return fmt.Errorf("failed to marshal issues: %w", err)
	}
	suggestionsJSON, err := json.Marshal(analysis.Suggestions)
	if err != nil {
		return fmt.Errorf("failed to marshal suggestions: %w", err)
	}
	skippedJSON, err := json.Marshal(analysis.Skipped)
	if err != nil {
		return fmt.Errorf("failed to marshal skipped plugins: %w", err)
	}

	args := []any{
		analysis.ID, analysis.UserID, analysis.Filename, string(analysis.Language), string(analysis.Status),
		string(metricsJSON), string(issuesJSON), string(suggestionsJSON), string(skippedJSON),
		analysis.SecurityScore, analysis.ComplexityScore, analysis.PerformanceScore,
		analysis.QualityScore, analysis.GlobalScore,
		string(analysis.FailureKind), analysis.FailureDetail,
		formatTime(analysis.CreatedAt, as.backend), formatTime(analysis.UpdatedAt, as.backend),
	}

	if _, err := as.db.ExecContext(ctx, getUpsertAnalysisQuery(as.backend), args...); err != nil {
		return fmt.Errorf("failed to upsert analysis %s: %w", analysis.ID, err)
	}
	return nil
}

// Get returns the analysis with the given ID.
func (as *AnalysisStoreImpl) Get(ctx context.Context, id string) (*schema.Analysis, error) {
	// Report not found for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, sql.ErrNoRows
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = %s`,
		analysisColumns, quoteTableName(analysesTable, as.backend), as.placeholder(1))
	row := as.db.QueryRowContext(ctx, query, id)
	return as.scanAnalysis(row)
}

// GetByUser returns analyses submitted by a user, newest first.
func (as *AnalysisStoreImpl) GetByUser(ctx context.Context, userID string, offset, limit int) ([]*schema.Analysis, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	var query string
	switch as.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`,
			analysisColumns, quoteTableName(analysesTable, as.backend))
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
			analysisColumns, quoteTableName(analysesTable, as.backend))
	}

	return as.queryAnalyses(ctx, query, userID, limit, offset)
}

// GetByStatus returns all analyses currently in the given lifecycle status.
func (as *AnalysisStoreImpl) GetByStatus(ctx context.Context, status schema.Status) ([]*schema.Analysis, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE status = %s ORDER BY created_at DESC, id`,
		analysisColumns, quoteTableName(analysesTable, as.backend), as.placeholder(1))
	return as.queryAnalyses(ctx, query, string(status))
}

// GetWithMetrics returns the metric map for an analysis.
func (as *AnalysisStoreImpl) GetWithMetrics(ctx context.Context, id string) (map[string]float64, error) {
	// Report not found for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, sql.ErrNoRows
	}

	query := fmt.Sprintf(`SELECT metrics FROM %s WHERE id = %s`,
		quoteTableName(analysesTable, as.backend), as.placeholder(1))

	var metricsJSON sql.NullString
	if err := as.db.QueryRowContext(ctx, query, id).Scan(&metricsJSON); err != nil {
		return nil, err
	}

	metrics := map[string]float64{}
	if !metricsJSON.Valid || metricsJSON.String == "" || metricsJSON.String == "null" {
		return metrics, nil
	}
	if err := json.Unmarshal([]byte(metricsJSON.String), &metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics for analysis %s: %w", id, err)
	}
	if metrics == nil {
		metrics = map[string]float64{}
	}
	return metrics, nil
}

// GetAll returns every stored analysis, oldest first.
func (as *AnalysisStoreImpl) GetAll(ctx context.Context) ([]*schema.Analysis, error) {
	// Skip for NoneBackend
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at, id`,
		analysisColumns, quoteTableName(analysesTable, as.backend))
	return as.queryAnalyses(ctx, query)
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}

	if as.backend == schema.NoneBackend || as.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(analysesTable, as.backend)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)
	if err := as.db.QueryRowContext(ctx, countQuery).Scan(&status.TotalAnalyses); err != nil {
		return status, fmt.Errorf("failed to get total analyses: %w", err)
	}
	status.TableSizes[analysesTable] = int64(status.TotalAnalyses)

	if status.TotalAnalyses == 0 {
		return status, nil
	}

	lastQuery := fmt.Sprintf("SELECT MAX(created_at) FROM %s", quotedTableName)
	row := as.db.QueryRowContext(ctx, lastQuery)

	switch as.backend {
	case schema.SQLiteBackend:
		var lastStr string
		if err := row.Scan(&lastStr); err != nil {
			return status, fmt.Errorf("failed to get last analysis time: %w", err)
		}
		last, err := time.Parse(time.RFC3339Nano, lastStr)
		if err != nil {
			return status, fmt.Errorf("failed to parse last analysis time: %w", err)
		}
		status.LastAnalysisTime = last
	default: // MySQL and PostgreSQL store as native datetime
		if err := row.Scan(&status.LastAnalysisTime); err != nil {
			return status, fmt.Errorf("failed to get last analysis time: %w", err)
		}
	}

	return status, nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// queryAnalyses runs a multi-row analysis query and scans every row.
func (as *AnalysisStoreImpl) queryAnalyses(ctx context.Context, query string, args ...any) ([]*schema.Analysis, error) {
	rows, err := as.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*schema.Analysis
	for rows.Next() {
		analysis, err := as.scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, analysis)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}
	return results, nil
}

// rowScanner is satisfied by both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAnalysis reads one analysis row, handling per-backend time storage.
func (as *AnalysisStoreImpl) scanAnalysis(row rowScanner) (*schema.Analysis, error) {
	var analysis schema.Analysis
	var language, status, failureKind string
	var metricsJSON, issuesJSON, suggestionsJSON, skippedJSON sql.NullString
	var failureDetail sql.NullString

	dest := []any{
		&analysis.ID, &analysis.UserID, &analysis.Filename, &language, &status,
		&metricsJSON, &issuesJSON, &suggestionsJSON, &skippedJSON,
		&analysis.SecurityScore, &analysis.ComplexityScore, &analysis.PerformanceScore,
		&analysis.QualityScore, &analysis.GlobalScore,
		&failureKind, &failureDetail,
	}

	var createdStr, updatedStr string
	switch as.backend {
	case schema.SQLiteBackend:
		dest = append(dest, &createdStr, &updatedStr)
	default: // MySQL and PostgreSQL store as native datetime
		dest = append(dest, &analysis.CreatedAt, &analysis.UpdatedAt)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if as.backend == schema.SQLiteBackend {
		created, err := time.Parse(time.RFC3339Nano, createdStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		analysis.CreatedAt = created
		updated, err := time.Parse(time.RFC3339Nano, updatedStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		analysis.UpdatedAt = updated
	}

	analysis.Language = schema.Language(language)
	analysis.Status = schema.Status(status)
	analysis.FailureKind = schema.FaultKind(failureKind)
	analysis.FailureDetail = failureDetail.String

	if err := unmarshalJSONColumn(metricsJSON, &analysis.Metrics); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
	}
	if err := unmarshalJSONColumn(issuesJSON, &analysis.Issues); err != nil {
		return nil, fmt.Errorf("failed to unmarshal issues: %w", err)
	}
	if err := unmarshalJSONColumn(suggestionsJSON, &analysis.Suggestions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal suggestions: %w", err)
	}
	if err := unmarshalJSONColumn(skippedJSON, &analysis.Skipped); err != nil {
		return nil, fmt.Errorf("failed to unmarshal skipped plugins: %w", err)
	}

	return &analysis, nil
}

// unmarshalJSONColumn decodes a nullable JSON column into target, leaving
// target untouched for NULL or empty values.
func unmarshalJSONColumn(col sql.NullString, target any) error {
	if !col.Valid || col.String == "" || col.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), target)
}

// placeholder returns the n-th parameter placeholder for the backend.
func (as *AnalysisStoreImpl) placeholder(n int) string {
	switch as.backend {
	case schema.PostgreSQLBackend:
		return fmt.Sprintf("$%d", n)
	default: // SQLite and MySQL
		return "?"
	}
}

// sqliteTimeLayout pads fractional seconds to a fixed width so that
// lexicographic ordering of stored text matches chronological ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(sqliteTimeLayout)
	default:
		return t
	}
}
