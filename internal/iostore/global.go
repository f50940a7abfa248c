package iostore

import (
	"fmt"
	"os"
	"sync"

	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/schema"
)

// Global Manager instance for the CLI path. Library consumers construct
// stores directly instead.
var (
	Manager   = &StoreManagerImpl{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global store manager with analysis and
// history stores on the same backend.
func InitStores(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		analysisStore, err := NewAnalysisStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize analysis store: %w", err)
			return
		}

		historyStore, err := NewHistoryStore(backend, connStr)
		if err != nil {
			_ = analysisStore.Close()
			initErr = fmt.Errorf("failed to initialize history store: %w", err)
			return
		}

		// Assign to global manager
		Manager.Lock()
		defer Manager.Unlock()
		Manager.analysis = analysisStore
		Manager.history = historyStore
	})

	// After once.Do, initErr will contain any error from the initialization block.
	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.analysis != nil {
			_ = Manager.analysis.Close()
		}
		if Manager.history != nil {
			_ = Manager.history.Close()
		}
	})
}

// ClearStores removes all persisted prism data for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the prism tables.
// For memory and none backends, it does nothing.
func ClearStores(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		// A non-empty connection string names the database file directly.
		if connStr != "" {
			dbFilePath = connStr
		}
		if dbFilePath == "" {
			dbFilePath = contract.GetDBFilePath()
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		for _, table := range []string{analysesTable, historyTable} {
			if err := clearSQLTable(backend, connStr, table); err != nil {
				return err
			}
		}
		return nil

	case schema.MemoryBackend, schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("%w for clearing: %s", contract.ErrUnknownBackend, backend)
	}
}

// clearSQLTable connects to the SQL database and drops the table if it exists.
func clearSQLTable(backend schema.DatabaseBackend, connStr, tableName string) error {
	db, err := openDatabase(backend, connStr)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(tableName, backend))
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", tableName, err)
	}
	return nil
}
