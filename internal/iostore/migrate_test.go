package iostore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prismscan/prism/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_UnsupportedBackends(t *testing.T) {
	err := Migrate(schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported")

	err = Migrate(schema.MemoryBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported")
}

func TestMigrate_SQLite(t *testing.T) {
	// Create a temporary database file for testing
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test_migration.db")

	// Run migration to latest version
	err := Migrate(schema.SQLiteBackend, dbPath, -1)
	require.NoError(t, err)

	// Verify migration was successful by checking the database file exists
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)

	// Run migration again (should be a no-op)
	err = Migrate(schema.SQLiteBackend, dbPath, -1)
	assert.NoError(t, err)

	// Migrate to a specific version (version 2 has both tables)
	err = Migrate(schema.SQLiteBackend, dbPath, 2)
	assert.NoError(t, err)

	// Rollback to version 0
	err = Migrate(schema.SQLiteBackend, dbPath, 0)
	assert.NoError(t, err)

	// Migrate back up to version 1
	err = Migrate(schema.SQLiteBackend, dbPath, 1)
	assert.NoError(t, err)
}

func TestMigrate_SQLiteInMemory(t *testing.T) {
	// Test with in-memory database
	err := Migrate(schema.SQLiteBackend, ":memory:", -1)
	require.NoError(t, err)
}

func TestMigrate_TablesUsable(t *testing.T) {
	// The migrated schema must accept the same writes as the runtime schema.
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "migrated.db")

	err := Migrate(schema.SQLiteBackend, dbPath, -1)
	require.NoError(t, err)

	store, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	createdAt := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, testAnalysis("a-1", "alice", schema.StatusCompleted, createdAt)))

	got, err := store.Get(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserID)
}
