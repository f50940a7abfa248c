package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prismscan/prism/internal/contract"
	"github.com/prismscan/prism/internal/iostore"
	"github.com/prismscan/prism/schema"
)

// storeSetup loads minimal configuration needed for database operations.
// This is used by commands that need store access without full shared setup.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get persistence-related config values
	backend := schema.DatabaseBackend(viper.GetString("backend"))
	connStr := viper.GetString("database-connection-string")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize persistence with the loaded config
	if err := iostore.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}

	cfg.Backend = backend
	cfg.DBConnect = connStr

	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for database commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// migrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func migrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get persistence-related config values
	backend := schema.DatabaseBackend(viper.GetString("backend"))
	connStr := viper.GetString("database-connection-string")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetDBFilePath()
	}

	cfg.Backend = backend
	cfg.DBConnect = connStr

	return nil
}

// migrateSetupWrapper wraps migrateSetup to provide PreRunE for the migrate command.
func migrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return migrateSetup()
}

// dbCmd focused on persistence management.
//
// Note: db subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by analysis commands. This avoids engine assembly
// and complex config processing for simple database operations.
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the analysis database (status, clear, migrations)",
	Long: `Manage the database that stores analyses and the history ledger.

Prism persists every analysis so results survive process restarts and
can be listed, exported and aggregated later.

Supported backends: SQLite (default), MySQL, PostgreSQL, memory, or none

Subcommands:
  status  - Show store statistics and connection info
  clear   - Remove all persisted data
  migrate - Run database schema migrations

Examples:
  # Check store status
  prism db status

  # Run pending schema migrations after an upgrade
  prism db migrate`,
}

// dbStatusCmd shows store status.
var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show detailed information about the analysis store.

Displays:
- Backend type and connection status
- Total number of stored analyses
- Completed and failed counts
- Last analysis timestamp

Use this to:
- Verify persistence is working and connected
- Monitor data accumulation over time
- Debug database connection issues

Examples:
  # Check store status
  prism db status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iostore.Manager.GetAnalysisStore().GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		iostore.PrintStoreStatus(status)
	},
}

// dbClearCmd clears all persisted data.
var dbClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all persisted analyses and history data",
	Long: `Delete all stored analyses and history entries from the configured backend.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the prism tables

Examples:
  # Export before clearing
  prism export --out backup
  prism db clear

  # Clear MySQL data (set connection string via env variable)
  PRISM_BACKEND=mysql PRISM_DATABASE_CONNECTION_STRING="..." prism db clear`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ClearStores(cfg.Backend, contract.GetDBFilePath(), cfg.DBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// dbMigrateCmd runs database migrations for the analysis store.
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the analysis store.

Migrations allow:
- Upgrading to new schema versions when Prism is updated
- Safely modifying database structure without data loss
- Rolling back schema changes if needed

By default, migrates to the latest version. Use --target for specific versions.

Examples:
  # Migrate to latest version (default)
  prism db migrate

  # Migrate to specific version
  prism db migrate --target 2

  # Rollback to initial state
  prism db migrate --target 0`,
	PreRunE: migrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target")
		if err := iostore.Migrate(cfg.Backend, cfg.DBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
