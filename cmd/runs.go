package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/barrace/internal/contract"
	"github.com/huangsam/barrace/internal/iocache"
	"github.com/huangsam/barrace/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runBackendFromConfig reads and validates the run tracking backend.
// An empty backend means run tracking is disabled.
func runBackendFromConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backendStr := viper.GetString("run-backend")
	connStr := viper.GetString("run-db-connect")

	backend := schema.NoneBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid run backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads minimal configuration needed for run store operations.
func runsSetup() error {
	backend, connStr, err := runBackendFromConfig()
	if err != nil {
		return err
	}

	// No source caching for runs commands
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads the run backend without initializing stores or
// creating tables, so migrations can run on a fresh database.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := runBackendFromConfig()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunDBFilePath()
	}

	cfg.RunBackend = backend
	cfg.RunDBConnect = connStr

	return nil
}

// runStore returns the initialized run store or exits when tracking is disabled.
func runStore() contract.RunStore {
	store := iocache.Manager.GetRunStore()
	if store == nil {
		contract.LogFatal("Run tracking is not enabled", fmt.Errorf("set --run-backend to sqlite, mysql or postgresql"))
	}
	return store
}

// runsCmd focused on run history management.
//
// Note: Runs subcommands use minimal initialization (runsSetup) instead of
// the full sharedSetup, since they need no source.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage keyframe run tracking and exports",
	Long: `Manage the history of keyframe runs.

When --run-backend is set, every 'barrace keyframes' invocation records:
- Start and end time, and duration
- Source path or URL
- Number of dates, names and keyframes
- The synthesis parameters used

Keyframes themselves are never stored.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show run tracking statistics
  export  - Export runs to Parquet
  clear   - Remove all run history
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  barrace runs status --run-backend sqlite

  # Export for analysis in pandas/DuckDB
  barrace runs export --run-backend sqlite --output-file runs.parquet`,
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded keyframe runs",
	Long: `Delete all recorded runs and the migration history of the run store.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  barrace runs export --run-backend sqlite --output-file backup.parquet
  barrace runs clear --run-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearRuns(cfg.RunBackend, sqlitePath(cfg.RunDBConnect, contract.GetRunDBFilePath()), cfg.RunDBConnect); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsStatusCmd shows run tracking status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about keyframe run tracking.

Displays:
- Backend type and connection status
- Total number of runs stored
- Last and oldest run timestamps
- Total keyframes built across all runs
- Database table sizes

Examples:
  barrace runs status --run-backend sqlite`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := runStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(os.Stdout, status)
	},
}

// runsExportCmd exports the run history to a Parquet file.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for analytics",
	Long: `Export all recorded runs to a Parquet file.

Requires: --output-file parameter

Examples:
  barrace runs export --run-backend sqlite --output-file runs.parquet
  duckdb -c "SELECT source, keyframe_count FROM read_parquet('runs.parquet')"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunExport(os.Stdout, runStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  barrace runs migrate --run-backend sqlite

  # Rollback to initial state
  barrace runs migrate --run-backend sqlite --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(os.Stdout, cfg.RunBackend, cfg.RunDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
