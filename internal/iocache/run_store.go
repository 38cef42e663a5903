package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/barrace/internal/contract"
	"github.com/huangsam/barrace/schema"
)

// runsTable records one row per keyframe run.
const runsTable = "barrace_runs"

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (*RunStoreImpl, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled tracking
		return &RunStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetRunDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize run store: %w", err)
	}

	if _, err := db.Exec(getCreateRunsQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", runsTable, err)
	}

	return &RunStoreImpl{db: db, backend: backend}, nil
}

// getCreateRunsQuery returns the CREATE TABLE query for barrace_runs.
// It matches the first migration so either path yields the same table.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				source TEXT NOT NULL,
				entry_count INT NOT NULL DEFAULT 0,
				name_count INT NOT NULL DEFAULT 0,
				keyframe_count INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				source TEXT NOT NULL,
				entry_count INT NOT NULL DEFAULT 0,
				name_count INT NOT NULL DEFAULT 0,
				keyframe_count INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				source TEXT NOT NULL,
				entry_count INTEGER NOT NULL DEFAULT 0,
				name_count INTEGER NOT NULL DEFAULT 0,
				keyframe_count INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)
	}
}

// BeginRun creates a new run and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(startTime time.Time, source string, configParams map[string]any) (int64, error) {
	if rs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quoted := quoteTableName(runsTable, rs.backend)

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, source, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quoted)
		err = rs.db.QueryRow(query, startTime, source, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, source, config_params) VALUES (?, ?, ?)`, quoted)
		var result sql.Result
		result, err = rs.db.Exec(query, formatTime(startTime, rs.backend), source, string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	return runID, nil
}

// EndRun updates the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, summary schema.RunSummary) error {
	if rs.db == nil {
		return nil
	}

	quoted := quoteTableName(runsTable, rs.backend)

	row := rs.db.QueryRow(rebind(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quoted), rs.backend), runID)
	startTime, err := rs.scanTime(row)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	query := rebind(fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, entry_count = ?, name_count = ?, keyframe_count = ? WHERE run_id = ?`, quoted), rs.backend)
	_, err = rs.db.Exec(query, formatTime(endTime, rs.backend), durationMs,
		summary.EntryCount, summary.NameCount, summary.KeyframeCount, runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return nil
}

// scanTime reads a single time column, parsing the text form SQLite stores.
func (rs *RunStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if rs.backend != schema.SQLiteBackend {
		var t time.Time
		err := row.Scan(&t)
		return t, err
	}
	var s string
	if err := row.Scan(&s); err != nil {
		return time.Time{}, err
	}
	return parseTime(s)
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	quoted := quoteTableName(runsTable, rs.backend)

	row := rs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoted))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}
	status.TableSizes[runsTable] = int64(status.TotalRuns)

	if status.TotalRuns == 0 {
		return status, nil
	}

	row = rs.db.QueryRow(fmt.Sprintf("SELECT MAX(run_id) FROM %s", quoted))
	if err := row.Scan(&status.LastRunID); err != nil {
		return status, fmt.Errorf("failed to get last run id: %w", err)
	}

	var err error
	row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", quoted))
	if status.LastRunTime, err = rs.scanTime(row); err != nil {
		return status, fmt.Errorf("failed to get last run time: %w", err)
	}

	row = rs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quoted))
	if status.OldestRunTime, err = rs.scanTime(row); err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}

	row = rs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(keyframe_count), 0) FROM %s", quoted))
	if err := row.Scan(&status.TotalKeyframesBuilt); err != nil {
		return status, fmt.Errorf("failed to get total keyframes: %w", err)
	}

	return status, nil
}

// GetAllRuns retrieves every run from the store ordered by ID.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, start_time, end_time, run_duration_ms, source, entry_count, name_count, keyframe_count, config_params
		FROM %s ORDER BY run_id`, quoteTableName(runsTable, rs.backend))

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var startStr string
			var endStr *string
			if err := rows.Scan(&record.RunID, &startStr, &endStr, &record.RunDurationMs, &record.Source,
				&record.EntryCount, &record.NameCount, &record.KeyframeCount, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
			if record.StartTime, err = parseTime(startStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endStr != nil {
				endTime, err := parseTime(*endStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs, &record.Source,
				&record.EntryCount, &record.NameCount, &record.KeyframeCount, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan run: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}
