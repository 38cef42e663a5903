package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/barrace/internal/contract"
	"github.com/huangsam/barrace/internal/parquet"
)

// ErrNoRuns is returned when there is no run history to export.
var ErrNoRuns = errors.New("no run data found to export")

// ExecuteRunExport writes the run history held by store to outputFile as Parquet.
func ExecuteRunExport(w io.Writer, store contract.RunStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("run store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return ErrNoRuns
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total runs: %d\n", status.TotalRuns)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve runs: %w", err)
	}

	rows := parquet.ConvertRunRecords(runs)
	if err := parquet.WriteRunsParquet(rows, outputFile); err != nil {
		return fmt.Errorf("failed to write runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d runs to: %s\n", len(rows), outputFile)

	return nil
}
