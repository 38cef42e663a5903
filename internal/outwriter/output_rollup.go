package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/barrace/internal/contract"
	"github.com/huangsam/barrace/internal/parquet"
	"github.com/huangsam/barrace/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteRollupResults outputs a rollup, dispatching based on the output format configured.
func WriteRollupResults(summary schema.RollupSummary, cfg *contract.Config, duration time.Duration) error {
	fmtValue, fmtRaw := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON rollup"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRollupCSV(w, summary, fmtRaw)
		}, "Wrote CSV rollup"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertRollup(summary.Entries, summary.Names))
		}, "Wrote Parquet rollup"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRollupTable(w, summary, cfg, fmtValue, duration)
		}, "Wrote rollup table")
	}
	return nil
}

// writeRollupTable prints every (date, name) cell, zero-filling absent names.
func writeRollupTable(w io.Writer, summary schema.RollupSummary, cfg *contract.Config, fmtValue func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "Name", "Value"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg)
	var data [][]string
	for _, e := range summary.Entries {
		date := e.Date.Format(contract.DateTimeFormat)
		for _, name := range summary.Names {
			data = append(data, []string{date, contract.TruncateName(name, nameWidth), fmtValue(e.ValueOf(name))})
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Rolled up %d dates and %d names from %s in %v\n",
		len(summary.Entries), len(summary.Names), summary.Source, duration); err != nil {
		return err
	}
	return nil
}

// writeRollupCSV writes the rollup in long form: date, name, value.
func writeRollupCSV(w io.Writer, summary schema.RollupSummary, fmtRaw func(float64) string) error {
	return writeCSVWithHeader(w, []string{"date", "name", "value"}, func(cw *csv.Writer) error {
		for _, e := range summary.Entries {
			date := e.Date.Format(contract.DateTimeFormat)
			for _, name := range summary.Names {
				if err := cw.Write([]string{date, name, fmtRaw(e.ValueOf(name))}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
