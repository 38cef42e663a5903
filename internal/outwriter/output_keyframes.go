package outwriter

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/barrace/core/algo"
	"github.com/huangsam/barrace/internal/contract"
	"github.com/huangsam/barrace/internal/parquet"
	"github.com/huangsam/barrace/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteKeyframeResults outputs keyframes, dispatching based on the output format configured.
func WriteKeyframeResults(result schema.KeyframeResult, summary schema.RollupSummary, cfg *contract.Config, duration time.Duration) error {
	fmtValue, fmtRaw := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeKeyframesCSV(w, result, fmtRaw)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.Write(w, parquet.ConvertKeyframes(result))
		}, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeKeyframesTable(w, result, summary, cfg, fmtValue, duration)
		}, "Wrote table")
	}
	return nil
}

// writeKeyframesTable renders the visible records of every keyframe along
// with the rank each bar comes from and moves to.
func writeKeyframesTable(w io.Writer, result schema.KeyframeResult, summary schema.RollupSummary, cfg *contract.Config, fmtValue func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Frame", "Date", "Rank", "Name", "Value", "Label", "Prev", "Next"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg)
	dateFormat := cfg.DateFormat
	if dateFormat == "" {
		dateFormat = contract.DefaultDateFormat
	}

	var data [][]string
	idx := result.Index()
	for _, kf := range result.Keyframes {
		records := kf.Records
		if !cfg.ShowOverflow {
			records = algo.Visible(records, cfg.Range)
		}
		for _, rec := range records {
			key := schema.RecordKey{Frame: kf.Index, Name: rec.Name}
			data = append(data, []string{
				strconv.Itoa(kf.Index),
				kf.Date.Format(dateFormat),
				formatRank(rec.Rank, cfg.Range),
				contract.TruncateName(rec.Name, nameWidth),
				fmtValue(rec.Value),
				rankLabel(rec.Rank, cfg),
				formatRank(idx.PrevOf(key).Rank, cfg.Range),
				formatRank(idx.NextOf(key).Rank, cfg.Range),
			})
		}
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Built %d keyframes from %d dates and %d names (range: %d, interpolations: %d)\n",
		len(result.Keyframes), len(summary.Entries), len(summary.Names), cfg.Range, cfg.Interpolations); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Keyframes completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// formatRank shows a 1-based place, or the cutoff marker for hidden bars.
func formatRank(rank, cutoff int) string {
	if rank >= cutoff {
		return ">" + strconv.Itoa(cutoff)
	}
	return strconv.Itoa(rank + 1)
}

func rankLabel(rank int, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(rank, cfg.Range)
	}
	return contract.GetPlainLabel(rank, cfg.Range)
}
