// Package parquet provides data structures and functions for exporting barrace
// keyframes and run history to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/barrace/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single keyframe run with metadata.
// This struct maps to the barrace_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	Source        string `parquet:"source,snappy,dict"`
	EntryCount    int32  `parquet:"entry_count,snappy"`
	NameCount     int32  `parquet:"name_count,snappy"`
	KeyframeCount int32  `parquet:"keyframe_count,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// KeyframeRecord is one ranked record of one keyframe, flattened with the
// ranks of its linked neighbours so a bar can be tweened without the linkage maps.
type KeyframeRecord struct {
	Frame     int32     `parquet:"frame,snappy"`
	Date      time.Time `parquet:"date,snappy"`
	Name      string    `parquet:"name,snappy,dict"`
	Value     float64   `parquet:"value,snappy"`
	Rank      int32     `parquet:"rank,snappy"`
	PrevFrame int32     `parquet:"prev_frame,snappy"`
	PrevValue float64   `parquet:"prev_value,snappy"`
	PrevRank  int32     `parquet:"prev_rank,snappy"`
	NextFrame int32     `parquet:"next_frame,snappy"`
	NextValue float64   `parquet:"next_value,snappy"`
	NextRank  int32     `parquet:"next_rank,snappy"`
}

// RollupValue is one (date, name) cell of a rollup.
type RollupValue struct {
	Date  time.Time `parquet:"date,snappy"`
	Name  string    `parquet:"name,snappy,dict"`
	Value float64   `parquet:"value,snappy"`
}

// Write encodes data as a single Parquet file on w.
func Write[T any](w io.Writer, data []T) error {
	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close writes the footer; without it the file is unreadable
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile writes data to a new Parquet file at outputPath.
func WriteFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return WriteFile(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			Source:        record.Source,
			EntryCount:    record.EntryCount,
			NameCount:     record.NameCount,
			KeyframeCount: record.KeyframeCount,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertKeyframes flattens every record of every keyframe, resolving each
// record's previous and next neighbour through the result's linkage.
func ConvertKeyframes(result schema.KeyframeResult) []KeyframeRecord {
	var rows []KeyframeRecord
	idx := result.Index()
	for _, kf := range result.Keyframes {
		for _, rec := range kf.Records {
			key := schema.RecordKey{Frame: kf.Index, Name: rec.Name}
			prevKey, nextKey := result.PrevKey(key), result.NextKey(key)
			prev, next := idx.PrevOf(key), idx.NextOf(key)
			rows = append(rows, KeyframeRecord{
				Frame:     int32(kf.Index),
				Date:      kf.Date,
				Name:      rec.Name,
				Value:     rec.Value,
				Rank:      int32(rec.Rank),
				PrevFrame: int32(prevKey.Frame),
				PrevValue: prev.Value,
				PrevRank:  int32(prev.Rank),
				NextFrame: int32(nextKey.Frame),
				NextValue: next.Value,
				NextRank:  int32(next.Rank),
			})
		}
	}
	return rows
}

// ConvertRollup emits one row per date and name, with absent names as zero.
func ConvertRollup(entries []schema.RollupEntry, names []string) []RollupValue {
	rows := make([]RollupValue, 0, len(entries)*len(names))
	for _, e := range entries {
		for _, name := range names {
			rows = append(rows, RollupValue{Date: e.Date, Name: name, Value: e.ValueOf(name)})
		}
	}
	return rows
}
