package schema

import "time"

// RunSummary is what a finished keyframe run reports to the run store.
type RunSummary struct {
	EntryCount    int
	NameCount     int
	KeyframeCount int
}

// RunRecord represents a row from the barrace_runs table.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	Source        string
	EntryCount    int32
	NameCount     int32
	KeyframeCount int32
	ConfigParams  *string
}
