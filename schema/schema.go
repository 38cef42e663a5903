// Package schema has configs, models and global variables for all parts of barrace.
package schema

import "time"

// RawRow is a single row read from a tabular source before any coercion.
type RawRow struct {
	Date  string // Date cell as it appears in the source
	Name  string // Entity name cell
	Value string // Value cell, possibly empty or non-numeric
}

// Observation is a parsed input row. Multiple observations may share a date.
type Observation struct {
	Date  time.Time
	Name  string
	Value float64
}

// RollupEntry holds every entity value observed at one distinct date.
// Names missing from Values are treated as zero.
type RollupEntry struct {
	Date   time.Time          `json:"date"`
	Values map[string]float64 `json:"values"`
}

// ValueOf returns the value for name, or zero when the entry has no observation for it.
func (e RollupEntry) ValueOf(name string) float64 {
	return e.Values[name]
}

// RankedRecord is one entity's value and rank within a single keyframe.
type RankedRecord struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Rank  int     `json:"rank"` // 0-based; everything at or past the cutoff shares rank == cutoff
}

// Keyframe is one point of the animated timeline.
type Keyframe struct {
	Index   int            `json:"index"`
	Date    time.Time      `json:"date"`
	Records []RankedRecord `json:"records"`
}

// RollupSummary describes the rollup that fed a keyframe computation.
type RollupSummary struct {
	Source  string        `json:"source"`
	Entries []RollupEntry `json:"entries"`
	Names   []string      `json:"names"`
}
