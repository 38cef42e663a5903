// Package algo has ranking and keyframe synthesis algorithms.
package algo

import (
	"math"
	"sort"

	"github.com/huangsam/barrace/schema"
)

// Rank evaluates valueOf for every name and sorts the records by value in
// descending order. Ties keep the order of names. Every position at or past
// cutoff collapses to rank cutoff, which marks the record as hidden.
func Rank(valueOf func(name string) float64, names []string, cutoff int) []schema.RankedRecord {
	records := make([]schema.RankedRecord, len(names))
	for i, name := range names {
		value := valueOf(name)
		if math.IsNaN(value) {
			value = 0
		}
		records[i] = schema.RankedRecord{Name: name, Value: value}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Value > records[j].Value
	})
	for i := range records {
		records[i].Rank = min(cutoff, i)
	}
	return records
}

// Visible returns the leading records whose rank is below cutoff.
func Visible(records []schema.RankedRecord, cutoff int) []schema.RankedRecord {
	n := 0
	for n < len(records) && records[n].Rank < cutoff {
		n++
	}
	return records[:n]
}
