// Package agg has rollup and parsing logic for tabular time series data.
package agg

import (
	"slices"
	"time"

	"github.com/huangsam/barrace/schema"
	"github.com/samber/lo"
)

// Rollup groups observations by date and then by name. The first value seen
// for a (date, name) pair wins and later duplicates are ignored.
// Entries come back in ascending date order. Names are the union of every
// observed name in first-seen order.
func Rollup(observations []schema.Observation) ([]schema.RollupEntry, []string) {
	byDate := make(map[time.Time]map[string]float64)
	for _, o := range observations {
		date := o.Date.UTC() // one key per instant regardless of zone
		values, ok := byDate[date]
		if !ok {
			values = make(map[string]float64)
			byDate[date] = values
		}
		if _, seen := values[o.Name]; !seen {
			values[o.Name] = o.Value
		}
	}

	dates := lo.Keys(byDate)
	slices.SortFunc(dates, func(a, b time.Time) int {
		return a.Compare(b)
	})

	entries := make([]schema.RollupEntry, 0, len(dates))
	for _, date := range dates {
		entries = append(entries, schema.RollupEntry{Date: date, Values: byDate[date]})
	}

	names := lo.Uniq(lo.Map(observations, func(o schema.Observation, _ int) string {
		return o.Name
	}))
	return entries, names
}

// Summarize bundles a rollup with its source for reporting.
func Summarize(source string, entries []schema.RollupEntry, names []string) schema.RollupSummary {
	return schema.RollupSummary{Source: source, Entries: entries, Names: names}
}
