package agg

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/barrace/schema"
)

// ErrMalformedDate is returned when a date matches none of the configured layouts.
var ErrMalformedDate = errors.New("malformed date")

// ParseObservations converts raw rows into typed observations.
// A single unparseable date fails the whole batch; no partial result is returned.
// Values that are empty or non-numeric become 0 so the entity is never dropped.
func ParseObservations(rows []schema.RawRow, layouts []string) ([]schema.Observation, error) {
	if len(layouts) == 0 {
		layouts = schema.DefaultDateLayouts
	}

	observations := make([]schema.Observation, 0, len(rows))
	for i, row := range rows {
		date, err := ParseDate(row.Date, layouts)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		observations = append(observations, schema.Observation{
			Date:  date,
			Name:  strings.TrimSpace(row.Name),
			Value: ParseValue(row.Value),
		})
	}
	return observations, nil
}

// ParseDate tries each layout in order and returns the first match in UTC.
func ParseDate(s string, layouts []string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrMalformedDate)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
}

// ParseValue parses a numeric cell, tolerating whitespace and thousands separators.
// Anything that does not parse as a finite number becomes 0.
func ParseValue(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
