package algo

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/huangsam/barrace/schema"
)

var (
	// ErrInvalidInterpolations is returned when fewer than one frame per interval is requested.
	ErrInvalidInterpolations = errors.New("interpolations must be at least 1")

	// ErrInvalidCutoff is returned for a negative display cutoff.
	ErrInvalidCutoff = errors.New("cutoff must not be negative")
)

// KeyframeCount is the number of keyframes Synthesize produces for the given
// number of rollup entries.
func KeyframeCount(entries, interpolations int) int {
	if entries <= 1 {
		return 1
	}
	return (entries-1)*interpolations + 1
}

// Synthesize turns date-ordered rollup entries into interpolated, ranked keyframes.
//
// Every consecutive pair of entries (a, b) yields interpolations frames at
// fractions i/interpolations of the way from a to b, with both the date and
// every entity's value linearly blended. One final frame carries the exact
// values of the last entry. Each record is then linked to the same entity's
// record in the neighbouring frames through the Prev and Next maps.
func Synthesize(entries []schema.RollupEntry, names []string, interpolations, cutoff int) (schema.KeyframeResult, error) {
	if interpolations < 1 {
		return schema.KeyframeResult{}, fmt.Errorf("%w: got %d", ErrInvalidInterpolations, interpolations)
	}
	if cutoff < 0 {
		return schema.KeyframeResult{}, fmt.Errorf("%w: got %d", ErrInvalidCutoff, cutoff)
	}

	frames := make([]schema.Keyframe, 0, KeyframeCount(len(entries), interpolations))
	for k := 0; k+1 < len(entries); k++ {
		a, b := entries[k], entries[k+1]
		for i := range interpolations {
			f := float64(i) / float64(interpolations)
			records := Rank(func(name string) float64 {
				return a.ValueOf(name)*(1-f) + b.ValueOf(name)*f
			}, names, cutoff)
			frames = append(frames, schema.Keyframe{
				Index:   len(frames),
				Date:    lerpTime(a.Date, b.Date, f),
				Records: records,
			})
		}
	}

	final := schema.Keyframe{Index: len(frames), Records: []schema.RankedRecord{}}
	if len(entries) > 0 {
		last := entries[len(entries)-1]
		final.Date = last.Date
		final.Records = Rank(last.ValueOf, names, cutoff)
	}
	frames = append(frames, final)

	prev, next := link(frames)
	return schema.KeyframeResult{Keyframes: frames, Prev: prev, Next: next}, nil
}

// link walks the frames in order and connects consecutive records of each entity.
func link(frames []schema.Keyframe) (schema.Linkage, schema.Linkage) {
	prev := make(schema.Linkage)
	next := make(schema.Linkage)
	seen := make(map[string]schema.RecordKey)
	for _, frame := range frames {
		for _, rec := range frame.Records {
			key := schema.RecordKey{Frame: frame.Index, Name: rec.Name}
			if before, ok := seen[rec.Name]; ok {
				prev[key] = before
				next[before] = key
			}
			seen[rec.Name] = key
		}
	}
	return prev, next
}

// lerpTime returns the instant f of the way from a to b. It works in whole
// seconds plus nanoseconds so spans longer than time.Duration can hold
// still interpolate.
func lerpTime(a, b time.Time, f float64) time.Time {
	if f == 0 {
		return a
	}
	span := float64(b.Unix()-a.Unix()) + float64(b.Nanosecond()-a.Nanosecond())/1e9
	offset := span * f
	whole := math.Floor(offset)
	nanos := int64(math.Round((offset - whole) * 1e9))
	return time.Unix(a.Unix()+int64(whole), int64(a.Nanosecond())+nanos).In(a.Location())
}
