package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// RecordKey identifies a RankedRecord by the keyframe it lives in and its entity name.
type RecordKey struct {
	Frame int
	Name  string
}

// String renders the key as "frame:name".
func (k RecordKey) String() string {
	return strconv.Itoa(k.Frame) + ":" + k.Name
}

// MarshalText lets RecordKey be used as a JSON object key and value.
func (k RecordKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses "frame:name". Only the first colon separates the parts,
// so names may contain colons.
func (k *RecordKey) UnmarshalText(text []byte) error {
	frameStr, name, ok := strings.Cut(string(text), ":")
	if !ok {
		return fmt.Errorf("invalid record key %q: expected frame:name", text)
	}
	frame, err := strconv.Atoi(frameStr)
	if err != nil {
		return fmt.Errorf("invalid record key %q: %w", text, err)
	}
	k.Frame = frame
	k.Name = name
	return nil
}

// Linkage maps a record to the same entity's record in an adjacent keyframe.
type Linkage map[RecordKey]RecordKey

// KeyframeResult is the full output of keyframe synthesis.
// It is built once per invocation and never mutated afterwards.
type KeyframeResult struct {
	Keyframes []Keyframe `json:"keyframes"`
	Prev      Linkage    `json:"prev"`
	Next      Linkage    `json:"next"`
}

// Record returns the record addressed by key.
func (r KeyframeResult) Record(key RecordKey) (RankedRecord, bool) {
	if key.Frame < 0 || key.Frame >= len(r.Keyframes) {
		return RankedRecord{}, false
	}
	for _, rec := range r.Keyframes[key.Frame].Records {
		if rec.Name == key.Name {
			return rec, true
		}
	}
	return RankedRecord{}, false
}

// PrevOf returns the entity's record in the previous keyframe.
// The first appearance of an entity has no predecessor and resolves to itself.
func (r KeyframeResult) PrevOf(key RecordKey) RankedRecord {
	rec, _ := r.Record(r.PrevKey(key))
	return rec
}

// NextOf returns the entity's record in the next keyframe.
// The last appearance of an entity has no successor and resolves to itself.
func (r KeyframeResult) NextOf(key RecordKey) RankedRecord {
	rec, _ := r.Record(r.NextKey(key))
	return rec
}

// PrevKey returns the key of the entity's previous record, or key itself.
func (r KeyframeResult) PrevKey(key RecordKey) RecordKey {
	if prev, ok := r.Prev[key]; ok {
		return prev
	}
	return key
}

// NextKey returns the key of the entity's next record, or key itself.
func (r KeyframeResult) NextKey(key RecordKey) RecordKey {
	if next, ok := r.Next[key]; ok {
		return next
	}
	return key
}

// Index maps every record of the result by key. Build it once before
// resolving neighbours for many records.
func (r KeyframeResult) Index() RecordIndex {
	n := 0
	for _, kf := range r.Keyframes {
		n += len(kf.Records)
	}
	records := make(map[RecordKey]RankedRecord, n)
	for _, kf := range r.Keyframes {
		for _, rec := range kf.Records {
			records[RecordKey{Frame: kf.Index, Name: rec.Name}] = rec
		}
	}
	return RecordIndex{result: r, records: records}
}

// RecordIndex resolves records and their neighbours in constant time.
type RecordIndex struct {
	result  KeyframeResult
	records map[RecordKey]RankedRecord
}

// Record returns the record addressed by key.
func (x RecordIndex) Record(key RecordKey) (RankedRecord, bool) {
	rec, ok := x.records[key]
	return rec, ok
}

// PrevOf is KeyframeResult.PrevOf backed by the index.
func (x RecordIndex) PrevOf(key RecordKey) RankedRecord {
	return x.records[x.result.PrevKey(key)]
}

// NextOf is KeyframeResult.NextOf backed by the index.
func (x RecordIndex) NextOf(key RecordKey) RankedRecord {
	return x.records[x.result.NextKey(key)]
}

// Last returns the final keyframe, or false if there are none.
func (r KeyframeResult) Last() (Keyframe, bool) {
	if len(r.Keyframes) == 0 {
		return Keyframe{}, false
	}
	return r.Keyframes[len(r.Keyframes)-1], true
}
