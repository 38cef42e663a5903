package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/huangsam/barrace/internal/contract"
	"github.com/huangsam/barrace/schema"
)

// keyframesCSVHeader lists one column per field of a flattened record.
var keyframesCSVHeader = []string{
	"frame",
	"date",
	"name",
	"value",
	"rank",
	"prev_rank",
	"next_rank",
	"prev_value",
	"next_value",
}

// writeKeyframesCSV writes one row per record of every keyframe. Values are
// written at full precision since the rows feed further rendering.
func writeKeyframesCSV(w io.Writer, result schema.KeyframeResult, fmtRaw func(float64) string) error {
	idx := result.Index()
	return writeCSVWithHeader(w, keyframesCSVHeader, func(cw *csv.Writer) error {
		for _, kf := range result.Keyframes {
			date := kf.Date.Format(contract.DateTimeFormat)
			for _, rec := range kf.Records {
				key := schema.RecordKey{Frame: kf.Index, Name: rec.Name}
				prev, next := idx.PrevOf(key), idx.NextOf(key)
				row := []string{
					strconv.Itoa(kf.Index),
					date,
					rec.Name,
					fmtRaw(rec.Value),
					strconv.Itoa(rec.Rank),
					strconv.Itoa(prev.Rank),
					strconv.Itoa(next.Rank),
					fmtRaw(prev.Value),
					fmtRaw(next.Value),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
