package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/barrace/core/algo"
	"github.com/huangsam/barrace/internal/contract"
	"github.com/huangsam/barrace/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	day2020 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	day2021 = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
)

// raceFixture is the two-entity race where B leads, then A overtakes.
func raceFixture(t *testing.T) (schema.KeyframeResult, schema.RollupSummary) {
	t.Helper()
	entries := []schema.RollupEntry{
		{Date: day2020, Values: map[string]float64{"A": 10, "B": 20}},
		{Date: day2021, Values: map[string]float64{"A": 30, "B": 5}},
	}
	names := []string{"A", "B"}
	result, err := algo.Synthesize(entries, names, 2, 2)
	require.NoError(t, err)
	return result, schema.RollupSummary{Source: "race.csv", Entries: entries, Names: names}
}

func testConfig() *contract.Config {
	return &contract.Config{
		Range:          2,
		Interpolations: 2,
		Output:         schema.TextOut,
		DateFormat:     "2006",
		Width:          120,
		CacheBackend:   schema.NoneBackend,
	}
}

func TestCreateFormatters(t *testing.T) {
	fmtValue, fmtRaw := createFormatters(0)
	assert.Equal(t, "72,537", fmtValue(72537))
	assert.Equal(t, "12.5", fmtRaw(12.5))
	assert.Equal(t, "72537", fmtRaw(72537))

	fmtValue, _ = createFormatters(2)
	assert.Equal(t, "1,234.50", fmtValue(1234.5))
}

func TestFormatRank(t *testing.T) {
	assert.Equal(t, "1", formatRank(0, 3))
	assert.Equal(t, "3", formatRank(2, 3))
	assert.Equal(t, ">3", formatRank(3, 3))
}

func TestNameWidth(t *testing.T) {
	cfg := &contract.Config{Width: 40}
	assert.Equal(t, 12, getMaxTableNameWidth(cfg))
	cfg.Width = 500
	assert.Equal(t, 48, getMaxTableNameWidth(cfg))
	cfg.Width = 100
	assert.Equal(t, 29, getMaxTableNameWidth(cfg))
}

func TestWriteKeyframesTable(t *testing.T) {
	result, summary := raceFixture(t)

	t.Run("visible records", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := testConfig()
		require.NoError(t, writeKeyframesTable(&buf, result, summary, cfg, func(v float64) string { return "v" }, time.Second))
		out := buf.String()
		assert.Contains(t, strings.ToUpper(out), "FRAME")
		assert.Contains(t, out, "Leader")
		assert.Contains(t, out, "Podium")
		assert.Contains(t, out, "2020")
		assert.Contains(t, out, "Built 3 keyframes from 2 dates and 2 names (range: 2, interpolations: 2)")
		assert.NotContains(t, out, "Hidden")
	})

	t.Run("cutoff hides trailing bars", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := testConfig()
		cfg.Range = 1
		fmtValue, _ := createFormatters(0)
		require.NoError(t, writeKeyframesTable(&buf, result, summary, cfg, fmtValue, time.Second))
		assert.NotContains(t, buf.String(), "Hidden")

		buf.Reset()
		cfg.ShowOverflow = true
		require.NoError(t, writeKeyframesTable(&buf, result, summary, cfg, fmtValue, time.Second))
		assert.Contains(t, buf.String(), "Hidden")
		assert.Contains(t, buf.String(), ">1")
	})
}

func TestWriteKeyframesCSV(t *testing.T) {
	result, _ := raceFixture(t)
	_, fmtRaw := createFormatters(0)

	var buf bytes.Buffer
	require.NoError(t, writeKeyframesCSV(&buf, result, fmtRaw))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, keyframesCSVHeader, rows[0])

	// frame, name, value, rank, prev_rank, next_rank, prev_value, next_value
	pick := func(r []string) []string { return []string{r[0], r[2], r[3], r[4], r[5], r[6], r[7], r[8]} }
	assert.Equal(t, []string{"0", "B", "20", "0", "0", "1", "20", "12.5"}, pick(rows[1]))
	assert.Equal(t, []string{"0", "A", "10", "1", "1", "0", "10", "20"}, pick(rows[2]))
	assert.Equal(t, []string{"1", "A", "20", "0", "1", "0", "10", "30"}, pick(rows[3]))
	assert.Equal(t, []string{"1", "B", "12.5", "1", "0", "1", "20", "5"}, pick(rows[4]))
	assert.Equal(t, []string{"2", "A", "30", "0", "0", "0", "20", "30"}, pick(rows[5]))
	assert.Equal(t, []string{"2", "B", "5", "1", "1", "1", "12.5", "5"}, pick(rows[6]))
	assert.Equal(t, "2020-01-01T00:00:00Z", rows[1][1])
	assert.Equal(t, "2021-01-01T00:00:00Z", rows[6][1])
}

func TestWriteKeyframeResultsToFile(t *testing.T) {
	result, summary := raceFixture(t)

	t.Run("json", func(t *testing.T) {
		cfg := testConfig()
		cfg.Output = schema.JSONOut
		cfg.OutputFile = filepath.Join(t.TempDir(), "kf.json")
		require.NoError(t, WriteKeyframeResults(result, summary, cfg, time.Second))

		data, err := os.ReadFile(cfg.OutputFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"1:A": "0:A"`)

		var decoded schema.KeyframeResult
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Len(t, decoded.Keyframes, 3)
		assert.Equal(t, result.Prev, decoded.Prev)
		assert.Equal(t, result.Next, decoded.Next)
	})

	t.Run("csv", func(t *testing.T) {
		cfg := testConfig()
		cfg.Output = schema.CSVOut
		cfg.OutputFile = filepath.Join(t.TempDir(), "kf.csv")
		require.NoError(t, WriteKeyframeResults(result, summary, cfg, time.Second))

		data, err := os.ReadFile(cfg.OutputFile)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), strings.Join(keyframesCSVHeader, ",")))
	})

	t.Run("parquet", func(t *testing.T) {
		cfg := testConfig()
		cfg.Output = schema.ParquetOut
		cfg.OutputFile = filepath.Join(t.TempDir(), "kf.parquet")
		require.NoError(t, WriteKeyframeResults(result, summary, cfg, time.Second))

		data, err := os.ReadFile(cfg.OutputFile)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("PAR1")))
	})

	t.Run("text", func(t *testing.T) {
		cfg := testConfig()
		cfg.OutputFile = filepath.Join(t.TempDir(), "kf.txt")
		require.NoError(t, NewOutWriter().WriteKeyframes(result, summary, cfg, time.Second))

		data, err := os.ReadFile(cfg.OutputFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Keyframes completed in 1s. Cache backend: none")
	})

	t.Run("unwritable path", func(t *testing.T) {
		cfg := testConfig()
		cfg.Output = schema.CSVOut
		cfg.OutputFile = filepath.Join(t.TempDir(), "missing", "kf.csv")
		assert.Error(t, WriteKeyframeResults(result, summary, cfg, time.Second))
	})
}
