//go:build basic

package integration

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sqliteEnv keeps both SQLite stores inside dir.
func sqliteEnv(dir string) map[string]string {
	return map[string]string{
		"BARRACE_CACHE_BACKEND":    "sqlite",
		"BARRACE_CACHE_DB_CONNECT": filepath.Join(dir, "cache.db"),
		"BARRACE_RUN_BACKEND":      "sqlite",
		"BARRACE_RUN_DB_CONNECT":   filepath.Join(dir, "runs.db"),
	}
}

// TestKeyframesVerification checks the CSV keyframes of the sample source
// against its raw rows.
func TestKeyframesVerification(t *testing.T) {
	env := sqliteEnv(t.TempDir())
	out, err := runBarrace(t, env, "keyframes", brandsCSV, "--output", "csv", "--interpolations", "4", "--range", "2")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	header, records := rows[0], rows[1:]
	assert.Equal(t, []string{"frame", "date", "name", "value", "rank", "prev_rank", "next_rank", "prev_value", "next_value"}, header)

	// 3 dates with 4 frames per interval, 3 names per frame
	require.Len(t, records, 9*3)

	ranksByFrame := map[string][]int{}
	for _, r := range records {
		rank, err := strconv.Atoi(r[4])
		require.NoError(t, err)
		assert.LessOrEqual(t, rank, 2)
		ranksByFrame[r[0]] = append(ranksByFrame[r[0]], rank)
	}
	for frame, ranks := range ranksByFrame {
		assert.Equal(t, []int{0, 1, 2}, ranks, "frame %s", frame)
	}

	// Frame 0 carries the first date verbatim
	assert.Equal(t, []string{"0", "2000-01-01T00:00:00Z", "Coca-Cola", "72537", "0"}, records[0][:5])
	// Frame 8 carries the last date
	assert.Equal(t, "2002-01-01T00:00:00Z", records[len(records)-1][1])
}

// TestRunTrackingSQLite records a run, then inspects, exports and clears it.
func TestRunTrackingSQLite(t *testing.T) {
	dir := t.TempDir()
	env := sqliteEnv(dir)

	_, err := runBarrace(t, env, "runs", "migrate")
	require.NoError(t, err)

	source := serveCSV(t)
	_, err = runBarrace(t, env, "keyframes", source, "--output", "json", "--output-file", filepath.Join(dir, "race.json"))
	require.NoError(t, err)

	status, err := runBarrace(t, env, "runs", "status")
	require.NoError(t, err)
	assert.Contains(t, status, "Total Runs: 1")
	assert.Contains(t, status, "Total Keyframes Built: 21")

	cacheStatus, err := runBarrace(t, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, cacheStatus, "Total Entries: 1")

	exportFile := filepath.Join(dir, "runs.parquet")
	_, err = runBarrace(t, env, "runs", "export", "--output-file", exportFile)
	require.NoError(t, err)
	info, err := os.Stat(exportFile)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	_, err = runBarrace(t, env, "runs", "clear")
	require.NoError(t, err)
	_, err = runBarrace(t, env, "cache", "clear")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "runs.db"))
	assert.True(t, os.IsNotExist(err))
}

// TestKeyframesRejectsBadInput checks that failures exit non-zero.
func TestKeyframesRejectsBadInput(t *testing.T) {
	env := sqliteEnv(t.TempDir())

	_, err := runBarrace(t, env, "keyframes", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)

	_, err = runBarrace(t, env, "keyframes", brandsCSV, "--interpolations", "0")
	assert.Error(t, err)
}
