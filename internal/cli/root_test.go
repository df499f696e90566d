package cli

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"search/internal/adapter/export"
)

func setupCorpus(t *testing.T) (dir string, queries string) {
	t.Helper()
	dir = t.TempDir()
	docs := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(filepath.Join(docs, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "one.txt"), []byte("Running dogs run quickly.\nThe dog sleeps."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "sub", "two.TXT"), []byte("Cats and dogs; cats everywhere!"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "skip.md"), []byte("dogs dogs dogs"), 0o644))

	queries = filepath.Join(dir, "queries.txt")
	require.NoError(t, os.WriteFile(queries, []byte("dog\ncats\n\nrun dog\ndog run\nzebra\n"), 0o644))
	return dir, queries
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestExecuteArgs_EndToEnd(t *testing.T) {
	dir, queries := setupCorpus(t)
	out := func(name string) string { return filepath.Join(dir, name) }

	err := ExecuteArgs([]string{
		"-config", out("none.yaml"),
		"-path", out("docs"),
		"-search", queries,
		"-index", out("index.json"),
		"-locations", out("locations.json"),
		"-results", out("results.json"),
		"-db", out("index.db"),
		"-metrics", out("metrics.prom"),
	})
	require.NoError(t, err)

	var locations map[string]int
	readJSON(t, out("locations.json"), &locations)
	one := filepath.Join(out("docs"), "one.txt")
	two := filepath.Join(out("docs"), "sub", "two.TXT")
	assert.Equal(t, map[string]int{one: 7, two: 5}, locations)

	var index map[string]map[string][]int
	readJSON(t, out("index.json"), &index)
	assert.Equal(t, []int{2, 6}, index["dog"][one])
	assert.Equal(t, []int{1, 3}, index["run"][one])
	assert.Equal(t, []int{5}, index["the"][one])
	assert.Equal(t, []int{1, 4}, index["cat"][two])

	var results map[string][]export.ResultDTO
	readJSON(t, out("results.json"), &results)
	assert.Len(t, results, 4)
	assert.Contains(t, results, "dog run")
	assert.Empty(t, results["zebra"])
	require.Len(t, results["cat"], 1)
	assert.Equal(t, export.ResultDTO{Where: two, Count: 2, Score: 0.4}, results["cat"][0])

	db, err := bbolt.Open(out("index.db"), 0o600, &bbolt.Options{ReadOnly: true, Timeout: time.Second})
	require.NoError(t, err)
	defer db.Close()
	var total string
	require.NoError(t, db.View(func(tx *bbolt.Tx) error {
		total = string(tx.Bucket([]byte("locations")).Get([]byte(one)))
		return nil
	}))
	assert.Equal(t, "7", total)

	_, err = os.Stat(out("metrics.prom"))
	assert.NoError(t, err)
}

func TestExecuteArgs_ThreadedMatchesSerial(t *testing.T) {
	dir, queries := setupCorpus(t)
	docs := filepath.Join(dir, "docs")
	cfg := filepath.Join(dir, "none.yaml")

	for _, exact := range []bool{false, true} {
		serialOut := filepath.Join(t.TempDir(), "serial.json")
		pooledOut := filepath.Join(t.TempDir(), "pooled.json")

		serialArgs := []string{"-config", cfg, "-path", docs, "-search", queries, "-results", serialOut}
		pooledArgs := []string{"-config", cfg, "-threads", "3", "-path", docs, "-search", queries, "-results", pooledOut}
		if exact {
			serialArgs = append(serialArgs, "-exact")
			pooledArgs = append(pooledArgs, "-exact")
		}
		require.NoError(t, ExecuteArgs(serialArgs))
		require.NoError(t, ExecuteArgs(pooledArgs))

		serial, err := os.ReadFile(serialOut)
		require.NoError(t, err)
		pooled, err := os.ReadFile(pooledOut)
		require.NoError(t, err)
		assert.Equal(t, string(serial), string(pooled))
	}
}

func TestExecuteArgs_DefaultOutputNames(t *testing.T) {
	dir, _ := setupCorpus(t)
	cfgPath := filepath.Join(dir, "search.yaml")
	config := "output:\n  locations: " + filepath.Join(dir, "totals.json") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(config), 0o644))

	require.NoError(t, ExecuteArgs([]string{"-config", cfgPath, "-path", filepath.Join(dir, "docs"), "-locations"}))

	var totals map[string]int
	readJSON(t, filepath.Join(dir, "totals.json"), &totals)
	assert.Len(t, totals, 2)
}

func TestExecuteArgs_BadInputsStillSucceed(t *testing.T) {
	dir := t.TempDir()
	results := filepath.Join(dir, "results.json")

	err := ExecuteArgs([]string{
		"-config", filepath.Join(dir, "none.yaml"),
		"-path", filepath.Join(dir, "missing"),
		"-search", filepath.Join(dir, "missing.txt"),
		"-threads", "zero",
		"-results", results,
		"-index", filepath.Join(dir, "no", "such", "dir.json"),
		"stray",
	})
	require.NoError(t, err)

	var got map[string]any
	readJSON(t, results, &got)
	assert.Empty(t, got)
}

func TestExecuteArgs_MissingFlagValues(t *testing.T) {
	dir := t.TempDir()
	results := filepath.Join(dir, "r.json")

	require.NoError(t, ExecuteArgs([]string{"-config", filepath.Join(dir, "none.yaml"), "-path", "-search", "-results", results}))

	var got map[string]any
	readJSON(t, results, &got)
	assert.Empty(t, got)
}

func TestExecuteArgs_ConfigError(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("workers:\n  threads: -1\n"), 0o644))

	assert.Error(t, ExecuteArgs([]string{"-config", cfg}))
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseThreads(t *testing.T) {
	log := newDiscardLogger()
	assert.Equal(t, 5, parseThreads("", 5, log))
	assert.Equal(t, 8, parseThreads("8", 5, log))
	assert.Equal(t, 5, parseThreads("0", 5, log))
	assert.Equal(t, 5, parseThreads("many", 5, log))
}

func TestProgressTo(t *testing.T) {
	var buf bytes.Buffer
	progress := progressTo(&buf)
	for i := 1; i <= 3; i++ {
		progress(i, 3)
	}
	assert.Contains(t, buf.String(), "3/3")
}

func TestShortDuration(t *testing.T) {
	tests := map[time.Duration]string{
		500 * time.Millisecond:                        "<1s",
		42*time.Second + 300*time.Millisecond:         "42s",
		3*time.Minute + 5*time.Second:                 "3m5s",
		2*time.Hour + 15*time.Minute + 20*time.Second: "2h15m",
	}
	for d, want := range tests {
		assert.Equal(t, want, shortDuration(d))
	}
}

func TestRemaining(t *testing.T) {
	left, ok := remaining(2, 6, 10*time.Second)
	assert.True(t, ok)
	assert.Equal(t, 20*time.Second, left)

	_, ok = remaining(0, 6, time.Second)
	assert.False(t, ok)

	left, ok = remaining(6, 6, time.Second)
	assert.True(t, ok)
	assert.Zero(t, left)
}
