package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search/internal/adapter/memstore"
	"search/internal/domain"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestWriteIndex(t *testing.T) {
	ix := memstore.NewInvertedIndex()
	ix.AddAll([]string{"world", "hello", "world"}, "b.txt", 1)
	ix.Add("hello", 2, "a.txt")

	path := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, WriteIndex(path, ix.Snapshot()))

	want := `{
  "hello": {
    "a.txt": [
      2
    ],
    "b.txt": [
      2
    ]
  },
  "world": {
    "b.txt": [
      1,
      3
    ]
  }
}
`
	assert.Equal(t, want, readFile(t, path))
}

func TestWriteLocations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.json")
	require.NoError(t, WriteLocations(path, map[string]int{"z.txt": 1, "a.txt": 12}))

	assert.Equal(t, "{\n  \"a.txt\": 12,\n  \"z.txt\": 1\n}\n", readFile(t, path))
}

func TestWriteEmpty(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WriteIndex(filepath.Join(dir, "i.json"), nil))
	require.NoError(t, WriteLocations(filepath.Join(dir, "l.json"), nil))
	require.NoError(t, WriteResults(filepath.Join(dir, "r.json"), nil))

	assert.Equal(t, "{}\n", readFile(t, filepath.Join(dir, "i.json")))
	assert.Equal(t, "{}\n", readFile(t, filepath.Join(dir, "l.json")))
	assert.Equal(t, "{}\n", readFile(t, filepath.Join(dir, "r.json")))
}

func TestWriteResults(t *testing.T) {
	results := domain.QueryResults{
		"hello": {
			{Location: "b.txt", Count: 3, Total: 4},
			{Location: "a.txt", Count: 1, Total: 4},
		},
		"nothing": {},
	}

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, WriteResults(path, results))

	var got map[string][]ResultDTO
	require.NoError(t, json.Unmarshal([]byte(readFile(t, path)), &got))

	require.Len(t, got["hello"], 2)
	assert.Equal(t, ResultDTO{Where: "b.txt", Count: 3, Score: 0.75}, got["hello"][0])
	assert.Equal(t, ResultDTO{Where: "a.txt", Count: 1, Score: 0.25}, got["hello"][1])
	assert.NotNil(t, got["nothing"])
	assert.Empty(t, got["nothing"])
}

func TestWriteFailsOnBadPath(t *testing.T) {
	err := WriteLocations(filepath.Join(t.TempDir(), "missing", "l.json"), nil)
	assert.Error(t, err)
}
