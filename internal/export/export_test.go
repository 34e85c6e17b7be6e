package export

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/threadprep/internal/comment"
	"github.com/fragmede/threadprep/internal/thread"
)

func sample(t *testing.T) (*thread.Forest, []thread.Row) {
	t.Helper()
	f, _, err := thread.Build([]comment.Record{
		{ID: "a", Body: "root", Label: "Informative"},
		{ID: "b", ParentID: "a", Body: "child <b>", Label: "Not Informative"},
		{ID: "c", ParentID: "b", Body: "grandchild"},
	}, nil)
	require.NoError(t, err)
	f.Node("a").Images = []string{"images/a_0.png"}
	return f, thread.Flatten(f, thread.DefaultContextWindow)
}

func TestWriteAll(t *testing.T) {
	f, rows := sample(t)
	dir := filepath.Join(t.TempDir(), "out")

	paths, err := WriteAll(dir, f, rows)
	require.NoError(t, err)
	for _, p := range []string{paths.Parquet, paths.JSONL, paths.Trees} {
		assert.FileExists(t, p)
	}
}

func TestParquetRoundTrip(t *testing.T) {
	_, rows := sample(t)
	path := filepath.Join(t.TempDir(), ParquetFile)
	require.NoError(t, WriteParquet(path, rows))

	got, err := ReadParquet(path)
	require.NoError(t, err)
	require.Len(t, got, len(rows))
	for i := range rows {
		assert.Equal(t, rows[i].ID, got[i].ID)
		assert.Equal(t, rows[i].LinkID, got[i].LinkID)
		assert.Equal(t, rows[i].Depth, got[i].Depth)
		assert.Equal(t, rows[i].Label, got[i].Label)
		assert.ElementsMatch(t, rows[i].Context, got[i].Context)
	}
	assert.Equal(t, []string{"root", "child <b>"}, got[2].Context)
}

func TestWriteJSONL(t *testing.T) {
	_, rows := sample(t)
	path := filepath.Join(t.TempDir(), JSONLFile)
	require.NoError(t, WriteJSONL(path, rows))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.Len(t, lines, 3)
	assert.JSONEq(t, `{"id":"b","link_id":"a","parent_id":"a","depth":1,"text":"child <b>",
		"label":"Not Informative","context":["root"],"images":[]}`, lines[1])
	assert.Contains(t, lines[1], "child <b>", "HTML is not escaped")
}

func TestWriteTrees(t *testing.T) {
	f, _ := sample(t)
	path := filepath.Join(t.TempDir(), TreesFile)
	require.NoError(t, WriteTrees(path, f))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var trees []map[string]any
	require.NoError(t, json.Unmarshal(data, &trees))
	require.Len(t, trees, 1)
	assert.Equal(t, "a", trees[0]["id"])
	assert.Equal(t, []any{"images/a_0.png"}, trees[0]["images"])
	kids := trees[0]["children"].([]any)
	require.Len(t, kids, 1)
	assert.Equal(t, "b", kids[0].(map[string]any)["id"])
}

func TestWriteAllBadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	f, rows := sample(t)
	_, err := WriteAll(filepath.Join(file, "sub"), f, rows)
	assert.Error(t, err)
}
