package thread

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/threadprep/internal/comment"
)

func TestFlattenScenario(t *testing.T) {
	recs := []comment.Record{
		rec("a", "", "root"),
		rec("b", "a", "child"),
		rec("c", "zzz", "orphan"),
	}
	f, _, err := Build(recs, nil)
	require.NoError(t, err)
	rows := Flatten(f, DefaultContextWindow)

	require.Len(t, rows, 3)
	assert.Equal(t, Row{ID: "a", LinkID: "a", Text: "root", Context: []string{}, Images: []string{}}, rows[0])
	assert.Equal(t, Row{ID: "b", LinkID: "a", ParentID: "a", Depth: 1, Text: "child", Context: []string{"root"}, Images: []string{}}, rows[1])
	assert.Equal(t, Row{ID: "c", LinkID: "c", ParentID: "zzz", Text: "orphan", Context: []string{}, Images: []string{}}, rows[2])
}

func TestFlattenContextWindow(t *testing.T) {
	f, _, err := Build(chain(7), nil)
	require.NoError(t, err)
	rows := Flatten(f, 3)
	require.Len(t, rows, 7)

	for d, row := range rows {
		assert.Equal(t, d, row.Depth)
		assert.Len(t, row.Context, min(d, 3), row.ID)
		for i, body := range row.Context {
			// ancestors d-len..d-1, oldest first
			assert.Equal(t, fmt.Sprintf("body %d", d-len(row.Context)+i), body)
		}
	}
	assert.Equal(t, []string{"body 3", "body 4", "body 5"}, rows[6].Context)
}

func TestFlattenPreOrderAcrossSiblings(t *testing.T) {
	recs := []comment.Record{
		rec("r", "", "R"),
		rec("a", "r", "A"),
		rec("b", "r", "B"),
		rec("a1", "a", "A1"),
		rec("b1", "b", "B1"),
		rec("a2", "a", "A2"),
	}
	f, _, err := Build(recs, nil)
	require.NoError(t, err)
	rows := Flatten(f, 3)

	var ids []string
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"r", "a", "a1", "a2", "b", "b1"}, ids)
	// sibling branches do not leak into each other's context
	assert.Equal(t, []string{"R", "B"}, rows[5].Context)
	assert.Equal(t, []string{"R", "A"}, rows[3].Context)
}

func TestFlattenMissingFieldsAreEmpty(t *testing.T) {
	f, _, err := Build([]comment.Record{{ID: "x"}}, nil)
	require.NoError(t, err)
	rows := Flatten(f, 3)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Text)
	assert.Equal(t, "", rows[0].Label)

	out, err := json.Marshal(rows[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"x","link_id":"x","parent_id":"","depth":0,"text":"","label":"","context":[],"images":[]}`, string(out))
}

func TestFlattenZeroWindow(t *testing.T) {
	f, _, err := Build(chain(3), nil)
	require.NoError(t, err)
	for _, row := range Flatten(f, 0) {
		assert.Empty(t, row.Context)
	}
}

func TestPipelineConservesRecords(t *testing.T) {
	recs := append(chain(9),
		rec("s1", "c1", "https://x.org/s1.png"),
		rec("s2", "s1", ""),
		rec("o", "missing", ""),
		comment.Record{Body: "no id"},
	)
	f, report, err := Build(recs, nil)
	require.NoError(t, err)
	removed := Prune(f, DefaultMaxDepth)
	_, err = (&Propagator{Resolver: &fakeResolver{}}).Run(context.Background(), f)
	require.NoError(t, err)
	rows := Flatten(f, DefaultContextWindow)

	assert.Equal(t, len(recs)-report.Skipped-removed, len(rows))
	seen := map[string]bool{}
	for _, r := range rows {
		assert.False(t, seen[r.ID], "duplicate row %s", r.ID)
		seen[r.ID] = true
		assert.LessOrEqual(t, r.Depth, DefaultMaxDepth)
	}
	assert.Equal(t, rows[len(rows)-3].Images, rows[len(rows)-2].Images)
}

func TestForestJSON(t *testing.T) {
	f, _, err := Build([]comment.Record{rec("a", "", "root"), rec("b", "a", "child")}, nil)
	require.NoError(t, err)
	_, err = (&Propagator{}).Run(context.Background(), f)
	require.NoError(t, err)

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":"a","parent_id":null,"body":"root","images":[],"children":[
			{"id":"b","parent_id":"a","body":"child","images":[],"children":[]}
		]}
	]`, string(out))
}
