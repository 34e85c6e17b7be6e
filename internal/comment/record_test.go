package comment

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeKeepsPassthroughFields(t *testing.T) {
	in := `[
		{"id": "a", "parent_id": null, "body": "root", "score": 12, "author": "pg"},
		{"id": "b", "parent_id": "a", "body": "child", "permalink": "https://reddit.com/r/x/b", "label": "Informative"}
	]`
	recs, err := Decode(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	a := recs[0]
	assert.Equal(t, "a", a.ID)
	assert.False(t, a.HasParent())
	assert.Equal(t, "root", a.Body)
	assert.JSONEq(t, "12", string(a.Meta["score"]))
	assert.Equal(t, "pg", a.MetaString("author"))

	b := recs[1]
	assert.Equal(t, "a", b.ParentID)
	assert.Equal(t, "Informative", b.Label)
	assert.Equal(t, "https://reddit.com/r/x/b", b.Permalink)
	assert.Empty(t, b.Meta)
}

func TestDecodeNumericIDs(t *testing.T) {
	recs, err := Decode(strings.NewReader(`[{"id": 8863, "parent_id": 8862, "body": "x"}]`))
	require.NoError(t, err)
	assert.Equal(t, "8863", recs[0].ID)
	assert.Equal(t, "8862", recs[0].ParentID)
}

func TestDecodeMissingID(t *testing.T) {
	recs, err := Decode(strings.NewReader(`[{"body": "no id"}]`))
	require.NoError(t, err)
	assert.Empty(t, recs[0].ID)
}

func TestDecodeRejectsBadID(t *testing.T) {
	_, err := Decode(strings.NewReader(`[{"id": {"nested": true}}]`))
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	in := `{"id":"c","parent_id":null,"body":"hi","created_utc":1700000000.5,"post_title":"t"}`
	var r Record
	require.NoError(t, json.Unmarshal([]byte(in), &r))

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestDecodeIgnoresTreeFields(t *testing.T) {
	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","children":[{"id":"b"}],"images":["x.png"]}`), &r))
	assert.Empty(t, r.Meta)
}

func TestSetMeta(t *testing.T) {
	var r Record
	require.NoError(t, r.SetMeta("post_title", "Ask HN"))
	assert.Equal(t, "Ask HN", r.MetaString("post_title"))
	assert.Equal(t, "", r.MetaString("missing"))
}

func TestSearchText(t *testing.T) {
	r := Record{Body: "see", URL: "https://i.imgur.com/a.png", Permalink: "/r/x"}
	assert.Equal(t, "see https://i.imgur.com/a.png /r/x", r.SearchText())
}
