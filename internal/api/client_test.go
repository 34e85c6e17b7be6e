package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeHN serves items from a map; ids listed in broken return 500.
type fakeHN struct {
	items    map[int]map[string]any
	broken   map[int]bool
	top      []int
	requests atomic.Int64
}

func (f *fakeHN) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.requests.Add(1)
	switch {
	case r.URL.Path == "/topstories.json":
		json.NewEncoder(w).Encode(f.top)
	case strings.HasPrefix(r.URL.Path, "/item/"):
		var id int
		fmt.Sscanf(strings.TrimPrefix(r.URL.Path, "/item/"), "%d.json", &id)
		if f.broken[id] {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		item, ok := f.items[id]
		if !ok {
			w.Write([]byte("null"))
			return
		}
		json.NewEncoder(w).Encode(item)
	case r.URL.Path == "/search_by_date":
		if r.URL.Query().Get("query") != "rust async" || r.URL.Query().Get("tags") != "story" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"hits":[
			{"objectID":"1","title":"Async Rust","author":"a","points":10,"num_comments":4,"created_at_i":1700000000},
			{"objectID":"2","title":"No talk","num_comments":0},
			{"objectID":"x","title":"Bad id","num_comments":3}
		]}`))
	default:
		http.NotFound(w, r)
	}
}

func newFake() *fakeHN {
	return &fakeHN{
		top: []int{1, 99, 7},
		items: map[int]map[string]any{
			1:  {"id": 1, "type": "story", "title": "Async Rust", "url": "https://blog.example/async", "kids": []int{10, 11}},
			10: {"id": 10, "type": "comment", "by": "alice", "parent": 1, "time": 1700000100, "text": "Top <i>level</i>", "kids": []int{20, 21}},
			11: {"id": 11, "type": "comment", "by": "bob", "parent": 1, "text": `pic <a href="https://i.imgur.com/x.png">here</a>`},
			20: {"id": 20, "type": "comment", "by": "carol", "parent": 10, "text": "reply"},
			21: {"id": 21, "type": "comment", "deleted": true, "parent": 10, "kids": []int{30}},
			30: {"id": 30, "type": "comment", "by": "dan", "parent": 21, "text": "under deleted"},
			7:  {"id": 7, "type": "story", "title": "Seven"},
		},
		broken: map[int]bool{99: true},
	}
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(
		WithBaseURL(srv.URL),
		WithAlgoliaURL(srv.URL),
		WithConcurrency(3),
		WithLogger(zaptest.NewLogger(t)),
	)
	t.Cleanup(c.Close)
	return c
}

func TestBatchGetItemsKeepsOrderAndNils(t *testing.T) {
	c := newTestClient(t, newFake())
	items, err := c.BatchGetItems(context.Background(), []int{20, 99, 10, 12345})
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, 20, items[0].ID)
	assert.Nil(t, items[1])
	assert.Equal(t, 10, items[2].ID)
	assert.Nil(t, items[3])
	assert.Equal(t, []int{20, 21}, items[2].Kids())
}

func TestBatchGetItemsCancelled(t *testing.T) {
	c := newTestClient(t, newFake())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.BatchGetItems(ctx, []int{10, 11})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetStoriesSkipsFailures(t *testing.T) {
	c := newTestClient(t, newFake())
	items, err := c.GetStories(context.Background(), StoryTypeTop, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, 7, items[1].ID)

	items, err = c.GetStories(context.Background(), StoryTypeTop, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestParseStoryType(t *testing.T) {
	st, err := ParseStoryType("ask")
	require.NoError(t, err)
	assert.Equal(t, StoryTypeAsk, st)
	_, err = ParseStoryType("jobs")
	assert.Error(t, err)
}

func TestSearchStories(t *testing.T) {
	c := newTestClient(t, newFake())
	items, err := c.SearchStories(context.Background(), "rust async", 20)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].ID)
	assert.Equal(t, "Async Rust", items[0].Title)
	assert.Equal(t, 4, items[0].Descendants)
}

func TestGetErrorIncludesStatus(t *testing.T) {
	c := newTestClient(t, newFake())
	_, err := c.GetItem(context.Background(), 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500")
}
