package threadlist

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/threadprep/internal/cache"
	"github.com/fragmede/threadprep/internal/ui/messages"
)

type fakeStore map[string][]cache.ThreadSummary

func (f fakeStore) Threads(runID string) ([]cache.ThreadSummary, error) { return f[runID], nil }

func TestItemText(t *testing.T) {
	it := ThreadItem{ThreadSummary: cache.ThreadSummary{
		LinkID: "42", RootText: "  hello\n\nworld ", Rows: 1, MaxDepth: 0, Images: 2,
	}}
	assert.Equal(t, "hello world", it.Title())
	assert.Equal(t, "id 42 | 1 comment | depth 0 | 2 with images", it.Description())

	long := ThreadItem{ThreadSummary: cache.ThreadSummary{LinkID: "1", RootText: strings.Repeat("x", 200)}}
	assert.Len(t, []rune(long.Title()), titleWidth)

	empty := ThreadItem{ThreadSummary: cache.ThreadSummary{LinkID: "7"}}
	assert.Equal(t, "[thread 7]", empty.Title())
}

func TestModelLoadsAndOpens(t *testing.T) {
	run := cache.Run{ID: "run-1", Rows: 3, CreatedAt: time.Now()}
	store := fakeStore{"run-1": {
		{LinkID: "a", RootText: "first", Rows: 2},
		{LinkID: "b", RootText: "second", Rows: 1},
	}}
	m := New(run, store)
	m.SetSize(80, 30)

	m, _ = m.Update(m.Init()())
	require.Len(t, m.Items(), 2)
	assert.Contains(t, m.View(), "first")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.OpenThreadMsg{LinkID: "a"}, cmd())
}

func TestModelIgnoresStaleRun(t *testing.T) {
	m := New(cache.Run{ID: "new"}, fakeStore{})
	m, _ = m.Update(messages.ThreadsLoadedMsg{RunID: "old", Threads: []cache.ThreadSummary{{LinkID: "x"}}})
	assert.Empty(t, m.Items())
}

func TestModelSwitchRun(t *testing.T) {
	store := fakeStore{"r2": {{LinkID: "z", RootText: "other"}}}
	m := New(cache.Run{ID: "r1"}, store)
	m, cmd := m.Update(messages.SwitchRunMsg{Run: cache.Run{ID: "r2"}})
	require.NotNil(t, cmd)
	assert.Equal(t, "r2", m.Run().ID)

	m, _ = m.Update(cmd())
	require.Len(t, m.Items(), 1)
	assert.Equal(t, "z", m.Items()[0].(ThreadItem).LinkID)
}

func TestRunTitle(t *testing.T) {
	assert.Equal(t, "No runs", runTitle(cache.Run{}))
	title := runTitle(cache.Run{ID: "0123456789abcdef", Rows: 5, CreatedAt: time.Now()})
	assert.True(t, strings.HasPrefix(title, "Run 01234567 · 5 rows"), title)
}
