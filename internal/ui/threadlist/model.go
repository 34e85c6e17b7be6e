package threadlist

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fragmede/threadprep/internal/cache"
	"github.com/fragmede/threadprep/internal/render"
	"github.com/fragmede/threadprep/internal/ui/messages"
)

// Store is the part of the cache the list reads from.
type Store interface {
	Threads(runID string) ([]cache.ThreadSummary, error)
}

// Model is the thread list view.
type Model struct {
	list    list.Model
	run     cache.Run
	store   Store
	loading bool
}

// New creates a thread list for run.
func New(run cache.Run, store Store) Model {
	l := list.New(nil, Delegate{}, 0, 0)
	l.Title = runTitle(run)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)

	return Model{list: l, run: run, store: store, loading: true}
}

// Init loads the run's threads.
func (m Model) Init() tea.Cmd {
	return m.loadThreads()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(w, h int) {
	m.list.SetSize(w, h)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.ThreadsLoadedMsg:
		if msg.RunID != m.run.ID {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Error: " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, 0, len(msg.Threads))
		for i, s := range msg.Threads {
			items = append(items, ThreadItem{ThreadSummary: s, Index: i})
		}
		m.list.Title = runTitle(m.run)
		return m, m.list.SetItems(items)

	case messages.SwitchRunMsg:
		m.run = msg.Run
		m.list.Title = runTitle(m.run) + " (loading...)"
		m.loading = true
		m.list.ResetFilter()
		return m, m.loadThreads()

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(ThreadItem); ok {
				return m, func() tea.Msg {
					return messages.OpenThreadMsg{LinkID: item.LinkID}
				}
			}
		case "r", "ctrl+r":
			m.loading = true
			m.list.Title = runTitle(m.run) + " (refreshing...)"
			return m, m.loadThreads()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the thread list.
func (m Model) View() string {
	return m.list.View()
}

// Run returns the run being listed.
func (m Model) Run() cache.Run {
	return m.run
}

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Items returns the loaded thread items.
func (m Model) Items() []list.Item {
	return m.list.Items()
}

func (m Model) loadThreads() tea.Cmd {
	runID := m.run.ID
	store := m.store
	return func() tea.Msg {
		threads, err := store.Threads(runID)
		return messages.ThreadsLoadedMsg{RunID: runID, Threads: threads, Err: err}
	}
}

func runTitle(run cache.Run) string {
	if run.ID == "" {
		return "No runs"
	}
	id := run.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return "Run " + id + " · " + plural(run.Rows, "row") + " · " + render.TimeAgo(run.CreatedAt.Unix())
}
