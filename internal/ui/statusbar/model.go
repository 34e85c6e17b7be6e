package statusbar

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/threadprep/internal/cache"
	"github.com/fragmede/threadprep/internal/ui/theme"
)

// maxTabs bounds how many runs are shown as tabs.
const maxTabs = 6

// Model is the status bar at the bottom of the screen.
type Model struct {
	width      int
	runs       []cache.Run
	activeRun  string
	statusText string
	isError    bool
}

// New creates a status bar listing runs as tabs.
func New(runs []cache.Run) Model {
	m := Model{runs: runs}
	if len(runs) > 0 {
		m.activeRun = runs[0].ID
	}
	return m
}

// SetSize sets the width.
func (m *Model) SetSize(w int) {
	m.width = w
}

// SetActiveRun marks the run being browsed.
func (m *Model) SetActiveRun(id string) {
	m.activeRun = id
}

// SetStatus sets a temporary status message.
func (m *Model) SetStatus(text string, isError bool) {
	m.statusText = text
	m.isError = isError
}

// Update is a no-op for the status bar.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the status bar.
func (m Model) View() string {
	var tabsStr string
	for i, r := range m.runs {
		if i == maxTabs {
			tabsStr += theme.StatusBarTab.Render("…")
			break
		}
		if r.ID == m.activeRun {
			tabsStr += theme.StatusBarActiveTab.Render(shortID(r.ID))
		} else {
			tabsStr += theme.StatusBarTab.Render(shortID(r.ID))
		}
	}

	var right string
	if m.statusText != "" {
		if m.isError {
			right = theme.ErrorStyle.Render(m.statusText)
		} else {
			right = theme.StatusTextStyle.Render(m.statusText)
		}
	} else {
		right = theme.StatusTextStyle.Render("tab:run  /:filter  q:quit")
	}

	gap := max(0, m.width-lipgloss.Width(tabsStr)-lipgloss.Width(right))
	mid := theme.StatusBarStyle.Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, tabsStr, mid, right)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
