package threadview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/threadprep/internal/render"
	"github.com/fragmede/threadprep/internal/thread"
	"github.com/fragmede/threadprep/internal/ui/messages"
	"github.com/fragmede/threadprep/internal/ui/theme"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Padding(0, 1)

const scrollStep = 3

// Store is the part of the cache the view reads from.
type Store interface {
	ThreadRows(runID, linkID string) ([]thread.Row, error)
}

type commentOffset struct {
	startLine int
	endLine   int
}

// Model shows one thread of a run as an indented tree.
type Model struct {
	viewport    viewport.Model
	runID       string
	linkID      string
	rows        []thread.Row
	comments    []FlatComment
	offsets     []commentOffset
	selectedIdx int
	collapse    CollapseState
	showContext bool
	store       Store
	loading     bool
	err         error
	width       int
	height      int
}

// New creates a view for the thread rooted at linkID.
func New(runID, linkID string, store Store) Model {
	vp := viewport.New(0, 0)
	vp.SetContent("Loading...")
	return Model{
		viewport: vp,
		runID:    runID,
		linkID:   linkID,
		collapse: make(CollapseState),
		store:    store,
		loading:  true,
	}
}

// Init loads the thread's rows.
func (m Model) Init() tea.Cmd {
	runID, linkID, store := m.runID, m.linkID, m.store
	return func() tea.Msg {
		rows, err := store.ThreadRows(runID, linkID)
		return messages.RowsLoadedMsg{LinkID: linkID, Rows: rows, Err: err}
	}
}

// SetSize updates viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.resizeViewport()
	m.rebuildContent()
}

func (m *Model) resizeViewport() {
	headerLines := strings.Count(m.renderHeader(), "\n") + 1
	m.viewport.Height = max(1, m.height-headerLines)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.RowsLoadedMsg:
		if msg.LinkID != m.linkID {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			m.viewport.SetContent("Error loading thread: " + msg.Err.Error())
			return m, nil
		}
		m.rows = msg.Rows
		m.resizeViewport()
		m.rebuildComments()
		m.rebuildContent()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.selectedIdx >= 0 && m.selectedIdx < len(m.offsets) {
				off := m.offsets[m.selectedIdx]
				if off.endLine >= m.viewport.YOffset+m.viewport.Height {
					m.viewport.SetYOffset(m.viewport.YOffset + scrollStep)
					return m, nil
				}
			}
			if m.selectedIdx < len(m.comments)-1 {
				m.selectedIdx++
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case "k", "up":
			if m.selectedIdx >= 0 && m.selectedIdx < len(m.offsets) {
				off := m.offsets[m.selectedIdx]
				if off.startLine < m.viewport.YOffset {
					m.viewport.SetYOffset(max(off.startLine, m.viewport.YOffset-scrollStep))
					return m, nil
				}
			}
			if m.selectedIdx > 0 {
				m.selectedIdx--
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case "enter", " ":
			if fc, ok := m.Selected(); ok && fc.ChildCount > 0 {
				m.collapse[fc.Row.ID] = !m.collapse[fc.Row.ID]
				m.rebuildComments()
				m.rebuildContent()
			}
			return m, nil
		case "z":
			// Collapse everything if anything is open, otherwise expand all.
			anyExpanded := false
			for _, fc := range m.comments {
				if fc.ChildCount > 0 && !m.collapse[fc.Row.ID] {
					anyExpanded = true
					break
				}
			}
			for i := range m.rows {
				if descendants(m.rows, i) > 0 {
					m.collapse[m.rows[i].ID] = anyExpanded
				}
			}
			m.rebuildComments()
			m.rebuildContent()
			if anyExpanded {
				m.selectedIdx = 0
				m.viewport.GotoTop()
			}
			return m, nil
		case "c":
			m.showContext = !m.showContext
			m.rebuildContent()
			return m, nil
		case "[", "p":
			if idx := FindParentIndex(m.comments, m.selectedIdx); idx >= 0 {
				m.selectedIdx = idx
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case "]":
			if idx := FindNextSiblingIndex(m.comments, m.selectedIdx); idx >= 0 {
				m.selectedIdx = idx
				m.rebuildContent()
				m.scrollToCursor()
			}
			return m, nil
		case "g", "home":
			m.selectedIdx = 0
			m.rebuildContent()
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			if len(m.comments) > 0 {
				m.selectedIdx = len(m.comments) - 1
				m.rebuildContent()
				m.viewport.GotoBottom()
			}
			return m, nil
		case "o":
			if fc, ok := m.Selected(); ok && len(fc.Row.Images) > 0 {
				path := fc.Row.Images[0]
				return m, func() tea.Msg { return messages.StatusMsg{Text: "Opening: " + path} }
			}
			return m, nil
		case "ctrl+d", "pgdown":
			m.viewport.HalfViewDown()
			return m, nil
		case "ctrl+u", "pgup":
			m.viewport.HalfViewUp()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the thread.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.viewport.View())
}

// Selected returns the comment under the cursor.
func (m Model) Selected() (FlatComment, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.comments) {
		return FlatComment{}, false
	}
	return m.comments[m.selectedIdx], true
}

// Comments returns the currently visible comments.
func (m Model) Comments() []FlatComment {
	return m.comments
}

func (m *Model) rebuildComments() {
	m.comments = VisibleComments(m.rows, m.collapse)
	m.selectedIdx = min(m.selectedIdx, len(m.comments)-1)
	m.selectedIdx = max(m.selectedIdx, 0)
}

func (m *Model) rebuildContent() {
	if len(m.comments) == 0 {
		m.offsets = nil
		switch {
		case m.err != nil:
		case m.loading:
			m.viewport.SetContent("  Loading thread...")
		default:
			m.viewport.SetContent("  No rows in this thread.")
		}
		return
	}

	var sb strings.Builder
	m.offsets = make([]commentOffset, len(m.comments))
	availWidth := max(20, m.width-4)

	lineCount := 0
	for i, fc := range m.comments {
		startLine := lineCount
		indent := min(fc.Row.Depth*2, 30)
		indentStr := strings.Repeat(" ", indent)

		barColor := theme.DepthColor(fc.Row.Depth)
		selected := i == m.selectedIdx
		if selected {
			barColor = theme.Accent
		}
		bar := lipgloss.NewStyle().Foreground(barColor).Render("│")
		prefix := indentStr + bar + " "

		writeLine := func(s string) {
			line := prefix + s
			if selected {
				line = theme.SelectedLineStyle.Render(line)
			}
			sb.WriteString(line + "\n")
			lineCount++
		}

		header := theme.MetaStyle.Render(fc.Row.ID) + " " + theme.LabelBadge(fc.Row.Label)
		if n := len(fc.Row.Images); n > 0 {
			header += " " + theme.ImageStyle.Render(fmt.Sprintf("[%d img]", n))
		}
		if fc.IsCollapsed {
			header += " " + theme.MetaStyle.Render(fmt.Sprintf("[+%d]", fc.ChildCount))
		}
		writeLine(header)

		bodyWidth := max(20, availWidth-indent-4)
		if selected && m.showContext {
			for _, c := range fc.Row.Context {
				for _, line := range strings.Split(render.Wrap("> "+c, bodyWidth), "\n") {
					writeLine(theme.ContextStyle.Render(line))
				}
			}
		}
		if !fc.IsCollapsed {
			for _, line := range strings.Split(render.Wrap(fc.Row.Text, bodyWidth), "\n") {
				writeLine(line)
			}
		}
		sb.WriteString("\n")
		lineCount++

		m.offsets[i] = commentOffset{startLine: startLine, endLine: lineCount - 1}
	}

	m.viewport.SetContent(sb.String())
}

func (m *Model) scrollToCursor() {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.offsets) {
		return
	}
	off := m.offsets[m.selectedIdx]
	if off.startLine < m.viewport.YOffset || off.startLine >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(off.startLine)
	}
}

func (m Model) renderHeader() string {
	var parts []string
	title := "Thread " + m.linkID
	if len(m.rows) > 0 {
		title += fmt.Sprintf(" · %d comments", len(m.rows))
	}
	parts = append(parts, headerStyle.Render(title))
	parts = append(parts, theme.SeparatorStyle.Render(strings.Repeat("─", max(0, m.width))))
	parts = append(parts, theme.DimStyle.Render("j/k:move  p:parent  ]:sibling  space:collapse  z:fold all  c:context  o:open image  esc:back"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
