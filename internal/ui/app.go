package ui

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/fragmede/threadprep/internal/cache"
	"github.com/fragmede/threadprep/internal/ui/messages"
	"github.com/fragmede/threadprep/internal/ui/statusbar"
	"github.com/fragmede/threadprep/internal/ui/threadlist"
	"github.com/fragmede/threadprep/internal/ui/threadview"
)

// ViewType identifies the active view.
type ViewType int

const (
	ViewThreadList ViewType = iota
	ViewThreadDetail
)

// Store is what the browser reads from the cache.
type Store interface {
	threadlist.Store
	threadview.Store
}

// App is the root Bubble Tea model.
type App struct {
	activeView ViewType

	threadList threadlist.Model
	threadView threadview.Model
	statusBar  statusbar.Model

	runs  []cache.Run
	store Store
	log   *zap.Logger

	width  int
	height int
}

// NewApp creates the browser over runs, newest first. The first run is
// shown initially.
func NewApp(runs []cache.Run, store Store, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	var first cache.Run
	if len(runs) > 0 {
		first = runs[0]
	}
	return &App{
		activeView: ViewThreadList,
		threadList: threadlist.New(first, store),
		statusBar:  statusbar.New(runs),
		runs:       runs,
		store:      store,
		log:        log,
	}
}

// Init starts the application.
func (a *App) Init() tea.Cmd {
	if len(a.runs) == 0 {
		return nil
	}
	return a.threadList.Init()
}

// ActiveView reports which view has focus.
func (a *App) ActiveView() ViewType {
	return a.activeView
}

// Update handles all messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		contentHeight := msg.Height - 1 // Reserve 1 line for status bar.
		a.threadList.SetSize(msg.Width, contentHeight)
		a.statusBar.SetSize(msg.Width)
		if a.activeView == ViewThreadDetail {
			a.threadView.SetSize(msg.Width, contentHeight)
		}
		return a, nil

	case tea.KeyMsg:
		if a.activeView == ViewThreadList && a.threadList.Filtering() {
			break
		}
		switch {
		case msg.String() == "ctrl+c":
			return a, tea.Quit
		case key.Matches(msg, Keys.Quit):
			if a.activeView == ViewThreadList {
				return a, tea.Quit
			}
			return a, a.goBack()
		case key.Matches(msg, Keys.Back):
			if a.activeView != ViewThreadList {
				return a, a.goBack()
			}
		case key.Matches(msg, Keys.NextRun):
			return a, a.cycleRun(1)
		case key.Matches(msg, Keys.PrevRun):
			return a, a.cycleRun(-1)
		}

	case messages.OpenThreadMsg:
		run := a.threadList.Run()
		a.log.Debug("opening thread", zap.String("run", run.ID), zap.String("link_id", msg.LinkID))
		a.activeView = ViewThreadDetail
		a.threadView = threadview.New(run.ID, msg.LinkID, a.store)
		a.threadView.SetSize(a.width, a.height-1)
		return a, a.threadView.Init()

	case messages.GoBackMsg:
		return a, a.goBack()

	case messages.ThreadsLoadedMsg:
		if msg.Err != nil {
			a.log.Error("loading threads", zap.String("run", msg.RunID), zap.Error(msg.Err))
			a.statusBar.SetStatus("Error: "+msg.Err.Error(), true)
		}

	case messages.RowsLoadedMsg:
		if msg.Err != nil {
			a.log.Error("loading thread rows", zap.String("link_id", msg.LinkID), zap.Error(msg.Err))
			a.statusBar.SetStatus("Error: "+msg.Err.Error(), true)
		}

	case messages.StatusMsg:
		a.statusBar.SetStatus(msg.Text, msg.IsError)
		if path, ok := strings.CutPrefix(msg.Text, "Opening: "); ok && !msg.IsError {
			go openBrowser(path)
		}
	}

	var cmd tea.Cmd
	switch a.activeView {
	case ViewThreadList:
		a.threadList, cmd = a.threadList.Update(msg)
		cmds = append(cmds, cmd)
	case ViewThreadDetail:
		a.threadView, cmd = a.threadView.Update(msg)
		cmds = append(cmds, cmd)
	}

	a.statusBar, cmd = a.statusBar.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// View renders the application.
func (a *App) View() string {
	var content string
	switch {
	case len(a.runs) == 0:
		content = "  No runs stored yet. Run `threadprep build` first."
	case a.activeView == ViewThreadDetail:
		content = a.threadView.View()
	default:
		content = a.threadList.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, content, a.statusBar.View())
}

func (a *App) goBack() tea.Cmd {
	a.activeView = ViewThreadList
	return nil
}

func (a *App) cycleRun(step int) tea.Cmd {
	if len(a.runs) < 2 {
		return nil
	}
	current := a.threadList.Run().ID
	next := 0
	for i, r := range a.runs {
		if r.ID == current {
			next = (i + step + len(a.runs)) % len(a.runs)
			break
		}
	}
	run := a.runs[next]
	a.activeView = ViewThreadList
	a.statusBar.SetActiveRun(run.ID)
	m, cmd := a.threadList.Update(messages.SwitchRunMsg{Run: run})
	a.threadList = m
	return cmd
}

func openBrowser(target string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "linux":
		cmd = exec.Command("xdg-open", target)
	default:
		return
	}
	cmd.Run()
}
