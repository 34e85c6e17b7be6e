package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit    key.Binding
	Back    key.Binding
	NextRun key.Binding
	PrevRun key.Binding
}

var Keys = KeyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	NextRun: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next run")),
	PrevRun: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous run")),
}
