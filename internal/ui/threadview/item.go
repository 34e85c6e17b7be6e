package threadview

import "github.com/fragmede/threadprep/internal/thread"

// FlatComment is a dataset row prepared for display.
type FlatComment struct {
	Row         thread.Row
	IsCollapsed bool
	ChildCount  int
}
