package messages

import (
	"github.com/fragmede/threadprep/internal/cache"
	"github.com/fragmede/threadprep/internal/thread"
)

// View transition messages.
type (
	OpenThreadMsg struct{ LinkID string }
	GoBackMsg     struct{}
	SwitchRunMsg  struct{ Run cache.Run }
)

// Data messages.
type (
	ThreadsLoadedMsg struct {
		RunID   string
		Threads []cache.ThreadSummary
		Err     error
	}

	RowsLoadedMsg struct {
		LinkID string
		Rows   []thread.Row
		Err    error
	}

	StatusMsg struct {
		Text    string
		IsError bool
	}
)
