package threadlist

import (
	"fmt"
	"strings"

	"github.com/fragmede/threadprep/internal/cache"
)

const titleWidth = 80

// ThreadItem wraps a thread summary for the bubbles list.
type ThreadItem struct {
	cache.ThreadSummary
	Index int
}

func (t ThreadItem) Title() string {
	text := strings.Join(strings.Fields(t.RootText), " ")
	if text == "" {
		return fmt.Sprintf("[thread %s]", t.LinkID)
	}
	if r := []rune(text); len(r) > titleWidth {
		text = string(r[:titleWidth-1]) + "…"
	}
	return text
}

func (t ThreadItem) Description() string {
	parts := []string{
		fmt.Sprintf("id %s", t.LinkID),
		plural(t.Rows, "comment"),
		fmt.Sprintf("depth %d", t.MaxDepth),
	}
	if t.Images > 0 {
		parts = append(parts, fmt.Sprintf("%d with images", t.Images))
	}
	return strings.Join(parts, " | ")
}

func (t ThreadItem) FilterValue() string {
	return t.RootText + " " + t.LinkID
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
