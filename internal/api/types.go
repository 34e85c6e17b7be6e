package api

import (
	"encoding/json"
	"strconv"
)

// StoryType represents the HN story lists that can seed a fetch.
type StoryType string

const (
	StoryTypeTop  StoryType = "top"
	StoryTypeNew  StoryType = "new"
	StoryTypeBest StoryType = "best"
	StoryTypeAsk  StoryType = "ask"
	StoryTypeShow StoryType = "show"
)

// Item represents an HN item (story, comment, job, poll, pollopt).
type Item struct {
	ID          int    `json:"id"`
	Type        string `json:"type"`
	By          string `json:"by"`
	Time        int64  `json:"time"`
	Text        string `json:"text"`
	Parent      int    `json:"parent"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Score       int    `json:"score"`
	Descendants int    `json:"descendants"`
	Dead        bool   `json:"dead"`
	Deleted     bool   `json:"deleted"`

	// Kids is kept raw and parsed lazily.
	RawKids json.RawMessage `json:"kids"`

	kids []int
}

// Kids returns the child item IDs for this item.
func (it *Item) Kids() []int {
	if it.kids != nil {
		return it.kids
	}
	if len(it.RawKids) == 0 {
		return nil
	}
	_ = json.Unmarshal(it.RawKids, &it.kids)
	return it.kids
}

// Permalink returns the item's page on the HN site.
func (it *Item) Permalink() string {
	return itemBaseURL + strconv.Itoa(it.ID)
}
