package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// AlgoliaResponse is the search response from the Algolia HN API.
type AlgoliaResponse struct {
	Hits []AlgoliaHit `json:"hits"`
}

// AlgoliaHit is a single search result.
type AlgoliaHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Author      string `json:"author"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
	CreatedAtI  int64  `json:"created_at_i"`
	StoryText   string `json:"story_text"`
}

// ToItem converts a story hit to an api.Item. Search hits carry no kids;
// fetch the item itself to walk its comments.
func (h AlgoliaHit) ToItem() *Item {
	id, _ := strconv.Atoi(h.ObjectID)
	return &Item{
		ID:          id,
		Type:        "story",
		By:          h.Author,
		Time:        h.CreatedAtI,
		Score:       h.Points,
		Title:       h.Title,
		URL:         h.URL,
		Descendants: h.NumComments,
		Text:        h.StoryText,
	}
}

// SearchStories returns the newest stories matching a topic, up to limit.
// Stories without comments are skipped.
func (c *Client) SearchStories(ctx context.Context, topic string, limit int) ([]*Item, error) {
	q := url.Values{}
	q.Set("query", topic)
	q.Set("tags", "story")
	q.Set("hitsPerPage", strconv.Itoa(limit))
	u := c.algoliaURL + "/search_by_date?" + q.Encode()

	var resp AlgoliaResponse
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, fmt.Errorf("searching stories for %q: %w", topic, err)
	}

	items := make([]*Item, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		if hit.NumComments == 0 {
			continue
		}
		item := hit.ToItem()
		if item.ID == 0 {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
