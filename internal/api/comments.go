package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/fragmede/threadprep/internal/comment"
	"github.com/fragmede/threadprep/internal/render"
)

// Thread is a story and every comment reachable from it.
type Thread struct {
	Story    *Item
	Comments []Comment
}

// Comment is a fetched comment with its reply depth (top level = 0).
type Comment struct {
	*Item
	Depth int
}

// FetchThread loads a story and walks its comment tree one level at a
// time, fetching each level as a single concurrent batch. Comments that
// fail to load are dropped; their replies are never seen.
func (c *Client) FetchThread(ctx context.Context, storyID int) (*Thread, error) {
	story, err := c.GetItem(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("fetching story %d: %w", storyID, err)
	}
	if story == nil {
		return nil, fmt.Errorf("story %d not found", storyID)
	}

	t := &Thread{Story: story}
	seen := map[int]bool{story.ID: true}
	frontier := story.Kids()
	for depth := 0; len(frontier) > 0; depth++ {
		items, err := c.BatchGetItems(ctx, frontier)
		if err != nil {
			return nil, fmt.Errorf("fetching comments of %d: %w", storyID, err)
		}
		var next []int
		for i, item := range items {
			if item == nil {
				c.log.Debug("comment missing", zap.Int("id", frontier[i]), zap.Int("story", storyID))
				continue
			}
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true
			t.Comments = append(t.Comments, Comment{Item: item, Depth: depth})
			next = append(next, item.Kids()...)
		}
		frontier = next
	}
	return t, nil
}

// Records converts the thread's comments to pipeline records. Top-level
// comments get no parent; the story is kept as metadata instead.
func (t *Thread) Records() ([]comment.Record, error) {
	recs := make([]comment.Record, 0, len(t.Comments))
	var errs []error
	for _, c := range t.Comments {
		r := comment.Record{
			ID:        strconv.Itoa(c.ID),
			Body:      render.PlainText(c.Text),
			Permalink: c.Permalink(),
		}
		if c.Parent != 0 && c.Parent != t.Story.ID {
			r.ParentID = strconv.Itoa(c.Parent)
		}
		meta := map[string]any{
			"author":      c.By,
			"created_utc": c.Time,
			"depth":       c.Depth,
			"story_id":    strconv.Itoa(t.Story.ID),
			"post_title":  t.Story.Title,
		}
		if t.Story.URL != "" {
			meta["post_url"] = t.Story.URL
		}
		if c.Deleted || c.Dead {
			meta["removed"] = true
		}
		for k, v := range meta {
			if err := r.SetMeta(k, v); err != nil {
				errs = append(errs, fmt.Errorf("comment %d: %w", c.ID, err))
			}
		}
		recs = append(recs, r)
	}
	return recs, errors.Join(errs...)
}
