package api

import "context"

// GetStories fetches story IDs for the given type and batch-fetches the items.
// limit controls how many items to fetch (0 = all). Failed fetches are
// left out.
func (c *Client) GetStories(ctx context.Context, st StoryType, limit int) ([]*Item, error) {
	ids, err := c.GetStoryIDs(ctx, st)
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	items, err := c.BatchGetItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	return compact(items), nil
}

func compact(items []*Item) []*Item {
	out := items[:0]
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}
