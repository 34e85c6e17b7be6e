package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	baseURL        = "https://hacker-news.firebaseio.com/v0"
	algoliaBaseURL = "https://hn.algolia.com/api/v1"
	itemBaseURL    = "https://news.ycombinator.com/item?id="
	requestTimeout = 10 * time.Second
	maxConcurrent  = 10
)

// Client is the HN API client.
type Client struct {
	http        *http.Client
	baseURL     string
	algoliaURL  string
	concurrency int
	log         *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the Firebase endpoints at another host.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithAlgoliaURL points the search endpoints at another host.
func WithAlgoliaURL(u string) Option { return func(c *Client) { c.algoliaURL = u } }

// WithConcurrency bounds the number of in-flight item requests.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the logger used for non-fatal fetch failures.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.log = l } }

// NewClient creates a new HN API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: requestTimeout,
		},
		baseURL:     baseURL,
		algoliaURL:  algoliaBaseURL,
		concurrency: maxConcurrent,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// get fetches a URL and decodes the JSON response into dst.
func (c *Client) get(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "threadprep/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, url, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}

// GetItem fetches a single item by ID. A missing item (JSON null) is
// returned as nil without error.
func (c *Client) GetItem(ctx context.Context, id int) (*Item, error) {
	url := fmt.Sprintf("%s/item/%d.json", c.baseURL, id)
	var item *Item
	if err := c.get(ctx, url, &item); err != nil {
		return nil, err
	}
	return item, nil
}

// BatchGetItems fetches multiple items concurrently with a concurrency limit.
// Returns items in the same order as the input IDs. Failed fetches are nil.
func (c *Client) BatchGetItems(ctx context.Context, ids []int) ([]*Item, error) {
	results := make([]*Item, len(ids))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			item, err := c.GetItem(gctx, id)
			if err != nil {
				// Non-fatal: individual items can fail.
				c.log.Debug("item fetch failed", zap.Int("id", id), zap.Error(err))
				return nil
			}
			mu.Lock()
			results[i] = item
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Cancellation only shows up as nil items above.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
