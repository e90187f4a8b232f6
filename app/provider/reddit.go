package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// Reddit pulls the current "hot" listing from a set of subreddits.
type Reddit struct {
	client     *http.Client
	userAgent  string
	subreddits []string
	baseURL    string
}

func NewReddit(client *http.Client, userAgent string, subreddits []string) *Reddit {
	return &Reddit{
		client:     client,
		userAgent:  userAgent,
		subreddits: subreddits,
		baseURL:    "https://www.reddit.com",
	}
}

func (r *Reddit) Name() string {
	return "reddit"
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Title      string  `json:"title"`
				Permalink  string  `json:"permalink"`
				CreatedUTC float64 `json:"created_utc"`
				Subreddit  string  `json:"subreddit"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Fetch collects up to limit items per subreddit. A failing subreddit is
// skipped; the fetch as a whole fails only when every subreddit failed.
func (r *Reddit) Fetch(ctx context.Context, limit int) ([]DiscoveryItem, error) {
	var items []DiscoveryItem
	var lastErr error

	for _, sub := range r.subreddits {
		batch, err := r.fetchSubreddit(ctx, sub, limit)
		if err != nil {
			slog.Warn("Subreddit fetch failed, skipping", "subreddit", sub, "error", err)
			lastErr = err
			continue
		}
		items = append(items, batch...)
	}

	if len(items) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all subreddits failed: %w", lastErr)
	}
	return items, nil
}

func (r *Reddit) fetchSubreddit(ctx context.Context, sub string, limit int) ([]DiscoveryItem, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", r.baseURL, url.PathEscape(sub), limit)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}

	items := make([]DiscoveryItem, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		d := child.Data
		if d.Title == "" || d.Permalink == "" {
			continue
		}

		ts := time.Now().UTC()
		if d.CreatedUTC > 0 {
			ts = time.Unix(int64(d.CreatedUTC), 0).UTC()
		}

		items = append(items, DiscoveryItem{
			ID:        "reddit:" + d.ID,
			Text:      d.Title,
			Lang:      "en",
			Source:    r.Name(),
			URL:       r.baseURL + d.Permalink,
			Timestamp: ts,
			Meta:      map[string]string{"subreddit": d.Subreddit},
		})
	}
	return items, nil
}
