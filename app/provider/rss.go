package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSS reads a configured set of RSS/Atom feeds through gofeed, which is
// tolerant of the CDATA/encoding quirks that break naive tag matching.
type RSS struct {
	client    *http.Client
	userAgent string
	feeds     []string
	parser    *gofeed.Parser
}

func NewRSS(client *http.Client, userAgent string, feeds []string) *RSS {
	return &RSS{
		client:    client,
		userAgent: userAgent,
		feeds:     feeds,
		parser:    gofeed.NewParser(),
	}
}

func (r *RSS) Name() string {
	return "rss"
}

// Fetch collects up to limit items per feed. A failing feed is skipped; the
// fetch as a whole fails only when every feed failed.
func (r *RSS) Fetch(ctx context.Context, limit int) ([]DiscoveryItem, error) {
	var items []DiscoveryItem
	var lastErr error

	for _, feedURL := range r.feeds {
		batch, err := r.fetchFeed(ctx, feedURL, limit)
		if err != nil {
			slog.Warn("Feed fetch failed, skipping", "feed", feedURL, "error", err)
			lastErr = err
			continue
		}
		items = append(items, batch...)
	}

	if len(items) == 0 && lastErr != nil {
		return nil, fmt.Errorf("all feeds failed: %w", lastErr)
	}
	return items, nil
}

func (r *RSS) fetchFeed(ctx context.Context, feedURL string, limit int) ([]DiscoveryItem, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	feed, err := r.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]DiscoveryItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		if item == nil || item.Title == "" || item.Link == "" {
			continue
		}

		ts := time.Now().UTC()
		if item.PublishedParsed != nil {
			ts = item.PublishedParsed.UTC()
		}

		guid := item.GUID
		if guid == "" {
			guid = item.Link
		}

		items = append(items, DiscoveryItem{
			ID:        "rss:" + guid,
			Text:      item.Title,
			Lang:      feed.Language,
			Source:    r.Name(),
			URL:       item.Link,
			Timestamp: ts,
		})
	}
	return items, nil
}
