package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// HackerNews queries the Algolia search API for current front-page stories.
type HackerNews struct {
	client    *http.Client
	userAgent string
	baseURL   string
}

func NewHackerNews(client *http.Client, userAgent string) *HackerNews {
	return &HackerNews{
		client:    client,
		userAgent: userAgent,
		baseURL:   "https://hn.algolia.com",
	}
}

func (h *HackerNews) Name() string {
	return "hn"
}

type hnSearchResult struct {
	Hits []struct {
		ObjectID  string `json:"objectID"`
		Title     string `json:"title"`
		URL       string `json:"url"`
		CreatedAt string `json:"created_at"`
	} `json:"hits"`
}

func (h *HackerNews) Fetch(ctx context.Context, limit int) ([]DiscoveryItem, error) {
	if limit < 10 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	params := url.Values{}
	params.Set("tags", "story")
	params.Set("hitsPerPage", fmt.Sprintf("%d", limit))

	req, err := http.NewRequestWithContext(ctx, "GET", h.baseURL+"/api/v1/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stories: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result hnSearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse search result: %w", err)
	}

	items := make([]DiscoveryItem, 0, len(result.Hits))
	for _, hit := range result.Hits {
		if hit.Title == "" {
			continue
		}

		storyURL := hit.URL
		if storyURL == "" {
			if hit.ObjectID == "" {
				continue
			}
			storyURL = "https://news.ycombinator.com/item?id=" + hit.ObjectID
		}

		ts := time.Now().UTC()
		if parsed, err := time.Parse(time.RFC3339, hit.CreatedAt); err == nil {
			ts = parsed.UTC()
		}

		items = append(items, DiscoveryItem{
			ID:        "hn:" + hit.ObjectID,
			Text:      hit.Title,
			Lang:      "en",
			Source:    h.Name(),
			URL:       storyURL,
			Timestamp: ts,
		})
	}
	return items, nil
}
