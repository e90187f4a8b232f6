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

// YouTube searches the Data API v3 for videos matching a query. Without an
// API key the provider yields an empty batch instead of failing, so it can
// stay in the configured provider set.
type YouTube struct {
	client    *http.Client
	userAgent string
	apiKey    string
	query     string
	baseURL   string
}

func NewYouTube(client *http.Client, userAgent, apiKey, query string) *YouTube {
	if query == "" {
		query = "emoji meaning"
	}
	return &YouTube{
		client:    client,
		userAgent: userAgent,
		apiKey:    apiKey,
		query:     query,
		baseURL:   "https://www.googleapis.com",
	}
}

func (y *YouTube) Name() string {
	return "youtube"
}

type ytSearchResult struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title           string `json:"title"`
			PublishedAt     string `json:"publishedAt"`
			DefaultLanguage string `json:"defaultLanguage"`
		} `json:"snippet"`
	} `json:"items"`
}

func (y *YouTube) Fetch(ctx context.Context, limit int) ([]DiscoveryItem, error) {
	if y.apiKey == "" {
		return nil, nil
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("maxResults", fmt.Sprintf("%d", limit))
	params.Set("q", y.query)
	params.Set("key", y.apiKey)

	req, err := http.NewRequestWithContext(ctx, "GET", y.baseURL+"/youtube/v3/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", y.userAgent)

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result ytSearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse search result: %w", err)
	}

	items := make([]DiscoveryItem, 0, len(result.Items))
	for _, item := range result.Items {
		if item.Snippet.Title == "" || item.ID.VideoID == "" {
			continue
		}

		ts := time.Now().UTC()
		if parsed, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			ts = parsed.UTC()
		}

		items = append(items, DiscoveryItem{
			ID:        "youtube:" + item.ID.VideoID,
			Text:      item.Snippet.Title,
			Lang:      item.Snippet.DefaultLanguage,
			Source:    y.Name(),
			URL:       "https://www.youtube.com/watch?v=" + item.ID.VideoID,
			Timestamp: ts,
		})
	}
	return items, nil
}
