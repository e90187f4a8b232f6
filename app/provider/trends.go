package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Trends talks to the public Google Trends endpoints: daily trending
// searches for reservoir rows, and the explore/related-searches widget pair
// for rising queries around a seed keyword.
type Trends struct {
	client    *http.Client
	userAgent string
	baseURL   string
	geo       string
	hl        string
	window    string
}

func NewTrends(client *http.Client, userAgent, geo, hl, window string) *Trends {
	return &Trends{
		client:    client,
		userAgent: userAgent,
		baseURL:   "https://trends.google.com",
		geo:       geo,
		hl:        hl,
		window:    window,
	}
}

func (t *Trends) Name() string {
	return "trends"
}

type dailyTrends struct {
	Default struct {
		TrendingSearchesDays []struct {
			Date             string `json:"date"`
			TrendingSearches []struct {
				Title struct {
					Query string `json:"query"`
				} `json:"title"`
				Articles []struct {
					URL string `json:"url"`
				} `json:"articles"`
			} `json:"trendingSearches"`
		} `json:"trendingSearchesDays"`
	} `json:"default"`
}

func (t *Trends) Fetch(ctx context.Context, limit int) ([]DiscoveryItem, error) {
	trends, err := t.fetchDailyTrends(ctx)
	if err != nil {
		return nil, err
	}

	var items []DiscoveryItem
	for _, day := range trends.Default.TrendingSearchesDays {
		for _, search := range day.TrendingSearches {
			query := search.Title.Query
			if query == "" {
				continue
			}

			itemURL := "https://www.google.com/search?q=" + url.QueryEscape(query)
			if len(search.Articles) > 0 && search.Articles[0].URL != "" {
				itemURL = search.Articles[0].URL
			}

			ts := time.Now().UTC()
			if parsed, err := time.Parse("20060102", day.Date); err == nil {
				ts = parsed.UTC()
			}

			items = append(items, DiscoveryItem{
				ID:        "trends:" + day.Date + ":" + query,
				Text:      query,
				Source:    t.Name(),
				URL:       itemURL,
				Timestamp: ts,
			})
			if limit > 0 && len(items) >= limit {
				return items, nil
			}
		}
	}
	return items, nil
}

// TrendingSearches returns the raw trending query strings, used as the
// watchlist fallback feed.
func (t *Trends) TrendingSearches(ctx context.Context) ([]string, error) {
	trends, err := t.fetchDailyTrends(ctx)
	if err != nil {
		return nil, err
	}

	var queries []string
	for _, day := range trends.Default.TrendingSearchesDays {
		for _, search := range day.TrendingSearches {
			if search.Title.Query != "" {
				queries = append(queries, search.Title.Query)
			}
		}
	}
	return queries, nil
}

func (t *Trends) fetchDailyTrends(ctx context.Context) (*dailyTrends, error) {
	params := url.Values{}
	params.Set("hl", t.hl)
	params.Set("tz", "0")
	params.Set("geo", t.geo)

	body, err := t.get(ctx, t.baseURL+"/trends/api/dailytrends?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var trends dailyTrends
	if err := json.Unmarshal(stripXSSIPrefix(body), &trends); err != nil {
		return nil, fmt.Errorf("failed to parse daily trends: %w", err)
	}
	return &trends, nil
}

type exploreResponse struct {
	Widgets []struct {
		ID      string          `json:"id"`
		Token   string          `json:"token"`
		Request json.RawMessage `json:"request"`
	} `json:"widgets"`
}

type relatedSearches struct {
	Default struct {
		RankedList []struct {
			RankedKeyword []struct {
				Query string `json:"query"`
				Value int    `json:"value"`
			} `json:"rankedKeyword"`
		} `json:"rankedList"`
	} `json:"default"`
}

// RisingQueries runs the explore request for a seed keyword, locates the
// related-queries widget token and fetches its ranked lists. The second
// ranked list holds the rising queries; the first holds all-time top.
func (t *Trends) RisingQueries(ctx context.Context, seed string) ([]RisingQuery, error) {
	exploreReq := map[string]any{
		"comparisonItem": []map[string]string{
			{"keyword": seed, "geo": t.geo, "time": t.window},
		},
		"category": 0,
		"property": "",
	}
	reqJSON, err := json.Marshal(exploreReq)
	if err != nil {
		return nil, fmt.Errorf("failed to encode explore request: %w", err)
	}

	params := url.Values{}
	params.Set("hl", t.hl)
	params.Set("tz", "0")
	params.Set("req", string(reqJSON))

	body, err := t.get(ctx, t.baseURL+"/trends/api/explore?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var explore exploreResponse
	if err := json.Unmarshal(stripXSSIPrefix(body), &explore); err != nil {
		return nil, fmt.Errorf("failed to parse explore response: %w", err)
	}

	var token string
	var widgetReq json.RawMessage
	for _, w := range explore.Widgets {
		if w.ID == "RELATED_QUERIES" {
			token = w.Token
			widgetReq = w.Request
			break
		}
	}
	if token == "" {
		return nil, fmt.Errorf("no related-queries widget for seed %q", seed)
	}

	params = url.Values{}
	params.Set("hl", t.hl)
	params.Set("tz", "0")
	params.Set("req", string(widgetReq))
	params.Set("token", token)

	body, err = t.get(ctx, t.baseURL+"/trends/api/widgetdata/relatedsearches?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var related relatedSearches
	if err := json.Unmarshal(stripXSSIPrefix(body), &related); err != nil {
		return nil, fmt.Errorf("failed to parse related searches: %w", err)
	}

	lists := related.Default.RankedList
	if len(lists) == 0 {
		return nil, nil
	}
	rising := lists[len(lists)-1].RankedKeyword

	queries := make([]RisingQuery, 0, len(rising))
	for _, kw := range rising {
		if kw.Query == "" {
			continue
		}
		queries = append(queries, RisingQuery{Query: kw.Query, Value: kw.Value})
	}
	return queries, nil
}

func (t *Trends) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// stripXSSIPrefix removes the )]}' guard Google prepends to JSON payloads.
func stripXSSIPrefix(body []byte) []byte {
	s := string(body)
	if idx := strings.IndexAny(s, "{["); idx > 0 {
		prefix := strings.TrimSpace(s[:idx])
		if strings.HasPrefix(prefix, ")]}'") {
			return []byte(s[idx:])
		}
	}
	return body
}
