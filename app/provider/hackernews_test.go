package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHackerNewsFetch(t *testing.T) {
	var gotHitsPerPage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHitsPerPage = r.URL.Query().Get("hitsPerPage")
		fmt.Fprint(w, `{"hits": [
			{"objectID": "101", "title": "Show HN: something", "url": "https://example.com/show", "created_at": "2024-06-01T10:00:00Z"},
			{"objectID": "102", "title": "Ask HN: no url story", "url": "", "created_at": "2024-06-01T11:00:00Z"},
			{"objectID": "103", "title": "", "url": "https://example.com/untitled"}
		]}`)
	}))
	defer server.Close()

	hn := NewHackerNews(server.Client(), "test-agent")
	hn.baseURL = server.URL

	items, err := hn.Fetch(context.Background(), 25)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotHitsPerPage != "25" {
		t.Errorf("Expected hitsPerPage=25, got %q", gotHitsPerPage)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items (untitled skipped), got %d", len(items))
	}
	if items[0].ID != "hn:101" {
		t.Errorf("Expected prefixed ID 'hn:101', got %q", items[0].ID)
	}
	if items[0].URL != "https://example.com/show" {
		t.Errorf("Expected story URL, got %q", items[0].URL)
	}
	if items[1].URL != "https://news.ycombinator.com/item?id=102" {
		t.Errorf("Expected fallback item URL, got %q", items[1].URL)
	}
	if items[0].Timestamp.Year() != 2024 {
		t.Errorf("Expected parsed timestamp, got %v", items[0].Timestamp)
	}
}

func TestHackerNewsFetch_ClampsLimit(t *testing.T) {
	var gotHitsPerPage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHitsPerPage = r.URL.Query().Get("hitsPerPage")
		fmt.Fprint(w, `{"hits": []}`)
	}))
	defer server.Close()

	hn := NewHackerNews(server.Client(), "test-agent")
	hn.baseURL = server.URL

	if _, err := hn.Fetch(context.Background(), 1); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotHitsPerPage != "10" {
		t.Errorf("Expected low limit clamped to 10, got %q", gotHitsPerPage)
	}

	if _, err := hn.Fetch(context.Background(), 500); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotHitsPerPage != "100" {
		t.Errorf("Expected high limit clamped to 100, got %q", gotHitsPerPage)
	}
}

func TestHackerNewsFetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	hn := NewHackerNews(server.Client(), "test-agent")
	hn.baseURL = server.URL

	if _, err := hn.Fetch(context.Background(), 10); err == nil {
		t.Error("Expected error on HTTP failure")
	}
}
