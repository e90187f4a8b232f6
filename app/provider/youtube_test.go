package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestYouTubeFetch_NoAPIKeyYieldsEmptyBatch(t *testing.T) {
	yt := NewYouTube(http.DefaultClient, "test-agent", "", "")

	items, err := yt.Fetch(context.Background(), 10)
	if err != nil {
		t.Fatalf("Expected no error without API key, got %v", err)
	}
	if items != nil {
		t.Errorf("Expected empty batch without API key, got %v", items)
	}
}

func TestYouTubeFetch(t *testing.T) {
	var gotQuery, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("key")
		fmt.Fprint(w, `{"items": [
			{"id": {"videoId": "abc123"}, "snippet": {"title": "What does 🪿 mean?", "publishedAt": "2024-06-01T10:00:00Z", "defaultLanguage": "en"}},
			{"id": {"videoId": ""}, "snippet": {"title": "Broken entry"}},
			{"id": {"videoId": "def456"}, "snippet": {"title": ""}}
		]}`)
	}))
	defer server.Close()

	yt := NewYouTube(server.Client(), "test-agent", "secret-key", "emoji meaning")
	yt.baseURL = server.URL

	items, err := yt.Fetch(context.Background(), 10)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if gotQuery != "emoji meaning" {
		t.Errorf("Expected query 'emoji meaning', got %q", gotQuery)
	}
	if gotKey != "secret-key" {
		t.Errorf("Expected API key forwarded, got %q", gotKey)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 valid item, got %d", len(items))
	}
	if items[0].ID != "youtube:abc123" {
		t.Errorf("Expected prefixed ID, got %q", items[0].ID)
	}
	if items[0].URL != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("Unexpected watch URL %q", items[0].URL)
	}
}
