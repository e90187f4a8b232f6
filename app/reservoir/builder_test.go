package reservoir

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/signal-comb/app/database"
	"github.com/lysyi3m/signal-comb/app/provider"
)

type fakeProvider struct {
	name    string
	items   []provider.DiscoveryItem
	err     error
	mu      sync.Mutex
	fetches int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(ctx context.Context, limit int) ([]provider.DiscoveryItem, error) {
	f.mu.Lock()
	f.fetches++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && len(f.items) > limit {
		return f.items[:limit], nil
	}
	return f.items, nil
}

func (f *fakeProvider) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

type memStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	stored  map[string]time.Time
	health  map[string]database.ProviderHealth
}

func newMemStore() *memStore {
	return &memStore{
		entries: make(map[string][]byte),
		stored:  make(map[string]time.Time),
		health:  make(map[string]database.ProviderHealth),
	}
}

func (m *memStore) GetEntry(key string) ([]byte, time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.entries[key]
	return payload, m.stored[key], ok, nil
}

func (m *memStore) SetEntry(key string, payload []byte, storedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = payload
	m.stored[key] = storedAt
	return nil
}

func (m *memStore) Record(h database.ProviderHealth) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health[h.Provider] = h
	return nil
}

func (m *memStore) All() ([]database.ProviderHealth, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.ProviderHealth
	for _, h := range m.health {
		out = append(out, h)
	}
	return out, nil
}

func fakeItems(prefix string, n int) []provider.DiscoveryItem {
	items := make([]provider.DiscoveryItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, provider.DiscoveryItem{
			ID:   fmt.Sprintf("%s:%d", prefix, i),
			Text: fmt.Sprintf("%s headline number %d entirely unlike the others", prefix, i),
			URL:  fmt.Sprintf("https://example.com/%s/%d", prefix, i),
		})
	}
	return items
}

func newTestBuilder(store *memStore, opts Options, providers ...provider.Provider) *Builder {
	return NewBuilder(providers, store, store, NewNormalizer(nil, 0.92), opts)
}

func TestBuilder_SecondBuildWithinTTLServedFromCache(t *testing.T) {
	store := newMemStore()
	p := &fakeProvider{name: "reddit", items: fakeItems("reddit", 5)}
	b := newTestBuilder(store, Options{CacheTTL: time.Hour}, p)

	first, err := b.Build(context.Background(), 100)
	if err != nil {
		t.Fatalf("First build failed: %v", err)
	}
	second, err := b.Build(context.Background(), 100)
	if err != nil {
		t.Fatalf("Second build failed: %v", err)
	}

	if p.fetchCount() != 1 {
		t.Errorf("Expected provider fetched exactly once across two in-TTL builds, got %d", p.fetchCount())
	}
	if len(first) != len(second) {
		t.Errorf("Expected identical results from cache: %d != %d", len(first), len(second))
	}
}

func TestBuilder_ZeroTTLFetchesEveryCycle(t *testing.T) {
	store := newMemStore()
	p := &fakeProvider{name: "reddit", items: fakeItems("reddit", 3)}
	b := newTestBuilder(store, Options{CacheTTL: 0}, p)

	for i := 0; i < 3; i++ {
		if _, err := b.Build(context.Background(), 100); err != nil {
			t.Fatalf("Build %d failed: %v", i, err)
		}
	}

	if p.fetchCount() != 3 {
		t.Errorf("Expected 3 fetches with caching disabled, got %d", p.fetchCount())
	}
}

func TestBuilder_ReturnsAtMostLimitRows(t *testing.T) {
	store := newMemStore()
	p := &fakeProvider{name: "hn", items: fakeItems("hn", 50)}
	b := newTestBuilder(store, Options{}, p)

	for _, limit := range []int{1, 7, 50, 500} {
		rows, err := b.Build(context.Background(), limit)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if len(rows) > limit {
			t.Errorf("Expected at most %d rows, got %d", limit, len(rows))
		}
	}
}

func TestBuilder_FailingProviderIsIsolated(t *testing.T) {
	store := newMemStore()
	healthy := &fakeProvider{name: "hn", items: fakeItems("hn", 4)}
	broken := &fakeProvider{name: "reddit", err: errors.New("rate limited")}
	b := newTestBuilder(store, Options{RetryAttempts: 2, RetryBase: time.Millisecond}, broken, healthy)

	rows, err := b.Build(context.Background(), 100)
	if err != nil {
		t.Fatalf("Expected provider failure to be absorbed, got %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("Expected healthy provider's 4 rows, got %d", len(rows))
	}

	if h := store.health["reddit"]; h.OK || h.Error == "" {
		t.Errorf("Expected failed health record for reddit, got %+v", h)
	}
	if h := store.health["hn"]; !h.OK || h.ItemCount != 4 {
		t.Errorf("Expected ok health record for hn with 4 items, got %+v", h)
	}
}

func TestBuilder_FailedFetchIsRetried(t *testing.T) {
	store := newMemStore()
	broken := &fakeProvider{name: "rss", err: errors.New("boom")}
	b := newTestBuilder(store, Options{RetryAttempts: 3, RetryBase: time.Millisecond}, broken)

	if _, err := b.Build(context.Background(), 10); err != nil {
		t.Fatalf("Expected failure absorbed, got %v", err)
	}
	if broken.fetchCount() != 3 {
		t.Errorf("Expected 3 attempts against the failing provider, got %d", broken.fetchCount())
	}
}

func TestBuilder_ItemBudgetTruncatesMerge(t *testing.T) {
	store := newMemStore()
	a := &fakeProvider{name: "reddit", items: fakeItems("reddit", 10)}
	c := &fakeProvider{name: "hn", items: fakeItems("hn", 10)}
	b := newTestBuilder(store, Options{ItemBudget: 12}, a, c)

	rows, err := b.Build(context.Background(), 100)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(rows) != 12 {
		t.Errorf("Expected budget to cap merged items at 12, got %d", len(rows))
	}
}

func TestBuilder_EmptyProviderSetYieldsEmptyReservoir(t *testing.T) {
	store := newMemStore()
	b := NewBuilder(nil, store, store, NewNormalizer(nil, 0.92), Options{ItemBudget: 10})

	rows, err := b.Build(context.Background(), 10)
	if err != nil {
		t.Fatalf("Expected empty reservoir to be a valid result, got %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected 0 rows, got %d", len(rows))
	}
}

func TestBuilder_CacheKeyIncludesProviderSetAndDate(t *testing.T) {
	store := newMemStore()
	b := newTestBuilder(store, Options{}, &fakeProvider{name: "reddit"}, &fakeProvider{name: "hn"})

	day := time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC)
	key := b.cacheKey(day)
	if key != "reservoir-reddit+hn-2024-06-01" {
		t.Errorf("Unexpected cache key: %q", key)
	}
}
