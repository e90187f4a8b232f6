package reservoir

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/signal-comb/app/cache"
	"github.com/lysyi3m/signal-comb/app/database"
	"github.com/lysyi3m/signal-comb/app/provider"
	"github.com/lysyi3m/signal-comb/app/resilience"
)

type Options struct {
	// PerProviderLimit is handed to each provider's Fetch.
	PerProviderLimit int
	// Concurrency bounds how many provider fetches run in flight.
	Concurrency int
	// ItemBudget caps total items ingested per cycle; 0 derives
	// providers x PerProviderLimit.
	ItemBudget int
	// CacheTTL gates reuse of a completed cycle's merged output; 0 disables
	// caching.
	CacheTTL time.Duration
	// BreakerThreshold is the per-provider consecutive-failure threshold.
	BreakerThreshold int
	RetryAttempts    int
	RetryBase        time.Duration
}

// Builder runs full ingestion cycles: every configured provider is fetched
// through retry and a per-cycle circuit breaker with bounded parallelism,
// batches are merged under the item budget, normalized and deduplicated,
// and the merged output is cached per provider-set and calendar date.
type Builder struct {
	providers  []provider.Provider
	cacheRepo  database.CacheRepository
	healthRepo database.HealthRepository
	normalizer *Normalizer
	opts       Options
}

func NewBuilder(providers []provider.Provider, cacheRepo database.CacheRepository, healthRepo database.HealthRepository, normalizer *Normalizer, opts Options) *Builder {
	if opts.PerProviderLimit < 1 {
		opts.PerProviderLimit = 100
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 3
	}
	if opts.ItemBudget < 1 {
		opts.ItemBudget = len(providers) * opts.PerProviderLimit
	}
	return &Builder{
		providers:  providers,
		cacheRepo:  cacheRepo,
		healthRepo: healthRepo,
		normalizer: normalizer,
		opts:       opts,
	}
}

// Build runs a cache-aware ingestion cycle and returns at most limit
// deduplicated rows. No failure combination is fatal: the worst outcome is
// an empty reservoir.
func (b *Builder) Build(ctx context.Context, limit int) ([]Row, error) {
	items, err := cache.WithTTL(ctx, b.cacheRepo, b.cacheKey(time.Now().UTC()), b.opts.CacheTTL, b.runCycle)
	if err != nil {
		return nil, err
	}
	return b.project(items, limit), nil
}

// Rebuild forces a fresh cycle, overwriting whatever the cache holds for
// today's key.
func (b *Builder) Rebuild(ctx context.Context, limit int) ([]Row, error) {
	items, err := b.runCycle(ctx)
	if err != nil {
		return nil, err
	}
	if b.opts.CacheTTL > 0 {
		if raw, err := json.Marshal(items); err == nil {
			if err := b.cacheRepo.SetEntry(b.cacheKey(time.Now().UTC()), raw, time.Now().UTC()); err != nil {
				slog.Warn("Failed to overwrite reservoir cache", "error", err)
			}
		}
	}
	return b.project(items, limit), nil
}

// cacheKey derives a deterministic key from the provider set and the UTC
// calendar date, so a new key is minted once per day.
func (b *Builder) cacheKey(now time.Time) string {
	names := make([]string, 0, len(b.providers))
	for _, p := range b.providers {
		names = append(names, p.Name())
	}
	return fmt.Sprintf("reservoir-%s-%s", strings.Join(names, "+"), now.Format("2006-01-02"))
}

// runCycle never returns an error: provider failures are retried, isolated
// behind the breaker, and recorded in the health ledger.
func (b *Builder) runCycle(ctx context.Context) ([]provider.DiscoveryItem, error) {
	jobs := make([]fetchJob, len(b.providers))
	for i, p := range b.providers {
		breaker := resilience.NewBreaker(b.opts.BreakerThreshold)
		jobs[i] = b.fetchJobFor(p, breaker)
	}

	results := runJobs(ctx, jobs, b.opts.Concurrency)

	budget := NewBudget(b.opts.ItemBudget)
	var merged []provider.DiscoveryItem
	for i, batch := range results {
		granted := budget.Take(len(batch))
		if granted < len(batch) {
			slog.Debug("Item budget truncated batch",
				"provider", b.providers[i].Name(), "fetched", len(batch), "kept", granted)
		}
		merged = append(merged, batch[:granted]...)
	}

	deduped := b.normalizer.Run(merged)
	slog.Info("Ingestion cycle completed",
		"providers", len(b.providers),
		"raw", len(merged),
		"accepted", len(deduped),
		"budget_left", budget.Remaining())

	return deduped, nil
}

func (b *Builder) fetchJobFor(p provider.Provider, breaker *resilience.Breaker) fetchJob {
	return func(ctx context.Context) []provider.DiscoveryItem {
		if !breaker.Allow() {
			b.recordHealth(database.ProviderHealth{
				Provider: p.Name(),
				OK:       false,
				Error:    "circuit open",
			})
			return nil
		}

		start := time.Now()
		items, err := resilience.Retry(ctx, b.opts.RetryAttempts, b.opts.RetryBase,
			func(ctx context.Context) ([]provider.DiscoveryItem, error) {
				return p.Fetch(ctx, b.opts.PerProviderLimit)
			})
		duration := time.Since(start)

		if err != nil {
			breaker.Failure()
			slog.Warn("Provider fetch failed", "provider", p.Name(), "duration", duration, "error", err)
			b.recordHealth(database.ProviderHealth{
				Provider:   p.Name(),
				OK:         false,
				DurationMs: duration.Milliseconds(),
				Error:      err.Error(),
			})
			return nil
		}

		breaker.Success()
		b.recordHealth(database.ProviderHealth{
			Provider:   p.Name(),
			OK:         true,
			ItemCount:  len(items),
			DurationMs: duration.Milliseconds(),
		})
		return items
	}
}

func (b *Builder) recordHealth(h database.ProviderHealth) {
	h.RecordedAt = time.Now().UTC()
	if err := b.healthRepo.Record(h); err != nil {
		slog.Warn("Failed to record provider health", "provider", h.Provider, "error", err)
	}
}

func (b *Builder) project(items []provider.DiscoveryItem, limit int) []Row {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, Row{
			Text:      item.Text,
			URL:       item.URL,
			Lang:      item.Lang,
			CreatedAt: item.Timestamp,
		})
	}
	return rows
}
