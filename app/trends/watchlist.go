// Package trends promotes rising search queries onto a persistent watchlist
// of terms people are currently asking the meaning of.
package trends

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/lysyi3m/signal-comb/app/cache"
	"github.com/lysyi3m/signal-comb/app/database"
	"github.com/lysyi3m/signal-comb/app/extract"
	"github.com/lysyi3m/signal-comb/app/provider"
)

const (
	DefaultMinGrowth    = 50.0
	DefaultMaxWatchlist = 50

	// highScoreThreshold promotes outright, regardless of growth history.
	highScoreThreshold = 70

	// scoreHistoryKeep bounds the per-term score history used for the
	// growth baseline.
	scoreHistoryKeep = 4
)

// Source yields trend data: rising queries around a seed keyword and the
// unfiltered trending-searches feed used as a fallback.
type Source interface {
	RisingQueries(ctx context.Context, seed string) ([]provider.RisingQuery, error)
	TrendingSearches(ctx context.Context) ([]string, error)
}

type Options struct {
	Seeds        []string
	MinGrowth    float64
	MaxWatchlist int
	CacheTTL     time.Duration
}

// Promoter watches rising queries per seed keyword and promotes the ones
// spiking around an "X meaning" intent onto the watchlist.
type Promoter struct {
	source    Source
	cacheRepo database.CacheRepository
	watchlist database.WatchlistRepository
	opts      Options
}

// Result summarizes one promotion cycle.
type Result struct {
	Observed int      `json:"observed"`
	Promoted []string `json:"promoted"`
	FellBack bool     `json:"fell_back"`
}

func NewPromoter(source Source, cacheRepo database.CacheRepository, watchlist database.WatchlistRepository, opts Options) *Promoter {
	if opts.MinGrowth <= 0 {
		opts.MinGrowth = DefaultMinGrowth
	}
	if opts.MaxWatchlist <= 0 {
		opts.MaxWatchlist = DefaultMaxWatchlist
	}
	return &Promoter{
		source:    source,
		cacheRepo: cacheRepo,
		watchlist: watchlist,
		opts:      opts,
	}
}

// Run fetches rising queries for every configured seed (cached per seed and
// UTC date), scores each against its history and promotes the qualifying
// terms. With no seeds, or zero rising results across all of them, the
// unfiltered trending-searches feed is promoted instead so the watchlist
// never starves on a quiet day.
func (p *Promoter) Run(ctx context.Context, now time.Time) (Result, error) {
	var result Result

	for _, seed := range p.opts.Seeds {
		key := fmt.Sprintf("trends-%s-%s", seed, now.UTC().Format("2006-01-02"))
		queries, err := cache.WithTTL(ctx, p.cacheRepo, key, p.opts.CacheTTL, func(ctx context.Context) ([]provider.RisingQuery, error) {
			return p.source.RisingQueries(ctx, seed)
		})
		if err != nil {
			slog.Warn("Rising queries fetch failed, skipping seed", "seed", seed, "error", err)
			continue
		}

		result.Observed += len(queries)
		for _, q := range queries {
			if term, promoted := p.evaluate(q, now); promoted {
				result.Promoted = append(result.Promoted, term)
			}
		}
	}

	if len(p.opts.Seeds) == 0 || result.Observed == 0 {
		promoted, err := p.fallback(ctx, now)
		if err != nil {
			return result, err
		}
		result.Promoted = append(result.Promoted, promoted...)
		result.FellBack = true
	}

	slog.Info("Trend promotion cycle finished",
		"observed", result.Observed, "promoted", len(result.Promoted), "fallback", result.FellBack)
	return result, nil
}

// evaluate scores one rising query against its history and promotes its
// subject when the spike and the meaning-intent filter both hold.
func (p *Promoter) evaluate(q provider.RisingQuery, now time.Time) (string, bool) {
	historyKey := strings.ToLower(strings.TrimSpace(q.Query))
	history, err := p.watchlist.Scores(historyKey)
	if err != nil {
		history = nil
	}

	growth := float64(q.Value)
	if len(history) > 0 {
		baseline := median(history)
		growth = (float64(q.Value) - baseline) / math.Max(1, baseline) * 100
	}

	if err := p.watchlist.PushScore(historyKey, q.Value, scoreHistoryKeep); err != nil {
		slog.Warn("Failed to record score history", "query", q.Query, "error", err)
	}

	if growth < p.opts.MinGrowth && q.Value < highScoreThreshold {
		return "", false
	}

	subject, ok := meaningSubject(q.Query)
	if !ok {
		return "", false
	}

	if err := p.watchlist.Promote(subject, now, p.opts.MaxWatchlist); err != nil {
		slog.Warn("Failed to promote watchlist term", "term", subject, "error", err)
		return "", false
	}
	return subject, true
}

func (p *Promoter) fallback(ctx context.Context, now time.Time) ([]string, error) {
	terms, err := p.source.TrendingSearches(ctx)
	if err != nil {
		return nil, fmt.Errorf("trending searches fallback failed: %w", err)
	}

	if len(terms) > p.opts.MaxWatchlist {
		terms = terms[:p.opts.MaxWatchlist]
	}

	var promoted []string
	for _, term := range terms {
		if err := p.watchlist.Promote(term, now, p.opts.MaxWatchlist); err != nil {
			slog.Warn("Failed to promote fallback term", "term", term, "error", err)
			continue
		}
		promoted = append(promoted, term)
	}
	return promoted, nil
}

var acronymSubjectRe = regexp.MustCompile(`^[A-Za-z]{2,5}$`)

// meaningSubject extracts X from an "X meaning" query when X is a single
// emoji cluster or a 2-5 letter acronym.
func meaningSubject(query string) (string, bool) {
	trimmed := strings.TrimSpace(query)
	lower := strings.ToLower(trimmed)

	const suffix = " meaning"
	if !strings.HasSuffix(lower, suffix) {
		return "", false
	}
	subject := strings.TrimSpace(trimmed[:len(trimmed)-len(suffix)])
	if subject == "" {
		return "", false
	}

	if clusters := extract.Emojis(subject); len(clusters) == 1 && clusters[0] == subject {
		return subject, true
	}
	if acronymSubjectRe.MatchString(subject) {
		return strings.ToUpper(subject), true
	}
	return "", false
}

func median(values []int) float64 {
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}
