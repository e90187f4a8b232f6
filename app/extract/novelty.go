package extract

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/lysyi3m/signal-comb/app/database"
	"github.com/lysyi3m/signal-comb/app/reservoir"
)

// noveltyWindow is the decay window: a term surfaced now is fully suppressed
// and recovers its full score over roughly a week.
const noveltyWindow = 7 * 24 * time.Hour

// Store tracks when each term was last surfaced in a top-N scoring pass.
// State is loaded lazily once per process and written through to the
// repository on every update.
type Store struct {
	repo   database.NoveltyRepository
	mu     sync.Mutex
	seen   map[string]int64
	loaded bool
}

func NewStore(repo database.NoveltyRepository) *Store {
	return &Store{repo: repo}
}

func (s *Store) load() {
	if s.loaded {
		return
	}
	state, err := s.repo.All()
	if err != nil {
		// Missing or corrupt state is empty state.
		state = make(map[string]int64)
	}
	if state == nil {
		state = make(map[string]int64)
	}
	s.seen = state
	s.loaded = true
}

// LastSeen returns when the term last appeared in a top-N result.
func (s *Store) LastSeen(term string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	ms, ok := s.seen[term]
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// RecordSeen marks the term as freshly surfaced.
func (s *Store) RecordSeen(term string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	ms := at.UnixMilli()
	s.seen[term] = ms
	if err := s.repo.Set(term, ms); err != nil {
		return fmt.Errorf("failed to persist novelty timestamp: %w", err)
	}
	return nil
}

// Novelty returns the decay factor in [0, 1] for a term: 1 right after it
// was surfaced, falling exponentially toward 0 over the decay window. A
// never-seen term has novelty 0.
func (s *Store) Novelty(term string, now time.Time) float64 {
	last, ok := s.LastSeen(term)
	if !ok {
		return 0
	}
	age := now.Sub(last)
	if age < 0 {
		age = 0
	}
	return math.Exp(-float64(age) / float64(noveltyWindow))
}

// TopEmojis counts emoji frequency across the reservoir, applies the
// novelty-decay penalty (score = freq * (1 - novelty), always within
// [0, freq]), and returns the top n. The returned terms — and only those —
// are marked seen at now.
func TopEmojis(rows []reservoir.Row, store *Store, denylist []string, topN int, now time.Time) []EmojiStat {
	counts := make(map[string]int)
	for _, row := range rows {
		for _, e := range Emojis(row.Text) {
			if _, stop := commonStoplist[e]; stop {
				continue
			}
			counts[e]++
		}
	}
	for _, d := range denylist {
		delete(counts, d)
	}

	stats := make([]EmojiStat, 0, len(counts))
	for emoji, freq := range counts {
		novelty := store.Novelty(emoji, now)
		stats = append(stats, EmojiStat{
			Emoji: emoji,
			Freq:  freq,
			Score: float64(freq) * (1 - novelty),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Score != stats[j].Score {
			return stats[i].Score > stats[j].Score
		}
		return stats[i].Emoji < stats[j].Emoji
	})
	if topN > 0 && len(stats) > topN {
		stats = stats[:topN]
	}

	// Write-through failure costs one decay update, nothing more.
	for _, stat := range stats {
		_ = store.RecordSeen(stat.Emoji, now)
	}
	return stats
}
