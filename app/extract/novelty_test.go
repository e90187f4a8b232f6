package extract

import (
	"errors"
	"math"
	"testing"
	"time"
)

type memNoveltyRepo struct {
	state   map[string]int64
	allErr  error
	setErr  error
	setCnt  int
	lastKey string
}

func newMemNoveltyRepo() *memNoveltyRepo {
	return &memNoveltyRepo{state: make(map[string]int64)}
}

func (r *memNoveltyRepo) All() (map[string]int64, error) {
	if r.allErr != nil {
		return nil, r.allErr
	}
	out := make(map[string]int64, len(r.state))
	for k, v := range r.state {
		out[k] = v
	}
	return out, nil
}

func (r *memNoveltyRepo) Set(term string, lastSeenMs int64) error {
	if r.setErr != nil {
		return r.setErr
	}
	r.state[term] = lastSeenMs
	r.setCnt++
	r.lastKey = term
	return nil
}

func TestNovelty_NeverSeenTermIsZero(t *testing.T) {
	store := NewStore(newMemNoveltyRepo())

	if n := store.Novelty("🪿", time.Now()); n != 0 {
		t.Errorf("Expected novelty 0 for never-seen term, got %f", n)
	}
}

func TestNovelty_JustSeenTermIsOne(t *testing.T) {
	store := NewStore(newMemNoveltyRepo())
	now := time.Now()

	if err := store.RecordSeen("🪿", now); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if n := store.Novelty("🪿", now); math.Abs(n-1) > 1e-9 {
		t.Errorf("Expected novelty 1 right after seen, got %f", n)
	}
}

func TestNovelty_DecaysWithAge(t *testing.T) {
	store := NewStore(newMemNoveltyRepo())
	now := time.Now()

	if err := store.RecordSeen("🪿", now.Add(-7*24*time.Hour)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	n := store.Novelty("🪿", now)
	// One full window old: exp(-1).
	if math.Abs(n-math.Exp(-1)) > 1e-6 {
		t.Errorf("Expected novelty exp(-1) after one window, got %f", n)
	}
}

func TestNovelty_FutureLastSeenClampsToOne(t *testing.T) {
	store := NewStore(newMemNoveltyRepo())
	now := time.Now()

	if err := store.RecordSeen("🪿", now.Add(time.Hour)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if n := store.Novelty("🪿", now); n != 1 {
		t.Errorf("Expected clock skew clamped to novelty 1, got %f", n)
	}
}

func TestRecordSeen_WritesThroughToRepository(t *testing.T) {
	repo := newMemNoveltyRepo()
	store := NewStore(repo)
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := store.RecordSeen("🪿", at); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if repo.state["🪿"] != at.UnixMilli() {
		t.Errorf("Expected persisted timestamp %d, got %d", at.UnixMilli(), repo.state["🪿"])
	}
}

func TestRecordSeen_PropagatesRepositoryError(t *testing.T) {
	repo := newMemNoveltyRepo()
	repo.setErr = errors.New("disk full")
	store := NewStore(repo)

	if err := store.RecordSeen("🪿", time.Now()); err == nil {
		t.Error("Expected error from failing repository")
	}
}

func TestStore_CorruptStateIsEmptyState(t *testing.T) {
	repo := newMemNoveltyRepo()
	repo.allErr = errors.New("malformed state")
	store := NewStore(repo)

	if n := store.Novelty("🪿", time.Now()); n != 0 {
		t.Errorf("Expected empty state on load failure, got novelty %f", n)
	}
}

func TestTopEmojis_NeverSeenScoresFullFrequency(t *testing.T) {
	store := NewStore(newMemNoveltyRepo())
	rows := rowsWith("goose 🪿 one", "goose 🪿 two", "goose 🪿 three")

	stats := TopEmojis(rows, store, nil, 10, time.Now())

	if len(stats) != 1 {
		t.Fatalf("Expected 1 stat, got %d", len(stats))
	}
	if stats[0].Freq != 3 || stats[0].Score != 3 {
		t.Errorf("Expected freq 3 score 3 for never-seen term, got freq %d score %f", stats[0].Freq, stats[0].Score)
	}
}

func TestTopEmojis_RecentlySeenTermIsSuppressed(t *testing.T) {
	store := NewStore(newMemNoveltyRepo())
	now := time.Now()
	rows := rowsWith("goose 🪿 one", "goose 🪿 two", "goose 🪿 three")

	first := TopEmojis(rows, store, nil, 10, now)
	second := TopEmojis(rows, store, nil, 10, now)

	if first[0].Score != 3 {
		t.Fatalf("Expected full score on first pass, got %f", first[0].Score)
	}
	if second[0].Score > 1e-9 {
		t.Errorf("Expected near-zero score immediately after being surfaced, got %f", second[0].Score)
	}
}

func TestTopEmojis_ScoreStaysWithinFrequencyBound(t *testing.T) {
	repo := newMemNoveltyRepo()
	repo.state["🪿"] = time.Now().Add(-36 * time.Hour).UnixMilli()
	store := NewStore(repo)
	rows := rowsWith("goose 🪿 one", "goose 🪿 two", "goose 🪿 three", "goose 🪿 four")

	stats := TopEmojis(rows, store, nil, 10, time.Now())

	if stats[0].Score < 0 || stats[0].Score > float64(stats[0].Freq) {
		t.Errorf("Expected score within [0, %d], got %f", stats[0].Freq, stats[0].Score)
	}
	if stats[0].Score == 0 || stats[0].Score == float64(stats[0].Freq) {
		t.Errorf("Expected partial decay for a 36h-old term, got %f", stats[0].Score)
	}
}

func TestTopEmojis_MarksOnlyReturnedTermsSeen(t *testing.T) {
	repo := newMemNoveltyRepo()
	store := NewStore(repo)
	rows := rowsWith(
		"goose 🪿 one", "goose 🪿 two",
		"rocket 🚀 one",
		"cactus 🌵 only",
	)

	stats := TopEmojis(rows, store, nil, 2, time.Now())

	if len(stats) != 2 {
		t.Fatalf("Expected 2 stats, got %d", len(stats))
	}
	if repo.setCnt != 2 {
		t.Errorf("Expected only the returned terms recorded, got %d writes", repo.setCnt)
	}
	for _, stat := range stats {
		if _, ok := repo.state[stat.Emoji]; !ok {
			t.Errorf("Expected %q marked seen", stat.Emoji)
		}
	}
}

func TestTopEmojis_StoplistAndDenylistExcluded(t *testing.T) {
	store := NewStore(newMemNoveltyRepo())
	rows := rowsWith("fire 🔥 stoplisted", "goose 🪿 fine", "rocket 🚀 denylisted")

	stats := TopEmojis(rows, store, []string{"🚀"}, 10, time.Now())

	if len(stats) != 1 || stats[0].Emoji != "🪿" {
		t.Errorf("Expected only 🪿 to survive, got %v", stats)
	}
}
