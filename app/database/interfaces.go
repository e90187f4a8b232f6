package database

import "time"

type CacheRepository interface {
	// GetEntry returns the stored payload and its storage time. A missing
	// key yields ok == false with no error.
	GetEntry(key string) (payload []byte, storedAt time.Time, ok bool, err error)
	SetEntry(key string, payload []byte, storedAt time.Time) error
}

type HealthRepository interface {
	Record(h ProviderHealth) error
	All() ([]ProviderHealth, error)
}

type NoveltyRepository interface {
	All() (map[string]int64, error)
	Set(term string, lastSeenMs int64) error
}

type WatchlistRepository interface {
	Terms() ([]WatchlistTerm, error)
	// Promote inserts term (or refreshes its last-seen date) and evicts the
	// oldest entries once the watchlist exceeds max.
	Promote(term string, seenAt time.Time, max int) error
	Scores(term string) ([]int, error)
	// PushScore appends a raw score to the term's history, keeping only the
	// most recent keep values.
	PushScore(term string, score int, keep int) error
}
