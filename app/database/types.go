package database

import "time"

// ProviderHealth is the last known status of one provider. Each record is
// fully overwritten after every attempted fetch; no history is retained.
type ProviderHealth struct {
	Provider   string    `json:"provider"`
	OK         bool      `json:"ok"`
	ItemCount  int       `json:"item_count"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// WatchlistTerm is one promoted term. LastSeen is a calendar date
// (YYYY-MM-DD); AddedAt orders eviction (oldest first).
type WatchlistTerm struct {
	Term     string    `json:"term"`
	AddedAt  time.Time `json:"added_at"`
	LastSeen string    `json:"last_seen"`
}
