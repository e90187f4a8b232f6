// Package cache provides time-windowed caching of expensive producer calls
// on top of the shared state store. A corrupt or missing entry is a cache
// miss, never an error: the worst outcome is recomputation.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/lysyi3m/signal-comb/app/database"
)

// WithTTL returns the value stored under key when it is younger than ttl;
// otherwise it calls producer, stores the fresh result and returns it.
// A non-positive ttl bypasses the cache entirely. Store failures degrade to
// a warning — the fresh value is still returned.
func WithTTL[T any](ctx context.Context, repo database.CacheRepository, key string, ttl time.Duration, producer func(ctx context.Context) (T, error)) (T, error) {
	if ttl <= 0 {
		return producer(ctx)
	}

	payload, storedAt, ok, err := repo.GetEntry(key)
	if err != nil {
		slog.Warn("Cache read failed, treating as miss", "key", key, "error", err)
	} else if ok && time.Since(storedAt) < ttl {
		var cached T
		if err := json.Unmarshal(payload, &cached); err != nil {
			slog.Warn("Cache entry corrupt, treating as miss", "key", key, "error", err)
		} else {
			return cached, nil
		}
	}

	fresh, err := producer(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if raw, err := json.Marshal(fresh); err != nil {
		slog.Warn("Cache encode failed, skipping store", "key", key, "error", err)
	} else if err := repo.SetEntry(key, raw, time.Now().UTC()); err != nil {
		slog.Warn("Cache write failed", "key", key, "error", err)
	}

	return fresh, nil
}
