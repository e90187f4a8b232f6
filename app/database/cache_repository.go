package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ CacheRepository = (*SQLCacheRepository)(nil)

type SQLCacheRepository struct {
	db *DB
}

func NewCacheRepository(db *DB) *SQLCacheRepository {
	return &SQLCacheRepository{db: db}
}

func (r *SQLCacheRepository) GetEntry(key string) ([]byte, time.Time, bool, error) {
	var payload []byte
	var storedAt time.Time

	err := r.db.QueryRow(`
		SELECT payload, stored_at FROM cache_entries WHERE key = ?
	`, key).Scan(&payload, &storedAt)

	if err == sql.ErrNoRows {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("failed to get cache entry: %w", err)
	}

	return payload, storedAt, true, nil
}

func (r *SQLCacheRepository) SetEntry(key string, payload []byte, storedAt time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO cache_entries (key, payload, stored_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, stored_at = excluded.stored_at
	`, key, payload, storedAt)

	if err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}
