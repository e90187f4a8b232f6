package database

import "fmt"

var _ NoveltyRepository = (*SQLNoveltyRepository)(nil)

type SQLNoveltyRepository struct {
	db *DB
}

func NewNoveltyRepository(db *DB) *SQLNoveltyRepository {
	return &SQLNoveltyRepository{db: db}
}

func (r *SQLNoveltyRepository) All() (map[string]int64, error) {
	rows, err := r.db.Query(`SELECT term, last_seen_ms FROM novelty`)
	if err != nil {
		return nil, fmt.Errorf("failed to load novelty state: %w", err)
	}
	defer rows.Close()

	state := make(map[string]int64)
	for rows.Next() {
		var term string
		var lastSeen int64
		if err := rows.Scan(&term, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan novelty row: %w", err)
		}
		state[term] = lastSeen
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating novelty rows: %w", err)
	}
	return state, nil
}

func (r *SQLNoveltyRepository) Set(term string, lastSeenMs int64) error {
	_, err := r.db.Exec(`
		INSERT INTO novelty (term, last_seen_ms)
		VALUES (?, ?)
		ON CONFLICT(term) DO UPDATE SET last_seen_ms = excluded.last_seen_ms
	`, term, lastSeenMs)

	if err != nil {
		return fmt.Errorf("failed to set novelty timestamp: %w", err)
	}
	return nil
}
