package database

import (
	"encoding/json"
	"fmt"
	"time"
)

var _ WatchlistRepository = (*SQLWatchlistRepository)(nil)

type SQLWatchlistRepository struct {
	db *DB
}

func NewWatchlistRepository(db *DB) *SQLWatchlistRepository {
	return &SQLWatchlistRepository{db: db}
}

func (r *SQLWatchlistRepository) Terms() ([]WatchlistTerm, error) {
	rows, err := r.db.Query(`
		SELECT term, added_at, last_seen FROM watchlist ORDER BY added_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}
	defer rows.Close()

	var terms []WatchlistTerm
	for rows.Next() {
		var t WatchlistTerm
		if err := rows.Scan(&t.Term, &t.AddedAt, &t.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist row: %w", err)
		}
		terms = append(terms, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watchlist rows: %w", err)
	}
	return terms, nil
}

func (r *SQLWatchlistRepository) Promote(term string, seenAt time.Time, max int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO watchlist (term, added_at, last_seen)
		VALUES (?, ?, ?)
		ON CONFLICT(term) DO UPDATE SET last_seen = excluded.last_seen
	`, term, seenAt, seenAt.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("failed to promote term: %w", err)
	}

	if max > 0 {
		_, err = tx.Exec(`
			DELETE FROM watchlist WHERE term IN (
				SELECT term FROM watchlist
				ORDER BY added_at DESC
				LIMIT -1 OFFSET ?
			)
		`, max)
		if err != nil {
			return fmt.Errorf("failed to evict oldest watchlist terms: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit promotion: %w", err)
	}
	return nil
}

func (r *SQLWatchlistRepository) Scores(term string) ([]int, error) {
	var raw string
	err := r.db.QueryRow(`SELECT scores FROM watchlist_scores WHERE term = ?`, term).Scan(&raw)
	if err != nil {
		// Missing or unreadable history is an empty history.
		return nil, nil
	}

	var scores []int
	if err := json.Unmarshal([]byte(raw), &scores); err != nil {
		return nil, nil
	}
	return scores, nil
}

func (r *SQLWatchlistRepository) PushScore(term string, score int, keep int) error {
	scores, _ := r.Scores(term)
	scores = append(scores, score)
	if keep > 0 && len(scores) > keep {
		scores = scores[len(scores)-keep:]
	}

	raw, err := json.Marshal(scores)
	if err != nil {
		return fmt.Errorf("failed to encode score history: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO watchlist_scores (term, scores)
		VALUES (?, ?)
		ON CONFLICT(term) DO UPDATE SET scores = excluded.scores
	`, term, string(raw))

	if err != nil {
		return fmt.Errorf("failed to store score history: %w", err)
	}
	return nil
}
