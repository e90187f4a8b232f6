package database

import "fmt"

var _ HealthRepository = (*SQLHealthRepository)(nil)

type SQLHealthRepository struct {
	db *DB
}

func NewHealthRepository(db *DB) *SQLHealthRepository {
	return &SQLHealthRepository{db: db}
}

func (r *SQLHealthRepository) Record(h ProviderHealth) error {
	_, err := r.db.Exec(`
		INSERT INTO provider_health (provider, ok, item_count, duration_ms, error, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			ok = excluded.ok,
			item_count = excluded.item_count,
			duration_ms = excluded.duration_ms,
			error = excluded.error,
			recorded_at = excluded.recorded_at
	`, h.Provider, h.OK, h.ItemCount, h.DurationMs, h.Error, h.RecordedAt)

	if err != nil {
		return fmt.Errorf("failed to record provider health: %w", err)
	}
	return nil
}

func (r *SQLHealthRepository) All() ([]ProviderHealth, error) {
	rows, err := r.db.Query(`
		SELECT provider, ok, item_count, duration_ms, error, recorded_at
		FROM provider_health
		ORDER BY provider
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get provider health: %w", err)
	}
	defer rows.Close()

	var records []ProviderHealth
	for rows.Next() {
		var h ProviderHealth
		if err := rows.Scan(&h.Provider, &h.OK, &h.ItemCount, &h.DurationMs, &h.Error, &h.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan health row: %w", err)
		}
		records = append(records, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating health rows: %w", err)
	}
	return records, nil
}
