package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ProgressRow tracks local study progress for one card.
//
// Status follows a small ladder: 0 = new, 1-3 = learning, 4-6 = review.
// Due is a Unix timestamp.
type ProgressRow struct {
	CardID  string
	Status  int
	Due     int64
	Reviews int
	Lapses  int
}

// GetProgress returns progress for a card; a card never reviewed yields a
// zero-valued row rather than an error.
func (db *DB) GetProgress(cardID string) (*ProgressRow, error) {
	row := db.conn.QueryRow(`
		SELECT card_id, status, due, reviews, lapses FROM progress WHERE card_id = ?
	`, cardID)
	var p ProgressRow
	err := row.Scan(&p.CardID, &p.Status, &p.Due, &p.Reviews, &p.Lapses)
	if errors.Is(err, sql.ErrNoRows) {
		return &ProgressRow{CardID: cardID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get progress: %w", err)
	}
	return &p, nil
}

// PutProgress inserts or replaces the progress row for a card.
func (db *DB) PutProgress(p ProgressRow) error {
	_, err := db.conn.Exec(`
		INSERT INTO progress (card_id, status, due, reviews, lapses, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(card_id) DO UPDATE SET
			status     = excluded.status,
			due        = excluded.due,
			reviews    = excluded.reviews,
			lapses     = excluded.lapses,
			updated_at = excluded.updated_at
	`, p.CardID, p.Status, p.Due, p.Reviews, p.Lapses, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("index: put progress: %w", err)
	}
	return nil
}

// DeleteProgress removes the progress row for a card, if any. ReplaceAll
// leaves progress untouched, so callers rebuilding the card set after a
// deletion use this to drop the orphaned row.
func (db *DB) DeleteProgress(cardID string) error {
	if _, err := db.conn.Exec(`DELETE FROM progress WHERE card_id = ?`, cardID); err != nil {
		return fmt.Errorf("index: delete progress: %w", err)
	}
	return nil
}

// DueCards returns progress rows whose due time has passed, soonest first.
func (db *DB) DueCards(now int64, limit int) ([]ProgressRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT card_id, status, due, reviews, lapses
		FROM progress
		WHERE due <= ?
		ORDER BY due
		LIMIT ?
	`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("index: due cards: %w", err)
	}
	defer rows.Close()

	var out []ProgressRow
	for rows.Next() {
		var p ProgressRow
		if err := rows.Scan(&p.CardID, &p.Status, &p.Due, &p.Reviews, &p.Lapses); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
