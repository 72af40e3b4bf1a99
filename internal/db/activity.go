package db

import (
	"fmt"
	"time"

	"github.com/ravithakur-bit/tracker/internal/model"
)

// AddActivity appends one free-text entry to an item's activity log,
// stamped with the current time.
func (db *DB) AddActivity(fam Family, itemID int64, content string) error {
	if content == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	if err := db.requireItem(fam, itemID); err != nil {
		return err
	}
	return db.addActivityAt(fam, itemID, content, time.Now().UTC())
}

// addActivityAt inserts an entry with an explicit timestamp, for entries
// whose stamp must align with something else (a backdated creation).
func (db *DB) addActivityAt(fam Family, itemID int64, content string, at time.Time) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, content, created_at) VALUES (?, ?, ?)`, fam.activityTable, fam.itemFK)
	if _, err := db.Exec(query, itemID, content, at); err != nil {
		return fmt.Errorf("failed to add activity: %w", err)
	}
	return nil
}

// ListActivity returns an item's activity log, always newest-first. The
// ordering is part of the retrieval contract, not a per-call option.
func (db *DB) ListActivity(fam Family, itemID int64) ([]model.Activity, error) {
	query := fmt.Sprintf(`
		SELECT id, %s, content, created_at
		FROM %s WHERE %s = ?
		ORDER BY created_at DESC, id DESC`, fam.itemFK, fam.activityTable, fam.itemFK)
	rows, err := db.Query(query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.ItemID, &a.Content, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}
