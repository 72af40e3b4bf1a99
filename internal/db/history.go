package db

import (
	"database/sql"
	"fmt"

	"github.com/ravithakur-bit/tracker/internal/model"
)

// ListHistory returns an item's field-change records, newest-first.
// Entries are append-only; nothing ever rewrites them.
func (db *DB) ListHistory(fam Family, itemID int64) ([]model.History, error) {
	query := fmt.Sprintf(`
		SELECT id, %s, change_type, old_value, new_value, remark, created_at
		FROM %s WHERE %s = ?
		ORDER BY created_at DESC, id DESC`, fam.itemFK, fam.historyTable, fam.itemFK)
	rows, err := db.Query(query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.History
	for rows.Next() {
		var h model.History
		var remark sql.NullString
		if err := rows.Scan(&h.ID, &h.ItemID, &h.ChangeType, &h.OldValue, &h.NewValue, &remark, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		if remark.Valid {
			h.Remark = &remark.String
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}
