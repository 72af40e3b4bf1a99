package db

import (
	"database/sql"
	"fmt"

	"github.com/ravithakur-bit/tracker/internal/model"
)

// Statuses returns the family's catalog in insertion order.
func (db *DB) Statuses(fam Family) ([]model.Status, error) {
	query := fmt.Sprintf(`SELECT id, name, slug, color, is_final FROM %s ORDER BY id`, fam.statusTable)
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query statuses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var statuses []model.Status
	for rows.Next() {
		var s model.Status
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.Color, &s.IsFinal); err != nil {
			return nil, fmt.Errorf("failed to scan status: %w", err)
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

// GetStatus retrieves one catalog entry by id.
func (db *DB) GetStatus(fam Family, id int64) (*model.Status, error) {
	query := fmt.Sprintf(`SELECT id, name, slug, color, is_final FROM %s WHERE id = ?`, fam.statusTable)
	s := &model.Status{}
	err := db.QueryRow(query, id).Scan(&s.ID, &s.Name, &s.Slug, &s.Color, &s.IsFinal)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s status %d", ErrNotFound, fam.Name, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	return s, nil
}

// statusName resolves a status id to its name inside a transaction,
// degrading to "?" when the id no longer resolves. History diffing must
// not abort an update over a vanished old status.
func statusName(tx *sql.Tx, fam Family, id int64) string {
	query := fmt.Sprintf(`SELECT name FROM %s WHERE id = ?`, fam.statusTable)
	var name string
	if err := tx.QueryRow(query, id).Scan(&name); err != nil {
		return "?"
	}
	return name
}

// statusesWithCounts returns the catalog with Count filled in for every
// status. Counts always reflect the unfiltered item totals.
func (db *DB) statusesWithCounts(fam Family) ([]model.Status, error) {
	statuses, err := db.Statuses(fam)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT s.slug, COUNT(i.id)
		FROM %s s JOIN %s i ON i.status_id = s.id
		GROUP BY s.slug`, fam.statusTable, fam.itemTable)
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to count statuses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var slug string
		var count int
		if err := rows.Scan(&slug, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[slug] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status counts: %w", err)
	}

	for i := range statuses {
		statuses[i].Count = counts[statuses[i].Slug]
	}
	return statuses, nil
}
