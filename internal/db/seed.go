package db

import (
	"database/sql"
	"fmt"

	"github.com/gosimple/slug"
)

// StatusDef is one seed entry for a family's status catalog.
type StatusDef struct {
	Name  string
	Color string
	Final bool
}

// DefaultBugStatuses is the bug workflow taxonomy. Final statuses stop the
// overdue clock.
var DefaultBugStatuses = []StatusDef{
	{Name: "Open", Color: "red"},
	{Name: "Reopened", Color: "orange"},
	{Name: "On Dev", Color: "blue"},
	{Name: "Query Sent", Color: "indigo"},
	{Name: "Query Answered", Color: "violet"},
	{Name: "On QA", Color: "yellow"},
	{Name: "On UAT", Color: "cyan", Final: true},
	{Name: "On Prod", Color: "emerald", Final: true},
	{Name: "Resolved", Color: "teal", Final: true},
	{Name: "Closed", Color: "green", Final: true},
	{Name: "On HOLD", Color: "gray", Final: true},
	{Name: "Resolved Duplicate", Color: "zinc", Final: true},
}

// DefaultTaskStatuses is the task workflow taxonomy.
var DefaultTaskStatuses = []StatusDef{
	{Name: "Open", Color: "blue"},
	{Name: "In Progress", Color: "yellow"},
	{Name: "Reopened", Color: "purple"},
	{Name: "Closed", Color: "green", Final: true},
	{Name: "Discarded", Color: "slate", Final: true},
}

// SeedStatuses upserts the given catalog for one family. Rows are matched
// by slug: existing rows get their color and is_final refreshed, missing
// rows are inserted. Reseeding never duplicates.
func (db *DB) SeedStatuses(fam Family, defs []StatusDef) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, def := range defs {
		s := slug.Make(def.Name)

		var id int64
		query := fmt.Sprintf(`SELECT id FROM %s WHERE slug = ?`, fam.statusTable)
		err := tx.QueryRow(query, s).Scan(&id)
		switch {
		case err == sql.ErrNoRows:
			insert := fmt.Sprintf(`INSERT INTO %s (name, slug, color, is_final) VALUES (?, ?, ?, ?)`, fam.statusTable)
			if _, err := tx.Exec(insert, def.Name, s, def.Color, def.Final); err != nil {
				return fmt.Errorf("failed to insert status %q: %w", def.Name, mapSQLErr(err))
			}
		case err != nil:
			return fmt.Errorf("failed to look up status %q: %w", def.Name, err)
		default:
			update := fmt.Sprintf(`UPDATE %s SET color = ?, is_final = ? WHERE id = ?`, fam.statusTable)
			if _, err := tx.Exec(update, def.Color, def.Final, id); err != nil {
				return fmt.Errorf("failed to update status %q: %w", def.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	return nil
}

// Seed loads the default catalogs for both families.
func (db *DB) Seed() error {
	if err := db.SeedStatuses(Bugs, DefaultBugStatuses); err != nil {
		return err
	}
	return db.SeedStatuses(Tasks, DefaultTaskStatuses)
}
