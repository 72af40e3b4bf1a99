package db

import (
	"fmt"

	"github.com/gosimple/slug"
)

// UniqueSlug derives a URL-safe identifier from a title that is unused in
// the family's item table. The base slug is deterministic for a given
// title; collisions probe -1, -2, ... sequentially.
//
// The probe is a best-effort pre-check only. Two concurrent writers with
// the same title can both pass it; the UNIQUE constraint on the slug
// column decides the race, and the loser's insert surfaces ErrConflict.
func (db *DB) UniqueSlug(fam Family, title string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		return "", fmt.Errorf("%w: title %q yields an empty slug", ErrValidation, title)
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE slug = ?`, fam.itemTable)
	candidate := base
	for n := 1; ; n++ {
		var taken int
		if err := db.QueryRow(query, candidate).Scan(&taken); err != nil {
			return "", fmt.Errorf("failed to probe slug %q: %w", candidate, err)
		}
		if taken == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
