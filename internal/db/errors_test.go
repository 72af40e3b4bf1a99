package db

import (
	"errors"
	"fmt"
	"testing"
)

func TestMapSQLErr_UniqueConflict(t *testing.T) {
	db := setupSeededDB(t)
	open := statusBySlug(t, db, Bugs, "open")
	bug := createTestItem(t, db, Bugs, "Crash", open.ID, nil)

	// Insert a row that reuses the slug, bypassing the probe loop. This is
	// the losing side of a slug race; the UNIQUE constraint must surface as
	// ErrConflict, not as a bare driver error.
	_, err := db.Exec(
		`INSERT INTO bugs (title, slug, status_id, created_at, updated_at)
		 VALUES (?, ?, ?, datetime('now'), datetime('now'))`,
		"Crash", bug.Slug, open.ID)
	if err == nil {
		t.Fatal("duplicate slug insert should fail")
	}
	if mapped := mapSQLErr(err); !errors.Is(mapped, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", mapped)
	}
}

func TestMapSQLErr_Passthrough(t *testing.T) {
	if mapSQLErr(nil) != nil {
		t.Error("nil should stay nil")
	}
	plain := fmt.Errorf("disk I/O error")
	if !errors.Is(mapSQLErr(plain), plain) {
		t.Error("unrelated errors must pass through unchanged")
	}
}
