package db

import (
	"errors"
	"fmt"
	"testing"
)

func TestUniqueSlug_Deterministic(t *testing.T) {
	db := setupSeededDB(t)

	first, err := db.UniqueSlug(Bugs, "Server Crash")
	if err != nil {
		t.Fatalf("failed to build slug: %v", err)
	}
	if first != "server-crash" {
		t.Errorf("slug = %q, want %q", first, "server-crash")
	}

	// Probing never writes, so repeated calls against an empty table
	// keep yielding the base slug.
	second, err := db.UniqueSlug(Bugs, "Server Crash")
	if err != nil {
		t.Fatalf("failed to build slug: %v", err)
	}
	if second != first {
		t.Errorf("slug not deterministic: %q vs %q", first, second)
	}
}

func TestUniqueSlug_IncrementingSuffixes(t *testing.T) {
	db := setupSeededDB(t)
	open := statusBySlug(t, db, Tasks, "open")

	want := []string{"fix-login", "fix-login-1", "fix-login-2", "fix-login-3"}
	for i, w := range want {
		item := createTestItem(t, db, Tasks, "Fix Login", open.ID, nil)
		if item.Slug != w {
			t.Errorf("item %d slug = %q, want %q", i, item.Slug, w)
		}
	}
}

func TestUniqueSlug_PerFamily(t *testing.T) {
	db := setupSeededDB(t)
	bugOpen := statusBySlug(t, db, Bugs, "open")
	taskOpen := statusBySlug(t, db, Tasks, "open")

	bug := createTestItem(t, db, Bugs, "Same Title", bugOpen.ID, nil)
	task := createTestItem(t, db, Tasks, "Same Title", taskOpen.ID, nil)

	// Slug uniqueness is scoped to the family table, so no suffix here.
	if bug.Slug != "same-title" || task.Slug != "same-title" {
		t.Errorf("slugs = %q, %q; want both %q", bug.Slug, task.Slug, "same-title")
	}
}

func TestUniqueSlug_EmptyBase(t *testing.T) {
	db := setupSeededDB(t)

	_, err := db.UniqueSlug(Bugs, "!!!")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestUniqueSlug_ManyCollisions(t *testing.T) {
	db := setupSeededDB(t)
	open := statusBySlug(t, db, Bugs, "open")

	for i := 0; i < 12; i++ {
		createTestItem(t, db, Bugs, "Crash", open.ID, nil)
	}

	slug, err := db.UniqueSlug(Bugs, "Crash")
	if err != nil {
		t.Fatalf("failed to build slug: %v", err)
	}
	if slug != fmt.Sprintf("crash-%d", 12) {
		t.Errorf("slug = %q, want %q", slug, "crash-12")
	}
}
