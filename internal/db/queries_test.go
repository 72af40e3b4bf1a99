package db

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravithakur-bit/tracker/internal/model"
)

// seedFixtureCatalog installs a minimal three-status catalog so counts
// stay easy to reason about.
func seedFixtureCatalog(t *testing.T, db *DB, fam Family) (todo, doing, done model.Status) {
	t.Helper()
	require.NoError(t, db.SeedStatuses(fam, []StatusDef{
		{Name: "Todo", Color: "red"},
		{Name: "Doing", Color: "blue"},
		{Name: "Done", Color: "green", Final: true},
	}))
	return statusBySlug(t, db, fam, "todo"),
		statusBySlug(t, db, fam, "doing"),
		statusBySlug(t, db, fam, "done")
}

func TestListPage_StatusCounts(t *testing.T) {
	db := setupTestDB(t)
	todo, doing, done := seedFixtureCatalog(t, db, Bugs)

	for i := 0; i < 5; i++ {
		createTestItem(t, db, Bugs, fmt.Sprintf("todo bug %d", i), todo.ID, nil)
	}
	for i := 0; i < 2; i++ {
		createTestItem(t, db, Bugs, fmt.Sprintf("doing bug %d", i), doing.ID, nil)
	}

	page, err := db.ListPage(Bugs, ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)

	counts := map[string]int{}
	for _, s := range page.Statuses {
		counts[s.Slug] = s.Count
	}
	assert.Equal(t, map[string]int{"todo": 5, "doing": 2, "done": 0}, counts)
	assert.Equal(t, 7, page.TotalItems)
	_ = done
}

func TestListPage_FilteredTotalFromCounts(t *testing.T) {
	db := setupTestDB(t)
	todo, doing, done := seedFixtureCatalog(t, db, Tasks)

	for i := 0; i < 5; i++ {
		createTestItem(t, db, Tasks, fmt.Sprintf("todo task %d", i), todo.ID, nil)
	}
	for i := 0; i < 2; i++ {
		createTestItem(t, db, Tasks, fmt.Sprintf("doing task %d", i), doing.ID, nil)
	}

	// Status-filtered, no search: total is the sum of the precomputed
	// per-status counts for exactly the requested slugs.
	page, err := db.ListPage(Tasks, ListParams{StatusSlugs: []string{"todo", "done"}, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, page.TotalItems)
	assert.Len(t, page.Items, 5)

	page, err = db.ListPage(Tasks, ListParams{StatusSlugs: []string{"todo", "doing"}, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 7, page.TotalItems)

	// Counts shown on the filter chips stay unfiltered
	counts := map[string]int{}
	for _, s := range page.Statuses {
		counts[s.Slug] = s.Count
	}
	assert.Equal(t, 5, counts["todo"])
	assert.Equal(t, 2, counts["doing"])
	_ = done
}

func TestListPage_SearchWordByWordOR(t *testing.T) {
	db := setupTestDB(t)
	todo, _, _ := seedFixtureCatalog(t, db, Bugs)

	a := createTestItem(t, db, Bugs, "foo only", todo.ID, nil)
	b, err := db.CreateItem(Bugs, NewItem{Title: "needs work", Description: "contains bar here", StatusID: todo.ID})
	require.NoError(t, err)
	createTestItem(t, db, Bugs, "unrelated", todo.ID, nil)

	// ANY word matching ANY field is enough; all words are not required
	page, err := db.ListPage(Bugs, ListParams{Search: "foo bar", Page: 1, Limit: 10})
	require.NoError(t, err)

	require.Len(t, page.Items, 2)
	ids := []int64{page.Items[0].ID, page.Items[1].ID}
	assert.ElementsMatch(t, []int64{a.ID, b.ID}, ids)
	assert.Equal(t, 2, page.TotalItems)
}

func TestListPage_SearchCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	todo, _, _ := seedFixtureCatalog(t, db, Tasks)
	createTestItem(t, db, Tasks, "Deploy STAGING environment", todo.ID, nil)

	page, err := db.ListPage(Tasks, ListParams{Search: "staging", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestListPage_SearchMatchesActivityOnce(t *testing.T) {
	db := setupTestDB(t)
	todo, _, _ := seedFixtureCatalog(t, db, Tasks)

	task := createTestItem(t, db, Tasks, "quiet title", todo.ID, nil)
	require.NoError(t, db.AddActivity(Tasks, task.ID, "deploy blocked on infra"))
	require.NoError(t, db.AddActivity(Tasks, task.ID, "deploy retried, still failing"))

	// Two matching entries, one result row
	page, err := db.ListPage(Tasks, ListParams{Search: "deploy", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, task.ID, page.Items[0].ID)
	assert.Equal(t, 1, page.TotalItems)
}

func TestListPage_SearchWithStatusFilterCountsResults(t *testing.T) {
	db := setupTestDB(t)
	todo, doing, _ := seedFixtureCatalog(t, db, Bugs)

	createTestItem(t, db, Bugs, "crash on login", todo.ID, nil)
	createTestItem(t, db, Bugs, "crash on logout", doing.ID, nil)
	createTestItem(t, db, Bugs, "slow dashboard", todo.ID, nil)

	// With search text present the filtered result set is counted for
	// real instead of summing the per-status counts.
	page, err := db.ListPage(Bugs, ListParams{StatusSlugs: []string{"todo"}, Search: "crash", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalItems)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "crash on login", page.Items[0].Title)
}

func TestListPage_SortOrder(t *testing.T) {
	db := setupTestDB(t)
	todo, _, done := seedFixtureCatalog(t, db, Bugs)

	late := createTestItem(t, db, Bugs, "late active", todo.ID, daysFromNow(-2))
	soon := createTestItem(t, db, Bugs, "due soon", todo.ID, daysFromNow(2))
	noDate := createTestItem(t, db, Bugs, "no date", todo.ID, nil)
	closedLate := createTestItem(t, db, Bugs, "closed late", done.ID, daysFromNow(-5))

	page, err := db.ListPage(Bugs, ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 4)

	// Overdue first; then date ascending with unset dates last. The
	// terminal item is never overdue despite its past date, so it sorts
	// by its (earlier) date among the non-overdue.
	got := []int64{page.Items[0].ID, page.Items[1].ID, page.Items[2].ID, page.Items[3].ID}
	want := []int64{late.ID, closedLate.ID, soon.ID, noDate.ID}
	assert.Equal(t, want, got)
}

func TestListPage_TerminalNeverOverdue(t *testing.T) {
	db := setupTestDB(t)
	todo, _, done := seedFixtureCatalog(t, db, Tasks)

	closed := createTestItem(t, db, Tasks, "closed past deadline", done.ID, daysFromNow(-10))
	active := createTestItem(t, db, Tasks, "active no deadline", todo.ID, nil)

	page, err := db.ListPage(Tasks, ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	// The closed item still sorts by date (unset dates last), but the
	// overdue flag must not fire for it.
	require.NotNil(t, page.Items[0].Status)
	assert.Equal(t, closed.ID, page.Items[0].ID)
	assert.False(t, page.Items[0].Overdue(page.Items[0].UpdatedAt.AddDate(1, 0, 0)))
	_ = active
}

func TestListPage_Pagination(t *testing.T) {
	db := setupTestDB(t)
	todo, _, _ := seedFixtureCatalog(t, db, Tasks)

	for i := 0; i < 25; i++ {
		createTestItem(t, db, Tasks, fmt.Sprintf("task %02d", i), todo.ID, nil)
	}

	page, err := db.ListPage(Tasks, ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 25, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 10)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrev)

	page, err = db.ListPage(Tasks, ListParams{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 5)
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrev)

	// Out-of-range pages are not rejected, they just come back empty
	page, err = db.ListPage(Tasks, ListParams{Page: 4, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasNext)
}

func TestListPage_NonPositiveLimit(t *testing.T) {
	db := setupTestDB(t)
	todo, _, _ := seedFixtureCatalog(t, db, Bugs)
	createTestItem(t, db, Bugs, "lonely", todo.ID, nil)

	page, err := db.ListPage(Bugs, ListParams{Page: 1, Limit: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, 1, page.TotalItems)
}

func TestListPage_EmptyDatabase(t *testing.T) {
	db := setupTestDB(t)
	seedFixtureCatalog(t, db, Bugs)

	page, err := db.ListPage(Bugs, ListParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalItems)
	assert.Equal(t, 0, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrev)
}
