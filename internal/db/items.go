package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ravithakur-bit/tracker/internal/model"
)

// NewItem carries the fields for item creation.
type NewItem struct {
	Title       string
	Description string
	StatusID    int64
	TargetDate  *time.Time
	// ReportedAt backdates a bug report; nil means now. Ignored for tasks.
	ReportedAt *time.Time
	Links      []model.Link
}

// CreateItem inserts a new item with a slug derived from its title, stores
// any links that carry a URL, and appends the synthetic creation note to
// the activity log. For bugs the creation note is stamped with reported_at
// so a backdated report reads cleanly in the log.
func (db *DB) CreateItem(fam Family, in NewItem) (*model.Item, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if _, err := db.GetStatus(fam, in.StatusID); err != nil {
		return nil, err
	}

	itemSlug, err := db.UniqueSlug(fam, in.Title)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if in.TargetDate != nil {
		u := in.TargetDate.UTC()
		in.TargetDate = &u
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin create: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cols := fmt.Sprintf("title, slug, description, status_id, %s, created_at, updated_at", fam.dateColumn)
	marks := "?, ?, ?, ?, ?, ?, ?"
	args := []any{in.Title, itemSlug, in.Description, in.StatusID, in.TargetDate, now, now}

	logAt := now
	if fam.hasReportedAt {
		reported := now
		if in.ReportedAt != nil {
			reported = in.ReportedAt.UTC()
		}
		cols += ", reported_at"
		marks += ", ?"
		args = append(args, reported)
		logAt = reported
	}

	res, err := tx.Exec(fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, fam.itemTable, cols, marks), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", fam.Name, mapSQLErr(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new %s id: %w", fam.Name, err)
	}

	linkQuery := fmt.Sprintf(`INSERT INTO %s (%s, name, url) VALUES (?, ?, ?)`, fam.linkTable, fam.itemFK)
	for _, l := range in.Links {
		if strings.TrimSpace(l.URL) == "" {
			continue
		}
		if _, err := tx.Exec(linkQuery, id, l.Name, l.URL); err != nil {
			return nil, fmt.Errorf("failed to attach link: %w", err)
		}
	}

	logQuery := fmt.Sprintf(`INSERT INTO %s (%s, content, created_at) VALUES (?, ?, ?)`, fam.activityTable, fam.itemFK)
	if _, err := tx.Exec(logQuery, id, fam.createdNote, logAt); err != nil {
		return nil, fmt.Errorf("failed to log creation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit create: %w", err)
	}
	return db.GetItem(fam, id)
}

// GetItem retrieves an item by id with its status resolved.
func (db *DB) GetItem(fam Family, id int64) (*model.Item, error) {
	return db.getItem(fam, "i.id = ?", id)
}

// GetItemBySlug retrieves an item by slug with its status resolved.
func (db *DB) GetItemBySlug(fam Family, slug string) (*model.Item, error) {
	return db.getItem(fam, "i.slug = ?", slug)
}

func (db *DB) getItem(fam Family, where string, arg any) (*model.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s, s.id, s.name, s.slug, s.color, s.is_final
		FROM %s i JOIN %s s ON s.id = i.status_id
		WHERE %s`, fam.itemColumns(), fam.itemTable, fam.statusTable, where)

	item, err := scanItem(fam, db.QueryRow(query, arg))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s %v", ErrNotFound, fam.Name, arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", fam.Name, err)
	}
	return item, nil
}

// UpdateDetails replaces an item's title and description and notes the
// edit in the activity log.
func (db *DB) UpdateDetails(fam Family, id int64, title, description string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	query := fmt.Sprintf(`UPDATE %s SET title = ?, description = ?, updated_at = ? WHERE id = ?`, fam.itemTable)
	res, err := tx.Exec(query, title, description, now, id)
	if err != nil {
		return fmt.Errorf("failed to update %s details: %w", fam.Name, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: %s %d", ErrNotFound, fam.Name, id)
	}

	logQuery := fmt.Sprintf(`INSERT INTO %s (%s, content, created_at) VALUES (?, ?, ?)`, fam.activityTable, fam.itemFK)
	if _, err := tx.Exec(logQuery, id, fam.detailsNote, now); err != nil {
		return fmt.Errorf("failed to log details edit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit update: %w", err)
	}
	return nil
}

// ApplyUpdate diffs the item's status and target date against the
// requested values and writes one immutable history entry per changed
// field before mutating it. An unchanged field is a no-op. Both diffs run
// in the same call, so a single update yields 0, 1 or 2 history entries,
// all carrying the same remark.
//
// An old status id that no longer resolves degrades to "?" in the entry
// rather than failing the update; a new status id that does not resolve is
// ErrNotFound.
func (db *DB) ApplyUpdate(fam Family, itemID, statusID int64, targetDate *time.Time, remark string) error {
	if targetDate != nil {
		u := targetDate.UTC()
		targetDate = &u
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var oldStatusID int64
	var oldDate sql.NullTime
	query := fmt.Sprintf(`SELECT status_id, %s FROM %s WHERE id = ?`, fam.dateColumn, fam.itemTable)
	err = tx.QueryRow(query, itemID).Scan(&oldStatusID, &oldDate)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s %d", ErrNotFound, fam.Name, itemID)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", fam.Name, err)
	}

	now := time.Now().UTC()
	var remarkVal any
	if remark != "" {
		remarkVal = remark
	}

	historyQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, change_type, old_value, new_value, remark, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`, fam.historyTable, fam.itemFK)

	var old *time.Time
	if oldDate.Valid {
		old = &oldDate.Time
	}
	oldStr, newStr := dateToken(old), dateToken(targetDate)
	if oldStr != newStr {
		if _, err := tx.Exec(historyQuery, itemID, fam.dateChange, oldStr, newStr, remarkVal, now); err != nil {
			return fmt.Errorf("failed to record date change: %w", err)
		}
		set := fmt.Sprintf(`UPDATE %s SET %s = ?, updated_at = ? WHERE id = ?`, fam.itemTable, fam.dateColumn)
		if _, err := tx.Exec(set, targetDate, now, itemID); err != nil {
			return fmt.Errorf("failed to set date: %w", err)
		}
	}

	if oldStatusID != statusID {
		var newName string
		nameQuery := fmt.Sprintf(`SELECT name FROM %s WHERE id = ?`, fam.statusTable)
		err := tx.QueryRow(nameQuery, statusID).Scan(&newName)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %s status %d", ErrNotFound, fam.Name, statusID)
		}
		if err != nil {
			return fmt.Errorf("failed to resolve status: %w", err)
		}

		oldName := statusName(tx, fam, oldStatusID)
		if _, err := tx.Exec(historyQuery, itemID, model.ChangeStatus, oldName, newName, remarkVal, now); err != nil {
			return fmt.Errorf("failed to record status change: %w", err)
		}
		set := fmt.Sprintf(`UPDATE %s SET status_id = ?, updated_at = ? WHERE id = ?`, fam.itemTable)
		if _, err := tx.Exec(set, statusID, now, itemID); err != nil {
			return fmt.Errorf("failed to set status: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit update: %w", err)
	}
	return nil
}

// DeleteItem removes an item. Links, activities and history cascade
// through the foreign keys.
func (db *DB) DeleteItem(fam Family, id int64) error {
	res, err := db.Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, fam.itemTable), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", fam.Name, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("%w: %s %d", ErrNotFound, fam.Name, id)
	}
	return nil
}

// AttachLink adds a name+URL attachment to an existing item.
func (db *DB) AttachLink(fam Family, itemID int64, name, url string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(url) == "" {
		return fmt.Errorf("%w: link name and url are required", ErrValidation)
	}
	if err := db.requireItem(fam, itemID); err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s, name, url) VALUES (?, ?, ?)`, fam.linkTable, fam.itemFK)
	if _, err := db.Exec(query, itemID, name, url); err != nil {
		return fmt.Errorf("failed to attach link: %w", err)
	}
	return nil
}

// ListLinks returns an item's attachments in insertion order.
func (db *DB) ListLinks(fam Family, itemID int64) ([]model.Link, error) {
	query := fmt.Sprintf(`SELECT id, %s, name, url FROM %s WHERE %s = ? ORDER BY id`, fam.itemFK, fam.linkTable, fam.itemFK)
	rows, err := db.Query(query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var links []model.Link
	for rows.Next() {
		var l model.Link
		if err := rows.Scan(&l.ID, &l.ItemID, &l.Name, &l.URL); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// requireItem verifies an item row exists.
func (db *DB) requireItem(fam Family, id int64) error {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = ?`, fam.itemTable)
	if err := db.QueryRow(query, id).Scan(&count); err != nil {
		return fmt.Errorf("failed to check %s: %w", fam.Name, err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %s %d", ErrNotFound, fam.Name, id)
	}
	return nil
}

// dateToken renders a target date the way history entries compare and
// store it: YYYY-MM-DD, or the literal "None" when unset.
func dateToken(t *time.Time) string {
	if t == nil {
		return "None"
	}
	return t.Format("2006-01-02")
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem reads one item row followed by its joined status columns.
func scanItem(fam Family, row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	st := &model.Status{}
	var desc sql.NullString
	var target, reported sql.NullTime

	dest := []any{&item.ID, &item.Title, &item.Slug, &desc, &item.StatusID, &target, &item.CreatedAt, &item.UpdatedAt}
	if fam.hasReportedAt {
		dest = append(dest, &reported)
	}
	dest = append(dest, &st.ID, &st.Name, &st.Slug, &st.Color, &st.IsFinal)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if desc.Valid {
		item.Description = desc.String
	}
	if target.Valid {
		t := target.Time
		item.TargetDate = &t
	}
	if reported.Valid {
		t := reported.Time
		item.ReportedAt = &t
	}
	item.Status = st
	return item, nil
}
