package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/ravithakur-bit/tracker/internal/model"
)

// ListParams are the filter/search/pagination inputs for one list query.
type ListParams struct {
	// StatusSlugs restricts results to items in any of these statuses.
	StatusSlugs []string
	// Search is split on whitespace; an item matches when ANY word appears
	// in its title, description, or any activity entry.
	Search string
	Page   int
	Limit  int
}

// Page is one page of list results plus the data the filter UI needs.
type Page struct {
	Items []model.Item `json:"items"`
	// Statuses is the full catalog with per-status counts, always
	// computed from the unfiltered totals.
	Statuses   []model.Status `json:"statuses"`
	TotalItems int            `json:"total_items"`
	TotalPages int            `json:"total_pages"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	HasNext    bool           `json:"has_next"`
	HasPrev    bool           `json:"has_prev"`
}

// ListPage runs the family's list query: per-status counts, word-by-word
// OR search across title/description/activity content, status filtering,
// the fixed overdue-aware sort, and pagination.
//
// Sort order, strict and not configurable: overdue items first, then
// target date ascending with unset dates last, then active before
// terminal, then created ascending, then updated descending.
func (db *DB) ListPage(fam Family, p ListParams) (*Page, error) {
	statuses, err := db.statusesWithCounts(fam)
	if err != nil {
		return nil, err
	}

	grandTotal := 0
	countBySlug := make(map[string]int, len(statuses))
	for _, s := range statuses {
		countBySlug[s.Slug] = s.Count
		grandTotal += s.Count
	}

	var conds []string
	var args []any

	words := strings.Fields(p.Search)
	if len(words) > 0 {
		wordConds := make([]string, 0, len(words))
		for _, w := range words {
			term := "%" + w + "%"
			wordConds = append(wordConds, "(i.title LIKE ? OR i.description LIKE ? OR a.content LIKE ?)")
			args = append(args, term, term, term)
		}
		conds = append(conds, "("+strings.Join(wordConds, " OR ")+")")
	}
	if len(p.StatusSlugs) > 0 {
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(p.StatusSlugs)), ", ")
		conds = append(conds, fmt.Sprintf("s.slug IN (%s)", marks))
		for _, s := range p.StatusSlugs {
			args = append(args, s)
		}
	}

	from := fmt.Sprintf("FROM %s i JOIN %s s ON s.id = i.status_id", fam.itemTable, fam.statusTable)
	distinct := ""
	if len(words) > 0 {
		// The activity join can yield one row per matching entry;
		// DISTINCT keeps each item in the results once.
		from += fmt.Sprintf(" LEFT JOIN %s a ON a.%s = i.id", fam.activityTable, fam.itemFK)
		distinct = "DISTINCT "
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	// Status-filtered totals without search come from the precomputed
	// per-status counts, avoiding a second count query. With search the
	// filtered set must be counted for real.
	total := grandTotal
	switch {
	case len(p.StatusSlugs) > 0 && len(words) == 0:
		total = 0
		for _, s := range p.StatusSlugs {
			total += countBySlug[s]
		}
	case len(words) > 0:
		countQuery := "SELECT COUNT(DISTINCT i.id) " + from + where
		if err := db.QueryRow(countQuery, args...).Scan(&total); err != nil {
			return nil, fmt.Errorf("failed to count items: %w", err)
		}
	}

	totalPages := 1
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}

	now := time.Now().UTC()
	orderBy := fmt.Sprintf(`
		ORDER BY
			CASE WHEN s.is_final = 0 AND i.%[1]s < ? THEN 1 ELSE 0 END DESC,
			CASE WHEN i.%[1]s IS NULL THEN 1 ELSE 0 END,
			i.%[1]s ASC,
			CASE WHEN s.is_final = 0 THEN 1 ELSE 0 END DESC,
			i.created_at ASC,
			i.updated_at DESC`, fam.dateColumn)

	query := fmt.Sprintf(`SELECT %s%s, s.id, s.name, s.slug, s.color, s.is_final %s%s%s LIMIT ? OFFSET ?`,
		distinct, fam.itemColumns(), from, where, orderBy)

	offset := (p.Page - 1) * p.Limit
	queryArgs := append(append([]any{}, args...), now, p.Limit, offset)

	rows, err := db.Query(query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(fam, rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return &Page{
		Items:      items,
		Statuses:   statuses,
		TotalItems: total,
		TotalPages: totalPages,
		Page:       p.Page,
		Limit:      p.Limit,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}, nil
}
