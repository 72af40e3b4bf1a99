package db

import (
	"fmt"
	"sort"
	"time"

	"github.com/ravithakur-bit/tracker/internal/model"
)

// feedLimit caps the unified activity stream: 10 entries fetched per
// family, 10 kept after the merge.
const feedLimit = 10

// Stats are the dashboard KPI counters.
type Stats struct {
	TasksPending int `json:"tasks_pending"`
	BugsOpen     int `json:"bugs_open"`
	DueToday     int `json:"due_today"`
	Overdue      int `json:"overdue"`
}

// UrgentItem is one entry in the dashboard focus list: an active item due
// no later than tomorrow.
type UrgentItem struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	StatusColor string    `json:"status_color"`
	Date        time.Time `json:"date"`
	Label       string    `json:"label"`
	LabelColor  string    `json:"label_color"`
	Link        string    `json:"link"`
}

// FeedEntry is one row of the unified recent-activity stream.
type FeedEntry struct {
	Content     string    `json:"content"`
	Time        time.Time `json:"time"`
	Type        string    `json:"type"`
	ParentTitle string    `json:"parent_title"`
	Link        string    `json:"link"`
}

// ChartData holds per-status item counts as parallel arrays, in
// group-iteration order.
type ChartData struct {
	Labels []string `json:"labels"`
	Colors []string `json:"colors"`
	Counts []int    `json:"counts"`
}

// Dashboard aggregates both families for the landing page.
type Dashboard struct {
	Stats       Stats        `json:"stats"`
	UrgentItems []UrgentItem `json:"urgent_items"`
	Activities  []FeedEntry  `json:"activities"`
	ChartTasks  ChartData    `json:"chart_tasks"`
	ChartBugs   ChartData    `json:"chart_bugs"`
}

// BuildDashboard pulls all non-terminal items from both families and
// derives the KPI stats, the urgency list, per-family status charts and
// the merged activity feed.
func (db *DB) BuildDashboard() (*Dashboard, error) {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	d := &Dashboard{}

	activeTasks, err := db.activeItems(Tasks)
	if err != nil {
		return nil, err
	}
	activeBugs, err := db.activeItems(Bugs)
	if err != nil {
		return nil, err
	}
	d.Stats.TasksPending = len(activeTasks)
	d.Stats.BugsOpen = len(activeBugs)

	for _, item := range activeTasks {
		d.classify(Tasks, item, today, tomorrow)
	}
	for _, item := range activeBugs {
		d.classify(Bugs, item, today, tomorrow)
	}
	// Most urgent first, by raw timestamp across both families
	sort.Slice(d.UrgentItems, func(i, j int) bool {
		return d.UrgentItems[i].Date.Before(d.UrgentItems[j].Date)
	})

	if d.ChartTasks, err = db.chartData(Tasks); err != nil {
		return nil, err
	}
	if d.ChartBugs, err = db.chartData(Bugs); err != nil {
		return nil, err
	}

	taskFeed, err := db.recentActivity(Tasks)
	if err != nil {
		return nil, err
	}
	bugFeed, err := db.recentActivity(Bugs)
	if err != nil {
		return nil, err
	}
	d.Activities = append(taskFeed, bugFeed...)
	sort.SliceStable(d.Activities, func(i, j int) bool {
		return d.Activities[i].Time.After(d.Activities[j].Time)
	})
	if len(d.Activities) > feedLimit {
		d.Activities = d.Activities[:feedLimit]
	}

	return d, nil
}

// classify buckets one active item by its target date. Items with no date
// or a date beyond tomorrow stay off the focus list entirely.
func (d *Dashboard) classify(fam Family, item model.Item, today, tomorrow time.Time) {
	if item.TargetDate == nil {
		return
	}
	t := item.TargetDate.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if day.After(tomorrow) {
		return
	}

	label, color := "Upcoming", "blue"
	switch {
	case item.Overdue(today):
		d.Stats.Overdue++
		label, color = "Overdue", "red"
	case day.Equal(today):
		d.Stats.DueToday++
		label, color = "Due Today", "orange"
	}

	d.UrgentItems = append(d.UrgentItems, UrgentItem{
		ID:          item.ID,
		Title:       item.Title,
		Type:        fam.Name,
		Status:      item.Status.Name,
		StatusColor: item.Status.Color,
		Date:        t,
		Label:       label,
		LabelColor:  color,
		Link:        fam.PathPrefix + "/" + item.Slug,
	})
}

// activeItems returns every item whose status keeps the clock running.
func (db *DB) activeItems(fam Family) ([]model.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s, s.id, s.name, s.slug, s.color, s.is_final
		FROM %s i JOIN %s s ON s.id = i.status_id
		WHERE s.is_final = 0`, fam.itemColumns(), fam.itemTable, fam.statusTable)
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active items: %w", err)
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
	return items, rows.Err()
}

// chartData counts items grouped by status name.
func (db *DB) chartData(fam Family) (ChartData, error) {
	query := fmt.Sprintf(`
		SELECT s.name, s.color, COUNT(i.id)
		FROM %s s JOIN %s i ON i.status_id = s.id
		GROUP BY s.name`, fam.statusTable, fam.itemTable)
	rows, err := db.Query(query)
	if err != nil {
		return ChartData{}, fmt.Errorf("failed to query chart data: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var data ChartData
	for rows.Next() {
		var name, color string
		var count int
		if err := rows.Scan(&name, &color, &count); err != nil {
			return ChartData{}, fmt.Errorf("failed to scan chart row: %w", err)
		}
		data.Labels = append(data.Labels, name)
		data.Colors = append(data.Colors, color)
		data.Counts = append(data.Counts, count)
	}
	return data, rows.Err()
}

// recentActivity returns the family's latest activity entries with their
// parent item's title and link.
func (db *DB) recentActivity(fam Family) ([]FeedEntry, error) {
	query := fmt.Sprintf(`
		SELECT a.content, a.created_at, i.title, i.slug
		FROM %s a JOIN %s i ON i.id = a.%s
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT ?`, fam.activityTable, fam.itemTable, fam.itemFK)
	rows, err := db.Query(query, feedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity feed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var feed []FeedEntry
	for rows.Next() {
		var e FeedEntry
		var slug string
		if err := rows.Scan(&e.Content, &e.Time, &e.ParentTitle, &slug); err != nil {
			return nil, fmt.Errorf("failed to scan feed entry: %w", err)
		}
		e.Type = fam.Name
		e.Link = fam.PathPrefix + "/" + slug
		feed = append(feed, e)
	}
	return feed, rows.Err()
}
