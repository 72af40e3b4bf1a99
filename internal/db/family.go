package db

import "github.com/ravithakur-bit/tracker/internal/model"

// Family describes one of the two entity domains. Everything that differs
// between bugs and tasks (table names, the target-date column, the history
// change type for date edits) lives here, so all operations can be written
// once against a descriptor.
type Family struct {
	// Name is the display name, "Bug" or "Task".
	Name string

	// PathPrefix is the URL prefix items of this family are linked under.
	PathPrefix string

	itemTable     string
	statusTable   string
	linkTable     string
	activityTable string
	historyTable  string
	itemFK        string
	dateColumn    string
	dateChange    model.ChangeType
	createdNote   string
	detailsNote   string
	hasReportedAt bool
}

// Bugs is the bug family descriptor. Bugs carry a delivery date and a
// reported-at timestamp.
var Bugs = Family{
	Name:          "Bug",
	PathPrefix:    "/bugs",
	itemTable:     "bugs",
	statusTable:   "bug_statuses",
	linkTable:     "bug_links",
	activityTable: "bug_activities",
	historyTable:  "bug_history",
	itemFK:        "bug_id",
	dateColumn:    "delivery_date",
	dateChange:    model.ChangeDate,
	createdNote:   "Bug Created",
	detailsNote:   "Updated bug details (Title/Description)",
	hasReportedAt: true,
}

// Tasks is the task family descriptor. Tasks carry a deadline.
var Tasks = Family{
	Name:          "Task",
	PathPrefix:    "/tasks",
	itemTable:     "tasks",
	statusTable:   "task_statuses",
	linkTable:     "task_links",
	activityTable: "task_activities",
	historyTable:  "task_history",
	itemFK:        "task_id",
	dateColumn:    "deadline",
	dateChange:    model.ChangeDeadline,
	createdNote:   "Task created",
	detailsNote:   "Updated task details (Title/Description)",
}

func (f Family) String() string { return f.Name }

// itemColumns is the select list for item rows, prefixed with "i.".
// reported_at, when present, is always last so scanning stays uniform.
func (f Family) itemColumns() string {
	cols := "i.id, i.title, i.slug, i.description, i.status_id, i." + f.dateColumn + ", i.created_at, i.updated_at"
	if f.hasReportedAt {
		cols += ", i.reported_at"
	}
	return cols
}
