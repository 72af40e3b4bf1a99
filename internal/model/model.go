// Package model defines the records shared by the bug and task families.
//
// Both families use the same shapes; which tables they map to is decided
// by the db package's family descriptors.
package model

import "time"

// ChangeType identifies which tracked field a history entry records.
type ChangeType string

const (
	ChangeStatus   ChangeType = "STATUS"
	ChangeDate     ChangeType = "DATE"     // bug delivery date
	ChangeDeadline ChangeType = "DEADLINE" // task deadline
)

// Status is one entry in a family's status catalog.
type Status struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Color   string `json:"color"`
	IsFinal bool   `json:"is_final"`

	// Count is the number of items currently in this status.
	// Populated by list queries, always from the unfiltered totals.
	Count int `json:"count"`
}

// Item is a bug or a task.
type Item struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	StatusID    int64      `json:"status_id"`
	TargetDate  *time.Time `json:"target_date"` // delivery date (bugs) or deadline (tasks)
	ReportedAt  *time.Time `json:"reported_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Status is resolved alongside the item by detail and list queries.
	Status *Status `json:"status,omitempty"`
}

// Overdue reports whether the item is past its target date with the clock
// still running. Terminal statuses stop the clock regardless of the date.
func (i *Item) Overdue(now time.Time) bool {
	if i.Status == nil || i.Status.IsFinal || i.TargetDate == nil {
		return false
	}
	return i.TargetDate.Before(now)
}

// Link is a name+URL attachment owned by one item.
type Link struct {
	ID     int64  `json:"id"`
	ItemID int64  `json:"item_id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

// Activity is one free-text log entry (comment or system note).
type Activity struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// History is one immutable field-change record.
type History struct {
	ID         int64      `json:"id"`
	ItemID     int64      `json:"item_id"`
	ChangeType ChangeType `json:"change_type"`
	OldValue   string     `json:"old_value"`
	NewValue   string     `json:"new_value"`
	Remark     *string    `json:"remark"`
	CreatedAt  time.Time  `json:"created_at"`
}
