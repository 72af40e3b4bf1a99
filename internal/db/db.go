// Package db provides SQLite storage for the tracker.
//
// Bugs and tasks live in parallel table sets with identical shapes. All
// operations take a Family descriptor that names the tables, so the query
// engine, audit trail and activity log are implemented once.
//
// Use Open() to connect and Init() to create the schema.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS bug_statuses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	slug TEXT NOT NULL UNIQUE,
	color TEXT NOT NULL DEFAULT 'gray',
	is_final INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS bugs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	description TEXT,
	status_id INTEGER NOT NULL REFERENCES bug_statuses(id),
	delivery_date DATETIME,
	reported_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS bug_links (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	bug_id INTEGER NOT NULL REFERENCES bugs(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	url TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bug_activities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	bug_id INTEGER NOT NULL REFERENCES bugs(id) ON DELETE CASCADE,
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS bug_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	bug_id INTEGER NOT NULL REFERENCES bugs(id) ON DELETE CASCADE,
	change_type TEXT NOT NULL,
	old_value TEXT,
	new_value TEXT,
	remark TEXT,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS task_statuses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	slug TEXT NOT NULL UNIQUE,
	color TEXT NOT NULL DEFAULT 'gray',
	is_final INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	slug TEXT NOT NULL UNIQUE,
	description TEXT,
	status_id INTEGER NOT NULL REFERENCES task_statuses(id),
	deadline DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS task_links (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	url TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS task_activities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	content TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS task_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
	change_type TEXT NOT NULL,
	old_value TEXT,
	new_value TEXT,
	remark TEXT,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bugs_status ON bugs(status_id);
CREATE INDEX IF NOT EXISTS idx_bug_links_bug ON bug_links(bug_id);
CREATE INDEX IF NOT EXISTS idx_bug_activities_bug ON bug_activities(bug_id);
CREATE INDEX IF NOT EXISTS idx_bug_history_bug ON bug_history(bug_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status_id);
CREATE INDEX IF NOT EXISTS idx_task_links_task ON task_links(task_id);
CREATE INDEX IF NOT EXISTS idx_task_activities_task ON task_activities(task_id);
CREATE INDEX IF NOT EXISTS idx_task_history_task ON task_history(task_id);
`

// DB wraps a SQL database connection with tracker-specific operations.
type DB struct {
	*sql.DB
}

// DefaultPath returns the default database path (~/.tracker/tracker.db)
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tracker", "tracker.db"), nil
}

// Open opens or creates the database at the given path
func Open(path string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Foreign keys carry the link/activity/history cascade invariant
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// Init creates the schema for both families.
func (db *DB) Init() error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
