package repository

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Stored timestamps use a fixed-width layout so lexicographic ordering of
// the TEXT columns matches chronological ordering. Always UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
	CREATE TABLE IF NOT EXISTS task_groups (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		color       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id               TEXT PRIMARY KEY,
		title            TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		completed        INTEGER NOT NULL DEFAULT 0,
		due_date         TEXT,
		priority         TEXT NOT NULL DEFAULT 'normal',
		list_name        TEXT NOT NULL DEFAULT '',
		group_id         TEXT REFERENCES task_groups(id),
		reminder_enabled INTEGER NOT NULL DEFAULT 0,
		reminder_date    TEXT,
		repeat_enabled   INTEGER NOT NULL DEFAULT 0,
		repeat_type      TEXT,
		repeat_interval  INTEGER,
		repeat_end_date  TEXT,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks(completed);
	CREATE INDEX IF NOT EXISTS idx_tasks_due_date  ON tasks(due_date);
	CREATE INDEX IF NOT EXISTS idx_tasks_group_id  ON tasks(group_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_priority  ON tasks(priority);
`

// Database owns the single process-wide SQLite handle. Connect is
// idempotent and cheap once connected, so every repository operation calls
// it first instead of assuming an externally-managed lifetime.
type Database struct {
	mu   sync.Mutex
	path string
	db   *sql.DB
}

func NewDatabase(path string) *Database {
	return &Database{path: path}
}

// Connect opens the handle if needed and returns it. Open or ping failures
// surface as ConnectionError.
func (d *Database) Connect() (*sql.DB, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil {
		return d.db, nil
	}

	db, err := sql.Open("sqlite", d.path)
	if err != nil {
		return nil, &ConnectionError{Err: fmt.Errorf("open db: %w", err)}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &ConnectionError{Err: fmt.Errorf("connect: %w", err)}
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, &ConnectionError{Err: fmt.Errorf("set WAL mode: %w", err)}
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, &ConnectionError{Err: fmt.Errorf("enable foreign keys: %w", err)}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &ConnectionError{Err: fmt.Errorf("create schema: %w", err)}
	}

	d.db = db
	return db, nil
}

// Disconnect closes the handle and resets state so a later Connect
// re-establishes it. A no-op when not connected.
func (d *Database) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}

	err := d.db.Close()
	d.db = nil
	if err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

// Connected reports whether the handle is currently open.
func (d *Database) Connected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.db != nil
}

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func encodeTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := encodeTime(*t)
	return &s
}

func decodeTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
