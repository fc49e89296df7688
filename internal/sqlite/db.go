package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	sqlite3 "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
}

// New creates a new SQLite database connection
func New(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates the schema.
func (db *DB) RunMigrations() error {
	migration := `
-- Duplicate clusters
CREATE TABLE IF NOT EXISTS clusters (
    id TEXT PRIMARY KEY,
    representative_id TEXT NOT NULL,
    size INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_clusters_created_at ON clusters(created_at);

-- Issue entries
CREATE TABLE IF NOT EXISTS issue_entries (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    number INTEGER,
    author TEXT,
    repo TEXT,
    title TEXT,
    files TEXT NOT NULL,
    functions TEXT NOT NULL,
    error_terms TEXT NOT NULL,
    words TEXT NOT NULL,
    cluster_id TEXT,
    first_seen TIMESTAMP NOT NULL,
    FOREIGN KEY (cluster_id) REFERENCES clusters(id)
);
CREATE INDEX IF NOT EXISTS idx_entries_kind ON issue_entries(kind);
CREATE INDEX IF NOT EXISTS idx_entries_cluster ON issue_entries(cluster_id);
CREATE INDEX IF NOT EXISTS idx_entries_first_seen ON issue_entries(first_seen);

-- Learned question/answer pairs
CREATE TABLE IF NOT EXISTS faq_entries (
    id TEXT PRIMARY KEY,
    question TEXT NOT NULL,
    fingerprint TEXT NOT NULL,
    answer TEXT NOT NULL,
    use_count INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    last_used TIMESTAMP NOT NULL
);

-- Tracked pull requests
CREATE TABLE IF NOT EXISTS tracked_items (
    number INTEGER PRIMARY KEY,
    author TEXT,
    repo TEXT,
    state TEXT NOT NULL CHECK(state IN ('open', 'neglected', 'resolved')),
    opened_at TIMESTAMP NOT NULL,
    last_activity TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tracked_state ON tracked_items(state);

-- Audit log of every handled inbound event
CREATE TABLE IF NOT EXISTS event_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sender TEXT NOT NULL,
    subject TEXT NOT NULL,
    kind TEXT NOT NULL,
    number INTEGER,
    action TEXT NOT NULL,
    received_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_event_log_received ON event_log(received_at);
CREATE INDEX IF NOT EXISTS idx_event_log_kind ON event_log(kind);
`

	if _, err := db.Exec(migration); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// isConstraintViolation reports whether err is a primary-key or unique
// constraint failure (SQLITE_CONSTRAINT_PRIMARYKEY 1555,
// SQLITE_CONSTRAINT_UNIQUE 2067).
func isConstraintViolation(err error) bool {
	var se *sqlite3.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == 1555 || code == 2067
	}
	return false
}
