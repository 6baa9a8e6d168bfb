// Package history keeps a SQLite record of strategy revisions, reasoning
// service calls, coverage over time and the data files last seen, and
// watches the data directory for changes.
package history

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS strategy_revisions (
	id         TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	checksum   TEXT NOT NULL DEFAULT '',
	goals      INTEGER NOT NULL DEFAULT 0,
	reason     TEXT NOT NULL DEFAULT '',
	upstream   TEXT NOT NULL DEFAULT '',
	artifact   TEXT NOT NULL DEFAULT '',
	applied    INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS ai_calls (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	purpose     TEXT NOT NULL,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS coverage_snapshots (
	run_id           TEXT NOT NULL,
	cap_id           TEXT NOT NULL,
	skill_id         TEXT NOT NULL,
	target_level     TEXT NOT NULL,
	coverage         INTEGER NOT NULL,
	headcount_target INTEGER NOT NULL,
	created_at       DATETIME NOT NULL,
	UNIQUE(run_id, cap_id, skill_id)
);

CREATE INDEX IF NOT EXISTS idx_coverage_goal ON coverage_snapshots(cap_id, skill_id, created_at);

CREATE TABLE IF NOT EXISTS data_files (
	path       TEXT PRIMARY KEY,
	checksum   TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// DB wraps a sql.DB with history-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("history: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
