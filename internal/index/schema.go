// Package index provides a SQLite-backed card index with optional FTS5
// full-text search and local study-progress tracking.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS cards (
	id             TEXT PRIMARY KEY,
	question       TEXT NOT NULL DEFAULT '',
	answer         TEXT NOT NULL DEFAULT '',
	difficulty     TEXT NOT NULL DEFAULT '',
	type           TEXT NOT NULL DEFAULT '',
	tags           TEXT NOT NULL DEFAULT '[]',
	chapter_number INTEGER NOT NULL DEFAULT 0,
	chapter_title  TEXT NOT NULL DEFAULT '',
	grp            TEXT NOT NULL DEFAULT 'main',
	pos            INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_cards_chapter ON cards(chapter_number);
CREATE INDEX IF NOT EXISTS idx_cards_difficulty ON cards(difficulty);

CREATE TABLE IF NOT EXISTS progress (
	card_id    TEXT PRIMARY KEY,
	status     INTEGER NOT NULL DEFAULT 0,
	due        INTEGER NOT NULL DEFAULT 0,
	reviews    INTEGER NOT NULL DEFAULT 0,
	lapses     INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL DEFAULT ''
);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
