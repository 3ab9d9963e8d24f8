// Package index keeps a SQLite copy of the extracted documents for querying.
// It is a cache: every regeneration pass re-syncs it from the file tree and
// the generator never reads from it.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	kind       TEXT NOT NULL,
	filename   TEXT NOT NULL,
	number     TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT '',
	date       TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	related    TEXT NOT NULL DEFAULT '[]',
	supersedes TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (kind, filename)
);

CREATE TABLE IF NOT EXISTS relations (
	kind     TEXT NOT NULL,
	filename TEXT NOT NULL,
	source   TEXT NOT NULL,
	target   TEXT NOT NULL,
	type     TEXT NOT NULL DEFAULT 'related',
	UNIQUE(kind, filename, target, type)
);

CREATE INDEX IF NOT EXISTS idx_documents_number ON documents(kind, number);
CREATE INDEX IF NOT EXISTS idx_relations_target ON relations(kind, target);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
// An empty dsn opens a private in-memory database.
func Open(dsn string) (*DB, error) {
	if dsn == "" {
		dsn = ":memory:"
	}
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	// One connection keeps an in-memory database alive and serialises writers.
	conn.SetMaxOpenConns(1)
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
