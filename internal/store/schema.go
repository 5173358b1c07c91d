// Package store provides SQLite persistence for notes, labels and label refs,
// with optional FTS5 full-text search.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Dates are stored as Unix milliseconds so both drivers read them back identically.
const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	kind               TEXT    NOT NULL,
	title              TEXT    NOT NULL DEFAULT '',
	content            TEXT    NOT NULL DEFAULT '',
	items              TEXT    NOT NULL DEFAULT '[]',
	body               TEXT    NOT NULL DEFAULT '',
	status             TEXT    NOT NULL DEFAULT 'active',
	pinned             INTEGER NOT NULL DEFAULT 0,
	added_date         INTEGER NOT NULL,
	last_modified_date INTEGER NOT NULL,
	reminder           TEXT
);

CREATE INDEX IF NOT EXISTS idx_notes_status ON notes(status, last_modified_date);

CREATE TABLE IF NOT EXISTS labels (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	name   TEXT    NOT NULL UNIQUE,
	hidden INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS label_refs (
	note_id  INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	label_id INTEGER NOT NULL REFERENCES labels(id) ON DELETE CASCADE,
	PRIMARY KEY (note_id, label_id)
);

CREATE INDEX IF NOT EXISTS idx_label_refs_label ON label_refs(label_id);
`

// DB wraps a sql.DB with note persistence operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies the schema.
func Open(ctx context.Context, path string) (*DB, error) {
	conn, err := sql.Open(driverName, dataSource(path))
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.ExecContext(ctx, coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply core schema: %w", err)
	}
	if err := initFTS(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// inTx runs fn in a transaction, committing when fn returns nil.
func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}
