//go:build sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// The FTS table mirrors notes.title and notes.body through triggers, keyed by note id.
const ftsSchemaSQL = `
CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
	title,
	body,
	tokenize = 'unicode61 remove_diacritics 2'
);

CREATE TRIGGER IF NOT EXISTS notes_fts_insert AFTER INSERT ON notes BEGIN
	INSERT INTO notes_fts (rowid, title, body) VALUES (new.id, new.title, new.body);
END;

CREATE TRIGGER IF NOT EXISTS notes_fts_update AFTER UPDATE OF title, body ON notes BEGIN
	DELETE FROM notes_fts WHERE rowid = old.id;
	INSERT INTO notes_fts (rowid, title, body) VALUES (new.id, new.title, new.body);
END;

CREATE TRIGGER IF NOT EXISTS notes_fts_delete AFTER DELETE ON notes BEGIN
	DELETE FROM notes_fts WHERE rowid = old.id;
END;
`

func initFTS(ctx context.Context, conn *sql.DB) error {
	_, err := conn.ExecContext(ctx, ftsSchemaSQL)
	return err
}

// ftsPhrase quotes query as a single FTS5 phrase so user input is never parsed as syntax.
func ftsPhrase(query string) string {
	return `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
}

// matchClause restricts a notes query to rows matching query.
func matchClause(query string) (string, []any) {
	return `n.id IN (SELECT rowid FROM notes_fts WHERE notes_fts MATCH ?)`, []any{ftsPhrase(query)}
}

// Search performs an FTS5 full-text search and returns matching notes with snippets.
func (db *DB) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT f.rowid,
		       n.title,
		       n.status,
		       snippet(notes_fts, 1, '**', '**', '...', 16)
		FROM notes_fts f
		JOIN notes n ON n.id = f.rowid
		WHERE notes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, ftsPhrase(query), limit)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	return scanSearchResults(rows)
}
