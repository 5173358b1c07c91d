//go:build !sqlite_fts5

package store

import (
	"context"
	"database/sql"
	"fmt"
)

func initFTS(_ context.Context, _ *sql.DB) error {
	// FTS5 not compiled in; search is a case-folded substring test on notes.title and notes.body.
	return nil
}

// foldedMatch is true for rows whose title or body contains the folded query.
var foldedMatch = fmt.Sprintf(`(instr(%[1]s(n.title), ?) > 0 OR instr(%[1]s(n.body), ?) > 0)`, foldFunc)

// matchClause restricts a notes query to rows matching query, with the same
// Unicode case folding used to highlight matches.
func matchClause(query string) (string, []any) {
	q := fold(query)
	return foldedMatch, []any{q, q}
}

// Search performs a case-folded substring search (fallback when FTS5 is not compiled in).
func (db *DB) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	clause, args := matchClause(query)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT n.id, n.title, n.status, substr(n.body, 1, 200)
		FROM notes n
		WHERE `+clause+`
		ORDER BY n.last_modified_date DESC
		LIMIT ?
	`, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("store: search: %w", err)
	}
	return scanSearchResults(rows)
}
