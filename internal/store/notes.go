package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/models"
)

// Filter selects the notes returned by ListNotes. Zero fields do not filter.
type Filter struct {
	Status       models.NoteStatus
	LabelID      int64
	Query        string
	WithReminder bool
	Sort         models.SortSettings
	Limit        int
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      int64             `json:"id"`
	Title   string            `json:"title"`
	Status  models.NoteStatus `json:"status"`
	Snippet string            `json:"snippet"`
}

const noteColumns = `n.id, n.kind, n.title, n.content, n.items, n.status, n.pinned,
	n.added_date, n.last_modified_date, n.reminder`

// InsertNote inserts a note with its label refs and returns the new note ID.
// The ID of the given note is ignored.
func (db *DB) InsertNote(ctx context.Context, n models.Note, labelIDs []int64) (int64, error) {
	var id int64
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		args, err := noteArgs(n)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO notes (kind, title, content, items, body, status, pinned,
				added_date, last_modified_date, reminder)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, args...)
		if err != nil {
			return fmt.Errorf("store: insert note: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("store: insert note: %w", err)
		}
		return setNoteLabels(ctx, tx, id, labelIDs)
	})
	return id, err
}

// UpdateNote replaces a stored note. Label refs are left unchanged.
func (db *DB) UpdateNote(ctx context.Context, n models.Note) error {
	return db.UpdateNotes(ctx, []models.Note{n})
}

// UpdateNotes replaces several stored notes in one transaction.
func (db *DB) UpdateNotes(ctx context.Context, notes []models.Note) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		for _, n := range notes {
			if err := updateNote(ctx, tx, n); err != nil {
				return err
			}
		}
		return nil
	})
}

func updateNote(ctx context.Context, q querier, n models.Note) error {
	args, err := noteArgs(n)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `
		UPDATE notes SET
			kind = ?, title = ?, content = ?, items = ?, body = ?, status = ?, pinned = ?,
			added_date = ?, last_modified_date = ?, reminder = ?
		WHERE id = ?
	`, append(args, n.ID)...)
	if err != nil {
		return fmt.Errorf("store: update note %d: %w", n.ID, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("store: update note %d: %w", n.ID, apperr.ErrNotFound)
	}
	return nil
}

// DeleteNote removes a note and its label refs.
func (db *DB) DeleteNote(ctx context.Context, id int64) error {
	n, err := db.DeleteNotes(ctx, []int64{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("store: delete note %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// DeleteNotes removes notes by ID and returns how many existed.
func (db *DB) DeleteNotes(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in, args := inClause(ids)
	res, err := db.conn.ExecContext(ctx, `DELETE FROM notes WHERE id IN `+in, args...)
	if err != nil {
		return 0, fmt.Errorf("store: delete notes: %w", err)
	}
	return res.RowsAffected()
}

// DeleteNotesByStatus removes every note with status. When before is not zero,
// only notes last modified before it are removed.
func (db *DB) DeleteNotesByStatus(ctx context.Context, status models.NoteStatus, before time.Time) (int64, error) {
	query := `DELETE FROM notes WHERE status = ?`
	args := []any{string(status)}
	if !before.IsZero() {
		query += ` AND last_modified_date < ?`
		args = append(args, before.UnixMilli())
	}
	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("store: delete %s notes: %w", status, err)
	}
	return res.RowsAffected()
}

// ModifyNote reads a note, applies fn and writes the result back in one
// transaction. A non-nil labelIDs also replaces the note label refs. An error
// from fn aborts the transaction and is returned unwrapped.
func (db *DB) ModifyNote(ctx context.Context, id int64, labelIDs []int64, fn func(n *models.Note) error) (models.Note, error) {
	var out models.Note
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		n, err := getNote(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(&n); err != nil {
			return err
		}
		n.ID = id
		if err := updateNote(ctx, tx, n); err != nil {
			return err
		}
		if labelIDs != nil {
			if err := setNoteLabels(ctx, tx, id, labelIDs); err != nil {
				return err
			}
		}
		out = n
		return nil
	})
	return out, err
}

// GetNote returns a note by ID.
func (db *DB) GetNote(ctx context.Context, id int64) (models.Note, error) {
	return getNote(ctx, db.conn, id)
}

func getNote(ctx context.Context, q querier, id int64) (models.Note, error) {
	row := q.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes n WHERE n.id = ?`, id)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, fmt.Errorf("store: get note %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Note{}, fmt.Errorf("store: get note %d: %w", id, err)
	}
	return n, nil
}

// GetNoteWithLabels returns a note by ID along with its labels.
func (db *DB) GetNoteWithLabels(ctx context.Context, id int64) (models.NoteWithLabels, error) {
	n, err := db.GetNote(ctx, id)
	if err != nil {
		return models.NoteWithLabels{}, err
	}
	labels, err := db.labelsByNote(ctx, []int64{id})
	if err != nil {
		return models.NoteWithLabels{}, err
	}
	return models.NoteWithLabels{Note: n, Labels: labels[id]}, nil
}

// LastCreatedNote returns the most recently inserted note.
func (db *DB) LastCreatedNote(ctx context.Context) (models.Note, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes n ORDER BY n.id DESC LIMIT 1`)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, fmt.Errorf("store: last created note: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return models.Note{}, fmt.Errorf("store: last created note: %w", err)
	}
	return n, nil
}

// ListNotes returns the notes selected by f with their labels. Pinned notes
// come first, then notes are ordered by f.Sort.
func (db *DB) ListNotes(ctx context.Context, f Filter) ([]models.NoteWithLabels, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, `n.status = ?`)
		args = append(args, string(f.Status))
	}
	if f.LabelID != models.NoID {
		where = append(where, `n.id IN (SELECT note_id FROM label_refs WHERE label_id = ?)`)
		args = append(args, f.LabelID)
	}
	if f.WithReminder {
		where = append(where, `n.reminder IS NOT NULL`)
	}
	if f.Query != "" {
		clause, clauseArgs := matchClause(f.Query)
		where = append(where, clause)
		args = append(args, clauseArgs...)
	}

	query := `SELECT ` + noteColumns + ` FROM notes n`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY ` + orderBy(f.Sort)
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("store: list notes: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list notes: %w", err)
	}

	ids := make([]int64, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	labels, err := db.labelsByNote(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.NoteWithLabels, len(notes))
	for i, n := range notes {
		out[i] = models.NoteWithLabels{Note: n, Labels: labels[n.ID]}
	}
	return out, nil
}

// Clear deletes all notes, labels and label refs.
func (db *DB) Clear(ctx context.Context) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"label_refs", "notes", "labels"} {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
				return fmt.Errorf("store: clear %s: %w", table, err)
			}
		}
		return nil
	})
}

func orderBy(s models.SortSettings) string {
	col := "n.last_modified_date"
	switch s.Field {
	case models.SortAdded:
		col = "n.added_date"
	case models.SortTitle:
		col = "n.title COLLATE NOCASE"
	}
	dir := "DESC"
	if s.Direction == models.SortAsc {
		dir = "ASC"
	}
	return fmt.Sprintf("n.pinned DESC, %s %s, n.id %s", col, dir, dir)
}

// searchBody is the indexed text of a note: its content or its list items.
func searchBody(n models.Note) string {
	if n.Kind == models.KindList {
		parts := make([]string, len(n.Items))
		for i, it := range n.Items {
			parts[i] = it.Content
		}
		return strings.Join(parts, "\n")
	}
	return n.Content
}

func noteArgs(n models.Note) ([]any, error) {
	items := n.Items
	if items == nil {
		items = []models.ListItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("store: encode items: %w", err)
	}
	var reminder sql.NullString
	if n.Reminder != nil {
		b, err := json.Marshal(n.Reminder)
		if err != nil {
			return nil, fmt.Errorf("store: encode reminder: %w", err)
		}
		reminder = sql.NullString{String: string(b), Valid: true}
	}
	return []any{
		string(n.Kind), n.Title, n.Content, string(itemsJSON), searchBody(n), string(n.Status), n.Pinned,
		n.AddedDate.UnixMilli(), n.LastModifiedDate.UnixMilli(), reminder,
	}, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (models.Note, error) {
	var (
		n              models.Note
		kind, status   string
		items          string
		added, changed int64
		reminder       sql.NullString
	)
	if err := s.Scan(&n.ID, &kind, &n.Title, &n.Content, &items, &status, &n.Pinned,
		&added, &changed, &reminder); err != nil {
		return models.Note{}, err
	}
	n.Kind = models.NoteKind(kind)
	n.Status = models.NoteStatus(status)
	n.AddedDate = time.UnixMilli(added).UTC()
	n.LastModifiedDate = time.UnixMilli(changed).UTC()
	if n.Kind == models.KindList {
		if err := json.Unmarshal([]byte(items), &n.Items); err != nil {
			return models.Note{}, fmt.Errorf("decode items of note %d: %w", n.ID, err)
		}
	}
	if reminder.Valid {
		var r models.Reminder
		if err := json.Unmarshal([]byte(reminder.String), &r); err != nil {
			return models.Note{}, fmt.Errorf("decode reminder of note %d: %w", n.ID, err)
		}
		n.Reminder = &r
	}
	return n, nil
}

func scanSearchResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()
	var out []SearchResult
	for rows.Next() {
		var (
			r      SearchResult
			status string
		)
		if err := rows.Scan(&r.ID, &r.Title, &status, &r.Snippet); err != nil {
			return nil, fmt.Errorf("store: search: %w", err)
		}
		r.Status = models.NoteStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func inClause(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",") + ")", args
}
