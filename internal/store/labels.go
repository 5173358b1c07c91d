package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/models"
)

// InsertLabel inserts a label and returns its ID. Names are unique.
func (db *DB) InsertLabel(ctx context.Context, l models.Label) (int64, error) {
	var id int64
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		if err := ensureLabelNameFree(ctx, tx, l.Name, models.NoID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO labels (name, hidden) VALUES (?, ?)`, l.Name, l.Hidden)
		if err != nil {
			return fmt.Errorf("store: insert label: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// UpdateLabel renames a label or changes its visibility.
func (db *DB) UpdateLabel(ctx context.Context, l models.Label) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if err := ensureLabelNameFree(ctx, tx, l.Name, l.ID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `UPDATE labels SET name = ?, hidden = ? WHERE id = ?`, l.Name, l.Hidden, l.ID)
		if err != nil {
			return fmt.Errorf("store: update label %d: %w", l.ID, err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return fmt.Errorf("store: update label %d: %w", l.ID, apperr.ErrNotFound)
		}
		return nil
	})
}

func ensureLabelNameFree(ctx context.Context, q querier, name string, self int64) error {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM labels WHERE name = ?`, name).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("store: lookup label %q: %w", name, err)
	case id != self:
		return fmt.Errorf("store: label %q: %w", name, apperr.ErrAlreadyExists)
	}
	return nil
}

// DeleteLabel removes a label and its refs.
func (db *DB) DeleteLabel(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM labels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete label %d: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("store: delete label %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// GetLabelByName returns the label with the given name.
func (db *DB) GetLabelByName(ctx context.Context, name string) (models.Label, error) {
	var l models.Label
	err := db.conn.QueryRowContext(ctx, `SELECT id, name, hidden FROM labels WHERE name = ?`, name).
		Scan(&l.ID, &l.Name, &l.Hidden)
	if errors.Is(err, sql.ErrNoRows) {
		return l, fmt.Errorf("store: label %q: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return l, fmt.Errorf("store: label %q: %w", name, err)
	}
	return l, nil
}

// ListLabels returns every label ordered by name.
func (db *DB) ListLabels(ctx context.Context) ([]models.Label, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT id, name, hidden FROM labels ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("store: list labels: %w", err)
	}
	defer rows.Close()
	var out []models.Label
	for rows.Next() {
		var l models.Label
		if err := rows.Scan(&l.ID, &l.Name, &l.Hidden); err != nil {
			return nil, fmt.Errorf("store: list labels: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// SetNoteLabels replaces the labels of a note.
func (db *DB) SetNoteLabels(ctx context.Context, noteID int64, labelIDs []int64) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM notes WHERE id = ?`, noteID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("store: set labels of note %d: %w", noteID, apperr.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("store: set labels of note %d: %w", noteID, err)
		}
		return setNoteLabels(ctx, tx, noteID, labelIDs)
	})
}

func setNoteLabels(ctx context.Context, q querier, noteID int64, labelIDs []int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM label_refs WHERE note_id = ?`, noteID); err != nil {
		return fmt.Errorf("store: clear label refs: %w", err)
	}
	for _, labelID := range labelIDs {
		var exists int
		err := q.QueryRowContext(ctx, `SELECT 1 FROM labels WHERE id = ?`, labelID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("store: label %d: %w", labelID, apperr.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("store: label %d: %w", labelID, err)
		}
		if _, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO label_refs (note_id, label_id) VALUES (?, ?)`, noteID, labelID); err != nil {
			return fmt.Errorf("store: insert label ref: %w", err)
		}
	}
	return nil
}

// labelsByNote returns the labels of each given note, in label name order.
func (db *DB) labelsByNote(ctx context.Context, noteIDs []int64) (map[int64][]models.Label, error) {
	out := make(map[int64][]models.Label, len(noteIDs))
	if len(noteIDs) == 0 {
		return out, nil
	}
	in, args := inClause(noteIDs)
	rows, err := db.conn.QueryContext(ctx, `
		SELECT r.note_id, l.id, l.name, l.hidden
		FROM label_refs r
		JOIN labels l ON l.id = r.label_id
		WHERE r.note_id IN `+in+`
		ORDER BY l.name COLLATE NOCASE
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: note labels: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			noteID int64
			l      models.Label
		)
		if err := rows.Scan(&noteID, &l.ID, &l.Name, &l.Hidden); err != nil {
			return nil, fmt.Errorf("store: note labels: %w", err)
		}
		out[noteID] = append(out[noteID], l)
	}
	return out, rows.Err()
}
