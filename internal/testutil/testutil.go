// Package testutil provides shared test helpers for setting up databases and directories.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/storage"
	"github.com/starford/notes/internal/store"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "notes-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDir creates a temporary notes directory with a storage.Provider.
func TestDir(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// TextNote returns an active text note dated at now.
func TextNote(title, content string, now time.Time) models.Note {
	return models.Note{
		Kind: models.KindText, Title: title, Content: content, Status: models.StatusActive,
		AddedDate: now, LastModifiedDate: now,
	}
}

// ListNote returns an active list note dated at now.
func ListNote(title string, now time.Time, items ...models.ListItem) models.Note {
	return models.Note{
		Kind: models.KindList, Title: title, Items: items, Status: models.StatusActive,
		AddedDate: now, LastModifiedDate: now,
	}
}
