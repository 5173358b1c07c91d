package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/store"
	"github.com/starford/notes/internal/testutil"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func insert(t *testing.T, db *store.DB, n models.Note, labels ...int64) int64 {
	t.Helper()
	id, err := db.InsertNote(context.Background(), n, labels)
	if err != nil {
		t.Fatalf("InsertNote: %v", err)
	}
	return id
}

func ids(notes []models.NoteWithLabels) []int64 {
	out := make([]int64, len(notes))
	for i, n := range notes {
		out[i] = n.Note.ID
	}
	return out
}

func TestInsertAndGet(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()

	list := testutil.ListNote("Groceries", t0,
		models.ListItem{Content: "milk"}, models.ListItem{Content: "eggs", Checked: true})
	list.Reminder = &models.Reminder{Start: t0, Next: t0, Count: 1}
	id := insert(t, db, list)

	got, err := db.GetNote(ctx, id)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	list.ID = id
	if diff := cmp.Diff(list, got); diff != "" {
		t.Errorf("note mismatch (-want +got):\n%s", diff)
	}

	last, err := db.LastCreatedNote(ctx)
	if err != nil || last.ID != id {
		t.Errorf("LastCreatedNote = %d, %v; want %d", last.ID, err, id)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	db := testutil.TestDB(t)
	if _, err := db.GetNote(context.Background(), 42); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := db.UpdateNote(context.Background(), models.Note{ID: 42, Kind: models.KindText}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("update err = %v, want ErrNotFound", err)
	}
	if err := db.DeleteNote(context.Background(), 42); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("delete err = %v, want ErrNotFound", err)
	}
}

func TestUpdateNotes(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()
	a := testutil.TextNote("a", "one", t0)
	b := testutil.TextNote("b", "two", t0)
	a.ID = insert(t, db, a)
	b.ID = insert(t, db, b)

	a.Status, b.Status = models.StatusArchived, models.StatusArchived
	if err := db.UpdateNotes(ctx, []models.Note{a, b}); err != nil {
		t.Fatalf("UpdateNotes: %v", err)
	}
	archived, err := db.ListNotes(ctx, store.Filter{Status: models.StatusArchived})
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if len(archived) != 2 {
		t.Errorf("archived = %v, want 2 notes", ids(archived))
	}
}

func TestModifyNote(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()
	label, err := db.InsertLabel(ctx, models.Label{Name: "work"})
	if err != nil {
		t.Fatal(err)
	}
	id := insert(t, db, testutil.TextNote("before", "", t0))

	got, err := db.ModifyNote(ctx, id, []int64{label}, func(n *models.Note) error {
		n.Title = "after"
		return nil
	})
	if err != nil || got.Title != "after" {
		t.Fatalf("ModifyNote = %+v, %v", got, err)
	}
	stored, err := db.GetNoteWithLabels(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Note.Title != "after" || len(stored.Labels) != 1 {
		t.Errorf("stored = %+v", stored)
	}

	// A failing fn or label write rolls everything back.
	errStop := errors.New("stop")
	if _, err := db.ModifyNote(ctx, id, nil, func(n *models.Note) error {
		n.Title = "lost"
		return errStop
	}); !errors.Is(err, errStop) {
		t.Errorf("err = %v, want errStop", err)
	}
	if _, err := db.ModifyNote(ctx, id, []int64{label + 100}, func(n *models.Note) error {
		n.Title = "lost"
		return nil
	}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	stored, err = db.GetNoteWithLabels(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Note.Title != "after" || len(stored.Labels) != 1 {
		t.Errorf("rolled back note = %+v", stored)
	}

	if _, err := db.ModifyNote(ctx, id+100, nil, func(*models.Note) error { return nil }); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing note err = %v, want ErrNotFound", err)
	}
}

func TestListNotes_Sort(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()

	older := testutil.TextNote("banana", "", t0)
	newer := testutil.TextNote("Apple", "", t0.Add(time.Hour))
	pinned := testutil.TextNote("cherry", "", t0.Add(-time.Hour))
	pinned.Pinned = true
	olderID := insert(t, db, older)
	newerID := insert(t, db, newer)
	pinnedID := insert(t, db, pinned)

	cases := []struct {
		sort models.SortSettings
		want []int64
	}{
		{models.SortSettings{Field: models.SortModified, Direction: models.SortDesc}, []int64{pinnedID, newerID, olderID}},
		{models.SortSettings{Field: models.SortAdded, Direction: models.SortAsc}, []int64{pinnedID, olderID, newerID}},
		{models.SortSettings{Field: models.SortTitle, Direction: models.SortAsc}, []int64{pinnedID, newerID, olderID}},
	}
	for _, tc := range cases {
		got, err := db.ListNotes(ctx, store.Filter{Status: models.StatusActive, Sort: tc.sort})
		if err != nil {
			t.Fatalf("ListNotes: %v", err)
		}
		if diff := cmp.Diff(tc.want, ids(got)); diff != "" {
			t.Errorf("sort %+v mismatch (-want +got):\n%s", tc.sort, diff)
		}
	}
}

func TestListNotes_Filters(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()

	work, err := db.InsertLabel(ctx, models.Label{Name: "work"})
	if err != nil {
		t.Fatalf("InsertLabel: %v", err)
	}
	home, err := db.InsertLabel(ctx, models.Label{Name: "home"})
	if err != nil {
		t.Fatalf("InsertLabel: %v", err)
	}

	withLabels := insert(t, db, testutil.TextNote("report", "quarterly numbers", t0), work, home)
	reminded := testutil.ListNote("errands", t0, models.ListItem{Content: "post office"})
	reminded.Reminder = &models.Reminder{Start: t0, Next: t0, Count: 1}
	remindedID := insert(t, db, reminded)
	trashed := testutil.TextNote("old", "quarterly draft", t0)
	trashed.Status = models.StatusDeleted
	insert(t, db, trashed)

	got, err := db.ListNotes(ctx, store.Filter{LabelID: work})
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if diff := cmp.Diff([]int64{withLabels}, ids(got)); diff != "" {
		t.Errorf("by label mismatch (-want +got):\n%s", diff)
	}
	wantLabels := []models.Label{{ID: home, Name: "home"}, {ID: work, Name: "work"}}
	if diff := cmp.Diff(wantLabels, got[0].Labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}

	got, err = db.ListNotes(ctx, store.Filter{WithReminder: true})
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if diff := cmp.Diff([]int64{remindedID}, ids(got)); diff != "" {
		t.Errorf("with reminder mismatch (-want +got):\n%s", diff)
	}

	got, err = db.ListNotes(ctx, store.Filter{Status: models.StatusActive, Query: "quarterly"})
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if diff := cmp.Diff([]int64{withLabels}, ids(got)); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}

	got, err = db.ListNotes(ctx, store.Filter{Query: "office"})
	if err != nil {
		t.Fatalf("ListNotes: %v", err)
	}
	if diff := cmp.Diff([]int64{remindedID}, ids(got)); diff != "" {
		t.Errorf("list item query mismatch (-want +got):\n%s", diff)
	}
}

func TestListNotes_QueryIgnoresUnicodeCase(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()
	upper := insert(t, db, testutil.TextNote("ÉCOLE", "", t0))
	lower := insert(t, db, testutil.TextNote("notes", "rentrée à l'école", t0))
	insert(t, db, testutil.TextNote("other", "nothing", t0))

	for _, q := range []string{"école", "ÉCOLE", "ÉcOlE"} {
		got, err := db.ListNotes(ctx, store.Filter{Query: q, Sort: models.SortSettings{Field: models.SortAdded, Direction: models.SortAsc}})
		if err != nil {
			t.Fatalf("ListNotes(%q): %v", q, err)
		}
		if diff := cmp.Diff([]int64{upper, lower}, ids(got)); diff != "" {
			t.Errorf("ListNotes(%q) mismatch (-want +got):\n%s", q, diff)
		}
		results, err := db.Search(ctx, q, 10)
		if err != nil {
			t.Fatalf("Search(%q): %v", q, err)
		}
		if len(results) != 2 {
			t.Errorf("Search(%q) = %d results, want 2", q, len(results))
		}
	}
}

func TestSearch(t *testing.T) {
	db := testutil.TestDB(t)
	id := insert(t, db, testutil.TextNote("Search Me", "uniqueword appears here", t0))
	insert(t, db, testutil.TextNote("Other", "nothing to see", t0))

	results, err := db.Search(context.Background(), "uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != id || results[0].Status != models.StatusActive {
		t.Errorf("search results = %+v, want 1 hit for %d", results, id)
	}

	results, err = db.Search(context.Background(), `100% "quoted"`, 10)
	if err != nil {
		t.Fatalf("Search with special characters: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("unexpected results %+v", results)
	}
}

func TestDeleteNotesByStatus(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()

	old := testutil.TextNote("old", "", t0.AddDate(0, 0, -10))
	old.Status = models.StatusDeleted
	recent := testutil.TextNote("recent", "", t0.AddDate(0, 0, -1))
	recent.Status = models.StatusDeleted
	active := testutil.TextNote("active", "", t0.AddDate(0, 0, -30))
	insert(t, db, old)
	recentID := insert(t, db, recent)
	activeID := insert(t, db, active)

	n, err := db.DeleteNotesByStatus(ctx, models.StatusDeleted, t0.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("DeleteNotesByStatus: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d notes, want 1", n)
	}
	remaining, _ := db.ListNotes(ctx, store.Filter{})
	if diff := cmp.Diff([]int64{recentID, activeID}, ids(remaining)); diff != "" {
		t.Errorf("remaining mismatch (-want +got):\n%s", diff)
	}

	if n, err = db.DeleteNotesByStatus(ctx, models.StatusDeleted, time.Time{}); err != nil || n != 1 {
		t.Errorf("empty trash deleted %d, %v; want 1", n, err)
	}
}

func TestLabels(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()

	id, err := db.InsertLabel(ctx, models.Label{Name: "ideas"})
	if err != nil {
		t.Fatalf("InsertLabel: %v", err)
	}
	if _, err := db.InsertLabel(ctx, models.Label{Name: "ideas"}); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate insert err = %v, want ErrAlreadyExists", err)
	}
	if err := db.UpdateLabel(ctx, models.Label{ID: id, Name: "ideas", Hidden: true}); err != nil {
		t.Errorf("UpdateLabel to same name: %v", err)
	}

	noteID := insert(t, db, testutil.TextNote("n", "", t0), id)
	if err := db.SetNoteLabels(ctx, noteID, []int64{id + 100}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown label err = %v, want ErrNotFound", err)
	}

	if err := db.DeleteLabel(ctx, id); err != nil {
		t.Fatalf("DeleteLabel: %v", err)
	}
	got, err := db.GetNoteWithLabels(ctx, noteID)
	if err != nil {
		t.Fatalf("GetNoteWithLabels: %v", err)
	}
	if len(got.Labels) != 0 {
		t.Errorf("labels = %+v after label delete", got.Labels)
	}
	if _, err := db.GetLabelByName(ctx, "ideas"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetLabelByName err = %v, want ErrNotFound", err)
	}
}

func TestClear(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()
	label, _ := db.InsertLabel(ctx, models.Label{Name: "x"})
	insert(t, db, testutil.TextNote("n", "", t0), label)

	if err := db.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	notes, _ := db.ListNotes(ctx, store.Filter{})
	labels, _ := db.ListLabels(ctx)
	if len(notes) != 0 || len(labels) != 0 {
		t.Errorf("after clear: %d notes, %d labels", len(notes), len(labels))
	}
}
