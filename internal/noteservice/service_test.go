package noteservice

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/preview"
	"github.com/starford/notes/internal/sse"
	"github.com/starford/notes/internal/store"
	"github.com/starford/notes/internal/testutil"
)

// dailyFinder recurs every day from start, limit occurrences in total.
type dailyFinder struct{ limit int }

func (f dailyFinder) First(_ string, start time.Time) (time.Time, bool, error) {
	return start, f.limit > 0, nil
}

func (f dailyFinder) Next(_ string, start, after time.Time) (time.Time, bool, error) {
	for i := 0; i < f.limit; i++ {
		if t := start.AddDate(0, 0, i); t.After(after) {
			return t, true, nil
		}
	}
	return time.Time{}, false, nil
}

type recorder struct {
	mu         sync.Mutex
	noteEvents []string
	events     []string
	alarms     map[int64]time.Time
}

func newRecorder() *recorder { return &recorder{alarms: make(map[int64]time.Time)} }

func (r *recorder) PublishNoteEvent(kind string, _ int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noteEvents = append(r.noteEvents, kind)
}

func (r *recorder) Publish(e sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e.Type)
}

func (r *recorder) SetAlarm(n models.Note) {
	if n.Reminder == nil || n.Reminder.Done || n.Status == models.StatusDeleted {
		r.RemoveAlarm(n.ID)
		return
	}
	r.alarms[n.ID] = n.Reminder.Next
}

func (r *recorder) RemoveAlarm(id int64) { delete(r.alarms, id) }

func (r *recorder) UpdateAll(notes []models.Note) {
	clear(r.alarms)
	for _, n := range notes {
		r.SetAlarm(n)
	}
}

type env struct {
	svc   *Service
	rec   *recorder
	clock *time.Time
}

func newEnv(t *testing.T, opts ...Option) *env {
	t.Helper()
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	e := &env{rec: newRecorder(), clock: &now}
	opts = append([]Option{
		WithNotifier(e.rec),
		WithAlarms(e.rec),
		WithClock(func() time.Time { return *e.clock }),
	}, opts...)
	e.svc = NewService(testutil.TestDB(t), dailyFinder{limit: 3}, preview.DefaultPreferences(), opts...)
	return e
}

func (e *env) create(t *testing.T, in NoteInput) models.Note {
	t.Helper()
	n, err := e.svc.CreateNote(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	return n.Note
}

func TestCreateAndUpdateNote(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	n := e.create(t, NoteInput{Kind: models.KindList, Title: "  Groceries ", Items: []models.ListItem{{Content: " milk "}}})
	if n.Title != "Groceries" || n.Items[0].Content != "milk" || n.Status != models.StatusActive {
		t.Errorf("created note = %+v", n)
	}

	version := Version(n)
	*e.clock = e.clock.Add(time.Minute)
	updated, err := e.svc.UpdateNote(ctx, n.ID, NoteInput{Kind: models.KindText, Title: "Groceries", Content: "milk"}, version)
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if updated.Note.Kind != models.KindText || !updated.Note.LastModifiedDate.Equal(*e.clock) {
		t.Errorf("updated note = %+v", updated.Note)
	}

	if _, err := e.svc.UpdateNote(ctx, n.ID, NoteInput{Kind: models.KindText}, version); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale update err = %v, want ErrConflict", err)
	}
	if diff := cmp.Diff([]string{EventCreated, EventUpdated}, e.rec.noteEvents); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateNote_ConcurrentSameVersion(t *testing.T) {
	e := newEnv(t)
	n := e.create(t, NoteInput{Kind: models.KindText, Title: "draft"})
	version := Version(n)

	const writers = 4
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := NoteInput{Kind: models.KindText, Title: "writer " + strconv.Itoa(i)}
			_, errs[i] = e.svc.UpdateNote(context.Background(), n.ID, in, version)
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case !errors.Is(err, apperr.ErrConflict):
			t.Errorf("err = %v, want nil or ErrConflict", err)
		}
	}
	if ok != 1 {
		t.Errorf("%d updates succeeded with the same version, want 1", ok)
	}
}

func TestUpdateNote_LabelFailureKeepsNote(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	n := e.create(t, NoteInput{Kind: models.KindText, Title: "before"})

	_, err := e.svc.UpdateNote(ctx, n.ID, NoteInput{Kind: models.KindText, Title: "after", LabelIDs: []int64{999}}, Version(n))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	got, err := e.svc.GetNote(ctx, n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Note.Title != "before" || Version(got.Note) != Version(n) {
		t.Errorf("note changed by failed update: %+v", got.Note)
	}
	if diff := cmp.Diff([]string{EventCreated}, e.rec.noteEvents); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateNote_Invalid(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.CreateNote(context.Background(), NoteInput{Kind: models.KindText, Items: []models.ListItem{{Content: "x"}}})
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
	_, err = e.svc.CreateNote(context.Background(), NoteInput{Kind: "drawing"})
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestWritesSurviveCancellation(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := e.svc.CreateNote(ctx, NoteInput{Kind: models.KindText, Title: "kept"})
	if err != nil {
		t.Fatalf("CreateNote with cancelled context: %v", err)
	}
	if _, err := e.svc.GetNote(context.Background(), n.Note.ID); err != nil {
		t.Errorf("note not stored: %v", err)
	}
}

func TestSetStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	n := e.create(t, NoteInput{Kind: models.KindText, Title: "t", Pinned: true})
	if _, err := e.svc.SetReminder(ctx, n.ID, e.clock.Add(time.Hour), ""); err != nil {
		t.Fatalf("SetReminder: %v", err)
	}
	if _, ok := e.rec.alarms[n.ID]; !ok {
		t.Fatal("alarm not set")
	}

	trashed, err := e.svc.SetStatus(ctx, []int64{n.ID}, models.StatusDeleted)
	if err != nil {
		t.Fatalf("SetStatus(deleted): %v", err)
	}
	if trashed[0].Pinned || trashed[0].Reminder != nil {
		t.Errorf("trashed note kept pin or reminder: %+v", trashed[0])
	}
	if _, ok := e.rec.alarms[n.ID]; ok {
		t.Error("alarm kept for trashed note")
	}

	if _, err := e.svc.SetStatus(ctx, []int64{n.ID}, models.StatusArchived); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("archive from trash err = %v, want ErrInvalid", err)
	}
	if _, err := e.svc.SetPinned(ctx, n.ID, true); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("pin in trash err = %v, want ErrInvalid", err)
	}

	restored, err := e.svc.SetStatus(ctx, []int64{n.ID}, models.StatusActive)
	if err != nil || restored[0].Status != models.StatusActive {
		t.Fatalf("restore = %+v, %v", restored, err)
	}
	if _, err := e.svc.SetStatus(ctx, []int64{n.ID, 999}, models.StatusArchived); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	got, _ := e.svc.GetNote(ctx, n.ID)
	if got.Note.Status != models.StatusActive {
		t.Errorf("partial status change applied: %s", got.Note.Status)
	}
}

func TestReminders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	n := e.create(t, NoteInput{Kind: models.KindText, Title: "call"})
	at := e.clock.Add(time.Hour)

	got, err := e.svc.SetReminder(ctx, n.ID, at, "")
	if err != nil {
		t.Fatalf("SetReminder: %v", err)
	}
	if got.Reminder.Count != 1 || !got.Reminder.Next.Equal(at) {
		t.Errorf("reminder = %+v", got.Reminder)
	}

	if _, err := e.svc.PostponeReminder(ctx, n.ID, at); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("postpone to same time err = %v, want ErrInvalid", err)
	}
	later := at.Add(time.Hour)
	got, err = e.svc.PostponeReminder(ctx, n.ID, later)
	if err != nil {
		t.Fatalf("PostponeReminder: %v", err)
	}
	if !got.Reminder.Next.Equal(later) || !got.Reminder.Start.Equal(at) || !e.rec.alarms[n.ID].Equal(later) {
		t.Errorf("postponed reminder = %+v, alarm %v", got.Reminder, e.rec.alarms[n.ID])
	}

	got, err = e.svc.MarkReminderDone(ctx, n.ID)
	if err != nil || !got.Reminder.Done {
		t.Fatalf("MarkReminderDone = %+v, %v", got.Reminder, err)
	}
	if _, ok := e.rec.alarms[n.ID]; ok {
		t.Error("alarm kept for done reminder")
	}
	if _, err := e.svc.PostponeReminder(ctx, n.ID, later.Add(time.Hour)); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("postpone done err = %v, want ErrInvalid", err)
	}

	got, err = e.svc.RemoveReminder(ctx, n.ID)
	if err != nil || got.Reminder != nil {
		t.Errorf("RemoveReminder = %+v, %v", got.Reminder, err)
	}
	if _, err := e.svc.MarkReminderDone(ctx, n.ID); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("done without reminder err = %v, want ErrInvalid", err)
	}
}

func TestReminderFired_Recurring(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	n := e.create(t, NoteInput{Kind: models.KindText, Title: "water plants"})
	start := *e.clock
	if _, err := e.svc.SetReminder(ctx, n.ID, start, "FREQ=DAILY;COUNT=3"); err != nil {
		t.Fatalf("SetReminder: %v", err)
	}
	if _, err := e.svc.PostponeReminder(ctx, n.ID, start.Add(time.Hour)); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("postpone recurring err = %v, want ErrInvalid", err)
	}

	for i := 2; i <= 3; i++ {
		if err := e.svc.ReminderFired(ctx, n.ID); err != nil {
			t.Fatalf("ReminderFired: %v", err)
		}
		got, _ := e.svc.GetNote(ctx, n.ID)
		want := start.AddDate(0, 0, i-1)
		if r := got.Note.Reminder; r.Count != i || !r.Next.Equal(want) || r.Done {
			t.Errorf("after fire %d: reminder = %+v, want next %v", i-1, r, want)
		}
		if !e.rec.alarms[n.ID].Equal(want) {
			t.Errorf("alarm = %v, want %v", e.rec.alarms[n.ID], want)
		}
	}

	// Exhausted: the reminder stays on its last occurrence.
	if err := e.svc.ReminderFired(ctx, n.ID); err != nil {
		t.Fatalf("ReminderFired: %v", err)
	}
	got, _ := e.svc.GetNote(ctx, n.ID)
	if got.Note.Reminder.Count != 3 {
		t.Errorf("count = %d, want 3", got.Note.Reminder.Count)
	}
	fired := 0
	for _, ev := range e.rec.events {
		if ev == sse.EventReminderFired {
			fired++
		}
	}
	if fired != 3 {
		t.Errorf("reminder.fired events = %d, want 3", fired)
	}
}

func TestUpdateAllAlarms(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.create(t, NoteInput{Kind: models.KindText, Title: "a"})
	e.create(t, NoteInput{Kind: models.KindText, Title: "b"})
	if _, err := e.svc.SetReminder(ctx, a.ID, e.clock.Add(time.Hour), ""); err != nil {
		t.Fatalf("SetReminder: %v", err)
	}
	e.rec.alarms = map[int64]time.Time{42: *e.clock}

	if err := e.svc.UpdateAllAlarms(ctx); err != nil {
		t.Fatalf("UpdateAllAlarms: %v", err)
	}
	want := map[int64]time.Time{a.ID: e.clock.Add(time.Hour)}
	if diff := cmp.Diff(want, e.rec.alarms); diff != "" {
		t.Errorf("alarms mismatch (-want +got):\n%s", diff)
	}
}

func TestTrash(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	old := e.create(t, NoteInput{Kind: models.KindText, Title: "old"})
	recent := e.create(t, NoteInput{Kind: models.KindText, Title: "recent"})

	if _, err := e.svc.SetStatus(ctx, []int64{old.ID}, models.StatusDeleted); err != nil {
		t.Fatal(err)
	}
	*e.clock = e.clock.AddDate(0, 0, 6)
	if _, err := e.svc.SetStatus(ctx, []int64{recent.ID}, models.StatusDeleted); err != nil {
		t.Fatal(err)
	}
	*e.clock = e.clock.AddDate(0, 0, 2)

	n, err := e.svc.PurgeTrash(ctx)
	if err != nil || n != 1 {
		t.Fatalf("PurgeTrash = %d, %v; want 1", n, err)
	}
	if _, err := e.svc.GetNote(ctx, old.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("old trashed note still present: %v", err)
	}

	n, err = e.svc.EmptyTrash(ctx)
	if err != nil || n != 1 {
		t.Fatalf("EmptyTrash = %d, %v; want 1", n, err)
	}
	if _, err := e.svc.GetNote(ctx, recent.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("trashed note still present: %v", err)
	}
}

func TestRunTrashPurge_StopsOnCancel(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.svc.RunTrashPurge(ctx, time.Hour) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("RunTrashPurge: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("RunTrashPurge did not stop")
	}
}

func TestLabels(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	work, err := e.svc.CreateLabel(ctx, " work ", false)
	if err != nil || work.Name != "work" {
		t.Fatalf("CreateLabel = %+v, %v", work, err)
	}
	if _, err := e.svc.CreateLabel(ctx, "work", false); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate err = %v, want ErrAlreadyExists", err)
	}
	if _, err := e.svc.CreateLabel(ctx, "   ", false); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("blank err = %v, want ErrInvalid", err)
	}

	n := e.create(t, NoteInput{Kind: models.KindText, Title: "t"})
	got, err := e.svc.SetNoteLabels(ctx, n.ID, []int64{work.ID})
	if err != nil || len(got.Labels) != 1 {
		t.Fatalf("SetNoteLabels = %+v, %v", got, err)
	}
	if err := e.svc.DeleteLabel(ctx, work.ID); err != nil {
		t.Fatalf("DeleteLabel: %v", err)
	}
	got, _ = e.svc.GetNote(ctx, n.ID)
	if len(got.Labels) != 0 {
		t.Errorf("labels after delete = %+v", got.Labels)
	}
}

// listHookRepo runs onList while a note list is being read.
type listHookRepo struct {
	store.Repository
	onList func(f store.Filter)
}

func (r listHookRepo) ListNotes(ctx context.Context, f store.Filter) ([]models.NoteWithLabels, error) {
	r.onList(f)
	return r.Repository.ListNotes(ctx, f)
}

func TestPreviews_SinglePreferencesSnapshot(t *testing.T) {
	ctx := context.Background()
	var svc *Service
	var listedSort models.SortSettings
	repo := listHookRepo{Repository: testutil.TestDB(t)}
	repo.onList = func(f store.Filter) {
		listedSort = f.Sort
		changed := preview.DefaultPreferences()
		changed.MaxPreviewLinesText = 0
		changed.Sort = models.SortSettings{Field: models.SortTitle, Direction: models.SortAsc}
		if _, err := svc.SetPreferences(ctx, changed); err != nil {
			t.Fatal(err)
		}
	}
	before := preview.DefaultPreferences()
	svc = NewService(repo, dailyFinder{limit: 1}, before)
	if _, err := svc.CreateNote(ctx, NoteInput{Kind: models.KindText, Title: "t", Content: "body"}); err != nil {
		t.Fatal(err)
	}

	items, err := svc.Previews(ctx, ListOptions{Status: models.StatusActive})
	if err != nil {
		t.Fatalf("Previews: %v", err)
	}
	if diff := cmp.Diff(before.Sort, listedSort); diff != "" {
		t.Errorf("sort mismatch (-want +got):\n%s", diff)
	}
	text := items[0].(*preview.TextItem)
	if !text.ContentVisible || text.Content.Text != "body" {
		t.Errorf("preview built with changed preferences: %+v", text)
	}
	if svc.Preferences().MaxPreviewLinesText != 0 {
		t.Error("preferences were not changed during the list")
	}
}

func TestPreviews(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	secret, err := e.svc.CreateLabel(ctx, "secret", true)
	if err != nil {
		t.Fatal(err)
	}
	fox := e.create(t, NoteInput{Kind: models.KindText, Title: "Fox", Content: "The quick brown fox"})
	e.create(t, NoteInput{Kind: models.KindText, Title: "Hidden", Content: "brown bag", LabelIDs: []int64{secret.ID}})
	e.create(t, NoteInput{Kind: models.KindText, Title: "Other", Content: "nothing here"})
	if _, err := e.svc.SetReminder(ctx, fox.ID, e.clock.Add(-time.Minute), ""); err != nil {
		t.Fatal(err)
	}

	items, err := e.svc.Previews(ctx, ListOptions{Status: models.StatusActive, Query: "brown"})
	if err != nil {
		t.Fatalf("Previews: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("previews = %d, want 1", len(items))
	}
	text, ok := items[0].(*preview.TextItem)
	if !ok {
		t.Fatalf("preview is %T", items[0])
	}
	if diff := cmp.Diff([]preview.Range{{Start: 10, End: 15}}, text.Content.Ranges); diff != "" {
		t.Errorf("ranges mismatch (-want +got):\n%s", diff)
	}
	if !text.ShowMarkAsDone || text.Reminder == nil {
		t.Errorf("due reminder not flagged: %+v", text.Header)
	}

	items, err = e.svc.Previews(ctx, ListOptions{Status: models.StatusActive, LabelID: secret.ID})
	if err != nil || len(items) != 1 || items[0].Base().Title.Text != "Hidden" {
		t.Errorf("label previews = %v, %v", items, err)
	}
}

func TestPreviews_AppendID(t *testing.T) {
	e := newEnv(t, WithAppendIDToTitle(true))
	n := e.create(t, NoteInput{Kind: models.KindText, Title: "Fox"})
	items, err := e.svc.Previews(context.Background(), ListOptions{Status: models.StatusActive})
	if err != nil || len(items) != 1 {
		t.Fatalf("Previews = %v, %v", items, err)
	}
	if want := "Fox (" + strconv.FormatInt(n.ID, 10) + ")"; items[0].Base().Title.Text != want {
		t.Errorf("title = %q, want %q", items[0].Base().Title.Text, want)
	}
}

func TestSetPreferences(t *testing.T) {
	e := newEnv(t)
	p := preview.DefaultPreferences()
	p.MaxPreviewItemsList = -1
	if _, err := e.svc.SetPreferences(context.Background(), p); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
	p.MaxPreviewItemsList = 2
	p.Layout = preview.LayoutGrid
	if _, err := e.svc.SetPreferences(context.Background(), p); err != nil {
		t.Fatalf("SetPreferences: %v", err)
	}
	if diff := cmp.Diff(p, e.svc.Preferences()); diff != "" {
		t.Errorf("preferences mismatch (-want +got):\n%s", diff)
	}
}

func TestExportImport(t *testing.T) {
	src := newEnv(t)
	ctx := context.Background()
	label, _ := src.svc.CreateLabel(ctx, "home", false)
	src.create(t, NoteInput{Kind: models.KindList, Title: "Shopping", Items: []models.ListItem{{Content: "milk"}, {Content: "eggs", Checked: true}}, LabelIDs: []int64{label.ID}})
	src.create(t, NoteInput{Kind: models.KindText, Title: "Plan", Content: "write tests"})

	_, dir := testutil.TestDir(t)
	n, err := src.svc.Export(ctx, dir)
	if err != nil || n != 2 {
		t.Fatalf("Export = %d, %v", n, err)
	}

	dst := newEnv(t)
	n, err = dst.svc.ImportDir(ctx, dir)
	if err != nil || n != 2 {
		t.Fatalf("ImportDir = %d, %v", n, err)
	}
	notes, err := dst.svc.ListNotes(ctx, ListOptions{Status: models.StatusActive})
	if err != nil || len(notes) != 2 {
		t.Fatalf("ListNotes = %d, %v", len(notes), err)
	}
	for _, got := range notes {
		if got.Note.Title == "Shopping" {
			if len(got.Labels) != 1 || got.Labels[0].Name != "home" {
				t.Errorf("labels = %+v", got.Labels)
			}
			if diff := cmp.Diff([]models.ListItem{{Content: "milk"}, {Content: "eggs", Checked: true}}, got.Note.Items); diff != "" {
				t.Errorf("items mismatch (-want +got):\n%s", diff)
			}
		}
	}
}
