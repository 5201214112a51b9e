package tasks

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sandeepkv93/taskline/internal/logging"
	"github.com/sandeepkv93/taskline/internal/model"
	"github.com/sandeepkv93/taskline/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 2, 9, hour, minute, 0, 0, time.UTC)
}

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%02d", n)
	}
}

func newTestStore(t *testing.T, docs storage.Documents, opts ...Option) (*Store, *FakeClock) {
	t.Helper()
	clock := NewFakeClock(at(9, 0))
	base := []Option{
		WithClock(clock),
		WithLocation(time.UTC),
		WithDebounce(0),
		WithIDGenerator(seqIDs()),
	}
	s := New(docs, append(base, opts...)...)
	require.NoError(t, s.Load(context.Background()))
	return s, clock
}

func mustCreate(t *testing.T, s *Store, title string, start time.Time, d time.Duration) model.Task {
	t.Helper()
	created, err := s.Create(context.Background(), NewTask{Title: title, StartTime: start, Duration: d})
	require.NoError(t, err)
	return created
}

func TestCreateFillsDefaultsAndNextSlot(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemoryDocuments())

	first := mustCreate(t, s, "Write report", time.Time{}, 0)
	assert.Equal(t, at(9, 0), first.StartTime)
	assert.Equal(t, 45*time.Minute, first.Duration)
	assert.Equal(t, at(9, 45), first.NextStartTime)
	assert.Equal(t, "2026-02-09", first.TaskDate)
	assert.Equal(t, "09:00", first.Time)
	assert.Equal(t, model.PriorityNone, first.Priority)
	assert.Equal(t, model.CategoryWork, first.Category)
	assert.False(t, first.IsFocused)

	second := mustCreate(t, s, "Review", time.Time{}, 0)
	assert.Equal(t, at(9, 45), second.StartTime)
}

func TestCreateRejectsBlankTitle(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemoryDocuments())
	_, err := s.Create(context.Background(), NewTask{Title: "  "})
	assert.Error(t, err)
	assert.Empty(t, s.Tasks())
}

func TestCreateSplitsMultiDayTask(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemoryDocuments())

	created := mustCreate(t, s, "Offsite", at(8, 0), 30*time.Hour)
	assert.Equal(t, "id-01", created.ID)

	all := s.Tasks()
	require.Len(t, all, 2)
	assert.Equal(t, at(8, 0), all[0].StartTime)
	assert.Equal(t, time.Date(2026, 2, 9, 23, 59, 59, int(999*time.Millisecond), time.UTC), all[0].NextStartTime)
	assert.Equal(t, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC), all[1].StartTime)
	assert.Equal(t, time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC), all[1].NextStartTime)
	assert.Equal(t, all[0].MultiDaySetID, all[1].MultiDaySetID)
	assert.Equal(t, "id-01", all[1].OriginalTaskID)
	assert.Equal(t, "2026-02-10", all[1].TaskDate)
}

func TestUpdateRecomputesDerivedFieldsAndAutoFocuses(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemoryDocuments())
	ctx := context.Background()

	a := mustCreate(t, s, "A", at(10, 0), 0)
	b := mustCreate(t, s, "B", at(8, 30), time.Hour)

	start := at(8, 45)
	updated, err := s.Update(ctx, a.ID, Patch{StartTime: &start})
	require.NoError(t, err)
	assert.Equal(t, "08:45", updated.Time)
	assert.Equal(t, at(9, 30), updated.NextStartTime)
	assert.True(t, updated.IsFocused)

	longer := 90 * time.Minute
	_, err = s.Update(ctx, b.ID, Patch{Duration: &longer})
	require.NoError(t, err)

	focused, ok := s.Focused()
	require.True(t, ok)
	assert.Equal(t, b.ID, focused.ID)
	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.False(t, got.IsFocused)
}

func TestUpdateWithoutTimeChangeSkipsAutoFocus(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemoryDocuments())
	a := mustCreate(t, s, "A", at(8, 45), 0)

	title := "Renamed"
	updated, err := s.Update(context.Background(), a.ID, Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	_, ok := s.Focused()
	assert.False(t, ok)
}

func TestUpdateRejectsEndBeforeStart(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemoryDocuments())
	a := mustCreate(t, s, "A", at(10, 0), 0)

	end := at(7, 0)
	_, err := s.Update(context.Background(), a.ID, Patch{EndTime: &end})
	assert.ErrorIs(t, err, ErrInvalidTimes)

	_, err = s.Update(context.Background(), "missing", Patch{EndTime: &end})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoveShiftsOverlappingOpenTasks(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemoryDocuments())
	ctx := context.Background()

	a := mustCreate(t, s, "A", at(10, 0), 0)
	b := mustCreate(t, s, "B", at(11, 0), 0)
	done := mustCreate(t, s, "Done", at(11, 0), 0)
	later := mustCreate(t, s, "Later", at(12, 0), 0)
	_, err := s.ToggleComplete(ctx, done.ID)
	require.NoError(t, err)

	moved, shifts, err := s.Move(ctx, a.ID, at(10, 50))
	require.NoError(t, err)
	assert.Equal(t, "10:50", moved.Time)
	require.Len(t, shifts, 1)
	assert.Equal(t, b.ID, shifts[0].TaskID)

	gotB, _ := s.Get(b.ID)
	assert.Equal(t, at(11, 35), gotB.StartTime)
	assert.Equal(t, at(12, 20), gotB.NextStartTime)
	gotDone, _ := s.Get(done.ID)
	assert.Equal(t, at(11, 0), gotDone.StartTime)
	gotLater, _ := s.Get(later.ID)
	assert.Equal(t, at(12, 0), gotLater.StartTime)
}

func TestFocusMovesTaskToNowAndIsExclusive(t *testing.T) {
	s, clock := newTestStore(t, storage.NewMemoryDocuments())
	ctx := context.Background()
	clock.Set(at(9, 0).Add(30 * time.Second))

	a := mustCreate(t, s, "A", at(14, 0), 0)
	b := mustCreate(t, s, "B", at(9, 0), 30*time.Minute)

	focused, shifts, err := s.Focus(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, at(9, 0), focused.StartTime)
	assert.True(t, focused.IsFocused)
	require.Len(t, shifts, 1)
	gotB, _ := s.Get(b.ID)
	assert.Equal(t, at(9, 45), gotB.StartTime)

	c := mustCreate(t, s, "C", at(16, 0), 0)
	_, _, err = s.Focus(ctx, c.ID)
	require.NoError(t, err)
	current, ok := s.Focused()
	require.True(t, ok)
	assert.Equal(t, c.ID, current.ID)
	gotA, _ := s.Get(a.ID)
	assert.False(t, gotA.IsFocused)

	require.NoError(t, s.Unfocus(ctx))
	_, ok = s.Focused()
	assert.False(t, ok)
}

func TestFocusRejectsCompletedTask(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemoryDocuments())
	a := mustCreate(t, s, "A", at(14, 0), 0)
	_, err := s.ToggleComplete(context.Background(), a.ID)
	require.NoError(t, err)

	_, _, err = s.Focus(context.Background(), a.ID)
	assert.ErrorIs(t, err, ErrCompleted)
}

func TestToggleCompleteWithSubtasks(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemoryDocuments())
	ctx := context.Background()
	created, err := s.Create(ctx, NewTask{Title: "Ship", StartTime: at(10, 0), Subtasks: []string{"code", "test", "docs"}})
	require.NoError(t, err)

	toggled, err := s.ToggleSubtask(ctx, created.ID, "1")
	require.NoError(t, err)
	assert.Equal(t, 33, toggled.Progress)

	done, err := s.ToggleComplete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Equal(t, 100, done.Progress)
	for _, st := range done.Subtasks {
		assert.True(t, st.IsCompleted)
	}

	reopened, err := s.ToggleComplete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, reopened.Completed)
	assert.Equal(t, 100, reopened.Progress)

	toggled, err = s.ToggleSubtask(ctx, created.ID, created.Subtasks[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 66, toggled.Progress)
}

func TestToggleCompleteWithoutSubtasksDropsStaleProgress(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemoryDocuments())
	ctx := context.Background()
	a := mustCreate(t, s, "A", at(9, 0), 0)
	_, _, err := s.Focus(ctx, a.ID)
	require.NoError(t, err)

	done, err := s.ToggleComplete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, done.Progress)
	assert.False(t, done.IsFocused)
	_, ok := s.Focused()
	assert.False(t, ok)

	reopened, err := s.ToggleComplete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, reopened.Progress)
}

func TestAddSubtaskKeepsOrder(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemoryDocuments())
	ctx := context.Background()
	a := mustCreate(t, s, "A", at(10, 0), 0)

	first, err := s.AddSubtask(ctx, a.ID, "outline")
	require.NoError(t, err)
	second, err := s.AddSubtask(ctx, a.ID, "draft")
	require.NoError(t, err)
	assert.Equal(t, 0, first.Order)
	assert.Equal(t, 1, second.Order)

	_, err = s.AddSubtask(ctx, a.ID, " ")
	assert.Error(t, err)
	_, err = s.ToggleSubtask(ctx, a.ID, "9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRemovesCanvasAndReminders(t *testing.T) {
	docs := storage.NewMemoryDocuments()
	s, _ := newTestStore(t, docs)
	ctx := context.Background()

	a := mustCreate(t, s, "A", at(10, 0), 0)
	b := mustCreate(t, s, "B", at(11, 0), 0)
	_, err := s.AddReminder(ctx, a.ID, at(9, 55))
	require.NoError(t, err)
	keep, err := s.AddReminder(ctx, b.ID, at(10, 55))
	require.NoError(t, err)
	require.NoError(t, s.SaveCanvas(a.ID, []byte(`{"elements":[]}`)))
	_, err = docs.Get(ctx, storage.CanvasKey(a.ID))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, a.ID))

	_, err = docs.Get(ctx, storage.CanvasKey(a.ID))
	assert.ErrorIs(t, err, storage.ErrNotFound)
	reminders := s.Reminders()
	require.Len(t, reminders, 1)
	assert.Equal(t, keep.ID, reminders[0].ID)
	_, err = s.Get(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, a.ID), ErrNotFound)
}

func TestResolveByPrefix(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemoryDocuments())
	mustCreate(t, s, "A", at(10, 0), 0)
	mustCreate(t, s, "B", at(11, 0), 0)

	got, err := s.Resolve("id-02")
	require.NoError(t, err)
	assert.Equal(t, "B", got.Title)

	_, err = s.Resolve("id-0")
	assert.ErrorIs(t, err, ErrAmbiguous)
	_, err = s.Resolve("zz")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Resolve("")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	docs := storage.NewMemoryDocuments()
	s, _ := newTestStore(t, docs)
	ctx := context.Background()

	due := time.Date(2026, 2, 12, 17, 0, 0, int(123*time.Millisecond), time.UTC)
	created, err := s.Create(ctx, NewTask{
		Title:     "Plan",
		Emoji:     "🗓",
		StartTime: at(9, 0),
		Duration:  time.Hour,
		DueDate:   &due,
		Priority:  model.PriorityHigh,
		Category:  model.CategoryPassion,
		Subtasks:  []string{"one"},
	})
	require.NoError(t, err)
	_, _, err = s.Focus(ctx, created.ID)
	require.NoError(t, err)

	reloaded, _ := newTestStore(t, docs)
	got, err := reloaded.Get(created.ID)
	require.NoError(t, err)
	assert.True(t, got.StartTime.Equal(created.StartTime))
	assert.True(t, got.NextStartTime.Equal(created.NextStartTime))
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))
	assert.Equal(t, model.PriorityHigh, got.Priority)
	assert.Equal(t, model.CategoryPassion, got.Category)
	assert.Equal(t, "🗓", got.Emoji)
	require.Len(t, got.Subtasks, 1)
	assert.Equal(t, "one", got.Subtasks[0].Title)

	focused, ok := reloaded.Focused()
	require.True(t, ok)
	assert.Equal(t, created.ID, focused.ID)
}

func TestLoadDropsEntriesWithUnparsableDates(t *testing.T) {
	docs := storage.NewMemoryDocuments()
	ctx := context.Background()
	require.NoError(t, docs.Put(ctx, storage.KeyTasks, []byte(`[
		{"id":"good","title":"Good","startTime":"2026-02-09T10:00:00.000Z","nextStartTime":"2026-02-09T10:45:00.000Z","duration":2700000,"priority":"low","category":"work"},
		{"id":"bad","title":"Bad","startTime":"yesterday-ish","duration":2700000},
		42
	]`)))
	require.NoError(t, docs.Put(ctx, storage.KeyReminders, []byte(`[
		{"id":"r1","taskId":"good","title":"Good","triggerTime":"2026-02-09T09:55:00Z","enabled":true},
		{"id":"r2","taskId":"good","title":"Good","triggerTime":"soon","enabled":true}
	]`)))

	var buf bytes.Buffer
	s, _ := newTestStore(t, docs, WithLogger(logging.New(&buf, "warn")))

	all := s.Tasks()
	require.Len(t, all, 1)
	assert.Equal(t, "good", all[0].ID)
	assert.Equal(t, "2026-02-09", all[0].TaskDate)
	assert.Equal(t, "10:00", all[0].Time)
	assert.Len(t, s.Reminders(), 1)
	assert.Contains(t, buf.String(), "dropping task with invalid data")
	assert.Contains(t, buf.String(), "dropping malformed task")
	assert.Contains(t, buf.String(), "dropping reminder with invalid data")
}

func TestLoadIgnoresUnreadableTaskList(t *testing.T) {
	docs := storage.NewMemoryDocuments()
	require.NoError(t, docs.Put(context.Background(), storage.KeyTasks, []byte(`{not json`)))
	s, _ := newTestStore(t, docs)
	assert.Empty(t, s.Tasks())
}

func TestLoadKeepsSingleFocus(t *testing.T) {
	docs := storage.NewMemoryDocuments()
	ctx := context.Background()
	require.NoError(t, docs.Put(ctx, storage.KeyTasks, []byte(`[
		{"id":"a","title":"A","startTime":"2026-02-09T10:00:00Z","duration":1800000,"isFocused":true},
		{"id":"b","title":"B","startTime":"2026-02-09T11:00:00Z","duration":1800000,"isFocused":true}
	]`)))
	require.NoError(t, docs.Put(ctx, storage.KeyFocusedTaskID, []byte(`"b"`)))

	s, _ := newTestStore(t, docs)
	focused, ok := s.Focused()
	require.True(t, ok)
	assert.Equal(t, "b", focused.ID)
	a, err := s.Get("a")
	require.NoError(t, err)
	assert.False(t, a.IsFocused)
}

func TestSaveNotesIsDebounced(t *testing.T) {
	docs := storage.NewMemoryDocuments()
	s, _ := newTestStore(t, docs, WithDebounce(time.Hour))
	ctx := context.Background()
	a := mustCreate(t, s, "A", at(10, 0), 0)

	require.NoError(t, s.SaveNotes(a.ID, "draft 1"))
	require.NoError(t, s.SaveNotes(a.ID, "draft 2"))
	got, _ := s.Get(a.ID)
	assert.Equal(t, "draft 2", got.Notes)

	doc, err := docs.Get(ctx, storage.KeyTasks)
	require.NoError(t, err)
	assert.NotContains(t, string(doc.Body), "draft")

	s.Flush()
	doc, err = docs.Get(ctx, storage.KeyTasks)
	require.NoError(t, err)
	assert.Contains(t, string(doc.Body), "draft 2")
	assert.NotContains(t, string(doc.Body), "draft 1")

	assert.ErrorIs(t, s.SaveNotes("missing", "x"), ErrNotFound)
}

func TestCanvasIsDebouncedAndReadable(t *testing.T) {
	docs := storage.NewMemoryDocuments()
	s, _ := newTestStore(t, docs, WithDebounce(time.Hour))
	ctx := context.Background()
	a := mustCreate(t, s, "A", at(10, 0), 0)

	none, err := s.Canvas(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, s.SaveCanvas(a.ID, []byte("scene-v1")))
	scene, err := s.Canvas(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "scene-v1", string(scene))
	_, err = docs.Get(ctx, storage.CanvasKey(a.ID))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Close())
	doc, err := docs.Get(ctx, storage.CanvasKey(a.ID))
	require.NoError(t, err)
	assert.Equal(t, "scene-v1", string(doc.Body))
}

func TestFlagsPersist(t *testing.T) {
	docs := storage.NewMemoryDocuments()
	s, _ := newTestStore(t, docs)
	require.NoError(t, s.SetFlag(context.Background(), "gaps", true))
	assert.True(t, s.Flag("gaps"))

	reloaded, _ := newTestStore(t, docs)
	assert.True(t, reloaded.Flag("gaps"))
	assert.False(t, reloaded.Flag("other"))
}

func TestDayInterleavesGaps(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemoryDocuments())
	a := mustCreate(t, s, "A", at(10, 0), 0)
	b := mustCreate(t, s, "B", at(11, 0), 0)
	mustCreate(t, s, "Tomorrow", at(10, 0).AddDate(0, 0, 1), 0)

	entries := s.Day(at(0, 0))
	require.Len(t, entries, 4)
	assert.Equal(t, a.ID, entries[0].ID)
	assert.True(t, entries[1].IsGap)
	assert.Equal(t, model.GapFreeSlot, entries[1].GapType)
	assert.Equal(t, 15*time.Minute, entries[1].Duration)
	assert.Equal(t, b.ID, entries[2].ID)
	assert.True(t, entries[3].IsGap)

	again := s.Day(at(0, 0))
	assert.Equal(t, entries, again)
	hits, _ := s.CacheStats()
	assert.Equal(t, uint64(1), hits)
}

func TestNextAvailableSlot(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemoryDocuments())
	mustCreate(t, s, "A", at(9, 0), time.Hour)

	slot, ok := s.NextAvailableSlot(at(0, 0), 30*time.Minute)
	require.True(t, ok)
	assert.Equal(t, at(10, 0), slot)
}

func day(d, hour, minute int) time.Time {
	return time.Date(2026, 2, d, hour, minute, 0, 0, time.UTC)
}

func TestUpdateResplitsWholeMultiDaySet(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemoryDocuments())
	ctx := context.Background()

	trip := mustCreate(t, s, "Trip", at(8, 0), 30*time.Hour)
	setID := trip.MultiDaySetID
	all := s.Tasks()
	require.Len(t, all, 2)
	_, err := s.AddReminder(ctx, all[1].ID, day(10, 7, 0))
	require.NoError(t, err)

	longer := 48 * time.Hour
	updated, err := s.Update(ctx, trip.ID, Patch{Duration: &longer})
	require.NoError(t, err)
	assert.Equal(t, trip.ID, updated.ID)

	all = s.Tasks()
	require.Len(t, all, 3)
	days := make(map[string]int)
	for i, seg := range all {
		assert.Equal(t, setID, seg.MultiDaySetID)
		assert.Equal(t, i+1, seg.MultiDaySequence)
		days[seg.TaskDate]++
		if i > 0 {
			assert.False(t, seg.StartTime.Before(all[i-1].NextStartTime), "segment %d overlaps the previous one", i+1)
		}
	}
	assert.Equal(t, map[string]int{"2026-02-09": 1, "2026-02-10": 1, "2026-02-11": 1}, days)
	assert.Equal(t, day(11, 8, 0), all[2].NextStartTime)

	reminders := s.Reminders()
	require.Len(t, reminders, 1)
	assert.Equal(t, trip.ID, reminders[0].TaskID)

	shorter := time.Hour
	_, err = s.Update(ctx, trip.ID, Patch{Duration: &shorter})
	require.NoError(t, err)
	all = s.Tasks()
	require.Len(t, all, 1)
	assert.Equal(t, trip.ID, all[0].ID)
	assert.False(t, all[0].IsPartOfMultiDay)
	assert.Empty(t, all[0].MultiDaySetID)
	assert.Empty(t, all[0].OriginalTaskID)
	assert.Equal(t, at(9, 0), all[0].NextStartTime)
}

func TestUpdatingLaterSegmentMovesWholeSet(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemoryDocuments())
	ctx := context.Background()

	trip := mustCreate(t, s, "Trip", at(8, 0), 30*time.Hour)
	second := s.Tasks()[1]

	start := at(10, 0)
	updated, err := s.Update(ctx, second.ID, Patch{StartTime: &start})
	require.NoError(t, err)
	assert.Equal(t, trip.ID, updated.ID)

	all := s.Tasks()
	require.Len(t, all, 2)
	assert.Equal(t, at(10, 0), all[0].StartTime)
	assert.Equal(t, day(10, 0, 0), all[1].StartTime)
	assert.Equal(t, day(10, 16, 0), all[1].NextStartTime)
	_, err = s.Get(second.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSegmentRemovesWholeSet(t *testing.T) {
	docs := storage.NewMemoryDocuments()
	s, _ := newTestStore(t, docs)
	ctx := context.Background()

	trip := mustCreate(t, s, "Trip", at(8, 0), 30*time.Hour)
	other := mustCreate(t, s, "Other", day(11, 10, 0), 0)
	second := s.Tasks()[1]
	require.Equal(t, trip.MultiDaySetID, second.MultiDaySetID)
	assert.Equal(t, []string{trip.ID, second.ID}, s.SegmentIDs(second.ID))
	assert.Equal(t, []string{other.ID}, s.SegmentIDs(other.ID))

	_, err := s.AddReminder(ctx, trip.ID, at(7, 55))
	require.NoError(t, err)
	_, err = s.AddReminder(ctx, second.ID, day(10, 7, 0))
	require.NoError(t, err)
	require.NoError(t, s.SaveCanvas(second.ID, []byte("scene")))

	require.NoError(t, s.Delete(ctx, trip.ID))

	all := s.Tasks()
	require.Len(t, all, 1)
	assert.Equal(t, other.ID, all[0].ID)
	assert.Empty(t, s.Reminders())
	_, err = docs.Get(ctx, storage.CanvasKey(second.ID))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMoveAutoFocusesShiftedTaskCoveringNow(t *testing.T) {
	s, _ := newTestStore(t, storage.NewMemoryDocuments())
	ctx := context.Background()

	a := mustCreate(t, s, "A", at(11, 0), 0)
	b := mustCreate(t, s, "B", at(8, 30), time.Hour)
	_, ok := s.Focused()
	require.False(t, ok)

	moved, shifts, err := s.Move(ctx, a.ID, at(8, 0))
	require.NoError(t, err)
	assert.False(t, moved.IsFocused)
	require.Len(t, shifts, 1)

	focused, ok := s.Focused()
	require.True(t, ok)
	assert.Equal(t, b.ID, focused.ID)
	assert.Equal(t, at(8, 45), focused.StartTime)
}

func TestCanvasWriteSkipsDeletedTask(t *testing.T) {
	docs := storage.NewMemoryDocuments()
	s, _ := newTestStore(t, docs, WithDebounce(time.Hour))
	ctx := context.Background()

	a := mustCreate(t, s, "A", at(10, 0), 0)
	require.NoError(t, s.Delete(ctx, a.ID))

	s.mu.Lock()
	s.canvas[a.ID] = []byte("late scene")
	s.mu.Unlock()
	s.persistCanvas(a.ID)

	_, err := docs.Get(ctx, storage.CanvasKey(a.ID))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
