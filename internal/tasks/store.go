// Package tasks owns the in-memory task list and mirrors every mutation to
// the document store.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/sandeepkv93/taskline/internal/logging"
	"github.com/sandeepkv93/taskline/internal/model"
	"github.com/sandeepkv93/taskline/internal/storage"
	"github.com/sandeepkv93/taskline/internal/timeline"
)

var (
	ErrNotFound         = errors.New("tasks: task not found")
	ErrAmbiguous        = errors.New("tasks: ambiguous task reference")
	ErrCompleted        = errors.New("tasks: task is completed")
	ErrInvalidTimes     = errors.New("tasks: invalid task times")
	ErrReminderNotFound = errors.New("tasks: reminder not found")
)

type Option func(*Store)

func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

func WithDefaultDuration(d time.Duration) Option {
	return func(s *Store) { s.defaultDuration = d }
}

// WithDebounce sets the idle delay before notes and canvas writes reach the
// document store.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) { s.debounceDelay = d }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

type Store struct {
	mu              sync.Mutex
	docs            storage.Documents
	clock           Clock
	logger          *log.Logger
	loc             *time.Location
	defaultDuration time.Duration
	debounceDelay   time.Duration
	newID           func() string
	cache           *timeline.Cache
	debounce        *Debouncer

	tasks     []model.Task
	reminders []model.Reminder
	focusedID string
	flags     map[string]bool
	canvas    map[string][]byte
	lastErr   error
}

func New(docs storage.Documents, opts ...Option) *Store {
	s := &Store{
		docs:            docs,
		clock:           RealClock{},
		logger:          logging.Discard(),
		loc:             time.Local,
		defaultDuration: model.DefaultDuration,
		debounceDelay:   time.Second,
		newID:           uuid.NewString,
		cache:           timeline.NewCache(0),
		flags:           make(map[string]bool),
		canvas:          make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaultDuration <= 0 {
		s.defaultDuration = model.DefaultDuration
	}
	s.debounce = NewDebouncer(s.debounceDelay)
	return s
}

func (s *Store) now() time.Time {
	return s.clock.Now().In(s.loc)
}

func (s *Store) Location() *time.Location {
	return s.loc
}

// Load replaces the in-memory state with what the document store holds.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.loadTasks(ctx)
	if err != nil {
		return err
	}
	reminders, err := s.loadReminders(ctx)
	if err != nil {
		return err
	}
	focused, err := s.loadFocused(ctx)
	if err != nil {
		return err
	}
	flags, err := s.loadFlags(ctx)
	if err != nil {
		return err
	}

	s.tasks = loaded
	s.reminders = reminders
	s.flags = flags
	s.normalizeFocusLocked(focused)
	s.logger.Debug("store loaded", "tasks", len(s.tasks), "reminders", len(s.reminders))
	return nil
}

func (s *Store) loadTasks(ctx context.Context) ([]model.Task, error) {
	doc, err := s.docs.Get(ctx, storage.KeyTasks)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tasks: load: %w", err)
	}
	out, err := DecodeTasks(doc.Body, s.loc, s.logger)
	if err != nil {
		s.logger.Warn("ignoring unreadable task list", "err", err)
		return nil, nil
	}
	return out, nil
}

func (s *Store) loadReminders(ctx context.Context) ([]model.Reminder, error) {
	doc, err := s.docs.Get(ctx, storage.KeyReminders)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tasks: load reminders: %w", err)
	}
	out, err := DecodeReminders(doc.Body, s.loc, s.logger)
	if err != nil {
		s.logger.Warn("ignoring unreadable reminder list", "err", err)
		return nil, nil
	}
	return out, nil
}

func (s *Store) loadFocused(ctx context.Context) (string, error) {
	doc, err := s.docs.Get(ctx, storage.KeyFocusedTaskID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("tasks: load focus: %w", err)
	}
	var id string
	if err := json.Unmarshal(doc.Body, &id); err != nil {
		s.logger.Warn("ignoring unreadable focused task id", "err", err)
		return "", nil
	}
	return id, nil
}

func (s *Store) loadFlags(ctx context.Context) (map[string]bool, error) {
	keys, err := s.docs.Keys(ctx, storage.CollapsedKey(""))
	if err != nil {
		return nil, fmt.Errorf("tasks: load flags: %w", err)
	}
	flags := make(map[string]bool, len(keys))
	for _, key := range keys {
		doc, err := s.docs.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("tasks: load flag %s: %w", key, err)
		}
		var v bool
		if err := json.Unmarshal(doc.Body, &v); err != nil {
			s.logger.Warn("ignoring unreadable flag", "key", key, "err", err)
			continue
		}
		flags[strings.TrimPrefix(key, storage.CollapsedKey(""))] = v
	}
	return flags, nil
}

// normalizeFocusLocked leaves at most one task focused: the persisted id when
// it still names an open task, else the first task already marked focused.
func (s *Store) normalizeFocusLocked(persisted string) {
	target := ""
	if idx := s.indexLocked(persisted); idx >= 0 && !s.tasks[idx].Completed {
		target = persisted
	} else {
		for _, t := range s.tasks {
			if t.IsFocused && !t.Completed {
				target = t.ID
				break
			}
		}
	}
	s.focusLocked(target)
}

func (s *Store) saveLocked(ctx context.Context) error {
	body, err := EncodeTasks(s.tasks)
	if err != nil {
		return fmt.Errorf("tasks: encode: %w", err)
	}
	if err := s.docs.Put(ctx, storage.KeyTasks, body); err != nil {
		return fmt.Errorf("tasks: save: %w", err)
	}
	body, err = EncodeReminders(s.reminders)
	if err != nil {
		return fmt.Errorf("tasks: encode reminders: %w", err)
	}
	if err := s.docs.Put(ctx, storage.KeyReminders, body); err != nil {
		return fmt.Errorf("tasks: save reminders: %w", err)
	}
	body, err = json.Marshal(s.focusedID)
	if err != nil {
		return err
	}
	if err := s.docs.Put(ctx, storage.KeyFocusedTaskID, body); err != nil {
		return fmt.Errorf("tasks: save focus: %w", err)
	}
	return nil
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) getLocked(id string) (int, error) {
	idx := s.indexLocked(id)
	if idx < 0 {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return idx, nil
}

func (s *Store) focusLocked(id string) {
	s.focusedID = id
	for i := range s.tasks {
		s.tasks[i].IsFocused = id != "" && s.tasks[i].ID == id
	}
}

// derive fills the fields computed from the start time and subtasks.
func (s *Store) derive(t *model.Task) {
	if t.HasStart() {
		t.StartTime = t.StartTime.In(s.loc)
		t.NextStartTime = t.StartTime.Add(t.Duration)
		t.TaskDate = model.DayKey(t.StartTime)
		t.Time = t.StartTime.Format(model.TimeKeyLayout)
	}
	t.Progress = t.ComputeProgress()
}

// spliceLocked stores t at idx, or appends it when idx is negative, splitting
// it into day segments when it spans whole days.
func (s *Store) spliceLocked(idx int, t model.Task) model.Task {
	segments, split := timeline.SplitMultiDay(t, s.newID)
	if split {
		s.logger.Debug("split multi-day task", "id", t.ID, "segments", len(segments))
	}
	if idx < 0 {
		s.tasks = append(s.tasks, segments...)
		return segments[0].Clone()
	}
	rest := append([]model.Task(nil), s.tasks[idx+1:]...)
	s.tasks = append(append(s.tasks[:idx], segments...), rest...)
	return segments[0].Clone()
}

// NewTask holds the user-supplied fields of a task being created.
type NewTask struct {
	Title       string
	Notes       string
	Emoji       string
	StartTime   time.Time
	Duration    time.Duration
	DueDate     *time.Time
	Priority    model.Priority
	Category    model.Category
	IsTimeFixed bool
	Subtasks    []string
}

// Create adds a task. A zero start places it in the next free slot today.
func (s *Store) Create(ctx context.Context, in NewTask) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Duration < 0 {
		return model.Task{}, fmt.Errorf("%w: negative duration %s", ErrInvalidTimes, in.Duration)
	}
	now := s.now()
	t := model.Task{
		ID:          s.newID(),
		Title:       strings.TrimSpace(in.Title),
		Notes:       in.Notes,
		Emoji:       in.Emoji,
		StartTime:   in.StartTime,
		Duration:    in.Duration,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
		Category:    in.Category,
		IsTimeFixed: in.IsTimeFixed,
		CreatedAt:   now,
	}
	if t.Duration == 0 {
		t.Duration = s.defaultDuration
	}
	if t.Priority == "" {
		t.Priority = model.PriorityNone
	}
	if t.Category == "" {
		t.Category = model.CategoryWork
	}
	if t.StartTime.IsZero() {
		slot, ok := timeline.FindNextAvailableSlot(s.tasks, now, t.Duration, now)
		if !ok {
			slot = now.Truncate(time.Minute)
		}
		t.StartTime = slot
	}
	for i, title := range in.Subtasks {
		if title = strings.TrimSpace(title); title == "" {
			continue
		}
		t.Subtasks = append(t.Subtasks, model.Subtask{ID: s.newID(), Title: title, Order: i})
	}
	s.derive(&t)
	if err := t.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("tasks: create: %w", err)
	}

	created := s.spliceLocked(-1, t)
	if err := s.saveLocked(ctx); err != nil {
		return model.Task{}, err
	}
	s.logger.Info("task created", "id", created.ID, "title", created.Title, "start", created.Time)
	return created, nil
}

// Patch lists field updates; nil fields are left alone. When both EndTime and
// Duration are set, EndTime wins.
type Patch struct {
	Title        *string
	Notes        *string
	Emoji        *string
	StartTime    *time.Time
	EndTime      *time.Time
	Duration     *time.Duration
	DueDate      *time.Time
	ClearDueDate bool
	Priority     *model.Priority
	Category     *model.Category
	IsTimeFixed  *bool
}

func (p Patch) touchesTime() bool {
	return p.StartTime != nil || p.EndTime != nil || p.Duration != nil
}

func (s *Store) Update(ctx context.Context, id string, p Patch) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.updateLocked(ctx, id, p)
	if err != nil {
		return model.Task{}, err
	}
	if err := s.saveLocked(ctx); err != nil {
		return model.Task{}, err
	}
	return updated, nil
}

func (s *Store) updateLocked(ctx context.Context, id string, p Patch) (model.Task, error) {
	idx, err := s.getLocked(id)
	if err != nil {
		return model.Task{}, err
	}
	t := s.tasks[idx].Clone()
	// A time change re-splits the whole multi-day set from one span.
	var siblings []string
	if p.touchesTime() && t.MultiDaySetID != "" {
		t, siblings = s.spanLocked(t.MultiDaySetID)
	}

	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Emoji != nil {
		t.Emoji = *p.Emoji
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.IsTimeFixed != nil {
		t.IsTimeFixed = *p.IsTimeFixed
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}

	if p.StartTime != nil {
		t.StartTime = *p.StartTime
	}
	switch {
	case p.EndTime != nil:
		if !t.HasStart() {
			return model.Task{}, fmt.Errorf("%w: end set on a task without a start", ErrInvalidTimes)
		}
		if p.EndTime.Before(t.StartTime) {
			return model.Task{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidTimes,
				p.EndTime.Format(time.RFC3339), t.StartTime.Format(time.RFC3339))
		}
		t.Duration = p.EndTime.Sub(t.StartTime)
	case p.Duration != nil:
		if *p.Duration < 0 {
			return model.Task{}, fmt.Errorf("%w: negative duration %s", ErrInvalidTimes, *p.Duration)
		}
		t.Duration = *p.Duration
	}

	s.derive(&t)
	if err := t.Validate(); err != nil {
		return model.Task{}, fmt.Errorf("tasks: update %s: %w", id, err)
	}

	if len(siblings) > 0 {
		if err := s.dropLocked(ctx, siblings, t.ID); err != nil {
			return model.Task{}, err
		}
		idx = s.indexLocked(t.ID)
	}
	if t.MultiDaySetID != "" && !t.IsPartOfMultiDay && !timeline.IsMultiDay(t) {
		t.MultiDaySetID = ""
	}
	updated := s.spliceLocked(idx, t)
	if p.touchesTime() {
		s.autoFocusLocked(updated)
		if i := s.indexLocked(updated.ID); i >= 0 {
			updated = s.tasks[i].Clone()
		}
	}
	return updated, nil
}

// autoFocusLocked focuses t exclusively when now falls inside its interval.
func (s *Store) autoFocusLocked(t model.Task) {
	if t.Completed || !t.HasStart() {
		return
	}
	now := s.now()
	if !now.Before(t.StartTime) && now.Before(t.End()) {
		s.focusLocked(t.ID)
	}
}

// Move places the task at newStart, keeping its duration, and pushes back
// every open task it now overlaps.
func (s *Store) Move(ctx context.Context, id string, newStart time.Time) (model.Task, []timeline.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved, shifts, err := s.moveLocked(ctx, id, newStart)
	if err != nil {
		return model.Task{}, nil, err
	}
	if err := s.saveLocked(ctx); err != nil {
		return model.Task{}, nil, err
	}
	return moved, shifts, nil
}

func (s *Store) moveLocked(ctx context.Context, id string, newStart time.Time) (model.Task, []timeline.Shift, error) {
	if newStart.IsZero() {
		return model.Task{}, nil, fmt.Errorf("%w: missing start", ErrInvalidTimes)
	}
	moved, err := s.updateLocked(ctx, id, Patch{StartTime: &newStart})
	if err != nil {
		return model.Task{}, nil, err
	}
	shifts := timeline.ResolveOverlaps(s.tasks, moved, s.logger)
	for _, sh := range shifts {
		idx := s.indexLocked(sh.TaskID)
		if idx < 0 {
			continue
		}
		s.tasks[idx].StartTime = sh.StartTime
		s.tasks[idx].Duration = sh.Duration
		s.derive(&s.tasks[idx])
		s.logger.Debug("shifted task", "id", sh.TaskID, "from", sh.From.Format(model.TimeKeyLayout), "to", s.tasks[idx].Time)
		s.autoFocusLocked(s.tasks[idx])
	}
	if i := s.indexLocked(moved.ID); i >= 0 {
		moved = s.tasks[i].Clone()
	}
	return moved, shifts, nil
}

// Focus starts the task now: it moves to the current minute, overlapping
// tasks are pushed back and it becomes the only focused task.
func (s *Store) Focus(ctx context.Context, id string) (model.Task, []timeline.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.getLocked(id)
	if err != nil {
		return model.Task{}, nil, err
	}
	if s.tasks[idx].Completed {
		return model.Task{}, nil, fmt.Errorf("%w: %s", ErrCompleted, id)
	}
	moved, shifts, err := s.moveLocked(ctx, id, s.now().Truncate(time.Minute))
	if err != nil {
		return model.Task{}, nil, err
	}
	s.focusLocked(moved.ID)
	moved.IsFocused = true
	if err := s.saveLocked(ctx); err != nil {
		return model.Task{}, nil, err
	}
	return moved, shifts, nil
}

func (s *Store) Unfocus(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focusLocked("")
	return s.saveLocked(ctx)
}

func (s *Store) Focused() (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(s.focusedID)
	if idx < 0 {
		return model.Task{}, false
	}
	return s.tasks[idx].Clone(), true
}

// ToggleComplete flips completion. Completing checks off every subtask;
// reopening keeps subtask states and recomputes progress from them.
func (s *Store) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.getLocked(id)
	if err != nil {
		return model.Task{}, err
	}
	t := &s.tasks[idx]
	t.Completed = !t.Completed
	if t.Completed {
		for i := range t.Subtasks {
			t.Subtasks[i].IsCompleted = true
		}
		t.Progress = 100
		if s.focusedID == t.ID {
			s.focusLocked("")
		}
		t.IsFocused = false
	} else {
		t.Progress = t.ComputeProgress()
	}
	out := t.Clone()
	if err := s.saveLocked(ctx); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

func (s *Store) AddSubtask(ctx context.Context, id, title string) (model.Subtask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title = strings.TrimSpace(title)
	if title == "" {
		return model.Subtask{}, errors.New("tasks: subtask title is required")
	}
	idx, err := s.getLocked(id)
	if err != nil {
		return model.Subtask{}, err
	}
	t := &s.tasks[idx]
	order := 0
	for _, st := range t.Subtasks {
		if st.Order >= order {
			order = st.Order + 1
		}
	}
	sub := model.Subtask{ID: s.newID(), Title: title, Order: order}
	t.Subtasks = append(t.Subtasks, sub)
	t.Progress = t.ComputeProgress()
	if err := s.saveLocked(ctx); err != nil {
		return model.Subtask{}, err
	}
	return sub, nil
}

// ToggleSubtask flips one subtask, named by id or by its 1-based position.
func (s *Store) ToggleSubtask(ctx context.Context, id, ref string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.getLocked(id)
	if err != nil {
		return model.Task{}, err
	}
	t := &s.tasks[idx]
	sort.SliceStable(t.Subtasks, func(i, j int) bool { return t.Subtasks[i].Order < t.Subtasks[j].Order })
	pos := -1
	for i, st := range t.Subtasks {
		if st.ID == ref {
			pos = i
			break
		}
	}
	if pos < 0 {
		if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(t.Subtasks) {
			pos = n - 1
		}
	}
	if pos < 0 {
		return model.Task{}, fmt.Errorf("%w: subtask %s of %s", ErrNotFound, ref, id)
	}
	t.Subtasks[pos].IsCompleted = !t.Subtasks[pos].IsCompleted
	t.Progress = t.ComputeProgress()
	out := t.Clone()
	if err := s.saveLocked(ctx); err != nil {
		return model.Task{}, err
	}
	return out, nil
}

// Delete removes the task together with its canvas scene and reminders.
// Deleting any segment of a multi-day set removes the whole set.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.getLocked(id)
	if err != nil {
		return err
	}
	ids := []string{id}
	if setID := s.tasks[idx].MultiDaySetID; setID != "" {
		ids = ids[:0]
		for _, seg := range s.setLocked(setID) {
			ids = append(ids, seg.ID)
		}
	}
	if err := s.dropLocked(ctx, ids, ""); err != nil {
		return err
	}
	if err := s.saveLocked(ctx); err != nil {
		return err
	}
	s.logger.Info("task deleted", "id", id, "segments", len(ids))
	return nil
}

// SegmentIDs returns the ids of every segment in id's multi-day set, or just
// id for an ordinary task.
func (s *Store) SegmentIDs(id string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 || s.tasks[idx].MultiDaySetID == "" {
		return []string{id}
	}
	var ids []string
	for _, seg := range s.setLocked(s.tasks[idx].MultiDaySetID) {
		ids = append(ids, seg.ID)
	}
	return ids
}

// setLocked returns the segments of a multi-day set in day order.
func (s *Store) setLocked(setID string) []model.Task {
	var out []model.Task
	for _, t := range s.tasks {
		if t.MultiDaySetID == setID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

// spanLocked rebuilds one task covering every segment of the set. It keeps
// the first segment's identity and reports the ids of the other segments.
func (s *Store) spanLocked(setID string) (model.Task, []string) {
	segments := s.setLocked(setID)
	span := segments[0].Clone()
	end := segments[len(segments)-1].End()
	span.Duration = end.Sub(span.StartTime)
	span.NextStartTime = end
	span.IsPartOfMultiDay = false
	span.MultiDaySequence = 0
	span.IsFirstDayOfSet = false
	span.IsLastDayOfSet = false
	span.OriginalTaskID = ""

	var siblings []string
	for _, seg := range segments[1:] {
		siblings = append(siblings, seg.ID)
	}
	return span, siblings
}

// dropLocked removes the tasks named by ids with their canvas scenes. Their
// reminders move to heir, or are removed when heir is empty.
func (s *Store) dropLocked(ctx context.Context, ids []string, heir string) error {
	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}

	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if !doomed[t.ID] {
			kept = append(kept, t)
		}
	}
	s.tasks = kept

	reminders := s.reminders[:0]
	for _, r := range s.reminders {
		if doomed[r.TaskID] {
			if heir == "" {
				continue
			}
			r.TaskID = heir
		}
		reminders = append(reminders, r)
	}
	s.reminders = reminders

	if doomed[s.focusedID] {
		s.focusLocked("")
	}

	for _, id := range ids {
		key := storage.CanvasKey(id)
		s.debounce.Cancel(key)
		delete(s.canvas, id)
		if err := s.docs.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("tasks: delete canvas: %w", err)
		}
	}
	return nil
}

func (s *Store) Get(id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.getLocked(id)
	if err != nil {
		return model.Task{}, err
	}
	return s.tasks[idx].Clone(), nil
}

// Tasks returns every stored task ordered by start.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

// Resolve finds a task by exact id or by a unique id prefix.
func (s *Store) Resolve(ref string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Task{}, fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	if idx := s.indexLocked(ref); idx >= 0 {
		return s.tasks[idx].Clone(), nil
	}
	var matches []model.Task
	for _, t := range s.tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 0:
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return matches[0].Clone(), nil
	default:
		return model.Task{}, fmt.Errorf("%w: %s matches %d tasks", ErrAmbiguous, ref, len(matches))
	}
}

// Day returns the tasks of day interleaved with gap entries.
func (s *Store) Day(day time.Time) []model.Task {
	s.mu.Lock()
	key := model.DayKey(day.In(s.loc))
	own := make([]model.Task, 0)
	for _, t := range s.tasks {
		if s.dayOf(t) == key {
			own = append(own, t.Clone())
		}
	}
	now := s.now()
	s.mu.Unlock()

	sort.SliceStable(own, func(i, j int) bool { return own[i].StartTime.Before(own[j].StartTime) })
	return s.cache.Day(key, own, now)
}

func (s *Store) dayOf(t model.Task) string {
	if t.TaskDate != "" {
		return t.TaskDate
	}
	if !t.HasStart() {
		return ""
	}
	return model.DayKey(t.StartTime.In(s.loc))
}

func (s *Store) NextAvailableSlot(day time.Time, duration time.Duration) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if duration <= 0 {
		duration = s.defaultDuration
	}
	return timeline.FindNextAvailableSlot(s.tasks, day.In(s.loc), duration, s.now())
}

func (s *Store) CacheStats() (hits, misses uint64) {
	return s.cache.Stats()
}
