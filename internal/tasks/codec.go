package tasks

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/taskline/internal/model"
)

// Records mirror the local-storage layout: camelCase keys, ISO date strings
// in UTC and durations in milliseconds.

type taskRecord struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Notes            string          `json:"notes,omitempty"`
	Emoji            string          `json:"emoji,omitempty"`
	StartTime        string          `json:"startTime,omitempty"`
	NextStartTime    string          `json:"nextStartTime,omitempty"`
	Duration         int64           `json:"duration"`
	TaskDate         string          `json:"taskDate,omitempty"`
	Time             string          `json:"time,omitempty"`
	DueDate          string          `json:"dueDate,omitempty"`
	Priority         string          `json:"priority"`
	Category         string          `json:"category"`
	Completed        bool            `json:"completed"`
	IsFocused        bool            `json:"isFocused"`
	Subtasks         []subtaskRecord `json:"subtasks"`
	Progress         int             `json:"progress"`
	IsTimeFixed      bool            `json:"isTimeFixed,omitempty"`
	Break            *breakRecord    `json:"break,omitempty"`
	CreatedAt        string          `json:"createdAt,omitempty"`
	IsPartOfMultiDay bool            `json:"isPartOfMultiDay,omitempty"`
	MultiDaySetID    string          `json:"multiDaySetId,omitempty"`
	MultiDaySequence int             `json:"multiDaySequence,omitempty"`
	IsFirstDayOfSet  bool            `json:"isFirstDayOfSet,omitempty"`
	IsLastDayOfSet   bool            `json:"isLastDayOfSet,omitempty"`
	OriginalTaskID   string          `json:"originalTaskId,omitempty"`
}

type subtaskRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
	Order       int    `json:"order"`
}

type breakRecord struct {
	StartTime string `json:"startTime"`
	Duration  int64  `json:"duration"`
	Type      string `json:"type"`
}

type reminderRecord struct {
	ID          string `json:"id"`
	TaskID      string `json:"taskId"`
	Title       string `json:"title"`
	TriggerTime string `json:"triggerTime"`
	Enabled     bool   `json:"enabled"`
	LastFiredAt string `json:"lastFiredAt,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func millis(d time.Duration) int64 {
	return int64(d / time.Millisecond)
}

// timeParser remembers the first field that failed so a record can be
// rejected as a whole.
type timeParser struct {
	loc *time.Location
	err error
}

func (p *timeParser) parse(field, raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if p.err != nil || raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		p.err = fmt.Errorf("%s: %w", field, err)
		return time.Time{}
	}
	return t.In(p.loc)
}

func newTaskRecord(t model.Task) taskRecord {
	rec := taskRecord{
		ID:               t.ID,
		Title:            t.Title,
		Notes:            t.Notes,
		Emoji:            t.Emoji,
		StartTime:        formatTime(t.StartTime),
		NextStartTime:    formatTime(t.NextStartTime),
		Duration:         millis(t.Duration),
		TaskDate:         t.TaskDate,
		Time:             t.Time,
		Priority:         string(t.Priority),
		Category:         string(t.Category),
		Completed:        t.Completed,
		IsFocused:        t.IsFocused,
		Subtasks:         make([]subtaskRecord, 0, len(t.Subtasks)),
		Progress:         t.Progress,
		IsTimeFixed:      t.IsTimeFixed,
		CreatedAt:        formatTime(t.CreatedAt),
		IsPartOfMultiDay: t.IsPartOfMultiDay,
		MultiDaySetID:    t.MultiDaySetID,
		MultiDaySequence: t.MultiDaySequence,
		IsFirstDayOfSet:  t.IsFirstDayOfSet,
		IsLastDayOfSet:   t.IsLastDayOfSet,
		OriginalTaskID:   t.OriginalTaskID,
	}
	if t.DueDate != nil {
		rec.DueDate = formatTime(*t.DueDate)
	}
	for _, s := range t.Subtasks {
		rec.Subtasks = append(rec.Subtasks, subtaskRecord(s))
	}
	if t.Break != nil {
		rec.Break = &breakRecord{
			StartTime: formatTime(t.Break.StartTime),
			Duration:  millis(t.Break.Duration),
			Type:      string(t.Break.Type),
		}
	}
	return rec
}

func (r taskRecord) toTask(loc *time.Location) (model.Task, error) {
	p := timeParser{loc: loc}
	t := model.Task{
		ID:               r.ID,
		Title:            r.Title,
		Notes:            r.Notes,
		Emoji:            r.Emoji,
		StartTime:        p.parse("startTime", r.StartTime),
		NextStartTime:    p.parse("nextStartTime", r.NextStartTime),
		Duration:         time.Duration(r.Duration) * time.Millisecond,
		TaskDate:         r.TaskDate,
		Time:             r.Time,
		Priority:         model.Priority(r.Priority),
		Category:         model.Category(r.Category),
		Completed:        r.Completed,
		IsFocused:        r.IsFocused,
		Progress:         r.Progress,
		IsTimeFixed:      r.IsTimeFixed,
		CreatedAt:        p.parse("createdAt", r.CreatedAt),
		IsPartOfMultiDay: r.IsPartOfMultiDay,
		MultiDaySetID:    r.MultiDaySetID,
		MultiDaySequence: r.MultiDaySequence,
		IsFirstDayOfSet:  r.IsFirstDayOfSet,
		IsLastDayOfSet:   r.IsLastDayOfSet,
		OriginalTaskID:   r.OriginalTaskID,
	}
	if due := p.parse("dueDate", r.DueDate); !due.IsZero() {
		t.DueDate = &due
	}
	if r.Break != nil {
		t.Break = &model.Break{
			StartTime: p.parse("break.startTime", r.Break.StartTime),
			Duration:  time.Duration(r.Break.Duration) * time.Millisecond,
			Type:      model.BreakType(r.Break.Type),
		}
	}
	if p.err != nil {
		return model.Task{}, p.err
	}

	if t.Priority == "" {
		t.Priority = model.PriorityNone
	}
	if t.Category == "" {
		t.Category = model.CategoryWork
	}
	for _, s := range r.Subtasks {
		t.Subtasks = append(t.Subtasks, model.Subtask(s))
	}
	if t.HasStart() {
		if t.TaskDate == "" {
			t.TaskDate = model.DayKey(t.StartTime)
		}
		if t.Time == "" {
			t.Time = t.StartTime.Format(model.TimeKeyLayout)
		}
	}
	if err := t.Validate(); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func newReminderRecord(r model.Reminder) reminderRecord {
	rec := reminderRecord{
		ID:          r.ID,
		TaskID:      r.TaskID,
		Title:       r.Title,
		TriggerTime: formatTime(r.TriggerTime),
		Enabled:     r.Enabled,
		CreatedAt:   formatTime(r.CreatedAt),
	}
	if r.LastFiredAt != nil {
		rec.LastFiredAt = formatTime(*r.LastFiredAt)
	}
	return rec
}

func (r reminderRecord) toReminder(loc *time.Location) (model.Reminder, error) {
	p := timeParser{loc: loc}
	rem := model.Reminder{
		ID:          r.ID,
		TaskID:      r.TaskID,
		Title:       r.Title,
		TriggerTime: p.parse("triggerTime", r.TriggerTime),
		Enabled:     r.Enabled,
		CreatedAt:   p.parse("createdAt", r.CreatedAt),
	}
	if fired := p.parse("lastFiredAt", r.LastFiredAt); !fired.IsZero() {
		rem.LastFiredAt = &fired
	}
	if p.err != nil {
		return model.Reminder{}, p.err
	}
	if err := rem.Validate(); err != nil {
		return model.Reminder{}, err
	}
	return rem, nil
}

// EncodeTasks serializes tasks in the local-storage record format. Gap
// entries are never written.
func EncodeTasks(tasks []model.Task) ([]byte, error) {
	recs := make([]taskRecord, 0, len(tasks))
	for _, t := range tasks {
		if t.IsGap {
			continue
		}
		recs = append(recs, newTaskRecord(t))
	}
	return json.Marshal(recs)
}

// DecodeTasks parses a tasks document. Entries that are malformed or carry
// unparsable dates are logged and dropped; only a body that is not a JSON
// array is an error.
func DecodeTasks(body []byte, loc *time.Location, logger *log.Logger) ([]model.Task, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("tasks: decode task list: %w", err)
	}
	out := make([]model.Task, 0, len(raw))
	for i, entry := range raw {
		var rec taskRecord
		if err := json.Unmarshal(entry, &rec); err != nil {
			logger.Warn("dropping malformed task", "index", i, "err", err)
			continue
		}
		t, err := rec.toTask(loc)
		if err != nil {
			logger.Warn("dropping task with invalid data", "index", i, "id", rec.ID, "err", err)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func EncodeReminders(reminders []model.Reminder) ([]byte, error) {
	recs := make([]reminderRecord, 0, len(reminders))
	for _, r := range reminders {
		recs = append(recs, newReminderRecord(r))
	}
	return json.Marshal(recs)
}

func DecodeReminders(body []byte, loc *time.Location, logger *log.Logger) ([]model.Reminder, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("tasks: decode reminder list: %w", err)
	}
	out := make([]model.Reminder, 0, len(raw))
	for i, entry := range raw {
		var rec reminderRecord
		if err := json.Unmarshal(entry, &rec); err != nil {
			logger.Warn("dropping malformed reminder", "index", i, "err", err)
			continue
		}
		r, err := rec.toReminder(loc)
		if err != nil {
			logger.Warn("dropping reminder with invalid data", "index", i, "id", rec.ID, "err", err)
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
