package tasks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sandeepkv93/taskline/internal/model"
	"github.com/sandeepkv93/taskline/internal/scheduler"
)

func (s *Store) AddReminder(ctx context.Context, taskID string, at time.Time) (model.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.getLocked(taskID)
	if err != nil {
		return model.Reminder{}, err
	}
	r := model.Reminder{
		ID:          s.newID(),
		TaskID:      taskID,
		Title:       s.tasks[idx].Title,
		TriggerTime: at.In(s.loc),
		Enabled:     true,
		CreatedAt:   s.now(),
	}
	if err := r.Validate(); err != nil {
		return model.Reminder{}, fmt.Errorf("tasks: add reminder: %w", err)
	}
	s.reminders = append(s.reminders, r)
	if err := s.saveLocked(ctx); err != nil {
		return model.Reminder{}, err
	}
	return r, nil
}

// Reminders lists every reminder by trigger time.
func (s *Store) Reminders() []model.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]model.Reminder(nil), s.reminders...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TriggerTime.Before(out[j].TriggerTime) })
	return out
}

func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.reminderIndexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrReminderNotFound, id)
	}
	s.reminders = append(s.reminders[:idx], s.reminders[idx+1:]...)
	return s.saveLocked(ctx)
}

func (s *Store) MarkReminderFired(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.reminderIndexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrReminderNotFound, id)
	}
	fired := at.In(s.loc)
	s.reminders[idx].LastFiredAt = &fired
	return s.saveLocked(ctx)
}

// PendingReminderEvents converts every enabled, unfired reminder whose task
// is still open into a scheduler event.
func (s *Store) PendingReminderEvents() []scheduler.ReminderEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]scheduler.ReminderEvent, 0)
	for _, r := range s.reminders {
		if !r.Pending() {
			continue
		}
		if idx := s.indexLocked(r.TaskID); idx < 0 || s.tasks[idx].Completed {
			continue
		}
		out = append(out, scheduler.ReminderEvent{
			ReminderID: r.ID,
			TaskID:     r.TaskID,
			Title:      r.Title,
			TriggerAt:  r.TriggerTime,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TriggerAt.Before(out[j].TriggerAt) })
	return out
}

func (s *Store) reminderIndexLocked(id string) int {
	for i := range s.reminders {
		if s.reminders[i].ID == id {
			return i
		}
	}
	return -1
}
