package update

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/taskline/internal/model"
	"github.com/sandeepkv93/taskline/internal/scheduler"
	"github.com/sandeepkv93/taskline/internal/tasks"
	"github.com/sandeepkv93/taskline/internal/timeline"
)

func shiftedSuffix(shifts []timeline.Shift) string {
	if len(shifts) == 0 {
		return ""
	}
	return fmt.Sprintf("; shifted %d task(s)", len(shifts))
}

func (m *Model) focusTask(t model.Task) (string, error) {
	focused, shifts, err := m.store.Focus(m.ctx, t.ID)
	if err != nil {
		return "", err
	}
	m.SelectedTaskID = focused.ID
	m.Day = model.StartOfDay(focused.StartTime.In(m.loc))
	return fmt.Sprintf("focused %s at %s%s", focused.Title, focused.Time, shiftedSuffix(shifts)), nil
}

func (m *Model) toggleTask(t model.Task) (string, error) {
	updated, err := m.store.ToggleComplete(m.ctx, t.ID)
	if err != nil {
		return "", err
	}
	if updated.Completed {
		return "completed " + updated.Title, nil
	}
	return "reopened " + updated.Title, nil
}

func (m *Model) deleteTask(t model.Task) (string, error) {
	ids := m.store.SegmentIDs(t.ID)
	if err := m.store.Delete(m.ctx, t.ID); err != nil {
		return "", err
	}
	if m.engine != nil {
		for _, id := range ids {
			m.engine.CancelTask(id)
		}
	}
	if m.SelectedTaskID == t.ID {
		m.SelectedTaskID = ""
	}
	return "deleted " + t.Title, nil
}

func (m *Model) addTask(title string, start time.Time, d time.Duration) (string, error) {
	if start.IsZero() && !model.SameDay(m.Day, m.clock()) {
		if slot, ok := m.store.NextAvailableSlot(m.Day, d); ok {
			start = slot
		}
	}
	created, err := m.store.Create(m.ctx, tasks.NewTask{Title: title, StartTime: start, Duration: d})
	if err != nil {
		return "", err
	}
	m.SelectedTaskID = created.ID
	m.Day = model.StartOfDay(created.StartTime.In(m.loc))
	return fmt.Sprintf("added %s at %s", created.Title, created.Time), nil
}

func (m *Model) moveTask(t model.Task, start time.Time) (string, error) {
	moved, shifts, err := m.store.Move(m.ctx, t.ID, start)
	if err != nil {
		return "", err
	}
	m.SelectedTaskID = moved.ID
	m.Day = model.StartOfDay(moved.StartTime.In(m.loc))
	return fmt.Sprintf("moved %s to %s%s", moved.Title, moved.Time, shiftedSuffix(shifts)), nil
}

func (m *Model) remindTask(t model.Task, at time.Time) (string, error) {
	r, err := m.store.AddReminder(m.ctx, t.ID, at)
	if err != nil {
		return "", err
	}
	if m.engine != nil {
		if err := m.engine.Schedule(scheduler.ReminderEvent{
			ReminderID: r.ID,
			TaskID:     r.TaskID,
			Title:      r.Title,
			TriggerAt:  r.TriggerTime,
		}); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("reminder for %s at %s", t.Title, r.TriggerTime.In(m.loc).Format("2006-01-02 15:04")), nil
}

// onReminder records a fired reminder and marks it so it is not scheduled
// again on the next start.
func (m *Model) onReminder(ev scheduler.ReminderEvent) {
	m.ReminderLog = append(m.ReminderLog, ev)
	if len(m.ReminderLog) > 20 {
		m.ReminderLog = m.ReminderLog[len(m.ReminderLog)-20:]
	}
	if err := m.store.MarkReminderFired(m.ctx, ev.ReminderID, m.clock()); err != nil {
		m.fail(err)
		return
	}
	m.Status = StatusBar{Text: fmt.Sprintf("reminder: %s", ev.Title)}
	m.refresh()
}
