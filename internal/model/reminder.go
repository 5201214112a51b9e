package model

import (
	"errors"
	"strings"
	"time"
)

type Reminder struct {
	ID          string
	TaskID      string
	Title       string
	TriggerTime time.Time
	Enabled     bool
	LastFiredAt *time.Time
	CreatedAt   time.Time
}

func (r Reminder) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("model: reminder id is required")
	}
	if strings.TrimSpace(r.TaskID) == "" {
		return errors.New("model: reminder task_id is required")
	}
	if r.TriggerTime.IsZero() {
		return errors.New("model: reminder trigger_time is required")
	}
	return nil
}

// Pending reports whether the reminder is still due to fire.
func (r Reminder) Pending() bool {
	return r.Enabled && r.LastFiredAt == nil
}
