package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidPriority  = errors.New("model: invalid task priority")
	ErrInvalidCategory  = errors.New("model: invalid task category")
	ErrInvalidGapType   = errors.New("model: invalid gap type")
	ErrInvalidBreakType = errors.New("model: invalid break type")
)

const DefaultDuration = 45 * time.Minute

type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

type Category string

const (
	CategoryWork    Category = "work"
	CategoryPassion Category = "passion"
	CategoryPlay    Category = "play"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryWork, CategoryPassion, CategoryPlay:
		return true
	default:
		return false
	}
}

type GapType string

const (
	GapIdleTime GapType = "idle-time"
	GapFreeSlot GapType = "free-slot"
	GapGetReady GapType = "get-ready"
	GapBreak    GapType = "break"
)

func (g GapType) IsValid() bool {
	switch g {
	case GapIdleTime, GapFreeSlot, GapGetReady, GapBreak:
		return true
	default:
		return false
	}
}

// Label is the title shown for a synthesized gap entry.
func (g GapType) Label() string {
	switch g {
	case GapIdleTime:
		return "Idle time"
	case GapFreeSlot:
		return "Free slot"
	case GapGetReady:
		return "Get ready"
	case GapBreak:
		return "Break"
	default:
		return string(g)
	}
}

type BreakType string

const (
	BreakDuring BreakType = "during"
	BreakAfter  BreakType = "after"
)

func (b BreakType) IsValid() bool {
	return b == BreakDuring || b == BreakAfter
}

type Break struct {
	StartTime time.Time
	Duration  time.Duration
	Type      BreakType
}

type Subtask struct {
	ID          string
	Title       string
	IsCompleted bool
	Order       int
}

type Task struct {
	ID            string
	Title         string
	Notes         string
	Emoji         string
	StartTime     time.Time
	NextStartTime time.Time
	Duration      time.Duration
	TaskDate      string
	Time          string
	DueDate       *time.Time
	Priority      Priority
	Category      Category
	Completed     bool
	IsFocused     bool
	Subtasks      []Subtask
	Progress      int
	IsTimeFixed   bool
	Break         *Break
	CreatedAt     time.Time

	// Set only on synthesized gap entries, which are never persisted.
	IsGap        bool
	GapType      GapType
	GapStartTime time.Time
	GapEndTime   time.Time

	IsPartOfMultiDay bool
	MultiDaySetID    string
	MultiDaySequence int
	IsFirstDayOfSet  bool
	IsLastDayOfSet   bool
	OriginalTaskID   string
}

// End returns NextStartTime, falling back to StartTime+Duration when the
// end was never recorded.
func (t Task) End() time.Time {
	if !t.NextStartTime.IsZero() {
		return t.NextStartTime
	}
	return t.StartTime.Add(t.Duration)
}

func (t Task) HasStart() bool {
	return !t.StartTime.IsZero()
}

// ComputeProgress returns the completed share of subtasks as a whole
// percentage.
func (t Task) ComputeProgress() int {
	if len(t.Subtasks) == 0 {
		if t.Completed {
			return 100
		}
		return 0
	}
	done := 0
	for _, s := range t.Subtasks {
		if s.IsCompleted {
			done++
		}
	}
	return done * 100 / len(t.Subtasks)
}

// Clone returns a copy that shares no slices or pointers with t.
func (t Task) Clone() Task {
	out := t
	if t.Subtasks != nil {
		out.Subtasks = append([]Subtask(nil), t.Subtasks...)
	}
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	if t.Break != nil {
		br := *t.Break
		out.Break = &br
	}
	return out
}

func (t Task) Validate() error {
	if t.IsGap {
		if !t.GapType.IsValid() {
			return fmt.Errorf("%w: %q", ErrInvalidGapType, t.GapType)
		}
		return nil
	}
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if !t.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, t.Priority)
	}
	if !t.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category)
	}
	if t.Duration < 0 {
		return errors.New("model: task duration must not be negative")
	}
	if t.HasStart() && !t.NextStartTime.IsZero() && t.NextStartTime.Before(t.StartTime) {
		return errors.New("model: task end must not precede its start")
	}
	if t.Break != nil && !t.Break.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidBreakType, t.Break.Type)
	}
	if t.IsPartOfMultiDay && strings.TrimSpace(t.MultiDaySetID) == "" {
		return errors.New("model: multi-day segment requires a set id")
	}
	return nil
}
