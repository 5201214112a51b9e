package timeline

import (
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/taskline/internal/model"
)

// Shift moves one task to a new start while keeping its duration.
type Shift struct {
	TaskID        string
	From          time.Time
	StartTime     time.Time
	NextStartTime time.Time
	Duration      time.Duration
}

// ResolveOverlaps computes the shifts needed after moved was placed at its
// current StartTime. Only tasks on moved's day that intersect it are shifted;
// completed and time-fixed tasks never move. A shift that would carry a task
// into the next day is skipped.
func ResolveOverlaps(tasks []model.Task, moved model.Task, logger *log.Logger) []Shift {
	if logger == nil {
		logger = log.Default()
	}
	newStart := moved.StartTime
	newEnd := newStart.Add(moved.Duration)
	day := model.DayKey(newStart)

	hits := make([]model.Task, 0)
	for _, t := range tasks {
		if t.ID == moved.ID || t.IsGap || t.Completed || t.IsTimeFixed || !t.HasStart() {
			continue
		}
		if dayOf(t, newStart.Location()) != day {
			continue
		}
		end := t.StartTime.Add(t.Duration)
		if t.StartTime.Before(newEnd) && end.After(newStart) {
			hits = append(hits, t)
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].StartTime.Before(hits[j].StartTime)
	})

	out := make([]Shift, 0, len(hits))
	prevEnd := newEnd
	for _, t := range hits {
		start := CeilTo(prevEnd, ShiftGranularity)
		if model.DayKey(start) != day {
			logger.Warn("skipping shift past midnight", "task", t.ID, "title", t.Title, "wanted", start.Format(time.RFC3339))
			continue
		}
		end := start.Add(t.Duration)
		out = append(out, Shift{
			TaskID:        t.ID,
			From:          t.StartTime,
			StartTime:     start,
			NextStartTime: end,
			Duration:      t.Duration,
		})
		prevEnd = end
	}
	return out
}

// CeilTo rounds t up to the next multiple of d within t's location. Values
// already on a boundary are returned unchanged.
func CeilTo(t time.Time, d time.Duration) time.Time {
	midnight := model.StartOfDay(t)
	offset := t.Sub(midnight)
	rem := offset % d
	if rem == 0 {
		return t
	}
	return t.Add(d - rem)
}

func dayOf(t model.Task, loc *time.Location) string {
	if t.TaskDate != "" {
		return t.TaskDate
	}
	return model.DayKey(t.StartTime.In(loc))
}
