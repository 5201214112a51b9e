package timeline

import (
	"sort"
	"time"

	"github.com/sandeepkv93/taskline/internal/model"
)

// FindNextAvailableSlot returns the earliest ShiftGranularity-aligned start on
// day where a task of the given duration fits between the day's open tasks.
// When day is today the search starts at now.
func FindNextAvailableSlot(tasks []model.Task, day time.Time, duration time.Duration, now time.Time) (time.Time, bool) {
	if duration <= 0 {
		duration = model.DefaultDuration
	}
	loc := day.Location()
	dayStart := model.StartOfDay(day)
	dayEnd := model.EndOfDay(day)
	key := model.DayKey(dayStart)

	candidate := dayStart
	nowLocal := now.In(loc)
	if model.DayKey(nowLocal) == key && nowLocal.After(candidate) {
		candidate = CeilTo(nowLocal.Truncate(time.Minute), ShiftGranularity)
	} else if nowLocal.After(dayEnd) {
		return time.Time{}, false
	}

	busy := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsGap || t.Completed || !t.HasStart() {
			continue
		}
		if dayOf(t, loc) != key {
			continue
		}
		busy = append(busy, t)
	}
	sort.SliceStable(busy, func(i, j int) bool {
		return busy[i].StartTime.Before(busy[j].StartTime)
	})

	for _, t := range busy {
		end := t.End()
		if !end.After(candidate) {
			continue
		}
		if !candidate.Add(duration).After(t.StartTime) {
			break
		}
		candidate = CeilTo(end, ShiftGranularity)
	}
	if candidate.Add(duration).After(dayEnd.Add(time.Millisecond)) {
		return time.Time{}, false
	}
	return candidate, true
}
