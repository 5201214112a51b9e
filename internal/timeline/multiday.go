package timeline

import (
	"time"

	"github.com/sandeepkv93/taskline/internal/model"
)

const multiDayMinimum = 24 * time.Hour

func crossesMidnight(t model.Task) bool {
	if !t.HasStart() {
		return false
	}
	end := t.End()
	if !end.After(t.StartTime) {
		return false
	}
	// An end exactly at midnight still belongs to the start day.
	last := end.Add(-time.Nanosecond).In(t.StartTime.Location())
	return model.DayKey(last) != model.DayKey(t.StartTime)
}

// IsMultiDay reports whether t both crosses midnight and lasts at least a day.
func IsMultiDay(t model.Task) bool {
	return crossesMidnight(t) && t.End().Sub(t.StartTime) >= multiDayMinimum
}

// EndsNextDay reports a short overnight task that is kept whole.
func EndsNextDay(t model.Task) bool {
	return crossesMidnight(t) && !IsMultiDay(t)
}

// SplitMultiDay decomposes a multi-day task into one segment per calendar
// day. The first segment keeps the original id; newID supplies ids for the
// rest and for the set when the task has none. Tasks that are not multi-day
// are returned unchanged with ok=false.
func SplitMultiDay(t model.Task, newID func() string) (segments []model.Task, ok bool) {
	if !IsMultiDay(t) {
		return []model.Task{t}, false
	}
	setID := t.MultiDaySetID
	if setID == "" {
		setID = newID()
	}
	loc := t.StartTime.Location()
	end := t.End().In(loc)

	cursor := t.StartTime
	for seq := 1; cursor.Before(end); seq++ {
		segEnd := model.EndOfDay(cursor)
		if !segEnd.Before(end) {
			segEnd = end
		}
		seg := t.Clone()
		seg.StartTime = cursor
		seg.NextStartTime = segEnd
		seg.Duration = segEnd.Sub(cursor)
		seg.TaskDate = model.DayKey(cursor)
		seg.Time = cursor.Format(model.TimeKeyLayout)
		seg.IsPartOfMultiDay = true
		seg.MultiDaySetID = setID
		seg.MultiDaySequence = seq
		seg.IsFirstDayOfSet = seq == 1
		seg.IsLastDayOfSet = false
		if seq > 1 {
			seg.ID = newID()
			seg.OriginalTaskID = t.ID
			seg.IsFocused = false
			seg.Subtasks = nil
			seg.Progress = seg.ComputeProgress()
		}
		segments = append(segments, seg)
		cursor = model.StartOfDay(cursor).AddDate(0, 0, 1)
	}
	segments[len(segments)-1].IsLastDayOfSet = true
	return segments, true
}
