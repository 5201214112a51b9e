package timeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/sandeepkv93/taskline/internal/model"
)

const (
	MinGap            = 15 * time.Minute
	BreakThreshold    = 20 * time.Minute
	MinTrailingGap    = time.Hour
	ShiftGranularity  = 5 * time.Minute
	trailingGapHour   = 23
	trailingGapMinute = 59
)

// Classify decides what a gap between start and end means relative to now.
func Classify(start, end, now time.Time) model.GapType {
	switch {
	case !end.After(now):
		return model.GapIdleTime
	case start.After(now):
		if end.Sub(start) < MinGap {
			return model.GapGetReady
		}
		return model.GapFreeSlot
	default:
		if end.Sub(start) > BreakThreshold {
			return model.GapBreak
		}
		return model.GapFreeSlot
	}
}

// ProcessWithGaps sorts the tasks of one day by start time and interleaves
// synthetic gap entries wherever at least MinGap separates two tasks. A
// trailing gap up to 23:59 is appended when the last task leaves at least an
// hour of the day free.
func ProcessWithGaps(tasks []model.Task, now time.Time) []model.Task {
	real := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.IsGap || !t.HasStart() {
			continue
		}
		real = append(real, t)
	}
	sort.SliceStable(real, func(i, j int) bool {
		return real[i].StartTime.Before(real[j].StartTime)
	})
	if len(real) <= 1 {
		return real
	}

	out := make([]model.Task, 0, len(real)*2)
	for i, cur := range real {
		out = append(out, cur)
		if i == len(real)-1 {
			break
		}
		start := cur.End()
		end := real[i+1].StartTime
		if end.Sub(start) < MinGap {
			continue
		}
		if end.After(model.EndOfDay(cur.StartTime)) {
			continue
		}
		out = append(out, newGap(start, end, now))
	}

	last := real[len(real)-1]
	lastEnd := last.End()
	y, m, d := last.StartTime.Date()
	dayEnd := time.Date(y, m, d, trailingGapHour, trailingGapMinute, 0, 0, last.StartTime.Location())
	if lastEnd.Before(dayEnd) && dayEnd.Sub(lastEnd) >= MinTrailingGap {
		out = append(out, newGap(lastEnd, dayEnd, now))
	}
	return out
}

func newGap(start, end, now time.Time) model.Task {
	kind := Classify(start, end, now)
	return model.Task{
		ID:            fmt.Sprintf("gap-%d-%d", start.Unix(), end.Unix()),
		Title:         kind.Label(),
		StartTime:     start,
		NextStartTime: end,
		Duration:      end.Sub(start),
		TaskDate:      model.DayKey(start),
		Time:          start.Format(model.TimeKeyLayout),
		Priority:      model.PriorityNone,
		IsGap:         true,
		GapType:       kind,
		GapStartTime:  start,
		GapEndTime:    end,
	}
}
