package timeline

import (
	"fmt"
	"testing"
	"time"

	"github.com/sandeepkv93/taskline/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func TestSplitMultiDayThirtyHours(t *testing.T) {
	monday := time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC)
	long := task("trip", monday, 30*time.Hour)
	long.Subtasks = []model.Subtask{{ID: "s1", Title: "pack"}}

	segs, ok := SplitMultiDay(long, seqIDs())

	require.True(t, ok)
	require.Len(t, segs, 2)

	first, last := segs[0], segs[1]
	assert.Equal(t, "trip", first.ID)
	assert.True(t, first.StartTime.Equal(monday))
	assert.Equal(t, "23:59:59.999", first.NextStartTime.Format("15:04:05.000"))
	assert.Equal(t, "2026-02-09", first.TaskDate)
	assert.True(t, first.IsFirstDayOfSet)
	assert.False(t, first.IsLastDayOfSet)
	assert.Len(t, first.Subtasks, 1)

	assert.Equal(t, "gen-2", last.ID)
	assert.Equal(t, "trip", last.OriginalTaskID)
	assert.True(t, last.StartTime.Equal(time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, last.NextStartTime.Equal(time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC)))
	assert.Equal(t, 14*time.Hour, last.Duration)
	assert.True(t, last.IsLastDayOfSet)
	assert.Empty(t, last.Subtasks)

	assert.Equal(t, "gen-1", first.MultiDaySetID)
	assert.Equal(t, first.MultiDaySetID, last.MultiDaySetID)
	for _, s := range segs {
		assert.True(t, s.IsPartOfMultiDay)
		assert.NoError(t, s.Validate())
	}
}

func TestSplitMultiDayMiddleDaysAreFull(t *testing.T) {
	start := time.Date(2026, 2, 9, 20, 0, 0, 0, time.UTC)
	long := task("conf", start, 50*time.Hour)
	long.MultiDaySetID = "set-keep"

	segs, ok := SplitMultiDay(long, seqIDs())

	require.True(t, ok)
	require.Len(t, segs, 3)
	mid := segs[1]
	assert.Equal(t, "00:00:00.000", mid.StartTime.Format("15:04:05.000"))
	assert.Equal(t, "23:59:59.999", mid.NextStartTime.Format("15:04:05.000"))
	assert.Equal(t, 2, mid.MultiDaySequence)

	for i := 0; i < len(segs)-1; i++ {
		assert.True(t, segs[i].NextStartTime.Add(time.Millisecond).Equal(segs[i+1].StartTime), "segments %d and %d must be contiguous", i, i+1)
		assert.NotEqual(t, segs[i].TaskDate, segs[i+1].TaskDate)
		assert.Equal(t, "set-keep", segs[i].MultiDaySetID)
	}
	assert.True(t, segs[2].NextStartTime.Equal(start.Add(50*time.Hour)))
}

func TestShortOvernightTaskIsNotSplit(t *testing.T) {
	start := time.Date(2026, 2, 9, 22, 0, 0, 0, time.UTC)
	overnight := task("deploy", start, 4*time.Hour)

	assert.True(t, EndsNextDay(overnight))
	assert.False(t, IsMultiDay(overnight))

	segs, ok := SplitMultiDay(overnight, seqIDs())
	assert.False(t, ok)
	require.Len(t, segs, 1)
	assert.Equal(t, overnight, segs[0])
}

func TestFullDayEndingAtMidnightIsNotMultiDay(t *testing.T) {
	whole := task("offsite", time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), 24*time.Hour)
	assert.False(t, IsMultiDay(whole))
	assert.False(t, EndsNextDay(whole))
}
