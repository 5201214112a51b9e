package commands

import (
	"strconv"
	"strings"
	"time"
)

const dayTimeLayout = "2006-01-02 15:04"

// ParseWhen reads "HH:MM" on day, "yyyy-MM-dd HH:MM" or RFC 3339. The result
// is in day's location.
func ParseWhen(raw string, day time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	loc := day.Location()
	if raw == "" {
		return time.Time{}, invalid("time is empty")
	}
	if clock, err := time.ParseInLocation("15:04", raw, loc); err == nil {
		y, m, d := day.Date()
		return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, loc), nil
	}
	if t, err := time.ParseInLocation(dayTimeLayout, raw, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, invalid("unrecognized time %q (want HH:MM, yyyy-MM-dd HH:MM or RFC 3339)", raw)
}

// ParseDay reads "today", "tomorrow", "yesterday" or "yyyy-MM-dd" relative to
// today and returns midnight of that day.
func ParseDay(raw string, today time.Time) (time.Time, error) {
	loc := today.Location()
	y, m, d := today.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, loc)
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "today", "":
		return midnight, nil
	case "tomorrow":
		return midnight.AddDate(0, 0, 1), nil
	case "yesterday":
		return midnight.AddDate(0, 0, -1), nil
	}
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, invalid("unrecognized day %q (want today, tomorrow, yesterday or yyyy-MM-dd)", raw)
	}
	return t, nil
}

// ParseDuration accepts Go durations ("1h30m") and bare minutes ("45").
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		if n <= 0 {
			return 0, invalid("duration must be positive, got %q", raw)
		}
		return time.Duration(n) * time.Minute, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, invalid("unrecognized duration %q", raw)
	}
	if d <= 0 {
		return 0, invalid("duration must be positive, got %q", raw)
	}
	return d, nil
}
