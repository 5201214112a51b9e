package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sandeepkv93/taskline/internal/model"
)

const icsStampLayout = "20060102T150405Z"

// ICS writes one VEVENT per scheduled task.
func ICS(w io.Writer, list []model.Task, now time.Time) error {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Taskline//Timeline Export//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	stamp := now.UTC().Format(icsStampLayout)
	for _, t := range list {
		if t.IsGap || !t.HasStart() {
			continue
		}
		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+escapeICSText(fmt.Sprintf("task-%s@taskline", t.ID)),
			"DTSTAMP:"+stamp,
			"SUMMARY:"+escapeICSText(summary(t)),
			"DTSTART:"+t.StartTime.UTC().Format(icsStampLayout),
			"DTEND:"+t.End().UTC().Format(icsStampLayout),
			"CATEGORIES:"+escapeICSText(strings.ToUpper(string(t.Category))),
		)
		if notes := strings.TrimSpace(t.Notes); notes != "" {
			lines = append(lines, "DESCRIPTION:"+escapeICSText(notes))
		}
		if t.Completed {
			lines = append(lines, "X-TASKLINE-COMPLETED:TRUE")
		}
		lines = append(lines, "END:VEVENT")
	}
	lines = append(lines, "END:VCALENDAR", "")

	_, err := io.WriteString(w, strings.Join(lines, "\r\n"))
	return err
}

func summary(t model.Task) string {
	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = "Taskline Task"
	}
	if t.Emoji != "" {
		title = t.Emoji + " " + title
	}
	return title
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}
