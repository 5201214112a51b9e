package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sandeepkv93/taskline/internal/model"
	"github.com/sandeepkv93/taskline/internal/timeline"
)

var (
	selectedStyle  = lipgloss.NewStyle().Bold(true)
	completedStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))
	focusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)

	gapStyles = map[model.GapType]lipgloss.Style{
		model.GapIdleTime: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		model.GapFreeSlot: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		model.GapGetReady: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		model.GapBreak:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	}
)

type TimelineData struct {
	Day        string
	Entries    []model.Task
	SelectedID string
	ShowGaps   bool
}

// RenderTimeline lists a day's tasks in start order with gap entries between
// them when ShowGaps is set.
func RenderTimeline(data TimelineData) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("timeline: "+data.Day) + "\n")

	real := 0
	for _, e := range data.Entries {
		if e.IsGap {
			if data.ShowGaps {
				b.WriteString(gapLine(e) + "\n")
			}
			continue
		}
		real++
		line := TaskLine(e)
		cursor := "  "
		if e.ID == data.SelectedID {
			cursor = "> "
			line = selectedStyle.Render(line)
		} else if e.Completed {
			line = completedStyle.Render(line)
		} else if e.IsFocused {
			line = focusStyle.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}
	if real == 0 {
		b.WriteString("  (no tasks)\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// TaskLine is the unstyled one-line summary of a task.
func TaskLine(t model.Task) string {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}
	parts := []string{Span(t), check}
	if t.Emoji != "" {
		parts = append(parts, t.Emoji)
	}
	parts = append(parts, t.Title)
	if t.Priority != "" && t.Priority != model.PriorityNone {
		parts = append(parts, "!"+string(t.Priority))
	}
	if len(t.Subtasks) > 0 {
		parts = append(parts, fmt.Sprintf("%d%%", t.Progress))
	}
	if t.IsPartOfMultiDay {
		parts = append(parts, fmt.Sprintf("(day %d)", t.MultiDaySequence))
	}
	if t.IsTimeFixed {
		parts = append(parts, "(fixed)")
	}
	if t.IsFocused {
		parts = append(parts, "<- focus")
	}
	return strings.Join(parts, " ")
}

// Span formats the task interval as HH:MM-HH:MM, marking ends on the next
// day with "+1".
func Span(t model.Task) string {
	if !t.HasStart() {
		return "--:--"
	}
	end := t.End().In(t.StartTime.Location())
	span := t.StartTime.Format(model.TimeKeyLayout) + "-" + end.Format(model.TimeKeyLayout)
	if timeline.EndsNextDay(t) {
		span += "+1"
	}
	return span
}

func gapLine(g model.Task) string {
	style, ok := gapStyles[g.GapType]
	if !ok {
		style = footerStyle
	}
	line := fmt.Sprintf("  %s-%s · %s (%s)",
		g.GapStartTime.Format(model.TimeKeyLayout),
		g.GapEndTime.Format(model.TimeKeyLayout),
		g.GapType.Label(),
		HumanDuration(g.Duration),
	)
	return style.Render(line)
}

// HumanDuration renders whole minutes as "45m", "2h" or "1h30m".
func HumanDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%dm", h, m)
	}
}
