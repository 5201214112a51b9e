package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sandeepkv93/taskline/internal/model"
)

type DetailData struct {
	Task  *model.Task
	Width int
	// Style is a glamour standard style name; empty detects the terminal.
	Style string
}

func RenderTaskDetail(data DetailData) string {
	if data.Task == nil {
		return "details:\n(no selection)"
	}
	width := data.Width
	if width <= 0 {
		width = defaultWidth / 2
	}
	return RenderMarkdown(TaskMarkdown(*data.Task), width, data.Style)
}

// TaskMarkdown describes a task as a markdown document.
func TaskMarkdown(t model.Task) string {
	var b strings.Builder
	title := t.Title
	if t.Emoji != "" {
		title = t.Emoji + " " + title
	}
	b.WriteString("# " + title + "\n\n")
	if t.HasStart() {
		b.WriteString(fmt.Sprintf("- **When:** %s %s (%s)\n", t.TaskDate, Span(t), HumanDuration(t.Duration)))
	}
	b.WriteString(fmt.Sprintf("- **Priority:** %s\n", t.Priority))
	b.WriteString(fmt.Sprintf("- **Category:** %s\n", t.Category))
	if t.DueDate != nil {
		b.WriteString(fmt.Sprintf("- **Due:** %s\n", t.DueDate.Format("2006-01-02 15:04")))
	}
	status := "open"
	switch {
	case t.Completed:
		status = "done"
	case t.IsFocused:
		status = "in focus"
	}
	b.WriteString(fmt.Sprintf("- **Status:** %s, %d%%\n", status, t.Progress))
	b.WriteString(fmt.Sprintf("- **ID:** `%s`\n", t.ID))

	if len(t.Subtasks) > 0 {
		subs := append([]model.Subtask(nil), t.Subtasks...)
		sort.SliceStable(subs, func(i, j int) bool { return subs[i].Order < subs[j].Order })
		b.WriteString("\n## Subtasks\n\n")
		for i, s := range subs {
			mark := " "
			if s.IsCompleted {
				mark = "x"
			}
			b.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, mark, s.Title))
		}
	}
	if strings.TrimSpace(t.Notes) != "" {
		b.WriteString("\n## Notes\n\n")
		b.WriteString(strings.TrimSpace(t.Notes) + "\n")
	}
	return b.String()
}
