package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/sandeepkv93/taskline/internal/model"
	"github.com/sandeepkv93/taskline/internal/tasks"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatICS  Format = "ics"
)

var ErrUnknownFormat = errors.New("export: unknown format")

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatJSON, FormatYAML, FormatICS:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "ical":
		return FormatICS, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// Write renders the real tasks in list in the given format. Gap entries are
// skipped and tasks come out in start order.
func Write(w io.Writer, f Format, list []model.Task, now time.Time) error {
	list = realTasks(list)
	switch f {
	case FormatJSON:
		return JSON(w, list)
	case FormatYAML:
		return YAML(w, list)
	case FormatICS:
		return ICS(w, list, now)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

func realTasks(list []model.Task) []model.Task {
	out := make([]model.Task, 0, len(list))
	for _, t := range list {
		if !t.IsGap {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

// JSON writes the same records local storage keeps, indented.
func JSON(w io.Writer, list []model.Task) error {
	body, err := tasks.EncodeTasks(list)
	if err != nil {
		return fmt.Errorf("export: json: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return fmt.Errorf("export: json: %w", err)
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}

type yamlSubtask struct {
	Title string `yaml:"title"`
	Done  bool   `yaml:"done"`
}

type yamlTask struct {
	ID        string        `yaml:"id"`
	Title     string        `yaml:"title"`
	Emoji     string        `yaml:"emoji,omitempty"`
	Date      string        `yaml:"date"`
	Start     string        `yaml:"start"`
	End       string        `yaml:"end"`
	Duration  string        `yaml:"duration"`
	Priority  string        `yaml:"priority"`
	Category  string        `yaml:"category"`
	Due       string        `yaml:"due,omitempty"`
	Completed bool          `yaml:"completed"`
	Focused   bool          `yaml:"focused,omitempty"`
	Fixed     bool          `yaml:"fixed,omitempty"`
	Progress  int           `yaml:"progress"`
	Notes     string        `yaml:"notes,omitempty"`
	Subtasks  []yamlSubtask `yaml:"subtasks,omitempty"`
	MultiDay  string        `yaml:"multi_day_set,omitempty"`
}

func newYAMLTask(t model.Task) yamlTask {
	out := yamlTask{
		ID:        t.ID,
		Title:     t.Title,
		Emoji:     t.Emoji,
		Date:      t.TaskDate,
		Start:     t.StartTime.Format("15:04"),
		End:       t.End().Format("15:04"),
		Duration:  t.Duration.String(),
		Priority:  string(t.Priority),
		Category:  string(t.Category),
		Completed: t.Completed,
		Focused:   t.IsFocused,
		Fixed:     t.IsTimeFixed,
		Progress:  t.Progress,
		Notes:     t.Notes,
	}
	if t.IsPartOfMultiDay {
		out.MultiDay = t.MultiDaySetID
	}
	if t.DueDate != nil {
		out.Due = t.DueDate.Format("2006-01-02 15:04")
	}
	subs := append([]model.Subtask(nil), t.Subtasks...)
	sort.SliceStable(subs, func(i, j int) bool { return subs[i].Order < subs[j].Order })
	for _, s := range subs {
		out.Subtasks = append(out.Subtasks, yamlSubtask{Title: s.Title, Done: s.IsCompleted})
	}
	return out
}

func YAML(w io.Writer, list []model.Task) error {
	out := make([]yamlTask, 0, len(list))
	for _, t := range list {
		if t.IsGap {
			continue
		}
		out = append(out, newYAMLTask(t))
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("export: yaml: %w", err)
	}
	return enc.Close()
}
