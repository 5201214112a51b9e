package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/log"
	"github.com/sandeepkv93/taskline/internal/logging"
	"github.com/sandeepkv93/taskline/internal/model"
	"github.com/sandeepkv93/taskline/internal/scheduler"
	"github.com/sandeepkv93/taskline/internal/tasks"
	"github.com/sandeepkv93/taskline/internal/timeline"
)

// gapsFlag is the collapse flag that hides gap entries when set.
const gapsFlag = "gaps"

// Store is the part of the task store the TUI drives.
type Store interface {
	Day(day time.Time) []model.Task
	Get(id string) (model.Task, error)
	Resolve(ref string) (model.Task, error)
	Create(ctx context.Context, in tasks.NewTask) (model.Task, error)
	Move(ctx context.Context, id string, newStart time.Time) (model.Task, []timeline.Shift, error)
	Focus(ctx context.Context, id string) (model.Task, []timeline.Shift, error)
	Focused() (model.Task, bool)
	ToggleComplete(ctx context.Context, id string) (model.Task, error)
	Delete(ctx context.Context, id string) error
	SegmentIDs(id string) []string
	NextAvailableSlot(day time.Time, duration time.Duration) (time.Time, bool)
	AddReminder(ctx context.Context, taskID string, at time.Time) (model.Reminder, error)
	MarkReminderFired(ctx context.Context, id string, at time.Time) error
	SetFlag(ctx context.Context, name string, v bool) error
	Flag(name string) bool
}

type StatusBar struct {
	Text    string
	IsError bool
}

type PaletteState struct {
	Active bool
	Input  string
}

type Options struct {
	Engine        *scheduler.Engine
	Now           func() time.Time
	Location      *time.Location
	ShowGaps      bool
	Logger        *log.Logger
	// MarkdownStyle is a glamour style for the detail pane; empty detects it.
	MarkdownStyle string
}

type Model struct {
	Day            time.Time
	Entries        []model.Task
	Cursor         int
	SelectedTaskID string
	ShowGaps       bool
	HelpVisible    bool
	Palette        PaletteState
	Status         StatusBar
	ReminderLog    []scheduler.ReminderEvent
	Width          int
	Height         int
	Quitting       bool
	LastError      error

	ctx    context.Context
	store  Store
	engine *scheduler.Engine
	now    func() time.Time
	loc    *time.Location
	logger *log.Logger
	keys   keyMap
	style  string

	commandInput textinput.Model
	detail       viewport.Model
	helpModel    help.Model
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type RefreshMsg struct{}

type ReminderDueMsg struct {
	Event scheduler.ReminderEvent
}

func NewModel(store Store, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	m := Model{
		ShowGaps: opts.ShowGaps && !store.Flag(gapsFlag),
		ctx:      context.Background(),
		store:    store,
		engine:   opts.Engine,
		now:      opts.Now,
		loc:      opts.Location,
		logger:   opts.Logger,
		keys:     defaultKeyMap(),
		style:    opts.MarkdownStyle,
		Width:    120,
		Height:   32,
	}
	m.Day = model.StartOfDay(m.clock())

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.Placeholder = "add standup @09:30 ~15m"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 56

	m.detail = viewport.New(56, 20)
	m.helpModel = help.New()

	m.refresh()
	return m
}

func (m Model) clock() time.Time {
	return m.now().In(m.loc)
}

// refresh reloads the displayed day and keeps the selection on the same task
// when it is still there.
func (m *Model) refresh() {
	m.Entries = m.store.Day(m.Day)
	selectable := m.selectable()
	if len(selectable) == 0 {
		m.Cursor = 0
		m.SelectedTaskID = ""
		m.syncDetail()
		return
	}
	for i, t := range selectable {
		if t.ID == m.SelectedTaskID {
			m.Cursor = i
			m.syncDetail()
			return
		}
	}
	m.Cursor = clamp(m.Cursor, 0, len(selectable)-1)
	m.SelectedTaskID = selectable[m.Cursor].ID
	m.syncDetail()
}

// selectable is the real tasks of the displayed day, in timeline order.
func (m Model) selectable() []model.Task {
	out := make([]model.Task, 0, len(m.Entries))
	for _, e := range m.Entries {
		if !e.IsGap {
			out = append(out, e)
		}
	}
	return out
}

func (m Model) selected() (model.Task, bool) {
	for _, e := range m.Entries {
		if !e.IsGap && e.ID == m.SelectedTaskID {
			return e, true
		}
	}
	return model.Task{}, false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
