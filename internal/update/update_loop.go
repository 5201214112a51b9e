package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/taskline/internal/model"
	"github.com/sandeepkv93/taskline/internal/scheduler"
	"github.com/sandeepkv93/taskline/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.engine != nil {
		return waitForReminderCmd(m.engine.C())
	}
	return nil
}

func waitForReminderCmd(ch <-chan scheduler.ReminderEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Event: ev}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = typed.Width, typed.Height
		m.detail.Width = max(typed.Width/2-6, 20)
		m.detail.Height = max(typed.Height-8, 5)
		m.syncDetail()
		return m, nil
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed), nil
		}
		return m.handleKey(typed)
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.fail(typed.Err)
		return m, nil
	case RefreshMsg:
		m.refresh()
		return m, nil
	case ReminderDueMsg:
		m.onReminder(typed.Event)
		if m.engine != nil {
			return m, waitForReminderCmd(m.engine.C())
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.HelpVisible = !m.HelpVisible
		m.helpModel.ShowAll = m.HelpVisible
	case key.Matches(msg, m.keys.Palette):
		m.Palette = PaletteState{Active: true}
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PrevDay):
		m.Day = m.Day.AddDate(0, 0, -1)
		m.refresh()
	case key.Matches(msg, m.keys.NextDay):
		m.Day = m.Day.AddDate(0, 0, 1)
		m.refresh()
	case key.Matches(msg, m.keys.Today):
		m.Day = model.StartOfDay(m.clock())
		m.refresh()
	case key.Matches(msg, m.keys.Refresh):
		m.refresh()
	case key.Matches(msg, m.keys.Gaps):
		m.toggleGaps()
	case key.Matches(msg, m.keys.Focus):
		if t, ok := m.selected(); ok {
			m.apply(m.focusTask(t))
		}
	case key.Matches(msg, m.keys.Complete):
		if t, ok := m.selected(); ok {
			m.apply(m.toggleTask(t))
		}
	case key.Matches(msg, m.keys.Delete):
		if t, ok := m.selected(); ok {
			m.apply(m.deleteTask(t))
		}
	default:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	selectable := m.selectable()
	if len(selectable) == 0 {
		return
	}
	m.Cursor = clamp(m.Cursor+delta, 0, len(selectable)-1)
	m.SelectedTaskID = selectable[m.Cursor].ID
	m.syncDetail()
}

func (m *Model) toggleGaps() {
	m.ShowGaps = !m.ShowGaps
	if err := m.store.SetFlag(m.ctx, gapsFlag, !m.ShowGaps); err != nil {
		m.fail(err)
		return
	}
	if m.ShowGaps {
		m.Status = StatusBar{Text: "gaps shown"}
	} else {
		m.Status = StatusBar{Text: "gaps hidden"}
	}
}

// apply shows the outcome of a store action and reloads the day.
func (m *Model) apply(message string, err error) {
	if err != nil {
		m.fail(err)
		return
	}
	m.Status = StatusBar{Text: message}
	m.refresh()
}

func (m *Model) fail(err error) {
	if err == nil {
		return
	}
	m.LastError = err
	m.Status = StatusBar{Text: err.Error(), IsError: true}
	m.logger.Warn("action failed", "err", err)
}

func (m *Model) syncDetail() {
	var detail views.DetailData
	detail.Width = m.detail.Width
	detail.Style = m.style
	if t, ok := m.selected(); ok {
		detail.Task = &t
	}
	m.detail.SetContent(views.RenderTaskDetail(detail))
	m.detail.GotoTop()
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = "status: error: " + m.Status.Text
		} else {
			status = "status: " + m.Status.Text
		}
	}

	focus := "none"
	if t, ok := m.store.Focused(); ok {
		focus = fmt.Sprintf("%s (%s)", t.Title, views.Span(t))
	}

	notification := ""
	if n := len(m.ReminderLog); n > 0 {
		last := m.ReminderLog[n-1]
		notification = views.RenderNotification("reminder", fmt.Sprintf("%s @ %s", last.Title, last.TriggerAt.In(m.loc).Format("15:04")))
	}

	palette := views.RenderCommandPalette(m.Palette.Active, m.commandInput.View())

	return views.RenderApp(views.AppData{
		Header: fmt.Sprintf("taskline | %s | focus: %s", m.Day.Format("Mon 2006-01-02"), focus),
		LeftPane: views.RenderTimeline(views.TimelineData{
			Day:        model.DayKey(m.Day),
			Entries:    m.Entries,
			SelectedID: m.SelectedTaskID,
			ShowGaps:   m.ShowGaps,
		}),
		RightPane:    m.detail.View(),
		Palette:      palette,
		StatusLine:   status,
		Notification: notification,
		Footer:       strings.TrimSpace(m.helpModel.View(m.keys)),
		Width:        m.Width,
	})
}
