package update

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/taskline/internal/commands"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m.executePaletteCommand()
		m.closePalette()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
		} else {
			m.commandInput, _ = m.commandInput.Update(msg)
		}
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m *Model) closePalette() {
	m.Palette = PaletteState{}
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func result(message string, err error) (commands.Result, error) {
	return commands.Result{Message: message}, err
}

func (m *Model) executePaletteCommand() {
	cmd, err := commands.Parse(m.Palette.Input)
	if err != nil {
		m.fail(err)
		return
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			var start time.Time
			if a.At != "" {
				at, err := commands.ParseWhen(a.At, m.Day)
				if err != nil {
					return commands.Result{}, err
				}
				start = at
			}
			return result(m.addTask(a.Title, start, a.Duration))
		},
		Focus: func(a commands.TargetArgs) (commands.Result, error) {
			t, err := m.store.Resolve(a.Ref)
			if err != nil {
				return commands.Result{}, err
			}
			return result(m.focusTask(t))
		},
		Done: func(a commands.TargetArgs) (commands.Result, error) {
			t, err := m.store.Resolve(a.Ref)
			if err != nil {
				return commands.Result{}, err
			}
			return result(m.toggleTask(t))
		},
		Delete: func(a commands.TargetArgs) (commands.Result, error) {
			t, err := m.store.Resolve(a.Ref)
			if err != nil {
				return commands.Result{}, err
			}
			return result(m.deleteTask(t))
		},
		Move: func(a commands.MoveArgs) (commands.Result, error) {
			t, err := m.store.Resolve(a.Ref)
			if err != nil {
				return commands.Result{}, err
			}
			start, err := commands.ParseWhen(a.When, m.Day)
			if err != nil {
				return commands.Result{}, err
			}
			return result(m.moveTask(t, start))
		},
		Remind: func(a commands.RemindArgs) (commands.Result, error) {
			t, err := m.store.Resolve(a.Ref)
			if err != nil {
				return commands.Result{}, err
			}
			at, err := commands.ParseWhen(a.When, m.Day)
			if err != nil {
				return commands.Result{}, err
			}
			return result(m.remindTask(t, at))
		},
		Goto: func(a commands.GotoArgs) (commands.Result, error) {
			day, err := commands.ParseDay(a.Day, m.clock())
			if err != nil {
				return commands.Result{}, err
			}
			m.Day = day
			return commands.Result{Message: "showing " + day.Format("Mon 2006-01-02")}, nil
		},
	})
	m.apply(res.Message, err)
}
