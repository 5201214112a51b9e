package update

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevDay  key.Binding
	NextDay  key.Binding
	Today    key.Binding
	Focus    key.Binding
	Complete key.Binding
	Delete   key.Binding
	Gaps     key.Binding
	Palette  key.Binding
	Refresh  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		PrevDay:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "previous day")),
		NextDay:  key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next day")),
		Today:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Focus:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "focus now")),
		Complete: key.NewBinding(key.WithKeys("x", " "), key.WithHelp("x", "toggle done")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Gaps:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "toggle gaps")),
		Palette:  key.NewBinding(key.WithKeys("/", ":"), key.WithHelp("/", "command")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Focus, k.Complete, k.Palette, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevDay, k.NextDay, k.Today},
		{k.Focus, k.Complete, k.Delete, k.Gaps},
		{k.Palette, k.Refresh, k.Help, k.Quit},
	}
}
