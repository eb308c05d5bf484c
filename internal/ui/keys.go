package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pause   key.Binding
	Faster  key.Binding
	Slower  key.Binding
	VolUp   key.Binding
	VolDown key.Binding
	Reset   key.Binding
	Quit    key.Binding
}

func newKeyMap(hasTransport bool) keyMap {
	k := keyMap{
		Pause: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "pause"),
		),
		Faster: key.NewBinding(
			key.WithKeys("+", "=", "right", "l"),
			key.WithHelp("+/-", "spin"),
		),
		Slower: key.NewBinding(
			key.WithKeys("-", "_", "left", "h"),
		),
		VolUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/↓", "volume"),
		),
		VolDown: key.NewBinding(
			key.WithKeys("down", "j"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
	k.VolUp.SetEnabled(hasTransport)
	k.VolDown.SetEnabled(hasTransport)
	return k
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Faster, k.VolUp, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
