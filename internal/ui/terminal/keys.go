package terminal

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle    key.Binding
	Stop      key.Binding
	Metronome key.Binding
	AutoMute  key.Binding
	Faster    key.Binding
	Slower    key.Binding
	EditTempo key.Binding
	Commit    key.Binding
	Cancel    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle:    key.NewBinding(key.WithKeys(" ", "space", "p"), key.WithHelp("space", "start/pause")),
		Stop:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Metronome: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "metronome")),
		AutoMute:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "mute in rest")),
		Faster:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		Slower:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
		EditTempo: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "set tempo")),
		Commit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (keys keyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Toggle, keys.Stop, keys.Metronome, keys.Help, keys.Quit}
}

// FullHelp implements help.KeyMap.
func (keys keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{keys.Toggle, keys.Stop, keys.Quit},
		{keys.Metronome, keys.AutoMute},
		{keys.Faster, keys.Slower, keys.EditTempo},
	}
}
