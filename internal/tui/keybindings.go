package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the TUI.
type KeyMap struct {
	// List navigation
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding

	// Interview
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding

	// Control
	Back  key.Binding
	CtrlC key.Binding
}

// DefaultKeyMap provides the default key bindings for the TUI.
// Interview bindings use ctrl chords so they never collide with typing.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Next: key.NewBinding(
		key.WithKeys("ctrl+n", "pgdown"),
		key.WithHelp("ctrl+n", "next question"),
	),
	Prev: key.NewBinding(
		key.WithKeys("ctrl+p", "pgup"),
		key.WithHelp("ctrl+p", "previous question"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "finish interview"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	CtrlC: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "exit"),
	),
}
