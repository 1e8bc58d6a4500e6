package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings shown in the help views. Routing
// happens in the input modes; this is the displayed vocabulary.
type KeyMap struct {
	// Result navigation.
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Session.
	Confirm key.Binding
	Cancel  key.Binding
	Remote  key.Binding

	// Preview pane.
	TogglePreview  key.Binding
	ScrollUp       key.Binding
	ScrollDown     key.Binding
	ScrollHalfPage key.Binding

	// Utilities.
	Copy  key.Binding
	Pager key.Binding
	Help  key.Binding
}

// DefaultKeyMap is the built-in key binding set
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑/ctrl+p", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓/ctrl+n", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "page down"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "cancel"),
	),
	Remote: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "channels"),
	),
	TogglePreview: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "preview"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("ctrl+up", "alt+up"),
		key.WithHelp("ctrl+↑", "scroll preview up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("ctrl+down", "alt+down"),
		key.WithHelp("ctrl+↓", "scroll preview down"),
	),
	ScrollHalfPage: key.NewBinding(
		key.WithKeys("ctrl+pgup", "ctrl+pgdown"),
		key.WithHelp("ctrl+pgup/pgdn", "scroll preview half page"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy"),
	),
	Pager: key.NewBinding(
		key.WithKeys("f3"),
		key.WithHelp("f3", "open in pager"),
	),
	Help: key.NewBinding(
		key.WithKeys("f1"),
		key.WithHelp("f1", "help"),
	),
}

// ShortHelp is the always-visible bottom bar set
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel, k.Remote, k.TogglePreview, k.Help}
}

// FullHelp feeds the expanded help overlay
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Confirm, k.Cancel, k.Remote},
		{k.TogglePreview, k.ScrollUp, k.ScrollDown, k.ScrollHalfPage},
		{k.Copy, k.Pager, k.Help},
	}
}
