package app

import "charm.land/bubbles/v2/key"

// KeyMap defines all global keybindings.
type KeyMap struct {
	Quit key.Binding

	// Navigation
	PageUp       key.Binding
	PageDown     key.Binding
	ScrollTop    key.Binding // g
	ScrollBottom key.Binding // G
	ScrollUp     key.Binding // k
	ScrollDown   key.Binding // j
	HalfPageUp   key.Binding // u
	HalfPageDown key.Binding // d

	// Follow toggles sticking to the bottom while output streams in.
	Follow key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c", "esc"),
			key.WithHelp("q", "quit"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "space", "f"),
			key.WithHelp("pgdn", "page down"),
		),
		ScrollTop: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		ScrollBottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k", "up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j", "down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("u", "ctrl+u"),
			key.WithHelp("u", "half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("d", "ctrl+d"),
			key.WithHelp("d", "half page down"),
		),
		Follow: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "follow"),
		),
	}
}

// ShortHelp lists the bindings shown in the status line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ScrollDown, k.ScrollUp, k.ScrollBottom, k.Quit}
}
