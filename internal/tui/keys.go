package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the table's key bindings
type KeyMap struct {
	Hit          key.Binding
	Stand        key.Binding
	NewGame      key.Binding
	MorePlayers  key.Binding
	FewerPlayers key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the standard bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Hit:          key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "hit")),
		Stand:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stand")),
		NewGame:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new game")),
		MorePlayers:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more players")),
		FewerPlayers: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "fewer players")),
		ScrollUp:     key.NewBinding(key.WithKeys("up", "k", "pgup"), key.WithHelp("↑/k", "scroll log")),
		ScrollDown:   key.NewBinding(key.WithKeys("down", "j", "pgdown"), key.WithHelp("↓/j", "scroll log")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Hit, k.Stand, k.NewGame, k.MorePlayers, k.FewerPlayers, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Hit, k.Stand, k.NewGame},
		{k.MorePlayers, k.FewerPlayers},
		{k.ScrollUp, k.ScrollDown, k.Quit},
	}
}
