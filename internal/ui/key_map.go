package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	embed    key.Binding
	playlist key.Binding
	cancel   key.Binding
	theme    key.Binding
	help     key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		embed:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "embed")),
		playlist: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "playlist")),
		cancel:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cancel")),
		theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.embed, k.playlist, k.quit, k.help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.embed, k.playlist},
		{k.cancel, k.theme},
		{k.help, k.quit},
	}
}
