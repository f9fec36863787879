package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	esc       key.Binding
	tab       key.Binding
	backtab   key.Binding
	quit      key.Binding
	logout    key.Binding
	newItem   key.Binding
	status    key.Binding
	delete    key.Binding
	refresh   key.Binding
	dashboard key.Binding
}

var keys = keyMap{
	up:        key.NewBinding(key.WithKeys("up", "k")),
	down:      key.NewBinding(key.WithKeys("down", "j")),
	enter:     key.NewBinding(key.WithKeys("enter")),
	esc:       key.NewBinding(key.WithKeys("esc")),
	tab:       key.NewBinding(key.WithKeys("tab")),
	backtab:   key.NewBinding(key.WithKeys("shift+tab")),
	quit:      key.NewBinding(key.WithKeys("q", "ctrl+c")),
	logout:    key.NewBinding(key.WithKeys("o")),
	newItem:   key.NewBinding(key.WithKeys("n")),
	status:    key.NewBinding(key.WithKeys("s")),
	delete:    key.NewBinding(key.WithKeys("d")),
	refresh:   key.NewBinding(key.WithKeys("r")),
	dashboard: key.NewBinding(key.WithKeys("g")),
}
