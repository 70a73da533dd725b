package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	SubmitMessage key.Binding
	NewChat       key.Binding
	ToggleSidebar key.Binding
	NextChat      key.Binding
	PrevChat      key.Binding
	SelectChat    key.Binding
	DeleteChat    key.Binding
	RenameChat    key.Binding
	ConfirmRename key.Binding
	CancelRename  key.Binding
	Export        key.Binding
	CycleTheme    key.Binding
	Quit          key.Binding
}

var DefaultKeyMap = KeyMap{
	SubmitMessage: key.NewBinding(key.WithKeys("enter")),
	NewChat:       key.NewBinding(key.WithKeys("ctrl+n")),
	ToggleSidebar: key.NewBinding(key.WithKeys("tab", "ctrl+k")),
	NextChat:      key.NewBinding(key.WithKeys("down", "j")),
	PrevChat:      key.NewBinding(key.WithKeys("up", "k")),
	SelectChat:    key.NewBinding(key.WithKeys("enter")),
	DeleteChat:    key.NewBinding(key.WithKeys("ctrl+d")),
	RenameChat:    key.NewBinding(key.WithKeys("r")),
	ConfirmRename: key.NewBinding(key.WithKeys("enter")),
	CancelRename:  key.NewBinding(key.WithKeys("esc")),
	Export:        key.NewBinding(key.WithKeys("ctrl+e")),
	CycleTheme:    key.NewBinding(key.WithKeys("ctrl+t")),
	Quit:          key.NewBinding(key.WithKeys("ctrl+c")),
}
