package ui

import "github.com/charmbracelet/lipgloss"

type Style struct {
	Sidebar        lipgloss.Style
	GroupHeader    lipgloss.Style
	ChatEntry      lipgloss.Style
	ActiveChat     lipgloss.Style
	SelectedChat   lipgloss.Style
	UserMessage    lipgloss.Style
	SourceLine     lipgloss.Style
	FollowUp       lipgloss.Style
	StatusBar      lipgloss.Style
	StatusError    lipgloss.Style
	InputFocused   lipgloss.Style
	InputUnfocused lipgloss.Style
}

type BorderColors struct {
	Unfocused string
	Focused   string
}

func DefaultStyles() *Style {
	lightMode := BorderColors{
		Unfocused: "#CCCCCC",
		Focused:   "#5F87FF",
	}
	darkMode := BorderColors{
		Unfocused: "#444444",
		Focused:   "#87AFFF",
	}

	borderColor := func(focused bool) lipgloss.AdaptiveColor {
		if focused {
			return lipgloss.AdaptiveColor{Light: lightMode.Focused, Dark: darkMode.Focused}
		}
		return lipgloss.AdaptiveColor{Light: lightMode.Unfocused, Dark: darkMode.Unfocused}
	}

	return &Style{
		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(borderColor(false)).
			Padding(0, 1),
		GroupHeader: lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}).
			MarginTop(1),
		ChatEntry: lipgloss.NewStyle().PaddingLeft(1),
		ActiveChat: lipgloss.NewStyle().PaddingLeft(1).Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: lightMode.Focused, Dark: darkMode.Focused}),
		SelectedChat: lipgloss.NewStyle().PaddingLeft(1).Reverse(true),
		UserMessage: lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#005F87", Dark: "#5FD7FF"}),
		SourceLine: lipgloss.NewStyle().Faint(true),
		FollowUp: lipgloss.NewStyle().Italic(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#875F00", Dark: "#D7AF5F"}),
		StatusBar: lipgloss.NewStyle().Faint(true),
		StatusError: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}),
		InputFocused: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			Padding(0, 1).BorderForeground(borderColor(true)),
		InputUnfocused: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).
			Padding(0, 1).BorderForeground(borderColor(false)),
	}
}
