package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/blackjack/internal/game"
)

// Colours shared by the interactive and plain renderers
const (
	colorText   = "#FAFAFA"
	colorAccent = "#7D56F4"
	colorGreen  = "#04B575"
	colorRed    = "#FF6B6B"
	colorYellow = "#FFD700"
	colorMuted  = "#626262"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorText)).
			Background(lipgloss.Color(colorAccent)).
			Bold(true).
			Padding(0, 1)

	GameLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorText))

	RedCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorRed)).
			Bold(true)

	BlackCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorText)).
			Bold(true)

	CardBackStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorAccent))

	CurrentPlayerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(colorGreen)).
				Bold(true)

	PlayerInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorText))

	WinStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorYellow)).
			Bold(true)

	LoseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorRed)).
			Bold(true)

	TieStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorText)).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorRed)).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorMuted))

	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorMuted))
)

// OutcomeStyle picks the result colour: win yellow, lose red, tie white
func OutcomeStyle(o game.Outcome) lipgloss.Style {
	switch o {
	case game.OutcomeWin:
		return WinStyle
	case game.OutcomeLose:
		return LoseStyle
	case game.OutcomeTie:
		return TieStyle
	default:
		return PlayerInfoStyle
	}
}
