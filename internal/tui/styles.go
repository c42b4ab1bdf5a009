package tui

import "github.com/charmbracelet/lipgloss"

var (
	AccentColor = lipgloss.Color("#29B6F6")
	MutedColor  = lipgloss.Color("#94A3B8")
	EmoteColor  = lipgloss.Color("#FFE66D")
	ErrorColor  = lipgloss.Color("#EF4444")

	NickStyle     = lipgloss.NewStyle().Foreground(AccentColor).Bold(true)
	EmoteStyle    = lipgloss.NewStyle().Foreground(EmoteColor).Bold(true)
	PendingStyle  = lipgloss.NewStyle().Foreground(MutedColor)
	StatusStyle   = lipgloss.NewStyle().Foreground(MutedColor)
	ErrorStyle    = lipgloss.NewStyle().Foreground(ErrorColor)
	PickerStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(MutedColor)
	SelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(AccentColor)
)

// PendingGlyph stands in for an emote whose image has not been loaded.
const PendingGlyph = "▢"
