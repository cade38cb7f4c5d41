package tui

import (
	"strings"

	"hyprecorder/internal/desktop"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// Column widths for the recordings list
const (
	RecordingSizeWidth = 10
	RecordingTimeWidth = 10
)

// Color palette, filled from the active catppuccin flavour
var (
	primaryColor   lipgloss.Color
	secondaryColor lipgloss.Color
	warningColor   lipgloss.Color
	dangerColor    lipgloss.Color
	mutedColor     lipgloss.Color
	surfaceColor   lipgloss.Color
	fgColor        lipgloss.Color
)

// Styles derived from the palette
var (
	titleStyle            lipgloss.Style
	statusStyle           lipgloss.Style
	recordingBadgeStyle   lipgloss.Style
	idleBadgeStyle        lipgloss.Style
	readoutStyle          lipgloss.Style
	readoutIdleStyle      lipgloss.Style
	errorStyle            lipgloss.Style
	selectedItemStyle     lipgloss.Style
	normalItemStyle       lipgloss.Style
	activeRecordingStyle  lipgloss.Style
	mutedStyle            lipgloss.Style
	helpStyle             lipgloss.Style
	columnHeaderBaseStyle lipgloss.Style
	noticeStyles          map[desktop.Level]lipgloss.Style
)

func init() {
	applyTheme("")
}

// applyTheme switches the palette to a catppuccin flavour by name.
// Unknown names fall back to mocha.
func applyTheme(name string) {
	flavour := catppuccin.Mocha
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "latte":
		flavour = catppuccin.Latte
	case "frappe":
		flavour = catppuccin.Frappe
	case "macchiato":
		flavour = catppuccin.Macchiato
	}

	primaryColor = lipgloss.Color(flavour.Mauve().Hex)
	secondaryColor = lipgloss.Color(flavour.Green().Hex)
	warningColor = lipgloss.Color(flavour.Peach().Hex)
	dangerColor = lipgloss.Color(flavour.Red().Hex)
	mutedColor = lipgloss.Color(flavour.Overlay1().Hex)
	surfaceColor = lipgloss.Color(flavour.Surface0().Hex)
	fgColor = lipgloss.Color(flavour.Text().Hex)

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(primaryColor)

	statusStyle = lipgloss.NewStyle().
		Foreground(mutedColor)

	recordingBadgeStyle = lipgloss.NewStyle().
		Bold(true).
		Background(dangerColor).
		Foreground(surfaceColor).
		Padding(0, 1)

	idleBadgeStyle = lipgloss.NewStyle().
		Background(surfaceColor).
		Foreground(mutedColor).
		Padding(0, 1)

	readoutStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(dangerColor).
		Padding(1, 2)

	readoutIdleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(mutedColor).
		Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
		Foreground(dangerColor).
		Bold(true).
		Padding(1)

	selectedItemStyle = lipgloss.NewStyle().
		Background(surfaceColor).
		Foreground(fgColor).
		Bold(true)

	normalItemStyle = lipgloss.NewStyle().
		Foreground(fgColor)

	activeRecordingStyle = lipgloss.NewStyle().
		Foreground(dangerColor).
		Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)

	helpStyle = lipgloss.NewStyle().
		Foreground(mutedColor)

	columnHeaderBaseStyle = lipgloss.NewStyle().
		Foreground(mutedColor).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(surfaceColor)

	noticeStyles = map[desktop.Level]lipgloss.Style{
		desktop.LevelInfo:    lipgloss.NewStyle().Foreground(secondaryColor),
		desktop.LevelWarning: lipgloss.NewStyle().Foreground(warningColor).Bold(true),
		desktop.LevelError:   lipgloss.NewStyle().Foreground(dangerColor).Bold(true),
	}
}

func TitleStyle() lipgloss.Style   { return titleStyle }
func StatusStyle() lipgloss.Style  { return statusStyle }
func ErrorStyle() lipgloss.Style   { return errorStyle }
func HelpStyle() lipgloss.Style    { return helpStyle }
func ReadoutStyle() lipgloss.Style { return readoutStyle }

// ColumnHeaderStyle returns the list header style at the given width
func ColumnHeaderStyle(width int) lipgloss.Style {
	return columnHeaderBaseStyle.Width(width)
}
