package tui

import (
	"fmt"
	"strings"

	"hyprecorder/internal/elapsed"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI based on the model state
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.err != nil {
		return ErrorStyle().Render(fmt.Sprintf("Error: %v", m.err))
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	b.WriteString(m.renderReadout())
	b.WriteString("\n")

	b.WriteString(m.renderNotice())
	b.WriteString("\n\n")

	b.WriteString(m.renderRecordingHeaders())
	b.WriteString("\n")
	if len(m.entries) == 0 {
		b.WriteString(StatusStyle().Render("  No recordings yet"))
	} else {
		b.WriteString(m.recordingList.View())
	}

	// Help footer
	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

// renderHeader renders the top header bar
func (m Model) renderHeader() string {
	title := TitleStyle().Render("hypRecorder")

	var badge string
	switch {
	case m.stopping:
		badge = recordingBadgeStyle.Render("STOPPING")
	case m.status.Recording():
		badge = recordingBadgeStyle.Render("● REC")
	default:
		badge = idleBadgeStyle.Render("IDLE")
	}

	dir := StatusStyle().Render(" " + m.manager.OutputDir())

	// Calculate spacing
	leftPart := lipgloss.Width(title)
	rightPart := lipgloss.Width(badge) + lipgloss.Width(dir)
	spacing := m.width - leftPart - rightPart - 4
	if spacing < 1 {
		spacing = 1
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		title,
		strings.Repeat(" ", spacing),
		badge,
		dir,
	)
}

// renderReadout renders the elapsed time and the file being written
func (m Model) renderReadout() string {
	readout := m.readout
	if readout == "" {
		readout = elapsed.Zero
	}

	style := readoutIdleStyle
	target := "Not recording"
	if m.status.Recording() {
		style = ReadoutStyle()
		target = "→ " + m.status.OutputPath
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		style.Render(readout),
		StatusStyle().Render(target),
	)
}

// renderNotice renders the outcome of the last action
func (m Model) renderNotice() string {
	if m.notice.text == "" {
		return ""
	}
	style, ok := noticeStyles[m.notice.level]
	if !ok {
		style = StatusStyle()
	}
	return style.Render(truncate(m.notice.text, max(10, m.width-2)))
}

// renderHelp renders the help footer
func (m Model) renderHelp() string {
	help := []string{
		"s:start",
		"x:stop",
		"o:open folder",
		"j/k:navigate",
		"enter:play",
		"r:refresh",
		"q:quit",
	}
	return HelpStyle().Render(strings.Join(help, " | "))
}

// renderRecordingHeaders renders column headers for the recordings list
func (m Model) renderRecordingHeaders() string {
	nameWidth := m.width - 4 - RecordingSizeWidth - RecordingTimeWidth - 6
	if nameWidth < 10 {
		nameWidth = 10
	}
	header := fmt.Sprintf("  %s  %s  %s",
		padRight("Recording", nameWidth),
		padLeft("Size", RecordingSizeWidth),
		padLeft("Modified", RecordingTimeWidth),
	)
	return ColumnHeaderStyle(m.width - 4).Render(header)
}

// padRight pads a string with spaces on the right to reach target width
func padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// padLeft pads a string with spaces on the left to reach target width
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return strings.Repeat(" ", width-len(s)) + s
}
