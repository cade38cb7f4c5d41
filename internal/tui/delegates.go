package tui

import (
	"fmt"
	"io"
	"time"

	"hyprecorder/internal/library"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// recordingItem wraps a library Entry for the list component
type recordingItem struct {
	entry  library.Entry
	active bool // file currently being written by the capture process
}

func (i recordingItem) FilterValue() string { return i.entry.Name }
func (i recordingItem) Title() string       { return i.entry.Name }
func (i recordingItem) Description() string {
	return fmt.Sprintf("%s | %s", formatSize(i.entry.Size), formatTimeAgo(i.entry.ModTime))
}

// recordingDelegate renders recording items as a single row:
// indicator, name, size, modified
type recordingDelegate struct {
	width int
}

func newRecordingDelegate() *recordingDelegate {
	return &recordingDelegate{width: 80}
}

// SetWidth updates the row width used for the name column
func (d *recordingDelegate) SetWidth(w int) {
	d.width = w
}

func (d *recordingDelegate) Height() int                             { return 1 }
func (d *recordingDelegate) Spacing() int                            { return 0 }
func (d *recordingDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d *recordingDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(recordingItem)
	if !ok {
		return
	}

	nameWidth := d.width - RecordingSizeWidth - RecordingTimeWidth - 6
	if nameWidth < 10 {
		nameWidth = 10
	}

	var indicator string
	nameStyle := normalItemStyle
	if i.active {
		indicator = activeRecordingStyle.Render("● ")
		nameStyle = activeRecordingStyle
	} else {
		indicator = "  "
	}
	if index == m.Index() {
		nameStyle = selectedItemStyle
	}

	size := formatSize(i.entry.Size)
	if i.active {
		size = "recording"
	}

	name := nameStyle.Render(padRight(truncate(i.entry.Name, nameWidth), nameWidth))
	meta := mutedStyle.Render(fmt.Sprintf("%s  %s",
		padLeft(size, RecordingSizeWidth),
		padLeft(formatTimeAgo(i.entry.ModTime), RecordingTimeWidth),
	))

	fmt.Fprint(w, lipgloss.JoinHorizontal(lipgloss.Top, indicator, name, "  ", meta))
}

// ============================================================================
// Helper Functions
// ============================================================================

// formatTimeAgo returns a human-readable relative time string
func formatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	default:
		return t.Format("Jan 2")
	}
}

// formatSize renders a byte count with a binary unit
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// truncate shortens a string to max length with ellipsis
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
