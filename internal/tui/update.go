package tui

import (
	"errors"
	"fmt"

	"hyprecorder/internal/desktop"
	"hyprecorder/internal/elapsed"
	"hyprecorder/internal/library"
	"hyprecorder/internal/recorder"

	tea "github.com/charmbracelet/bubbletea"
)

// Update handles incoming messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m = m.updateListSizes()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if m.timer != nil {
			if readout, ok := m.timer.Tick(msg.time()); ok {
				m.readout = readout
			}
			m.status = m.manager.Status()
		}
		return m, tea.Batch(m.tickCmd(), m.refreshLibraryCmd())

	case startedMsg:
		m.status = msg.status
		m.readout = elapsed.Zero
		m = m.updateRecordingList()
		return m.setNotice(desktop.LevelInfo, "Recording started: "+msg.status.OutputPath)

	case stoppedMsg:
		m.stopping = false
		m.status = m.manager.Status()
		m = m.updateRecordingList()
		var cmd tea.Cmd
		m, cmd = m.setNotice(desktop.LevelInfo, fmt.Sprintf("Recording stopped (%s): %s",
			elapsed.Format(msg.recording.Duration), msg.recording.OutputPath))
		if m.quitting {
			return m, tea.Sequence(cmd, tea.Quit)
		}
		return m, cmd

	case openedMsg:
		m.notice = notice{level: desktop.LevelInfo, text: "Opened " + msg.target}
		return m, nil

	case actionErrMsg:
		return m.handleActionError(msg.error)

	case sessionEventMsg:
		m.status = m.manager.Status()
		var cmd tea.Cmd
		if msg.Type == recorder.EventExited {
			m.stopping = false
			m = m.updateRecordingList()
			text := "Capture process exited unexpectedly: " + msg.Recording.OutputPath
			if msg.Recording.Err != nil {
				text += fmt.Sprintf(" (%v)", msg.Recording.Err)
			}
			m, cmd = m.setNotice(desktop.LevelError, text)
			if m.quitting {
				return m, tea.Quit
			}
		}
		return m, tea.Batch(cmd, m.watchSessionCmd())

	case recordingsFoundMsg:
		m.entries = []library.Entry(msg)
		m = m.updateRecordingList()
		return m, nil

	case libraryEventMsg:
		m.entries = m.library.Entries()
		m = m.updateRecordingList()
		return m, m.watchLibraryCmd()

	case libraryErrMsg:
		m.notice = notice{level: desktop.LevelError, text: msg.Error()}
		return m, m.watchLibraryCmd()

	case errMsg:
		m.notice = notice{level: desktop.LevelError, text: msg.Error()}
		return m, nil
	}

	return m, nil
}

// handleKey processes key bindings
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m.quit()

	case "s":
		if m.manager == nil {
			return m, nil
		}
		return m, m.startCmd()

	case "x":
		if m.manager == nil {
			return m, nil
		}
		if m.stopping {
			return m, nil
		}
		m.stopping = m.status.Recording()
		if m.stopping {
			m.notice = notice{level: desktop.LevelInfo, text: "Stopping recording..."}
		}
		return m, m.stopCmd()

	case "o":
		if m.manager == nil {
			return m, nil
		}
		return m, m.openCmd()

	case "enter":
		if entry := m.SelectedRecording(); entry != nil {
			return m, m.playCmd(*entry)
		}
		return m, nil

	case "r":
		return m, m.discoverRecordingsCmd()
	}

	// Navigation goes to the list
	var cmd tea.Cmd
	m.recordingList, cmd = m.recordingList.Update(msg)
	return m, cmd
}

// quit exits, stopping an active recording first so the capture process
// does not outlive the UI.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	if m.manager == nil || (!m.status.Recording() && !m.stopping) {
		return m, tea.Quit
	}

	m.quitting = true
	m.notice = notice{level: desktop.LevelInfo, text: "Stopping recording before exit..."}
	if m.stopping {
		return m, nil
	}
	m.stopping = true
	return m, m.stopCmd()
}

// handleActionError turns start/stop/open failures into notices
func (m Model) handleActionError(err error) (tea.Model, tea.Cmd) {
	m.stopping = false
	if m.manager != nil {
		m.status = m.manager.Status()
	}

	switch {
	case errors.Is(err, recorder.ErrAlreadyActive):
		return m.setNotice(desktop.LevelWarning, "Recording is already in progress.")
	case errors.Is(err, recorder.ErrNotActive):
		if m.quitting {
			return m, tea.Quit
		}
		return m.setNotice(desktop.LevelWarning, "Recording is not in progress.")
	default:
		m.quitting = false
		return m.setNotice(desktop.LevelError, err.Error())
	}
}

// setNotice records a notice and mirrors it on the desktop
func (m Model) setNotice(level desktop.Level, text string) (Model, tea.Cmd) {
	m.notice = notice{level: level, text: text}
	return m, m.notifyCmd(m.notice)
}
