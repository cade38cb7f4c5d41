package tui

import (
	"context"
	"errors"
	"time"

	"hyprecorder/internal/desktop"
	"hyprecorder/internal/elapsed"
	"hyprecorder/internal/library"
	"hyprecorder/internal/recorder"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// notifyTimeout bounds a desktop notification round trip
const notifyTimeout = 2 * time.Second

// Opener hands directories and recordings to the desktop
type Opener interface {
	OpenDir(ctx context.Context, dir string) error
	OpenFile(ctx context.Context, path string) error
}

// ModelOptions wires the model to its collaborators
type ModelOptions struct {
	Manager      *recorder.Manager
	Library      *library.Watcher // optional
	Opener       Opener           // optional
	Notifier     desktop.Notifier // optional
	Theme        string
	TickInterval time.Duration
}

// notice is the last user-visible outcome of an action
type notice struct {
	level desktop.Level
	text  string
}

// Model represents the application state
type Model struct {
	// Core state
	manager  *recorder.Manager
	timer    *elapsed.Timer
	library  *library.Watcher
	opener   Opener
	notifier desktop.Notifier

	status   recorder.Status
	readout  string // last elapsed value shown, frozen while idle
	stopping bool   // Stop is waiting for the capture process
	quitting bool   // quit requested, waiting for Stop
	notice   notice
	entries  []library.Entry

	tickInterval time.Duration

	// UI components
	recordingList     list.Model
	recordingDelegate *recordingDelegate

	// UI dimensions
	width  int
	height int

	// Error state
	err error
}

// NewModel creates a new Model with initialized state
func NewModel(opts ModelOptions) Model {
	applyTheme(opts.Theme)

	recordingDel := newRecordingDelegate()

	m := Model{
		manager:           opts.Manager,
		library:           opts.Library,
		opener:            opts.Opener,
		notifier:          opts.Notifier,
		readout:           elapsed.Zero,
		tickInterval:      opts.TickInterval,
		recordingDelegate: recordingDel,
	}

	if m.manager == nil {
		m.err = errors.New("no recorder configured")
	} else {
		m.timer = elapsed.NewTimer(m.manager)
		m.status = m.manager.Status()
	}
	if m.notifier == nil {
		m.notifier = desktop.NopNotifier{}
	}
	if m.tickInterval <= 0 {
		m.tickInterval = time.Second
	}

	m.recordingList = list.New([]list.Item{}, recordingDel, 0, 0)
	m.recordingList.SetShowTitle(false)
	m.recordingList.SetShowHelp(false)
	m.recordingList.SetShowStatusBar(false)
	m.recordingList.SetFilteringEnabled(false)
	m.recordingList.DisableQuitKeybindings()

	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.discoverRecordingsCmd(),
		m.watchLibraryCmd(),
		m.watchSessionCmd(),
		m.tickCmd(),
	)
}

// Message types
type (
	tickMsg             time.Time
	sessionEventMsg     recorder.Event
	recordingsFoundMsg  []library.Entry
	libraryEventMsg     library.WatchEvent
	startedMsg          struct{ status recorder.Status }
	stoppedMsg          struct{ recording recorder.Recording }
	openedMsg           struct{ target string }
	errMsg              struct{ error } // General error
	libraryErrMsg       struct{ error } // Watcher error, re-arms the watch
	actionErrMsg        struct{ error } // Start/stop/open failure shown as a notice
	sessionClosedMsg    struct{}
	libraryClosedMsg    struct{}
	notificationSentMsg struct{}
)

func (t tickMsg) time() time.Time { return time.Time(t) }

// tickCmd re-arms the display refresh. It is issued on every tick whatever
// the session state, so it runs for the lifetime of the program.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// startCmd spawns the capture process
func (m Model) startCmd() tea.Cmd {
	return func() tea.Msg {
		st, err := m.manager.Start()
		if err != nil {
			return actionErrMsg{err}
		}
		return startedMsg{status: st}
	}
}

// stopCmd interrupts the capture process and waits for it off the event loop
func (m Model) stopCmd() tea.Cmd {
	return func() tea.Msg {
		rec, err := m.manager.Stop()
		if err != nil {
			return actionErrMsg{err}
		}
		return stoppedMsg{recording: rec}
	}
}

// openCmd opens the output directory in the file browser
func (m Model) openCmd() tea.Cmd {
	return func() tea.Msg {
		if m.opener == nil {
			return actionErrMsg{errors.New("no file browser configured")}
		}
		dir := m.manager.OutputDir()
		if err := m.opener.OpenDir(context.Background(), dir); err != nil {
			return actionErrMsg{err}
		}
		return openedMsg{target: dir}
	}
}

// playCmd opens the selected recording with its default application
func (m Model) playCmd(entry library.Entry) tea.Cmd {
	return func() tea.Msg {
		if m.opener == nil {
			return actionErrMsg{errors.New("no file browser configured")}
		}
		if err := m.opener.OpenFile(context.Background(), entry.Path); err != nil {
			return actionErrMsg{err}
		}
		return openedMsg{target: entry.Name}
	}
}

// watchSessionCmd waits for the next session lifecycle event
func (m Model) watchSessionCmd() tea.Cmd {
	return func() tea.Msg {
		if m.manager == nil {
			return nil
		}
		ev, ok := <-m.manager.Events()
		if !ok {
			return sessionClosedMsg{}
		}
		return sessionEventMsg(ev)
	}
}

// discoverRecordingsCmd lists existing recordings
func (m Model) discoverRecordingsCmd() tea.Cmd {
	return func() tea.Msg {
		if m.library == nil {
			return nil
		}
		entries, err := m.library.Discover()
		if err != nil {
			return errMsg{err}
		}
		return recordingsFoundMsg(entries)
	}
}

// refreshLibraryCmd picks up size changes of files being written
func (m Model) refreshLibraryCmd() tea.Cmd {
	if m.library == nil {
		return nil
	}
	return func() tea.Msg {
		if !m.library.Refresh() {
			return nil
		}
		return recordingsFoundMsg(m.library.Entries())
	}
}

// watchLibraryCmd returns a command that waits for output directory events
func (m Model) watchLibraryCmd() tea.Cmd {
	return func() tea.Msg {
		if m.library == nil {
			return nil
		}
		select {
		case event, ok := <-m.library.Events:
			if !ok {
				return libraryClosedMsg{}
			}
			return libraryEventMsg(event)
		case err, ok := <-m.library.Errors:
			if !ok {
				return libraryClosedMsg{}
			}
			return libraryErrMsg{err}
		}
	}
}

// notifyCmd mirrors a notice on the desktop. Failures are ignored.
func (m Model) notifyCmd(n notice) tea.Cmd {
	notifier := m.notifier
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		_ = notifier.Notify(ctx, n.level, "hypRecorder", n.text)
		return notificationSentMsg{}
	}
}

// updateRecordingList rebuilds the recordings list items
func (m Model) updateRecordingList() Model {
	items := make([]list.Item, len(m.entries))
	for i, e := range m.entries {
		items[i] = recordingItem{
			entry:  e,
			active: m.status.Recording() && e.Path == m.status.OutputPath,
		}
	}
	m.recordingList.SetItems(items)
	return m
}

// updateListSizes updates list dimensions based on terminal size
func (m Model) updateListSizes() Model {
	// Reserve space for header (2), readout (4), notice (2), column headers (1), help (2)
	listHeight := m.height - 11
	if listHeight < 3 {
		listHeight = 3
	}
	listWidth := m.width - 4
	if listWidth < 20 {
		listWidth = 20
	}

	m.recordingDelegate.SetWidth(listWidth)
	m.recordingList.SetSize(listWidth, listHeight)

	return m
}

// SelectedRecording returns the highlighted recording or nil
func (m Model) SelectedRecording() *library.Entry {
	item, ok := m.recordingList.SelectedItem().(recordingItem)
	if !ok {
		return nil
	}
	return &item.entry
}
