package recorder

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/frostbyte73/core"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"hyprecorder/internal/config"
)

// Options configures a Manager. Zero-valued collaborators get real defaults.
type Options struct {
	OutputDir string
	Recorder  config.Recorder
	Launcher  Launcher
	Clock     clockwork.Clock
	Fs        afero.Fs
}

// session is the in-memory record of one active capture
type session struct {
	id         string
	proc       Process
	startedAt  time.Time
	outputPath string

	// Broken by the exit watcher once Wait returns. Usable as a zero value.
	exited    core.Fuse
	stoppedAt time.Time
	exitErr   error

	// Set by Stop before signalling; distinguishes Stop from a crash
	stopping bool
}

func (s *session) recording() Recording {
	d := s.stoppedAt.Sub(s.startedAt)
	if d < 0 {
		d = 0
	}
	return Recording{
		ID:         s.id,
		OutputPath: s.outputPath,
		StartedAt:  s.startedAt,
		StoppedAt:  s.stoppedAt,
		Duration:   d,
		Err:        s.exitErr,
	}
}

// Manager supervises at most one capture process at a time.
//
// The session pointer is non-nil exactly while a capture process is alive,
// so process handle, start time and the recording state always agree.
type Manager struct {
	outputDir string
	rec       config.Recorder
	launcher  Launcher
	clock     clockwork.Clock
	fs        afero.Fs

	mu      sync.RWMutex
	session *session
	events  chan Event
	closed  bool
}

// NewManager creates an idle Manager
func NewManager(opts Options) *Manager {
	m := &Manager{
		outputDir: opts.OutputDir,
		rec:       opts.Recorder,
		launcher:  opts.Launcher,
		clock:     opts.Clock,
		fs:        opts.Fs,
		events:    make(chan Event, 16),
	}

	if m.outputDir == "" {
		m.outputDir = config.DefaultConfig().OutputDir
	}
	if m.rec.Binary == "" {
		m.rec = config.DefaultConfig().Recorder
	}
	if m.launcher == nil {
		m.launcher = &ExecLauncher{}
	}
	if m.clock == nil {
		m.clock = clockwork.NewRealClock()
	}
	if m.fs == nil {
		m.fs = afero.NewOsFs()
	}

	return m
}

// Events delivers lifecycle events. Sends never block; events are dropped
// when nobody is reading. Closed by Close.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// OutputDir returns the directory recordings are written to
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// Start creates the output directory, spawns the capture process and moves
// the session to recording. Fails with ErrAlreadyActive if a capture is running.
func (m *Manager) Start() (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return m.statusLocked(), ErrAlreadyActive
	}

	if err := m.fs.MkdirAll(m.outputDir, 0o755); err != nil {
		return Status{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	now := m.clock.Now()
	outputPath := OutputPath(m.outputDir, m.rec.Extension, now)

	proc, err := m.launcher.Launch(m.rec.Binary, Args(m.rec, outputPath)...)
	if err != nil {
		log.Error().Err(err).Str("binary", m.rec.Binary).Msg("recorder: spawn failed")
		return Status{}, fmt.Errorf("%w: %w", ErrSpawn, err)
	}

	sess := &session{
		id:         uuid.NewString(),
		proc:       proc,
		startedAt:  now,
		outputPath: outputPath,
	}
	m.session = sess

	go m.watch(sess)

	log.Info().
		Str("id", sess.id).
		Int("pid", proc.Pid()).
		Str("output", outputPath).
		Msg("recorder: recording started")

	m.emitLocked(Event{Type: EventStarted, Recording: Recording{
		ID:         sess.id,
		OutputPath: outputPath,
		StartedAt:  now,
	}})

	return m.statusLocked(), nil
}

// Stop sends an interrupt to the capture process and blocks until it has
// exited. There is no timeout: a capture process that ignores the interrupt
// blocks Stop. Status stays readable while Stop waits.
func (m *Manager) Stop() (Recording, error) {
	m.mu.Lock()
	sess := m.session
	if sess == nil {
		m.mu.Unlock()
		return Recording{}, ErrNotActive
	}

	if !sess.stopping {
		sess.stopping = true
		if err := sess.proc.Signal(os.Interrupt); err != nil && !errors.Is(err, os.ErrProcessDone) {
			sess.stopping = false
			m.mu.Unlock()
			return Recording{}, fmt.Errorf("failed to interrupt capture process: %w", err)
		}
		log.Debug().Str("id", sess.id).Msg("recorder: interrupt sent, waiting for exit")
	}
	m.mu.Unlock()

	<-sess.exited.Watch()

	rec := sess.recording()

	m.mu.Lock()
	m.emitLocked(Event{Type: EventStopped, Recording: rec})
	m.mu.Unlock()

	log.Info().
		Str("id", rec.ID).
		Str("output", rec.OutputPath).
		Dur("duration", rec.Duration).
		AnErr("exit", rec.Err).
		Msg("recorder: recording stopped")

	return rec, nil
}

// Status returns the current session snapshot without side effects
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statusLocked()
}

// Close stops an active recording and closes the event channel
func (m *Manager) Close() error {
	_, err := m.Stop()
	if errors.Is(err, ErrNotActive) {
		err = nil
	}

	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	m.mu.Unlock()

	return err
}

// watch owns Wait for one capture process and clears the session when it
// exits, whether or not Stop asked it to.
func (m *Manager) watch(sess *session) {
	err := sess.proc.Wait()

	m.mu.Lock()
	sess.stoppedAt = m.clock.Now()
	sess.exitErr = err
	unexpected := !sess.stopping
	if m.session == sess {
		m.session = nil
	}
	if unexpected {
		log.Warn().
			Err(err).
			Str("id", sess.id).
			Str("output", sess.outputPath).
			Msg("recorder: capture process exited unexpectedly")
		m.emitLocked(Event{Type: EventExited, Recording: sess.recording()})
	}
	m.mu.Unlock()

	sess.exited.Break()
}

// statusLocked must be called with m.mu held
func (m *Manager) statusLocked() Status {
	if m.session == nil {
		return Status{State: StateIdle}
	}
	return Status{
		State:      StateRecording,
		ID:         m.session.id,
		StartedAt:  m.session.startedAt,
		OutputPath: m.session.outputPath,
	}
}

// emitLocked must be called with m.mu held for writing
func (m *Manager) emitLocked(ev Event) {
	if m.closed {
		return
	}
	select {
	case m.events <- ev:
	default:
		// Event channel full
	}
}
