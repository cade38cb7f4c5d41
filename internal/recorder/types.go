package recorder

import (
	"errors"
	"time"
)

var (
	// ErrAlreadyActive is returned by Start while a recording is in progress.
	ErrAlreadyActive = errors.New("recording is already in progress")

	// ErrNotActive is returned by Stop while idle.
	ErrNotActive = errors.New("recording is not in progress")

	// ErrSpawn wraps a failure to launch the capture process.
	ErrSpawn = errors.New("failed to start capture process")
)

// State is the session state machine position
type State int

const (
	StateIdle      State = iota // No capture process
	StateRecording              // Capture process running
)

func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	default:
		return "idle"
	}
}

// Status is a point-in-time snapshot of the session
type Status struct {
	State      State
	ID         string    // Recording UUID, empty when idle
	StartedAt  time.Time // Zero when idle
	OutputPath string    // Empty when idle
}

// Recording reports whether a capture process is active
func (s Status) Recording() bool {
	return s.State == StateRecording
}

// Recording describes a finished capture
type Recording struct {
	ID         string
	OutputPath string
	StartedAt  time.Time
	StoppedAt  time.Time
	Duration   time.Duration
	Err        error // Exit error of the capture process, informational
}

// EventType identifies a session lifecycle change
type EventType string

const (
	EventStarted EventType = "started"
	EventStopped EventType = "stopped"
	EventExited  EventType = "exited" // Process ended without Stop
)

// Event is published on Manager.Events
type Event struct {
	Type      EventType
	Recording Recording
}
