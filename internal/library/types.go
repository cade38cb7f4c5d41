package library

import "time"

// Entry is a file in the output directory
type Entry struct {
	Name    string    // Base name, e.g. output_2024-03-09_14-05-07.mp4
	Path    string    // Full path
	Size    int64     // Bytes on disk, grows while the capture runs
	ModTime time.Time // Last write
}

// EventType describes what happened to an entry
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventRemoved EventType = "removed"
)

// WatchEvent represents an output directory change
type WatchEvent struct {
	Type  EventType
	Entry Entry
}
