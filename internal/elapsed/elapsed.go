// Package elapsed turns a recording's start time into the HH:MM:SS readout
// shown while a capture is running.
package elapsed

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"hyprecorder/internal/recorder"
)

// Zero is the readout before anything has been recorded
const Zero = "00:00:00"

// Format renders d as zero-padded HH:MM:SS. Hours are not wrapped at 24 and
// negative durations (clock skew) clamp to zero.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// Source is anything that can report the session status
type Source interface {
	Status() recorder.Status
}

// Timer derives the elapsed readout from a session
type Timer struct {
	source Source
}

func NewTimer(source Source) *Timer {
	return &Timer{source: source}
}

// Tick returns the readout at now, or false when the session is idle and
// the display should keep whatever it last showed.
func (t *Timer) Tick(now time.Time) (string, bool) {
	st := t.source.Status()
	if !st.Recording() {
		return "", false
	}
	return Format(now.Sub(st.StartedAt)), true
}

// Run calls fn every interval until ctx is cancelled. It keeps ticking while
// the session is idle so the readout resumes as soon as a recording starts.
func Run(ctx context.Context, clock clockwork.Clock, interval time.Duration, fn func(now time.Time)) {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.Chan():
			fn(now)
		}
	}
}
