package elapsed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"hyprecorder/internal/recorder"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		d        time.Duration
		expected string
	}{
		{"zero", 0, "00:00:00"},
		{"one hour two minutes five seconds", 3725 * time.Second, "01:02:05"},
		{"past a day", 90000 * time.Second, "25:00:00"},
		{"sub-second truncates", 999 * time.Millisecond, "00:00:00"},
		{"just under a minute", 59*time.Second + 900*time.Millisecond, "00:00:59"},
		{"negative clamps", -5 * time.Second, "00:00:00"},
		{"three digit hours", 100*time.Hour + 59*time.Minute + 59*time.Second, "100:59:59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Format(tt.d))
		})
	}
}

type stubSource struct {
	mu     sync.Mutex
	status recorder.Status
}

func (s *stubSource) Status() recorder.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *stubSource) set(st recorder.Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

func TestTimerTick(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	src := &stubSource{}
	timer := NewTimer(src)

	_, ok := timer.Tick(start.Add(time.Minute))
	assert.False(t, ok, "idle session produces no update")

	src.set(recorder.Status{State: recorder.StateRecording, StartedAt: start})

	got, ok := timer.Tick(start)
	require.True(t, ok)
	assert.Equal(t, "00:00:00", got)

	got, ok = timer.Tick(start.Add(3725 * time.Second))
	require.True(t, ok)
	assert.Equal(t, "01:02:05", got)

	got, ok = timer.Tick(start.Add(-2 * time.Second))
	require.True(t, ok)
	assert.Equal(t, "00:00:00", got, "clock skew clamps to zero")

	src.set(recorder.Status{State: recorder.StateIdle})
	_, ok = timer.Tick(start.Add(time.Hour))
	assert.False(t, ok)
}

func TestRunKeepsTickingUntilCancelled(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())

	ticks := make(chan time.Time, 10)
	done := make(chan struct{})
	go func() {
		Run(ctx, clock, time.Second, func(now time.Time) { ticks <- now })
		close(done)
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		select {
		case <-ticks:
		case <-time.After(time.Second):
			t.Fatalf("tick %d did not fire", i+1)
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
