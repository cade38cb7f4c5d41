package recorder

import (
	"errors"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"hyprecorder/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var outputPattern = regexp.MustCompile(`^output/output_\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}\.mp4$`)

func newTestManager(t *testing.T, launcher *fakeLauncher) (*Manager, *clockwork.FakeClock, afero.Fs) {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local))
	fs := afero.NewMemMapFs()
	m := NewManager(Options{
		OutputDir: "output",
		Recorder:  config.DefaultConfig().Recorder,
		Launcher:  launcher,
		Clock:     clock,
		Fs:        fs,
	})
	t.Cleanup(func() { _ = m.Close() })

	return m, clock, fs
}

// assertInvariant checks process handle ⇔ start time ⇔ recording
func assertInvariant(t *testing.T, m *Manager) {
	t.Helper()

	m.mu.RLock()
	sess := m.session
	m.mu.RUnlock()

	st := m.Status()
	if st.Recording() {
		require.NotNil(t, sess)
		assert.NotNil(t, sess.proc)
		assert.False(t, st.StartedAt.IsZero())
		assert.NotEmpty(t, st.OutputPath)
		assert.NotEmpty(t, st.ID)
	} else {
		assert.Nil(t, sess)
		assert.True(t, st.StartedAt.IsZero())
		assert.Empty(t, st.OutputPath)
		assert.Empty(t, st.ID)
	}
}

func drain(m *Manager) []Event {
	var got []Event
	for {
		select {
		case ev := <-m.Events():
			got = append(got, ev)
		default:
			return got
		}
	}
}

func TestStartStopCycle(t *testing.T) {
	launcher := &fakeLauncher{}
	m, clock, fs := newTestManager(t, launcher)

	assert.Equal(t, StateIdle, m.Status().State)
	assertInvariant(t, m)

	st, err := m.Start()
	require.NoError(t, err)
	assert.Equal(t, StateRecording, st.State)
	assert.Equal(t, "output/output_2024-03-09_14-05-07.mp4", st.OutputPath)
	assert.Regexp(t, outputPattern, st.OutputPath)
	assertInvariant(t, m)

	exists, err := afero.DirExists(fs, "output")
	require.NoError(t, err)
	assert.True(t, exists, "output directory should be created")

	require.Len(t, launcher.calls, 1)
	assert.Equal(t, "wf-recorder", launcher.calls[0].name)
	assert.Equal(t, Args(config.DefaultConfig().Recorder, st.OutputPath), launcher.calls[0].args)

	clock.Advance(3725 * time.Second)

	rec, err := m.Stop()
	require.NoError(t, err)
	assert.Equal(t, st.OutputPath, rec.OutputPath)
	assert.Equal(t, st.ID, rec.ID)
	assert.Equal(t, 3725*time.Second, rec.Duration)
	assert.Equal(t, StateIdle, m.Status().State)
	assertInvariant(t, m)

	events := drain(m)
	require.Len(t, events, 2)
	assert.Equal(t, EventStarted, events[0].Type)
	assert.Equal(t, EventStopped, events[1].Type)
}

func TestStartTwiceReportsAlreadyActive(t *testing.T) {
	launcher := &fakeLauncher{}
	m, _, _ := newTestManager(t, launcher)

	first, err := m.Start()
	require.NoError(t, err)

	second, err := m.Start()
	require.ErrorIs(t, err, ErrAlreadyActive)
	assert.Equal(t, first, second, "existing session must be untouched")
	assert.Equal(t, 1, launcher.launched(), "exactly one capture process")
	assert.Empty(t, launcher.last().received(), "existing process must not be signalled")
	assertInvariant(t, m)
}

func TestStopWhileIdleReportsNotActive(t *testing.T) {
	launcher := &fakeLauncher{}
	m, _, fs := newTestManager(t, launcher)

	_, err := m.Stop()
	require.ErrorIs(t, err, ErrNotActive)
	assert.Zero(t, launcher.launched())
	assert.Empty(t, drain(m))
	assertInvariant(t, m)

	exists, err := afero.DirExists(fs, "output")
	require.NoError(t, err)
	assert.False(t, exists, "stop must not touch the filesystem")
}

func TestStopSendsInterruptOnly(t *testing.T) {
	launcher := &fakeLauncher{}
	m, _, _ := newTestManager(t, launcher)

	_, err := m.Start()
	require.NoError(t, err)
	_, err = m.Stop()
	require.NoError(t, err)

	assert.Equal(t, []os.Signal{os.Interrupt}, launcher.last().received())
}

func TestOperationSequencesKeepInvariant(t *testing.T) {
	sequences := [][]string{
		{"start", "stop"},
		{"stop", "start", "start", "stop", "stop"},
		{"start", "start", "start", "stop", "start", "stop"},
		{"stop", "stop", "start", "stop", "start", "stop", "start"},
	}

	for i, seq := range sequences {
		t.Run(string(rune('a'+i)), func(t *testing.T) {
			launcher := &fakeLauncher{}
			m, clock, _ := newTestManager(t, launcher)

			recording := false
			for _, op := range seq {
				clock.Advance(time.Second)
				switch op {
				case "start":
					_, err := m.Start()
					if recording {
						require.ErrorIs(t, err, ErrAlreadyActive)
					} else {
						require.NoError(t, err)
					}
					recording = true
				case "stop":
					_, err := m.Stop()
					if recording {
						require.NoError(t, err)
					} else {
						require.ErrorIs(t, err, ErrNotActive)
					}
					recording = false
				}
				assert.Equal(t, recording, m.Status().Recording())
				assertInvariant(t, m)
			}
		})
	}
}

func TestSpawnFailureStaysIdle(t *testing.T) {
	launcher := &fakeLauncher{err: errors.New(`exec: "wf-recorder": executable file not found in $PATH`)}
	m, _, _ := newTestManager(t, launcher)

	_, err := m.Start()
	require.ErrorIs(t, err, ErrSpawn)
	assert.Contains(t, err.Error(), "executable file not found")
	assert.Equal(t, StateIdle, m.Status().State)
	assertInvariant(t, m)
	assert.Empty(t, drain(m))

	_, err = m.Stop()
	require.ErrorIs(t, err, ErrNotActive)
}

func TestOutputDirFailureStaysIdle(t *testing.T) {
	launcher := &fakeLauncher{}
	m := NewManager(Options{
		OutputDir: "output",
		Launcher:  launcher,
		Clock:     clockwork.NewFakeClock(),
		Fs:        afero.NewReadOnlyFs(afero.NewMemMapFs()),
	})
	t.Cleanup(func() { _ = m.Close() })

	_, err := m.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output directory")
	assert.Zero(t, launcher.launched(), "nothing spawned without an output directory")
	assertInvariant(t, m)
}

func TestUnexpectedExitReconciles(t *testing.T) {
	launcher := &fakeLauncher{}
	m, clock, _ := newTestManager(t, launcher)

	st, err := m.Start()
	require.NoError(t, err)

	clock.Advance(90 * time.Second)
	launcher.last().finish(errors.New("exit status 1"))

	require.Eventually(t, func() bool {
		return !m.Status().Recording()
	}, time.Second, 5*time.Millisecond)
	assertInvariant(t, m)

	events := drain(m)
	require.Len(t, events, 2)
	assert.Equal(t, EventStarted, events[0].Type)
	assert.Equal(t, EventExited, events[1].Type)
	assert.Equal(t, st.OutputPath, events[1].Recording.OutputPath)
	assert.Equal(t, 90*time.Second, events[1].Recording.Duration)
	require.Error(t, events[1].Recording.Err)

	_, err = m.Stop()
	require.ErrorIs(t, err, ErrNotActive)

	// The manager is reusable after a crash
	_, err = m.Start()
	require.NoError(t, err)
	assert.Equal(t, 2, launcher.launched())
}

func TestStopBlocksUntilExitWithoutBlockingStatus(t *testing.T) {
	launcher := &fakeLauncher{ignoreInterrupt: true}
	m, _, _ := newTestManager(t, launcher)

	_, err := m.Start()
	require.NoError(t, err)
	proc := launcher.last()

	done := make(chan Recording, 1)
	go func() {
		rec, err := m.Stop()
		assert.NoError(t, err)
		done <- rec
	}()

	require.Eventually(t, func() bool {
		return len(proc.received()) == 1
	}, time.Second, 5*time.Millisecond)

	// Still recording while the capture process finalizes
	assert.True(t, m.Status().Recording())
	_, err = m.Start()
	require.ErrorIs(t, err, ErrAlreadyActive)

	select {
	case <-done:
		t.Fatal("Stop returned before the capture process exited")
	case <-time.After(20 * time.Millisecond):
	}

	proc.finish(nil)

	select {
	case rec := <-done:
		assert.NoError(t, rec.Err)
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after the capture process exited")
	}
	assert.False(t, m.Status().Recording())
	assertInvariant(t, m)

	// No exit event for a requested stop
	for _, ev := range drain(m) {
		assert.NotEqual(t, EventExited, ev.Type)
	}
}

func TestCloseStopsActiveRecording(t *testing.T) {
	launcher := &fakeLauncher{}
	m, _, _ := newTestManager(t, launcher)

	_, err := m.Start()
	require.NoError(t, err)

	require.NoError(t, m.Close())
	assert.False(t, m.Status().Recording())
	assert.Equal(t, []os.Signal{os.Interrupt}, launcher.last().received())

	// Events channel is closed after buffered events drain
	for range m.Events() {
	}

	// Close is idempotent
	require.NoError(t, m.Close())
}
