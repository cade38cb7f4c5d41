package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesToFile(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	path := filepath.Join(t.TempDir(), "state", "hyprecorder.log")
	var extra bytes.Buffer

	closer, err := Init(path, false, &extra)
	require.NoError(t, err)

	log.Info().Str("output", "output/output_2024-01-02_03-04-05.mp4").Msg("recording started")
	log.Debug().Msg("hidden at info level")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path) //nolint:gosec // test file
	require.NoError(t, err)
	assert.Contains(t, string(data), "recording started")
	assert.NotContains(t, string(data), "hidden at info level")
	assert.Contains(t, extra.String(), "output_2024-01-02_03-04-05.mp4")
}

func TestInitDebugLevel(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	var buf bytes.Buffer
	closer, err := Init(filepath.Join(t.TempDir(), "debug.log"), true, &buf)
	require.NoError(t, err)
	defer func() { _ = closer.Close() }()

	l := Component("recorder")
	l.Debug().Msg("tick")
	assert.Contains(t, buf.String(), `"component":"recorder"`)
	assert.Contains(t, buf.String(), "tick")
}

func TestFileComponentSkipsExtraWriters(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	})

	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "record.log")
	closer, err := Init(path, false, &buf)
	require.NoError(t, err)
	defer func() { _ = closer.Close() }()

	capture := FileComponent("wf-recorder")
	_, err = capture.Write([]byte("Frame 120 written\n"))
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "Frame 120 written", "capture output must stay off the terminal")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Frame 120 written")
	assert.Contains(t, string(data), `"component":"wf-recorder"`)
}
