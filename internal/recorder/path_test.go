package recorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hyprecorder/internal/config"
)

func TestOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dir      string
		ext      string
		at       time.Time
		expected string
	}{
		{
			name:     "default layout",
			dir:      "output",
			ext:      "mp4",
			at:       time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local),
			expected: "output/output_2024-03-09_14-05-07.mp4",
		},
		{
			name:     "zero padded midnight",
			dir:      "output",
			ext:      "mp4",
			at:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local),
			expected: "output/output_2025-01-01_00-00-00.mp4",
		},
		{
			name:     "nested dir and other container",
			dir:      "/home/user/Videos",
			ext:      "mkv",
			at:       time.Date(2023, 12, 31, 23, 59, 59, 999, time.Local),
			expected: "/home/user/Videos/output_2023-12-31_23-59-59.mkv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, OutputPath(tt.dir, tt.ext, tt.at))
		})
	}
}

func TestArgs(t *testing.T) {
	t.Parallel()

	rec := config.DefaultConfig().Recorder
	assert.Equal(t,
		[]string{"--audio", "--muxer", "mp4", "--muxer-raw-fps", "60", "--file", "output/a.mp4"},
		Args(rec, "output/a.mp4"),
	)

	rec.Audio = "alsa_input.usb-mic"
	rec.ExtraArgs = []string{"--codec", "libx264"}
	assert.Equal(t,
		[]string{
			"--audio=alsa_input.usb-mic", "--muxer", "mp4", "--muxer-raw-fps", "60",
			"--codec", "libx264", "--file", "output/b.mp4",
		},
		Args(rec, "output/b.mp4"),
	)
}
