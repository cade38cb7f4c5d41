package recorder

import (
	"path/filepath"
	"strconv"
	"time"

	"hyprecorder/internal/config"
)

// FileTimeLayout is the timestamp embedded in output file names
const FileTimeLayout = "2006-01-02_15-04-05"

// FilePrefix is the literal prefix of every output file name
const FilePrefix = "output_"

// OutputPath returns <dir>/output_<YYYY-MM-DD_HH-MM-SS>.<ext> for t in local time.
// Names have one-second resolution; only one session runs at a time.
func OutputPath(dir, ext string, t time.Time) string {
	return filepath.Join(dir, FilePrefix+t.Local().Format(FileTimeLayout)+"."+ext)
}

// Args builds the capture process arguments for one recording
func Args(rec config.Recorder, outputPath string) []string {
	audio := "--audio"
	if rec.Audio != "" {
		audio += "=" + rec.Audio
	}

	args := []string{
		audio,
		"--muxer", rec.Muxer,
		"--muxer-raw-fps", strconv.Itoa(rec.FPS),
	}
	args = append(args, rec.ExtraArgs...)
	return append(args, "--file", outputPath)
}
