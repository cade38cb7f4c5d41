package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// fileLogger writes to the log file only, never to the extra writers
var fileLogger = zerolog.Nop()

// Init points the global zerolog logger at a rotating file. The terminal
// belongs to the TUI, so nothing is written to stdout unless extra writers
// are passed in. The returned closer flushes and closes the log file.
func Init(path string, debug bool, writers ...io.Writer) (io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1,
		MaxBackups: 2,
	}

	logWriters := append([]io.Writer{file}, writers...)

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Logger = log.Output(io.MultiWriter(logWriters...)).
		With().Timestamp().Caller().Logger()
	fileLogger = zerolog.New(file).With().Timestamp().Logger()

	return file, nil
}

// Component returns a child of the global logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// FileComponent is like Component but writes to the log file only. Used for
// chatty subprocess output that must not reach the terminal.
func FileComponent(name string) zerolog.Logger {
	return fileLogger.With().Str("component", name).Logger()
}
