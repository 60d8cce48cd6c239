package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Log is the process-wide debug logger. It discards everything until
// InitDebugLog enables it.
var Log = zerolog.Nop()

var Debug = false

// Logger returns Log tagged with a component name.
func Logger(component string) zerolog.Logger {
	return Log.With().Str("component", component).Logger()
}

// InitDebugLog enables file logging to <dataDir>/debug.log when RPO_DEBUG is set.
func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	logPath := filepath.Join(dataDir, "debug.log")

	// 0600 - may contain message text
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	SetLogOutput(f, zerolog.DebugLevel)
	Log.Info().Str("path", logPath).Msg("debug logging started")
}

// SetLogOutput routes Log to w. Used by the serve command, which logs to stdout.
func SetLogOutput(w io.Writer, level zerolog.Level) {
	Debug = true
	Log = zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// ConsoleWriter returns a human readable zerolog writer for terminals.
func ConsoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
}
