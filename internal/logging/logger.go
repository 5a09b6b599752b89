// Package logging builds the run logger: human-readable console output plus
// an optional JSON log file per run.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the run logger.
type Options struct {
	// Level is a zerolog level name. Unknown values fall back to info.
	Level string

	// Dir receives a per-run JSON log file. Empty disables the file.
	Dir string

	// Console receives human-readable output. Defaults to os.Stderr.
	Console io.Writer

	// Now stamps the log file name. Defaults to time.Now.
	Now func() time.Time
}

// FileName returns the log file name for a run started at t.
func FileName(t time.Time) string {
	return "keyrotator" + t.Format("-2006-01-02-1504") + ".log"
}

// NewLogger creates a zerolog.Logger writing to the console and, if a
// directory is configured, to a timestamped log file. The returned closer
// releases the file and is never nil.
func NewLogger(o Options) (zerolog.Logger, io.Closer, error) {
	console := o.Console
	if console == nil {
		console = os.Stderr
	}
	colored := console == os.Stderr
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: time.DateTime, NoColor: !colored}}
	var closer io.Closer = nopCloser{}
	var path string

	if o.Dir != "" {
		if err := os.MkdirAll(o.Dir, 0755); err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("failed to create log directory: %w", err)
		}
		path = filepath.Join(o.Dir, FileName(now()))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, f)
		closer = f
	}

	level, err := zerolog.ParseLevel(o.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().Timestamp().Logger().
		Level(level)

	if path != "" {
		logger.Debug().Str("file", path).Msg("Logging established")
	}
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
