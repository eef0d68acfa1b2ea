// Package logging sets up the process logger: human readable lines on the
// console and, when a path is given, the same lines appended to a log file
// that survives reboots on the phone's /cache partition.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/juju/errors"
	"github.com/rs/zerolog"
)

// DefaultLogPath is writable on the phone and kept across reboots.
const DefaultLogPath = "/cache/flipmouse.log"

// New returns a logger writing to console and, unless path is empty, to the
// log file at path. The returned closer must be called on shutdown.
func New(console io.Writer, path string, debug Mask) (zerolog.Logger, io.Closer, error) {
	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: time.StampMicro, NoColor: true}}
	var closer io.Closer = nopCloser{}

	if path != "" {
		f, err := openLogFile(path)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		writers = append(writers, zerolog.ConsoleWriter{Out: f, TimeFormat: time.RFC3339, NoColor: true})
		closer = f
	}

	level := zerolog.InfoLevel
	if debug != 0 {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	return log, closer, nil
}

// Subsystem returns a child logger tagged with the subsystem name.
func Subsystem(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("subsystem", name).Logger()
}

func openLogFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Annotatef(err, "create log directory %s", dir)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Annotatef(err, "open log file %s", path)
	}
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
