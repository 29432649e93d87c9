// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Options controls Setup.
type Options struct {
	// Level is a logrus level name; ignored when Debug is set
	Level string

	// Debug forces debug level and mirrors every entry to DebugDir/debug.log
	Debug bool

	// DebugDir holds debug.log (usually <config dir>/logs)
	DebugDir string

	// Output defaults to stderr
	Output io.Writer
}

// Setup configures logger and returns a close function for the debug log
// file (a no-op when none was opened).
func Setup(logger *logrus.Logger, opts Options) (func() error, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		if opts.Level != "" {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = logrus.InfoLevel
	}
	if opts.Debug {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	if !opts.Debug || opts.DebugDir == "" {
		return func() error { return nil }, nil
	}

	f, err := openDebugLog(opts.DebugDir)
	if err != nil {
		// The debug file is best effort; console logging still works.
		logger.WithError(err).Warn("Could not open debug log file")
		return func() error { return nil }, nil
	}
	logger.AddHook(&fileHook{
		w:         f,
		formatter: &logrus.TextFormatter{DisableColors: true, FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05.000"},
	})
	return f.Close, nil
}

// openDebugLog opens DebugDir/debug.log for appending and writes a session
// header.
func openDebugLog(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(f, "\n=== Debug session started: %s ===\n", time.Now().Format("2006-01-02 15:04:05.000"))
	return f, nil
}

// fileHook copies entries to a file regardless of the logger's output.
type fileHook struct {
	w         io.Writer
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fileHook) Fire(e *logrus.Entry) error {
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.w.Write(b)
	return err
}
