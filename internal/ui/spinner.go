// Package ui provides line-oriented terminal output: a spinner for slow steps
// and one-line status messages.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

var frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a message on a single line until stopped
type Spinner struct {
	mu        sync.Mutex
	message   string
	running   bool
	done      chan struct{}
	stopped   chan struct{}
	writer    io.Writer
	startTime time.Time
	interval  time.Duration
}

// NewSpinner creates a spinner writing to w (stderr when nil)
func NewSpinner(w io.Writer) *Spinner {
	if w == nil {
		w = os.Stderr
	}
	return &Spinner{writer: w, interval: 100 * time.Millisecond}
}

// Start begins the animation. Calling Start on a running spinner is a no-op.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.message = message
	s.running = true
	s.done = make(chan struct{})
	s.stopped = make(chan struct{})
	s.startTime = time.Now()

	go s.animate(s.done, s.stopped)
}

// Stop stops the spinner and optionally prints a final message
func (s *Spinner) Stop(finalMessage string) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.done)
	stopped := s.stopped
	s.mu.Unlock()

	<-stopped
	s.clearLine()
	if finalMessage != "" {
		fmt.Fprintln(s.writer, finalMessage)
	}
}

// Success stops with a green checkmark
func (s *Spinner) Success(message string) {
	s.Stop(color.GreenString("✓") + " " + message)
}

// Fail stops with a red X
func (s *Spinner) Fail(message string) {
	s.Stop(color.RedString("✗") + " " + message)
}

func (s *Spinner) animate(done, stopped chan struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-done:
			return
		case <-ticker.C:
			s.mu.Lock()
			message := s.message
			elapsed := time.Since(s.startTime)
			s.mu.Unlock()

			s.clearLine()
			var timeStr string
			if elapsed > time.Second {
				timeStr = color.HiBlackString(" (%.1fs)", elapsed.Seconds())
			}
			fmt.Fprintf(s.writer, "%s %s%s", color.CyanString(frames[i%len(frames)]), message, timeStr)
		}
	}
}

func (s *Spinner) clearLine() {
	fmt.Fprint(s.writer, "\r\033[K")
}

// RunWithSpinner executes fn while showing a spinner
func RunWithSpinner(w io.Writer, message string, fn func() error) error {
	spinner := NewSpinner(w)
	spinner.Start(message)
	if err := fn(); err != nil {
		spinner.Fail(message + " - failed")
		return err
	}
	spinner.Success(message)
	return nil
}

// StatusLine prints one-line status messages
type StatusLine struct {
	writer io.Writer
}

// NewStatusLine creates a status line writing to w (stdout when nil)
func NewStatusLine(w io.Writer) *StatusLine {
	if w == nil {
		w = os.Stdout
	}
	return &StatusLine{writer: w}
}

// Success prints a success status
func (sl *StatusLine) Success(message string) {
	fmt.Fprintf(sl.writer, "%s %s\n", color.GreenString("✓"), message)
}

// Fail prints a failure status
func (sl *StatusLine) Fail(message string) {
	fmt.Fprintf(sl.writer, "%s %s\n", color.RedString("✗"), message)
}

// Warning prints a warning status
func (sl *StatusLine) Warning(message string) {
	fmt.Fprintf(sl.writer, "%s %s\n", color.YellowString("⚠"), message)
}

// Info prints an info status
func (sl *StatusLine) Info(message string) {
	fmt.Fprintf(sl.writer, "%s %s\n", color.BlueString("ℹ"), message)
}

// Hint prints a dimmed follow-up line
func (sl *StatusLine) Hint(message string) {
	fmt.Fprintf(sl.writer, "  %s\n", color.HiBlackString(message))
}
