// Package logfile writes one JSON object per line for each fused sample,
// the optional acquisition trace the source calls a log. It follows the
// same scoped-acquisition idiom as the sensor drivers: opened once, closed
// exactly once on any exit path.
package logfile

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"
)

// File is an open log file plus the buffered writer over it. Its zero
// value is not usable; construct with Create.
type File struct {
	mu     sync.Mutex
	f      *os.File
	w      *bufio.Writer
	closed bool
}

// Create opens a new log file named splitvent-<sr>hz-<YYYYMMDD_HHMMSS>.log
// in the current working directory, timestamped at t.
func Create(sampleRate float64, t time.Time) (*File, error) {
	name := fmt.Sprintf("splitvent-%ghz-%s.log", sampleRate, t.Format("20060102_150405"))
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("logfile: create %s: %w", name, err)
	}
	return &File{f: f, w: bufio.NewWriter(f)}, nil
}

// Write appends one JSON line for the given sample.
func (l *File) Write(t, slm, cmH2O float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("logfile: write after close")
	}
	line := fmt.Sprintf(`{"t": %.6f, "slm": %.2f, "cmH2O": %.2f}`+"\n", t, slm, cmH2O)
	_, err := l.w.WriteString(line)
	return err
}

// Close flushes and closes the underlying file. It is safe to call more
// than once; only the first call has effect.
func (l *File) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if err := l.w.Flush(); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}
