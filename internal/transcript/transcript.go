// Package transcript records the decoded session output to a file.
package transcript

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
)

// Transcript appends decoded output to a file, framed by start and end
// markers.
type Transcript struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	now    func() time.Time
	plain  bool
	err    error
}

// Create opens path for appending and writes the start marker.  With
// plain set, escape sequences are stripped so the file reads as text.
// A sequence split across two writes may leave its tail behind.
func Create(path string, plain bool) (*Transcript, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	t := newTranscript(f, f, time.Now)
	t.plain = plain
	if err := t.marker("started"); err != nil {
		f.Close()
		return nil, err
	}
	return t, nil
}

func newTranscript(w io.Writer, c io.Closer, now func() time.Time) *Transcript {
	return &Transcript{w: w, closer: c, now: now}
}

// Write appends p.  After the first failure further writes are
// discarded and the error is returned by Close.
func (t *Transcript) Write(p []byte) (int, error) {
	n := len(p)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return n, nil
	}
	if t.plain {
		p = []byte(ansi.Strip(string(p)))
	}
	if _, err := t.w.Write(p); err != nil {
		t.err = fmt.Errorf("write transcript: %w", err)
	}
	return n, nil
}

// Close writes the end marker and closes the file.
func (t *Transcript) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err == nil {
		t.err = t.markerLocked("ended")
	}
	var cerr error
	if t.closer != nil {
		cerr = t.closer.Close()
		t.closer = nil
	}
	if t.err != nil {
		return t.err
	}
	return cerr
}

func (t *Transcript) marker(what string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.markerLocked(what)
}

func (t *Transcript) markerLocked(what string) error {
	_, err := fmt.Fprintf(t.w, "\n=== Session %s at %s ===\n", what, t.now().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}
