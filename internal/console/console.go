// Package console switches the local terminal into raw mode for the
// duration of a session and restores it afterwards.  When the input is
// not a terminal (a pipe or a file) every operation is a no-op.
package console

import (
	"sync"

	"golang.org/x/term"
)

// Console wraps the local input descriptor.
type Console struct {
	fd    int
	tty   bool
	mu    sync.Mutex
	state *term.State
}

// New inspects fd once; later calls do not re-check it.
func New(fd int) *Console {
	return &Console{fd: fd, tty: term.IsTerminal(fd)}
}

// IsTerminal reports whether fd refers to a terminal.
func (c *Console) IsTerminal() bool { return c.tty }

// IsRaw reports whether MakeRaw is in effect.
func (c *Console) IsRaw() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != nil
}

// MakeRaw puts the terminal into raw mode.  Calling it twice is harmless.
func (c *Console) MakeRaw() error {
	if !c.tty {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != nil {
		return nil
	}
	st, err := term.MakeRaw(c.fd)
	if err != nil {
		return err
	}
	c.state = st
	return nil
}

// Restore returns the terminal to the mode saved by MakeRaw.
func (c *Console) Restore() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return nil
	}
	err := term.Restore(c.fd, c.state)
	c.state = nil
	return err
}
