package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Conn is a connected byte stream reduced to a raw non-blocking
// descriptor.  Read and Write go straight to the descriptor and never
// block; a would-block condition surfaces as an error for which
// [IsWouldBlock] reports true.
type Conn struct {
	fd     int
	file   *os.File
	remote string

	// set when the stream is bridged through a socketpair
	bridgeDone <-chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// Fd returns the descriptor to poll.
func (c *Conn) Fd() int { return c.fd }

// RemoteAddr names the peer for log messages.
func (c *Conn) RemoteAddr() string { return c.remote }

// Bridged reports whether the stream is relayed through a socketpair.
func (c *Conn) Bridged() bool { return c.bridgeDone != nil }

// Read reads what is available.  Zero bytes from the descriptor is
// end of stream and is returned as io.EOF.
func (c *Conn) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := unix.Read(c.fd, p)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Write performs a single non-blocking write and reports how much of
// p was accepted.
func (c *Conn) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := unix.Write(c.fd, p)
	if n < 0 {
		n = 0
	}
	return n, err
}

// Close releases the descriptor.  For a bridged stream it also waits
// for the bridge to shut down the underlying connection.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.file.Close()
		if c.bridgeDone != nil {
			<-c.bridgeDone
		}
	})
	return c.closeErr
}

// IsWouldBlock reports whether err means "no data / no room right now".
func IsWouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

type filer interface {
	File() (*os.File, error)
}

// FromNetConn takes ownership of nc and returns it as a [Conn].  A
// connection backed by a socket (*net.TCPConn) is duplicated out of
// the runtime poller; anything else is bridged through a socketpair.
func FromNetConn(nc net.Conn) (*Conn, error) {
	remote := ""
	if a := nc.RemoteAddr(); a != nil {
		remote = a.String()
	}

	f, ok := nc.(filer)
	if !ok {
		return bridge(nc, remote)
	}

	file, err := f.File()
	nc.Close()
	if err != nil {
		return nil, fmt.Errorf("duplicate socket: %w", err)
	}
	c, err := newConn(file, remote)
	if err != nil {
		file.Close()
		return nil, err
	}
	return c, nil
}

func newConn(file *os.File, remote string) (*Conn, error) {
	// Fd switches the file to blocking mode, so it must come first.
	fd := int(file.Fd())
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, fmt.Errorf("set non-blocking: %w", err)
	}
	return &Conn{fd: fd, file: file, remote: remote}, nil
}
