// Package relay runs the interactive session loop: it waits on the
// remote transport and the local input with poll(2), decodes remote
// output for the display and forwards keystrokes to the remote.
//
// The loop is single-threaded.  Its only suspension point is the poll,
// bounded by PollInterval, so cancelling the context ends the session
// within one interval.
package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sys/unix"

	"cptel/internal/cp437"
	cperr "cptel/internal/errors"
	"cptel/internal/metrics"
	"cptel/internal/transport"
	"cptel/util"
)

// Outcome says why Run returned.
type Outcome int

const (
	OutcomeShutdown    Outcome = iota // context cancelled
	OutcomePeerClosed                 // remote end of stream
	OutcomeQuit                       // quit byte typed locally
	OutcomeInputClosed                // local input end of file
	OutcomeFailed                     // unrecoverable I/O error
)

func (o Outcome) String() string {
	switch o {
	case OutcomeShutdown:
		return "shutdown"
	case OutcomePeerClosed:
		return "peer closed"
	case OutcomeQuit:
		return "quit"
	case OutcomeInputClosed:
		return "input closed"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

const (
	clearHome     = "\x1b[2J\x1b[H"
	clearSeq      = "\x1b[2J"
	homeSeq       = "\x1b[H"
	msgPeerClosed = "\r\nConnection closed by peer.\r\n"
	msgQuit       = "\r\n\r\nDisconnected.\r\n"
)

// Transport is the remote side of a session.  Read and Write must not
// block; "nothing now" is reported with an error for which
// transport.IsWouldBlock is true.  *transport.Conn satisfies it.
type Transport interface {
	Fd() int
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
}

// Relay holds one session.  Zero values of the tunables fall back to
// the package defaults.
type Relay struct {
	Transport  Transport
	Input      int       // local input descriptor
	Display    io.Writer // decoded remote output
	Transcript io.Writer // optional copy of the decoded output
	Decoder    *cp437.Decoder

	Logger  *util.Logger
	Metrics *metrics.Collector

	PollInterval   time.Duration
	ChunkSize      int
	InputChunkSize int
	DecodeCapacity int
	QuitByte       byte

	HomeAfterClear bool
	NoClear        bool

	// BellMacro, when set, is sent after every Ctrl+G typed, in the
	// same single write as the keystrokes around it.
	BellMacro []byte

	inbound  []byte
	decoded  []byte
	keys     []byte
	outbound []byte
}

// Defaults used when the corresponding field is zero.
const (
	DefaultPollInterval   = 100 * time.Millisecond
	DefaultChunkSize      = 4096
	DefaultInputChunkSize = 1024
	DefaultDecodeCapacity = DefaultChunkSize * cp437.MaxExpansion
	DefaultQuitByte       = 0x1D
)

func (r *Relay) init() {
	if r.PollInterval <= 0 {
		r.PollInterval = DefaultPollInterval
	}
	if r.ChunkSize <= 0 {
		r.ChunkSize = DefaultChunkSize
	}
	if r.InputChunkSize <= 0 {
		r.InputChunkSize = DefaultInputChunkSize
	}
	if r.DecodeCapacity <= 0 {
		r.DecodeCapacity = DefaultDecodeCapacity
	}
	if r.QuitByte == 0 {
		r.QuitByte = DefaultQuitByte
	}
	if r.Decoder == nil {
		r.Decoder = cp437.NewDecoder(cp437.Graphical, true)
	}
	if r.Logger == nil {
		r.Logger = util.NewLogger(int(util.LogQuiet))
	}
	r.inbound = make([]byte, r.ChunkSize)
	r.decoded = make([]byte, 0, r.DecodeCapacity)
	r.keys = make([]byte, r.InputChunkSize)
}

// Run relays until the context is cancelled, either side closes, the
// quit byte is typed, or an I/O error occurs.  The error is non-nil
// only with OutcomeFailed.  Run does not close the transport or touch
// terminal modes.
func (r *Relay) Run(ctx context.Context) (Outcome, error) {
	r.init()

	if !r.NoClear {
		if err := r.display([]byte(clearHome)); err != nil {
			return OutcomeFailed, err
		}
	}

	fds := []unix.PollFd{
		{Fd: int32(r.Transport.Fd()), Events: unix.POLLIN},
		{Fd: int32(r.Input), Events: unix.POLLIN},
	}
	timeout := int(r.PollInterval / time.Millisecond)
	if timeout < 1 {
		timeout = 1
	}

	for {
		if ctx.Err() != nil {
			r.Logger.Debug("relay: shutdown requested")
			return OutcomeShutdown, nil
		}

		fds[0].Revents, fds[1].Revents = 0, 0
		n, err := unix.Poll(fds, timeout)
		if err != nil {
			if cperr.Is(err, unix.EINTR) {
				continue
			}
			r.Metrics.RecordError(err.Error())
			return OutcomeFailed, fmt.Errorf("poll: %w", err)
		}
		if n == 0 {
			continue
		}

		if ready(fds[0].Revents) {
			if out, done, err := r.serviceTransport(); done {
				return out, err
			}
		}
		if ready(fds[1].Revents) {
			if out, done, err := r.serviceInput(); done {
				return out, err
			}
		}
	}
}

func ready(revents int16) bool {
	return revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0
}

func (r *Relay) serviceTransport() (Outcome, bool, error) {
	n, err := r.Transport.Read(r.inbound)
	switch {
	case err == io.EOF:
		if r.Decoder.InSequence() {
			r.Logger.Debug("relay: remote closed inside an escape sequence")
		}
		r.decoded = r.Decoder.Flush(r.decoded)
		if len(r.decoded) > 0 {
			r.output(r.decoded) //nolint:errcheck
		}
		r.Logger.Verbose("relay: remote closed the connection")
		if err := r.display([]byte(msgPeerClosed)); err != nil {
			return OutcomeFailed, true, err
		}
		return OutcomePeerClosed, true, nil
	case err != nil && (transport.IsWouldBlock(err) || cperr.Is(err, unix.EINTR)):
		return 0, false, nil
	case err != nil:
		r.Metrics.RecordError(err.Error())
		return OutcomeFailed, true, &cperr.TransportError{Op: "read", Err: err}
	}

	var truncated bool
	r.decoded, truncated = r.Decoder.AppendDecode(r.decoded, r.inbound[:n], r.DecodeCapacity)
	if truncated {
		r.Metrics.Truncated()
		r.Logger.Debug("relay: %d-byte chunk truncated at %d decoded bytes", n, len(r.decoded))
	}
	shown := r.decoded
	if r.HomeAfterClear {
		shown = homeAfterClear(shown)
	}
	r.Metrics.ChunkReceived(n, len(shown))

	if err := r.output(shown); err != nil {
		return OutcomeFailed, true, err
	}
	return 0, false, nil
}

func (r *Relay) serviceInput() (Outcome, bool, error) {
	n, err := unix.Read(r.Input, r.keys)
	switch {
	case err != nil && (transport.IsWouldBlock(err) || cperr.Is(err, unix.EINTR)):
		return 0, false, nil
	case err != nil:
		r.Metrics.RecordError(err.Error())
		return OutcomeFailed, true, fmt.Errorf("read local input: %w", err)
	case n == 0:
		r.Logger.Verbose("relay: local input closed")
		return OutcomeInputClosed, true, nil
	}

	keys := r.keys[:n]
	quit := false
	if i := bytes.IndexByte(keys, r.QuitByte); i >= 0 {
		keys, quit = keys[:i], true
	}

	if len(r.BellMacro) > 0 && bytes.IndexByte(keys, cp437.BEL) >= 0 {
		r.outbound = r.expandBell(r.outbound[:0], keys)
		keys = r.outbound
		r.Logger.Verbose("relay: bell macro sent")
	}

	if len(keys) > 0 {
		if err := r.forward(keys); err != nil {
			return OutcomeFailed, true, err
		}
	}
	if quit {
		r.Logger.Verbose("relay: quit key pressed")
		if err := r.display([]byte(msgQuit)); err != nil {
			return OutcomeFailed, true, err
		}
		return OutcomeQuit, true, nil
	}
	return 0, false, nil
}

// forward makes one write attempt.  Whatever the transport does not
// take is dropped and counted.
func (r *Relay) forward(keys []byte) error {
	n, err := r.Transport.Write(keys)
	if n > 0 {
		r.Metrics.BytesSent(n)
	}
	if err != nil && !transport.IsWouldBlock(err) {
		r.Metrics.RecordError(err.Error())
		return &cperr.TransportError{Op: "write", Err: err}
	}
	if dropped := len(keys) - n; dropped > 0 {
		r.Metrics.BytesDropped(dropped)
		r.Logger.Debug("relay: transport busy, dropped %d input byte(s)", dropped)
	}
	return nil
}

func (r *Relay) display(p []byte) error {
	if _, err := r.Display.Write(p); err != nil {
		return fmt.Errorf("write display: %w", err)
	}
	return nil
}

// output shows decoded remote data and copies it to the transcript.
func (r *Relay) output(p []byte) error {
	if err := r.display(p); err != nil {
		return err
	}
	if r.Transcript != nil {
		r.Transcript.Write(p) //nolint:errcheck
	}
	return nil
}

// homeAfterClear inserts a cursor-home after the first clear-screen in
// p when p has no cursor-home of its own.
func homeAfterClear(p []byte) []byte {
	i := bytes.Index(p, []byte(clearSeq))
	if i < 0 || bytes.Contains(p, []byte(homeSeq)) {
		return p
	}
	at := i + len(clearSeq)
	out := make([]byte, 0, len(p)+len(homeSeq))
	out = append(out, p[:at]...)
	out = append(out, homeSeq...)
	return append(out, p[at:]...)
}
