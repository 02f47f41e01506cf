// Package errors provides domain-specific error types for cptel.
//
// The types carry structured context (host, candidate address, I/O
// direction) so the CLI can report failures precisely and decide the
// exit status without string matching.
package errors

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	// ErrPeerClosed is the expected end of a session: the remote host
	// closed the connection.
	ErrPeerClosed = errors.New("connection closed by peer")
	// ErrInputClosed means local input reached end of file.
	ErrInputClosed  = errors.New("local input closed")
	ErrNotConnected = errors.New("not connected")
	ErrAuthFailed   = errors.New("authentication failed")
)

// ── Structured error types ───────────────────────────────────────────

// ResolutionError means the host produced no address candidates.
type ResolutionError struct {
	Host string
	Err  error // resolver error, nil when the lookup returned nothing
}

func (e *ResolutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("resolve %s: no addresses", e.Host)
	}
	return fmt.Sprintf("resolve %s: %v", e.Host, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ConnectionError means every resolved candidate refused or failed.
type ConnectionError struct {
	Host     string
	Port     int
	Attempts int   // candidates tried
	Err      error // per-candidate failures, joined
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("could not connect to %s (%d candidate(s) tried): %v",
		net.JoinHostPort(e.Host, strconv.Itoa(e.Port)), e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TransportError is an unrecoverable read or write failure on the
// relay's transport.  Would-block conditions never become one.
type TransportError struct {
	Op  string // "read" or "write"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NetworkError is a failed network operation against one address.
type NetworkError struct {
	Op   string // operation: "dial", "setup"
	Addr string // network address involved
	Err  error  // underlying error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SSHError represents an SSH-specific failure with gateway context.
type SSHError struct {
	Op   string // "handshake", "auth", "hostkey", "dial"
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	return fmt.Sprintf("ssh %s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // flag name without dashes, or "host"/"port"
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{Op: op, Addr: addr, Err: err}
}

// WrapSSH creates an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsFatal reports whether err should end the process with a non-zero
// status.  Peer close and local input close are normal terminations.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrPeerClosed) && !errors.Is(err, ErrInputClosed)
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
