package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"cptel/internal/console"
	"cptel/internal/cp437"
	cperr "cptel/internal/errors"
	"cptel/internal/metrics"
	"cptel/internal/relay"
	"cptel/internal/transcript"
	"cptel/internal/transport"
	"cptel/util"
)

// ConnectMode dials the remote host and relays the session between it
// and the local terminal.
type ConnectMode struct {
	Establisher *transport.Establisher
	Host        string
	Port        int
	Decoder     *cp437.Decoder

	PollInterval   time.Duration
	ChunkSize      int
	InputChunkSize int
	DecodeCapacity int
	QuitByte       byte
	HomeAfterClear bool
	NoClear        bool
	NoRaw          bool
	BellMacro      []byte

	TranscriptPath  string
	TranscriptPlain bool
	Logger          *util.Logger
	Metrics         *metrics.Collector

	// Stdin/Stdout default to os.Stdin/os.Stdout when nil.
	// Override in tests for deterministic I/O.
	Stdin  *os.File
	Stdout io.Writer

	// Outcome is set once Run has relayed a session.
	Outcome relay.Outcome
}

func (m *ConnectMode) stdin() *os.File {
	if m.Stdin != nil {
		return m.Stdin
	}
	return os.Stdin
}

func (m *ConnectMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run connects, puts the terminal into raw mode, relays until the
// session ends and then restores everything.  The quit key and
// cancellation return nil; peer close and local end of input return
// ErrPeerClosed and ErrInputClosed, which IsFatal treats as normal.
func (m *ConnectMode) Run(ctx context.Context) error {
	defer m.Establisher.Dialer.Close()

	out := m.stdout()
	fmt.Fprintf(out, "Connecting to %s...\n", util.FormatAddr(m.Host, m.Port))

	conn, err := m.Establisher.Connect(ctx, m.Host, m.Port)
	if err != nil {
		m.Metrics.RecordError(err.Error())
		return err
	}
	defer conn.Close()

	m.Logger.Verbose("connected to %s", conn.RemoteAddr())
	fmt.Fprintf(out, "Connected! Press Ctrl+] to quit.\n")

	r := &relay.Relay{
		Transport:      conn,
		Input:          int(m.stdin().Fd()),
		Display:        out,
		Decoder:        m.Decoder,
		Logger:         m.Logger,
		Metrics:        m.Metrics,
		PollInterval:   m.PollInterval,
		ChunkSize:      m.ChunkSize,
		InputChunkSize: m.InputChunkSize,
		DecodeCapacity: m.DecodeCapacity,
		QuitByte:       m.QuitByte,
		HomeAfterClear: m.HomeAfterClear,
		NoClear:        m.NoClear,
		BellMacro:      m.BellMacro,
	}

	if m.TranscriptPath != "" {
		tr, err := transcript.Create(m.TranscriptPath, m.TranscriptPlain)
		if err != nil {
			return err
		}
		defer func() {
			if err := tr.Close(); err != nil {
				m.Logger.Warn("%v", err)
			}
		}()
		r.Transcript = tr
		m.Logger.Verbose("writing transcript to %s", m.TranscriptPath)
	}

	con := console.New(r.Input)
	if !con.IsTerminal() {
		m.Logger.Verbose("input is not a terminal, staying in line mode")
	} else if !m.NoRaw {
		if err := con.MakeRaw(); err != nil {
			m.Logger.Warn("could not enter raw mode: %v", err)
		}
	}
	if con.IsRaw() {
		m.Logger.SetRaw(true)
	}

	outcome, err := r.Run(ctx)

	if err := con.Restore(); err != nil {
		m.Logger.Warn("restoring terminal: %v", err)
	}
	m.Logger.SetRaw(false)

	m.Outcome = outcome
	m.Logger.Info("session ended: %s (%d bytes in, %d bytes out)",
		outcome, m.Metrics.TotalBytesIn(), m.Metrics.TotalBytesOut())
	if n := m.Metrics.ErrorCount(); n > 0 {
		m.Logger.Warn("%d error(s) during the session", n)
	}
	m.Logger.Verbose("statistics: %s", m.Metrics.JSON())
	if err != nil {
		return err
	}
	return outcomeErr(outcome)
}

// outcomeErr maps the orderly endings the caller may want to tell apart
// to their sentinels.
func outcomeErr(o relay.Outcome) error {
	switch o {
	case relay.OutcomePeerClosed:
		return cperr.ErrPeerClosed
	case relay.OutcomeInputClosed:
		return cperr.ErrInputClosed
	}
	return nil
}
