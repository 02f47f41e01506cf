// Package config defines the runtime configuration for cptel and
// provides helpers for parsing ports and SSH jump-host specifications.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"cptel/internal/cp437"
	cperr "cptel/internal/errors"
	"cptel/util"
)

// Config holds every tuneable for a single cptel session.
type Config struct {
	// ── Connection ───────────────────────────────────────────────────
	Host    string
	Port    int
	Timeout time.Duration // per-candidate connect timeout
	NoDNS   bool

	// ── Decoding ─────────────────────────────────────────────────────
	HighRange      bool // render 0x80-0xFF through the full CP437 table
	LegacyEscapes  bool // decode every chunk independently
	HomeAfterClear bool // insert ESC[H after an ESC[2J that lacks one

	// ── Relay loop ───────────────────────────────────────────────────
	PollInterval   time.Duration
	ChunkSize      int // max bytes per transport read
	InputChunkSize int // max bytes per local input read
	DecodeCapacity int // max decoded bytes per chunk
	QuitByte       byte
	BellMacro      string // sent after Ctrl+G; h/j/k/l are arrows

	// ── SSH jump host ────────────────────────────────────────────────
	TunnelSpec     string // raw [user@]host[:port] from -T
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Output ───────────────────────────────────────────────────────
	LogFile  string // transcript of decoded output
	LogPlain bool   // strip escape sequences from the transcript
	NoClear  bool   // skip the clear/home at session start
	NoRaw    bool   // leave the local terminal in cooked mode
	Verbose  int
}

// New returns a Config populated with the defaults from defaults.go.
func New() *Config {
	return &Config{
		Port:           DefaultPort,
		Timeout:        DefaultConnTimeout,
		PollInterval:   DefaultPollInterval,
		ChunkSize:      DefaultChunkSize,
		InputChunkSize: DefaultInputChunkSize,
		DecodeCapacity: DefaultDecodeCapacity,
		QuitByte:       DefaultQuitByte,
	}
}

// Table returns the glyph table selected by HighRange.
func (c *Config) Table() *cp437.Table {
	if c.HighRange {
		return cp437.Extended
	}
	return cp437.Graphical
}

// ── Port helper ──────────────────────────────────────────────────────

// ParsePort accepts a decimal port number in 1-65535.
func ParsePort(spec string) (int, error) {
	port, err := strconv.Atoi(spec)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", spec)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	return user, host, port, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Host == "" {
		return &cperr.ConfigError{
			Field:   "host",
			Message: "a host is required",
			Hint:    "usage: cptel [options] <host> [port]",
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &cperr.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "out of range 1-65535",
			Hint:    fmt.Sprintf("telnet services usually listen on %d", DefaultPort),
		}
	}
	if c.NoDNS && !c.TunnelEnabled {
		if err := util.RequireNumeric(c.Host); err != nil {
			return &cperr.ConfigError{Field: "no-dns", Value: c.Host, Message: err.Error()}
		}
	}
	if c.PollInterval <= 0 {
		return &cperr.ConfigError{Field: "poll-interval", Value: c.PollInterval, Message: "must be positive"}
	}
	if c.ChunkSize < 1 || c.InputChunkSize < 1 {
		return &cperr.ConfigError{Field: "chunk-size", Message: "read sizes must be positive"}
	}
	if c.DecodeCapacity < cp437.MaxExpansion {
		return &cperr.ConfigError{
			Field:   "decode-capacity",
			Value:   c.DecodeCapacity,
			Message: fmt.Sprintf("must hold at least one %d-byte glyph", cp437.MaxExpansion),
		}
	}
	if c.TunnelEnabled && c.TunnelHost == "" {
		return &cperr.ConfigError{Field: "tunnel", Value: c.TunnelSpec, Message: "tunnel host is required"}
	}
	if !c.TunnelEnabled && (c.SSHKeyPath != "" || c.SSHPassword || c.UseSSHAgent) {
		return &cperr.ConfigError{
			Field:   "tunnel",
			Message: "SSH options given without a jump host",
			Hint:    "add -T [user@]gateway[:port]",
		}
	}
	return nil
}
