package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and environment variable loading.

const (
	// DefaultPort is the standard telnet port.
	DefaultPort = 23

	// DefaultSSHPort is the standard SSH port for -T jump hosts.
	DefaultSSHPort = 22

	// DefaultConnTimeout bounds each connection attempt.
	DefaultConnTimeout = 10 * time.Second

	// DefaultPollInterval is the relay loop's readiness-wait timeout and
	// therefore the worst-case shutdown latency.
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultChunkSize is the largest single read from the remote.
	DefaultChunkSize = 4096

	// DefaultInputChunkSize is the largest single read from the keyboard.
	DefaultInputChunkSize = 1024

	// DefaultDecodeCapacity holds a full chunk at the widest glyph
	// expansion with room to spare.
	DefaultDecodeCapacity = 16 * 1024

	// DefaultQuitByte is Ctrl+], the conventional telnet escape key.
	DefaultQuitByte byte = 0x1D
)
