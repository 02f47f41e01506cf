// Package metrics provides lightweight, lock-free counters for tracking
// the traffic of a cptel session.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime statistics for one relay session.
// A nil Collector is safe to use: all methods become no-ops.
type Collector struct {
	bytesIn      atomic.Int64 // raw bytes read from the remote
	bytesDecoded atomic.Int64 // bytes written to the display
	bytesOut     atomic.Int64 // keystroke bytes written to the remote
	bytesDropped atomic.Int64 // keystroke bytes lost to backpressure
	chunks       atomic.Int64
	truncations  atomic.Int64
	errorsTotal  atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Inbound ──────────────────────────────────────────────────────────

// ChunkReceived records one read of n raw bytes from the remote that
// decoded to decoded display bytes.
func (c *Collector) ChunkReceived(n, decoded int) {
	if c == nil {
		return
	}
	c.chunks.Add(1)
	c.bytesIn.Add(int64(n))
	c.bytesDecoded.Add(int64(decoded))
}

// Truncated records a chunk whose decoded form did not fit.
func (c *Collector) Truncated() {
	if c == nil {
		return
	}
	c.truncations.Add(1)
}

// ── Outbound ─────────────────────────────────────────────────────────

// BytesSent records n keystroke bytes accepted by the transport.
func (c *Collector) BytesSent(n int) {
	if c == nil {
		return
	}
	c.bytesOut.Add(int64(n))
}

// BytesDropped records n keystroke bytes the transport did not accept.
func (c *Collector) BytesDropped(n int) {
	if c == nil {
		return
	}
	c.bytesDropped.Add(int64(n))
}

// TotalBytesIn returns total raw bytes received.
func (c *Collector) TotalBytesIn() int64 {
	if c == nil {
		return 0
	}
	return c.bytesIn.Load()
}

// TotalBytesOut returns total keystroke bytes sent.
func (c *Collector) TotalBytesOut() int64 {
	if c == nil {
		return 0
	}
	return c.bytesOut.Load()
}

// ── Errors ───────────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all counters.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	Chunks           int64  `json:"chunks"`
	BytesIn          int64  `json:"bytes_in"`
	BytesDecoded     int64  `json:"bytes_decoded"`
	BytesOut         int64  `json:"bytes_out"`
	BytesDropped     int64  `json:"bytes_dropped"`
	Truncations      int64  `json:"truncations"`
	ErrorsTotal      int64  `json:"errors_total"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:       time.Since(c.startTime).Truncate(time.Second).String(),
		Chunks:       c.chunks.Load(),
		BytesIn:      c.bytesIn.Load(),
		BytesDecoded: c.bytesDecoded.Load(),
		BytesOut:     c.bytesOut.Load(),
		BytesDropped: c.bytesDropped.Load(),
		Truncations:  c.truncations.Load(),
		ErrorsTotal:  c.errorsTotal.Load(),
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
