// Package core is the orchestration layer.  It composes the transport,
// the terminal and the relay loop into a complete session and provides
// a builder that assembles one from a Config.
//
// Architecture layers (bottom → top):
//
//	cp437, transport, console  →  relay  →  core  →  cmd (CLI)
package core

import "context"

// Mode is a complete operational mode of cptel.  It owns its full
// lifecycle from connection establishment to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
