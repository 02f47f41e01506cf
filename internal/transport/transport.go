// Package transport opens the connection a relay session runs over and
// reduces it to a non-blocking descriptor the relay can poll.
//
// Dialers decide how the byte stream is carried (plain TCP or an SSH
// jump host).  The Establisher walks the resolved candidates, and
// FromNetConn turns whatever the dialer returned into a [Conn].
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound network connections.  Implementations include
// a plain TCP dialer and an SSH-tunnelled dialer that routes traffic
// through an encrypted gateway.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH session).  Stateless dialers return nil.
	Close() error
}
