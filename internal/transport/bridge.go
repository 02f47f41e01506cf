package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// bridge connects nc to one end of a socketpair and returns the other
// end as a Conn.  Two goroutines copy between nc and the pair until
// either side reaches end of stream.
func bridge(nc net.Conn, remote string) (*Conn, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("socketpair: %w", err)
	}

	relayEnd := os.NewFile(uintptr(fds[0]), "relay")
	bridgeFile := os.NewFile(uintptr(fds[1]), "bridge")

	local, err := net.FileConn(bridgeFile)
	bridgeFile.Close()
	if err != nil {
		relayEnd.Close()
		nc.Close()
		return nil, fmt.Errorf("socketpair conn: %w", err)
	}

	c, err := newConn(relayEnd, remote)
	if err != nil {
		relayEnd.Close()
		local.Close()
		nc.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		bridgeConns(context.Background(), nc, local)
	}()
	c.bridgeDone = done
	return c, nil
}

// bridgeConns copies in both directions until one side finishes, then
// closes both.
func bridgeConns(ctx context.Context, a, b net.Conn) (aToB, bToA int64) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		n, _ := io.Copy(b, a)
		aToB = n
		cancel()
	}()

	go func() {
		defer wg.Done()
		n, _ := io.Copy(a, b)
		bToA = n
		cancel()
	}()

	<-ctx.Done()
	a.Close()
	b.Close()
	wg.Wait()
	return aToB, bToA
}
