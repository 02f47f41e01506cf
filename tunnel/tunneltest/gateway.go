// Package tunneltest runs an in-process SSH gateway for tests.  It
// accepts any public key and serves direct-tcpip channels by dialing
// the requested target over plain TCP.
package tunneltest

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/crypto/ssh"
)

// Gateway is a minimal SSH server listening on loopback.
type Gateway struct {
	Host string
	Port int

	ln       net.Listener
	cfg      *ssh.ServerConfig
	wg       sync.WaitGroup
	channels atomic.Int64
}

// NewGateway starts a gateway and registers its shutdown with t.Cleanup.
func NewGateway(t testing.TB) *Gateway {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	hostKey, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatal(err)
	}

	cfg := &ssh.ServerConfig{
		PublicKeyCallback: func(ssh.ConnMetadata, ssh.PublicKey) (*ssh.Permissions, error) {
			return nil, nil
		},
	}
	cfg.AddHostKey(hostKey)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	addr := ln.Addr().(*net.TCPAddr)
	g := &Gateway{Host: "127.0.0.1", Port: addr.Port, ln: ln, cfg: cfg}

	g.wg.Add(1)
	go g.serve()
	t.Cleanup(g.Close)
	return g
}

// Channels reports how many direct-tcpip channels were accepted.
func (g *Gateway) Channels() int64 { return g.channels.Load() }

// Close stops accepting and waits for the accept loop to exit.
func (g *Gateway) Close() {
	g.ln.Close()
	g.wg.Wait()
}

// ClientKey writes a fresh client private key under t.TempDir and
// returns its path.
func ClientKey(t testing.TB) string {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "tunneltest")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "id_ed25519")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func (g *Gateway) serve() {
	defer g.wg.Done()
	for {
		c, err := g.ln.Accept()
		if err != nil {
			return
		}
		go g.handle(c)
	}
}

type directTCPIP struct {
	Host     string
	Port     uint32
	OrigHost string
	OrigPort uint32
}

func (g *Gateway) handle(c net.Conn) {
	sconn, chans, reqs, err := ssh.NewServerConn(c, g.cfg)
	if err != nil {
		c.Close()
		return
	}
	defer sconn.Close()
	go ssh.DiscardRequests(reqs)

	for nc := range chans {
		if nc.ChannelType() != "direct-tcpip" {
			nc.Reject(ssh.UnknownChannelType, "only direct-tcpip") //nolint:errcheck
			continue
		}
		var p directTCPIP
		if err := ssh.Unmarshal(nc.ExtraData(), &p); err != nil {
			nc.Reject(ssh.ConnectionFailed, "bad payload") //nolint:errcheck
			continue
		}
		target, err := net.Dial("tcp", net.JoinHostPort(p.Host, strconv.Itoa(int(p.Port))))
		if err != nil {
			nc.Reject(ssh.ConnectionFailed, err.Error()) //nolint:errcheck
			continue
		}
		ch, chReqs, err := nc.Accept()
		if err != nil {
			target.Close()
			continue
		}
		g.channels.Add(1)
		go ssh.DiscardRequests(chReqs)
		go pipe(ch, target)
	}
}

func pipe(ch ssh.Channel, target net.Conn) {
	done := make(chan struct{})
	go func() {
		io.Copy(target, ch) //nolint:errcheck
		if tc, ok := target.(*net.TCPConn); ok {
			tc.CloseWrite() //nolint:errcheck
		}
		close(done)
	}()
	io.Copy(ch, target) //nolint:errcheck
	ch.CloseWrite()     //nolint:errcheck
	<-done
	ch.Close()
	target.Close()
}
