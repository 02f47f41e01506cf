package transport

import (
	"context"
	"time"

	cperr "cptel/internal/errors"
	"cptel/util"
)

// Establisher turns a host name and port into a connected [Conn].
type Establisher struct {
	Dialer   Dialer
	Resolver util.Resolver // nil means net.DefaultResolver
	Timeout  time.Duration // per candidate, 0 means no limit
	NoDNS    bool

	// Tunnelled passes the host to the dialer unresolved; the SSH
	// gateway does the lookup.
	Tunnelled bool

	Logger *util.Logger
}

// Connect resolves host, then tries each candidate address in order
// and returns the first one that accepts.  It fails with
// *errors.ResolutionError when there is nothing to try and with
// *errors.ConnectionError once every candidate has failed.
func (e *Establisher) Connect(ctx context.Context, host string, port int) (*Conn, error) {
	candidates, err := e.candidates(ctx, host)
	if err != nil {
		return nil, &cperr.ResolutionError{Host: host, Err: err}
	}
	if len(candidates) == 0 {
		return nil, &cperr.ResolutionError{Host: host}
	}

	var failures []error
	for i, addr := range candidates {
		target := util.FormatAddr(addr, port)
		e.logf("trying %s (%d/%d)", target, i+1, len(candidates))

		conn, err := e.attempt(ctx, target)
		if err == nil {
			e.logf("connected to %s", target)
			return conn, nil
		}
		failures = append(failures, err)
		e.logf("%v", err)

		if ctx.Err() != nil {
			break
		}
	}

	return nil, &cperr.ConnectionError{
		Host:     host,
		Port:     port,
		Attempts: len(failures),
		Err:      cperr.Join(failures...),
	}
}

func (e *Establisher) candidates(ctx context.Context, host string) ([]string, error) {
	if e.Tunnelled {
		if e.NoDNS {
			if err := util.RequireNumeric(host); err != nil {
				return nil, err
			}
		}
		return []string{host}, nil
	}
	return util.LookupHost(ctx, e.Resolver, host, e.NoDNS)
}

func (e *Establisher) attempt(ctx context.Context, target string) (*Conn, error) {
	dctx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	nc, err := e.Dialer.Dial(dctx, "tcp", target)
	if err != nil {
		return nil, cperr.Wrap("dial", target, err)
	}
	conn, err := FromNetConn(nc)
	if err != nil {
		return nil, cperr.Wrap("setup", target, err)
	}
	return conn, nil
}

func (e *Establisher) logf(format string, args ...interface{}) {
	if e.Logger != nil {
		e.Logger.Verbose(format, args...)
	}
}
