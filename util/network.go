package util

import (
	"context"
	"fmt"
	"net"
	"strconv"
)

// Resolver looks up the addresses of a host.  *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// RequireNumeric rejects host unless it is a literal IP address.
func RequireNumeric(host string) error {
	if net.ParseIP(host) == nil {
		return fmt.Errorf("cannot parse %q as an IP address (DNS disabled with -n)", host)
	}
	return nil
}

// LookupHost resolves host to its ordered address candidates.  A literal
// IP is returned as is.  With noDNS only literal IPs are accepted.
func LookupHost(ctx context.Context, r Resolver, host string, noDNS bool) ([]string, error) {
	if net.ParseIP(host) != nil {
		return []string{host}, nil
	}
	if noDNS {
		return nil, RequireNumeric(host)
	}
	if r == nil {
		r = net.DefaultResolver
	}
	addrs, err := r.LookupHost(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("DNS lookup for %q: %w", host, err)
	}
	return addrs, nil
}

// FormatAddr returns "host:port", bracketing IPv6 literals.
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
