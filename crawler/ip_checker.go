package crawler

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"go.uber.org/zap"

	"mcpnvidia/pkg/egress"
	"mcpnvidia/search"
)

var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("64:ff9b::/96"),
}

// IsPublicIP reports whether addr is a globally routable unicast address.
func IsPublicIP(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsValid() ||
		addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() {
		return false
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return false
		}
	}
	return true
}

// guardedDialer resolves the target itself, checks every resolved address and
// dials the checked address so a second lookup cannot swap it.
type guardedDialer struct {
	resolver     *net.Resolver
	dialer       egress.ContextDialer
	blockPrivate bool
	logger       *zap.Logger
}

func (g *guardedDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}

	ips, err := g.resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("no addresses for %s", host)
	}

	if g.blockPrivate {
		for _, ip := range ips {
			if !IsPublicIP(ip) {
				g.logger.Warn("Blocked dial to non-public address",
					zap.String("host", host),
					zap.String("ip", ip.String()))
				return nil, fmt.Errorf("%w: %s resolves to %s", search.ErrPrivateAddress, host, ip)
			}
		}
	}

	var lastErr error
	for _, ip := range ips {
		conn, err := g.dialer.DialContext(ctx, network, net.JoinHostPort(ip.Unmap().String(), port))
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
