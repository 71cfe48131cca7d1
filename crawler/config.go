package crawler

import (
	"time"
)

type FetcherConfig struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	MaxRedirects int
	UserAgent    string
	// ProxyURL routes all page fetches through a SOCKS5 proxy when set.
	ProxyURL string
	// AllowPlainHTTP keeps http:// targets as they are instead of upgrading them to https.
	AllowPlainHTTP bool
	// BlockPrivateNetworks refuses connections to loopback, private and link-local addresses.
	BlockPrivateNetworks bool
}

// DefaultConfig returns a default fetcher configuration
func DefaultConfig() *FetcherConfig {
	return &FetcherConfig{
		Timeout:              8 * time.Second,
		MaxBodyBytes:         2 << 20,
		MaxRedirects:         5,
		UserAgent:            "mcp-nvidia/1.0 (+https://github.com/mcp-nvidia)",
		BlockPrivateNetworks: true,
	}
}
