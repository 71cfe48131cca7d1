package search

import (
	"net/url"
	"strings"
)

var adParams = []string{"ad_domain", "ad_provider", "ad_type", "adurl", "adclick"}

// IsAdURL reports whether link is a tracked advertising redirect rather than an
// organic result.
func IsAdURL(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if (host == "duckduckgo.com" || strings.HasSuffix(host, ".duckduckgo.com")) && u.Path == "/y.js" {
		return true
	}
	q := u.Query()
	for _, p := range adParams {
		if q.Has(p) {
			return true
		}
	}
	return false
}
