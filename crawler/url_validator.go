package crawler

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/publicsuffix"

	"mcpnvidia/search"
)

var errEmptyHost = errors.New("empty host")

// DomainValidator accepts hosts equal to, or a subdomain of, one of its allowed roots.
type DomainValidator struct {
	roots          []string
	allowedSchemes []string
}

// NewDomainValidator creates a validator for the given roots. A root that is itself
// a public suffix (for example "com" or "github.io") is rejected.
func NewDomainValidator(roots []string) (*DomainValidator, error) {
	v := &DomainValidator{allowedSchemes: []string{"http", "https"}}
	for _, r := range roots {
		root := normalizeHost(r)
		if root == "" {
			return nil, fmt.Errorf("allowed root %q: %w", r, errEmptyHost)
		}
		if suffix, _ := publicsuffix.PublicSuffix(root); suffix == root {
			return nil, fmt.Errorf("allowed root %q is a public suffix", r)
		}
		if !slices.Contains(v.roots, root) {
			v.roots = append(v.roots, root)
		}
	}
	if len(v.roots) == 0 {
		return nil, errors.New("at least one allowed root is required")
	}
	return v, nil
}

func (v *DomainValidator) Roots() []string {
	return slices.Clone(v.roots)
}

// Validate normalizes a domain or URL string into a Domain. A bare host is
// treated as https.
func (v *DomainValidator) Validate(candidate string) (search.Domain, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return search.Domain{}, errEmptyHost
	}
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return search.Domain{}, fmt.Errorf("parse domain: %w", err)
	}
	if err := v.ValidateURL(u); err != nil {
		return search.Domain{}, err
	}

	return search.Domain{Host: normalizeHost(u.Hostname()), Port: u.Port()}, nil
}

// ValidateURL checks a fetch target or redirect hop without rewriting it.
func (v *DomainValidator) ValidateURL(u *url.URL) error {
	if !slices.Contains(v.allowedSchemes, strings.ToLower(u.Scheme)) {
		return fmt.Errorf("%w: scheme %q", search.ErrDomainNotAllowed, u.Scheme)
	}
	if u.User != nil {
		return fmt.Errorf("%w: credentials in URL", search.ErrDomainNotAllowed)
	}
	host := normalizeHost(u.Hostname())
	if host == "" {
		return errEmptyHost
	}
	if !v.IsAllowedHost(host) {
		return fmt.Errorf("%w: %s", search.ErrDomainNotAllowed, host)
	}
	return nil
}

// IsAllowedHost matches on label boundaries, so "evilnvidia.com" does not match "nvidia.com".
func (v *DomainValidator) IsAllowedHost(host string) bool {
	host = normalizeHost(host)
	for _, root := range v.roots {
		if host == root || strings.HasSuffix(host, "."+root) {
			return true
		}
	}
	return false
}

func normalizeHost(h string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(h)), ".")
}
