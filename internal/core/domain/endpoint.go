package domain

import (
	"net/url"
	"strings"
)

// Role identifies which kind of server an endpoint addresses.
type Role string

const (
	// RoleAccount handles authentication, identity and cross-KB account data.
	RoleAccount Role = "account"
	// RoleContent handles document storage inside one knowledge base.
	RoleContent Role = "content"
)

// DefaultScheme is applied to server addresses given without a scheme.
const DefaultScheme = "https"

// Endpoint is a normalized base address for one server role.
type Endpoint struct {
	Role Role
	URL  *url.URL
	raw  string
}

// NewEndpoint normalizes raw into an endpoint for role.
//
// Addresses without a scheme get DefaultScheme. Unparsable addresses are
// kept verbatim; BuildURL then falls back to plain concatenation.
func NewEndpoint(raw string, role Role) Endpoint {
	raw = strings.TrimSpace(raw)
	if raw != "" && !strings.Contains(raw, "://") {
		raw = DefaultScheme + "://" + raw
	}

	ep := Endpoint{Role: role, raw: raw}
	u, err := url.Parse(raw)
	if err != nil {
		return ep
	}
	if u.Scheme == "" {
		u.Scheme = DefaultScheme
	}
	ep.URL = u
	return ep
}

// String returns the normalized base address.
func (e Endpoint) String() string {
	if e.URL == nil {
		return e.raw
	}
	return e.URL.String()
}

// Host returns host[:port] of the endpoint, or "" when it did not parse.
func (e Endpoint) Host() string {
	if e.URL == nil {
		return ""
	}
	return e.URL.Host
}
