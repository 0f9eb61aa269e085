package wizapi

import (
	"net/url"
	"strings"

	"github.com/yndnr/wizcli-go/internal/core/domain"
)

// Fixed query parameters.
const (
	ClientType = "macos"
	APIVersion = "10"
)

// Well-known servers.
const (
	DefaultAccountServer = "https://as.wiz.cn/"
	DefaultAPIServer     = "https://api.wiz.cn/"
)

// Server is a base address that command URLs are built against.
type Server struct {
	endpoint      domain.Endpoint
	clientVersion string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithClientVersion sets the clientVersion query parameter.
func WithClientVersion(v string) ServerOption {
	return func(s *Server) {
		s.clientVersion = v
	}
}

// NewServer normalizes raw into a server base for role.
func NewServer(raw string, role domain.Role, opts ...ServerOption) *Server {
	s := &Server{endpoint: domain.NewEndpoint(raw, role)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Endpoint returns the normalized base.
func (s *Server) Endpoint() domain.Endpoint {
	return s.endpoint
}

// String returns the normalized base address.
func (s *Server) String() string {
	return s.endpoint.String()
}

// BuildURL resolves cmd against the base and replaces its query with the
// fixed command parameters. A cmd that carries its own host ignores the
// base. The token parameter is only added when token is non-empty.
//
// Parameters are always emitted in the order clientType, clientVersion,
// apiVersion, token, so the same inputs give the same URL.
func (s *Server) BuildURL(cmd, token string) string {
	query := s.query(token)

	ref, err := url.Parse(cmd)
	if err != nil {
		return joinRaw(s.endpoint.String(), stripQuery(cmd)) + "?" + query
	}

	var u *url.URL
	switch {
	case ref.Host != "":
		u = ref
		if u.Scheme == "" {
			u.Scheme = domain.DefaultScheme
		}
	case s.endpoint.URL != nil:
		u = s.endpoint.URL.ResolveReference(ref)
	default:
		return joinRaw(s.endpoint.String(), ref.Path) + "?" + query
	}

	u.RawQuery = query
	return u.String()
}

func (s *Server) query(token string) string {
	var b strings.Builder
	b.WriteString("clientType=")
	b.WriteString(url.QueryEscape(ClientType))
	b.WriteString("&clientVersion=")
	b.WriteString(url.QueryEscape(s.clientVersion))
	b.WriteString("&apiVersion=")
	b.WriteString(APIVersion)
	if token != "" {
		b.WriteString("&token=")
		b.WriteString(url.QueryEscape(token))
	}
	return b.String()
}

// joinRaw concatenates an unparsable base and a command path.
func joinRaw(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

func stripQuery(s string) string {
	if i := strings.IndexByte(s, '?'); i >= 0 {
		return s[:i]
	}
	return s
}
