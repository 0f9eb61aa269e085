package wizapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/yndnr/wizcli-go/internal/cli/connection"
	"github.com/yndnr/wizcli-go/internal/core/domain"
)

// Account server command paths.
const (
	PathLogin         = "/as/user/login"
	PathToken         = "/as/user/token"
	PathLogout        = "/as/user/logout"
	PathKeepAlive     = "/as/user/keep"
	PathUserInfo      = "/as/user/info"
	PathValueVersions = "/as/user/kv/versions"
)

// Transport sends one API request and decodes the envelope result.
type Transport interface {
	Call(ctx context.Context, r *connection.Request, target any) error
}

// AccountClient issues account server commands.
type AccountClient struct {
	server    *Server
	transport Transport
}

// NewAccountClient creates an account client.
func NewAccountClient(server *Server, transport Transport) *AccountClient {
	return &AccountClient{server: server, transport: transport}
}

// Server returns the account server base.
func (c *AccountClient) Server() *Server {
	return c.server
}

type credentials struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// Login authenticates userID and returns the user info with its token.
func (c *AccountClient) Login(ctx context.Context, userID, password string) (*domain.UserInfo, error) {
	if userID == "" {
		return nil, domain.ErrMissingArgument.WithDetails("user id")
	}

	var raw json.RawMessage
	err := c.transport.Call(ctx, &connection.Request{
		Command: "login",
		Method:  http.MethodPost,
		URL:     c.server.BuildURL(PathLogin, ""),
		Body:    credentials{UserID: userID, Password: password},
	}, &raw)
	if err != nil {
		return nil, err
	}

	info, err := domain.ParseUserInfo(raw)
	if err != nil {
		return nil, err
	}
	if info.Token == "" {
		return nil, domain.ErrMalformedResponse.WithDetails("login result has no token")
	}
	if info.UserID == "" {
		info.UserID = userID
	}
	return info, nil
}

// FetchToken exchanges credentials for a fresh token without touching any
// session.
func (c *AccountClient) FetchToken(ctx context.Context, userID, password string) (string, error) {
	if userID == "" {
		return "", domain.ErrMissingArgument.WithDetails("user id")
	}

	var raw json.RawMessage
	err := c.transport.Call(ctx, &connection.Request{
		Command: "token",
		Method:  http.MethodPost,
		URL:     c.server.BuildURL(PathToken, ""),
		Body:    credentials{UserID: userID, Password: password},
	}, &raw)
	if err != nil {
		return "", err
	}
	return parseToken(raw)
}

// parseToken accepts either a bare token string or an object with a token
// field.
func parseToken(raw json.RawMessage) (string, error) {
	var token string
	if err := json.Unmarshal(raw, &token); err == nil && token != "" {
		return token, nil
	}

	var obj struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil || obj.Token == "" {
		return "", domain.ErrMalformedResponse.WithDetails("token result")
	}
	return obj.Token, nil
}

// Logout invalidates token on the server.
func (c *AccountClient) Logout(ctx context.Context, token string) error {
	return c.tokenCommand(ctx, "logout", PathLogout, token)
}

// KeepAlive extends the server-side expiry of token.
func (c *AccountClient) KeepAlive(ctx context.Context, token string) error {
	return c.tokenCommand(ctx, "keep", PathKeepAlive, token)
}

func (c *AccountClient) tokenCommand(ctx context.Context, command, path, token string) error {
	if token == "" {
		return domain.ErrUnauthenticated
	}
	return c.transport.Call(ctx, &connection.Request{
		Command: command,
		Method:  http.MethodGet,
		URL:     c.server.BuildURL(path, token),
		Token:   token,
	}, nil)
}

// FetchUserInfo returns the user bound to token. The returned info always
// carries token.
func (c *AccountClient) FetchUserInfo(ctx context.Context, token string) (*domain.UserInfo, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	var raw json.RawMessage
	err := c.transport.Call(ctx, &connection.Request{
		Command: "user_info",
		Method:  http.MethodGet,
		URL:     c.server.BuildURL(PathUserInfo, token),
		Token:   token,
	}, &raw)
	if err != nil {
		return nil, err
	}

	info, err := domain.ParseUserInfo(raw)
	if err != nil {
		return nil, err
	}
	info.Token = token
	return info, nil
}

// FetchValueVersions returns one page of key/value versions newer than
// cursor. A page holds at most domain.ValueVersionPageSize entries; a
// larger page is rejected, since its next cursor could skip entries.
func (c *AccountClient) FetchValueVersions(ctx context.Context, token string, cursor int64) (*domain.ValueVersionPage, error) {
	if token == "" {
		return nil, domain.ErrUnauthenticated
	}

	pageSize := strconv.Itoa(domain.ValueVersionPageSize)
	var raw json.RawMessage
	err := c.transport.Call(ctx, &connection.Request{
		Command: "kv_versions",
		Method:  http.MethodGet,
		URL:     c.server.BuildURL(PathValueVersions, token),
		Token:   token,
		Params: url.Values{
			"version":  {strconv.FormatInt(cursor, 10)},
			"count":    {pageSize},
			"pageSize": {pageSize},
		},
	}, &raw)
	if err != nil {
		return nil, err
	}

	entries, err := parseValueVersions(raw)
	if err != nil {
		return nil, err
	}
	if len(entries) > domain.ValueVersionPageSize {
		return nil, domain.ErrMalformedResponse.WithDetails(
			fmt.Sprintf("value versions page holds %d entries, limit %d", len(entries), domain.ValueVersionPageSize))
	}
	return domain.NewValueVersionPage(entries, cursor, domain.ValueVersionPageSize), nil
}

func parseValueVersions(raw json.RawMessage) ([]*domain.KbValueVersions, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var entries []*domain.KbValueVersions
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, domain.ErrMalformedResponse.WithDetails("value versions").WithCause(err)
	}

	out := entries[:0]
	for _, e := range entries {
		if e != nil && e.KbGUID != "" {
			out = append(out, e)
		}
	}
	return out, nil
}
