package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yndnr/wizcli-go/internal/core/domain"
	"github.com/yndnr/wizcli-go/internal/telemetry/logger"
)

// DefaultIdleTimeout is the server-side token lifetime without keep-alive.
const DefaultIdleTimeout = 15 * time.Minute

// State is the login state of a TokenManager.
type State int

const (
	// StateUnauthenticated means no token is held.
	StateUnauthenticated State = iota
	// StateAuthenticated means a token is held and was last accepted.
	StateAuthenticated
	// StateExpired means the server rejected the held token.
	StateExpired
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateExpired:
		return "expired"
	default:
		return "unauthenticated"
	}
}

// AccountAPI is the account server surface used by the services.
type AccountAPI interface {
	Login(ctx context.Context, userID, password string) (*domain.UserInfo, error)
	Logout(ctx context.Context, token string) error
	KeepAlive(ctx context.Context, token string) error
	FetchToken(ctx context.Context, userID, password string) (string, error)
	FetchUserInfo(ctx context.Context, token string) (*domain.UserInfo, error)
	FetchValueVersions(ctx context.Context, token string, cursor int64) (*domain.ValueVersionPage, error)
}

// TokenManagerConfig holds configuration for TokenManager.
type TokenManagerConfig struct {
	// IdleTimeout is the server idle window used by LikelyExpired.
	IdleTimeout time.Duration

	// Now returns the current time (default: time.Now).
	Now func() time.Time
}

// DefaultTokenManagerConfig returns default configuration.
func DefaultTokenManagerConfig() *TokenManagerConfig {
	return &TokenManagerConfig{
		IdleTimeout: DefaultIdleTimeout,
		Now:         time.Now,
	}
}

// TokenManager owns the session of one user.
//
// The server is the source of truth for token validity; the manager only
// tracks what the server last said and when the token was last used.
type TokenManager struct {
	api  AccountAPI
	idle time.Duration
	now  func() time.Time

	mu       sync.Mutex
	state    State
	user     *domain.UserInfo
	lastUsed time.Time
}

// NewTokenManager creates an unauthenticated manager.
func NewTokenManager(api AccountAPI, config *TokenManagerConfig) *TokenManager {
	if config == nil {
		config = DefaultTokenManagerConfig()
	}
	idle := config.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &TokenManager{api: api, idle: idle, now: now}
}

// Login authenticates and stores the session. When already authenticated
// it returns the current user without contacting the server.
func (m *TokenManager) Login(ctx context.Context, userID, password string) (*domain.UserInfo, error) {
	m.mu.Lock()
	if m.state == StateAuthenticated {
		user := m.user.Clone()
		m.mu.Unlock()
		return user, nil
	}
	m.mu.Unlock()

	info, err := m.api.Login(ctx, userID, password)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = info.Clone()
	m.state = StateAuthenticated
	m.lastUsed = m.now()
	logger.L(ctx).Info("logged in", "user_id", info.UserID, "kb_guid", info.KbGUID)
	return info, nil
}

// Logout invalidates the token on the server and clears the session.
//
// The session is cleared whenever the server answered, including when it
// rejected the token. A transport failure keeps the session so the call
// can be repeated. An expired session is cleared without a request.
func (m *TokenManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	state := m.state
	var token string
	if m.user != nil {
		token = m.user.Token
	}
	m.mu.Unlock()

	switch state {
	case StateUnauthenticated:
		return domain.ErrUnauthenticated
	case StateExpired:
		m.clear()
		return nil
	}

	err := m.api.Logout(ctx, token)
	if errors.Is(err, domain.ErrTransport) {
		return err
	}
	m.clear()
	if errors.Is(err, domain.ErrTokenExpired) {
		return nil
	}
	return err
}

// KeepAlive extends the server-side expiry of the token.
func (m *TokenManager) KeepAlive(ctx context.Context) error {
	return m.Use(ctx, func(token string) error {
		return m.api.KeepAlive(ctx, token)
	})
}

// FetchToken exchanges credentials for a token. It does not change the
// session.
func (m *TokenManager) FetchToken(ctx context.Context, userID, password string) (string, error) {
	return m.api.FetchToken(ctx, userID, password)
}

// SetUserInfo replaces the session with info, used now.
func (m *TokenManager) SetUserInfo(info *domain.UserInfo) {
	m.RestoreSession(info, time.Time{})
}

// RestoreSession replaces the session with a saved one that was last used
// at lastUsed. A zero lastUsed means now. A nil info clears the session.
func (m *TokenManager) RestoreSession(info *domain.UserInfo, lastUsed time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if info == nil || info.Token == "" {
		m.user = nil
		m.state = StateUnauthenticated
		m.lastUsed = time.Time{}
		return
	}
	if lastUsed.IsZero() {
		lastUsed = m.now()
	}
	m.user = info.Clone()
	m.state = StateAuthenticated
	m.lastUsed = lastUsed
}

// Token returns the session token.
func (m *TokenManager) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokenLocked()
}

func (m *TokenManager) tokenLocked() (string, error) {
	switch m.state {
	case StateAuthenticated:
		return m.user.Token, nil
	case StateExpired:
		return "", domain.ErrTokenExpired
	default:
		return "", domain.ErrUnauthenticated
	}
}

// UserInfo returns a copy of the session user, or nil.
func (m *TokenManager) UserInfo() *domain.UserInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user.Clone()
}

// State returns the login state.
func (m *TokenManager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastUsed returns when the server last accepted the token.
func (m *TokenManager) LastUsed() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUsed
}

// LikelyExpired estimates whether the server has dropped the token for
// inactivity. It is advisory; callers still send their requests.
func (m *TokenManager) LikelyExpired(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateAuthenticated {
		return m.state == StateExpired
	}
	return now.Sub(m.lastUsed) >= m.idle
}

// Use runs fn with the session token and records the outcome: success
// refreshes the last-use time and a rejected token moves the manager to
// StateExpired.
func (m *TokenManager) Use(ctx context.Context, fn func(token string) error) error {
	token, err := m.Token()
	if err != nil {
		return err
	}
	return m.observe(ctx, fn(token))
}

// UseOptional is Use for calls that may go out without a token.
func (m *TokenManager) UseOptional(ctx context.Context, fn func(token string) error) error {
	token, err := m.Token()
	if err != nil {
		return fn("")
	}
	return m.observe(ctx, fn(token))
}

func (m *TokenManager) observe(ctx context.Context, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case err == nil:
		m.lastUsed = m.now()
	case errors.Is(err, domain.ErrTokenExpired):
		if m.state == StateAuthenticated {
			logger.L(ctx).Warn("session token rejected by server")
			m.state = StateExpired
		}
	}
	return err
}

// updateUserInfo refreshes the user fields while keeping the token.
func (m *TokenManager) updateUserInfo(info *domain.UserInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil || info == nil {
		return
	}
	updated := info.Clone()
	updated.Token = m.user.Token
	m.user = updated
}

func (m *TokenManager) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	m.state = StateUnauthenticated
	m.lastUsed = time.Time{}
}
