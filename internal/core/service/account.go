package service

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/yndnr/wizcli-go/internal/core/domain"
	"github.com/yndnr/wizcli-go/internal/telemetry/logger"
)

// AccountServiceConfig holds configuration for AccountService.
type AccountServiceConfig struct {
	// MaxPages bounds InitAllValueVersions (default: 1000).
	MaxPages int

	// PageRate is the number of version pages requested per second.
	// Zero or negative disables pacing.
	PageRate float64
}

// DefaultAccountServiceConfig returns default configuration.
func DefaultAccountServiceConfig() *AccountServiceConfig {
	return &AccountServiceConfig{
		MaxPages: 1000,
		PageRate: 5,
	}
}

// AccountService serves account data for the session held by a TokenManager.
type AccountService struct {
	tokens   *TokenManager
	api      AccountAPI
	maxPages int
	limiter  *rate.Limiter

	mu       sync.RWMutex
	versions map[string]*domain.KbValueVersions
}

// NewAccountService creates a new AccountService.
func NewAccountService(tokens *TokenManager, api AccountAPI, config *AccountServiceConfig) *AccountService {
	if config == nil {
		config = DefaultAccountServiceConfig()
	}
	maxPages := config.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultAccountServiceConfig().MaxPages
	}

	limit := rate.Inf
	if config.PageRate > 0 {
		limit = rate.Limit(config.PageRate)
	}

	return &AccountService{
		tokens:   tokens,
		api:      api,
		maxPages: maxPages,
		limiter:  rate.NewLimiter(limit, 1),
		versions: make(map[string]*domain.KbValueVersions),
	}
}

// FetchUserInfo reloads the session user from the server. The session
// token is kept.
func (s *AccountService) FetchUserInfo(ctx context.Context) (*domain.UserInfo, error) {
	var info *domain.UserInfo
	err := s.tokens.Use(ctx, func(token string) error {
		var err error
		info, err = s.api.FetchUserInfo(ctx, token)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.tokens.updateUserInfo(info)
	return s.tokens.UserInfo(), nil
}

// FetchValueVersions returns one page of value versions after cursor.
func (s *AccountService) FetchValueVersions(ctx context.Context, cursor int64) (*domain.ValueVersionPage, error) {
	var page *domain.ValueVersionPage
	err := s.tokens.Use(ctx, func(token string) error {
		var err error
		page, err = s.api.FetchValueVersions(ctx, token, cursor)
		return err
	})
	return page, err
}

// InitAllValueVersions walks every page of the value version listing and
// replaces the cached map on success. Walking stops at the first short or
// empty page; a full page that does not advance the cursor fails with
// domain.ErrPaginationStalled, and running past the page limit fails with
// domain.ErrPaginationLimit. On failure the cached map is left unchanged.
func (s *AccountService) InitAllValueVersions(ctx context.Context) error {
	collected := make(map[string]*domain.KbValueVersions)
	var cursor int64

	for pages := 0; ; pages++ {
		if pages >= s.maxPages {
			return domain.ErrPaginationLimit.WithDetails(fmt.Sprintf("%d pages, cursor %d", pages, cursor))
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		page, err := s.FetchValueVersions(ctx, cursor)
		if err != nil {
			return err
		}
		mergeVersions(collected, page.Entries)

		logger.L(ctx).Debug("value versions page",
			"page", pages+1, "entries", len(page.Entries), "cursor", cursor, "next", page.NextCursor)

		if page.IsLast() {
			break
		}
		if page.NextCursor <= cursor {
			return domain.ErrPaginationStalled.WithDetails(fmt.Sprintf("cursor %d", cursor))
		}
		cursor = page.NextCursor
	}

	s.mu.Lock()
	s.versions = collected
	s.mu.Unlock()
	return nil
}

// mergeVersions folds entries into dst. A knowledge base seen on several
// pages keeps the highest version per key.
func mergeVersions(dst map[string]*domain.KbValueVersions, entries []*domain.KbValueVersions) {
	for _, e := range entries {
		cur, ok := dst[e.KbGUID]
		if !ok {
			cur = &domain.KbValueVersions{KbGUID: e.KbGUID, Versions: make(map[string]int64, len(e.Versions))}
			dst[e.KbGUID] = cur
		}
		for k, v := range e.Versions {
			if old, seen := cur.Versions[k]; !seen || v > old {
				cur.Versions[k] = v
			}
		}
	}
}

// ValueVersions returns a copy of the cached versions keyed by KB GUID.
func (s *AccountService) ValueVersions() map[string]*domain.KbValueVersions {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*domain.KbValueVersions, len(s.versions))
	for guid, v := range s.versions {
		out[guid] = copyVersions(v)
	}
	return out
}

// ValueVersion returns the cached versions of one knowledge base.
func (s *AccountService) ValueVersion(kbGUID string) (*domain.KbValueVersions, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.versions[kbGUID]
	if !ok {
		return nil, false
	}
	return copyVersions(v), true
}

func copyVersions(v *domain.KbValueVersions) *domain.KbValueVersions {
	c := &domain.KbValueVersions{KbGUID: v.KbGUID, Versions: make(map[string]int64, len(v.Versions))}
	for k, ver := range v.Versions {
		c.Versions[k] = ver
	}
	return c
}
