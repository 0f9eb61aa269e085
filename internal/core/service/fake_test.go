package service

import (
	"context"
	"fmt"

	"github.com/yndnr/wizcli-go/internal/core/domain"
)

// fakeAccountAPI is an in-memory AccountAPI.
type fakeAccountAPI struct {
	user     *domain.UserInfo
	password string

	logoutErr error
	keepErr   error
	infoErr   error

	pages func(cursor int64) (*domain.ValueVersionPage, error)

	loginCalls   int
	logoutCalls  int
	keepCalls    int
	infoCalls    int
	versionCalls []int64
	tokensSeen   []string
}

func newFakeAccountAPI() *fakeAccountAPI {
	return &fakeAccountAPI{
		user: &domain.UserInfo{
			Token:    "token-1",
			UserGUID: "guid-alice",
			UserID:   "alice@example.com",
			KbGUID:   "kb-alice",
			KbServer: "https://kshttps0.wiz.cn",
		},
		password: "secret",
	}
}

func (f *fakeAccountAPI) Login(_ context.Context, userID, password string) (*domain.UserInfo, error) {
	f.loginCalls++
	if userID != f.user.UserID {
		return nil, domain.ErrInvalidUser
	}
	if password != f.password {
		return nil, domain.ErrInvalidPassword
	}
	return f.user.Clone(), nil
}

func (f *fakeAccountAPI) Logout(_ context.Context, token string) error {
	f.logoutCalls++
	f.tokensSeen = append(f.tokensSeen, token)
	return f.logoutErr
}

func (f *fakeAccountAPI) KeepAlive(_ context.Context, token string) error {
	f.keepCalls++
	f.tokensSeen = append(f.tokensSeen, token)
	return f.keepErr
}

func (f *fakeAccountAPI) FetchToken(_ context.Context, userID, password string) (string, error) {
	if userID != f.user.UserID || password != f.password {
		return "", domain.ErrInvalidPassword
	}
	return "fresh-token", nil
}

func (f *fakeAccountAPI) FetchUserInfo(_ context.Context, token string) (*domain.UserInfo, error) {
	f.infoCalls++
	f.tokensSeen = append(f.tokensSeen, token)
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	info := f.user.Clone()
	info.Token = ""
	info.DisplayName = "Alice Refreshed"
	return info, nil
}

func (f *fakeAccountAPI) FetchValueVersions(_ context.Context, token string, cursor int64) (*domain.ValueVersionPage, error) {
	f.versionCalls = append(f.versionCalls, cursor)
	if f.pages == nil {
		return domain.NewValueVersionPage(nil, cursor, domain.ValueVersionPageSize), nil
	}
	return f.pages(cursor)
}

// versionPages serves total records, one KB per version number.
func versionPages(total int) func(cursor int64) (*domain.ValueVersionPage, error) {
	return func(cursor int64) (*domain.ValueVersionPage, error) {
		var entries []*domain.KbValueVersions
		for v := cursor + 1; v <= int64(total) && len(entries) < domain.ValueVersionPageSize; v++ {
			entries = append(entries, &domain.KbValueVersions{
				KbGUID:   fmt.Sprintf("kb-%04d", v),
				Versions: map[string]int64{"folders": v},
			})
		}
		return domain.NewValueVersionPage(entries, cursor, domain.ValueVersionPageSize), nil
	}
}
