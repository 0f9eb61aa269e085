package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yndnr/wizcli-go/internal/core/domain"
	"github.com/yndnr/wizcli-go/pkg/crypto/adaptive"
)

// sessionKey holds the single remembered session.
var sessionKey = []byte("session/current")

const sessionRecordVersion = 1

// SessionMeta describes a saved session without decrypting it.
type SessionMeta struct {
	UserID  string              `json:"userId" yaml:"userId"`
	KbGUID  string              `json:"kbGuid" yaml:"kbGuid"`
	SavedAt time.Time           `json:"savedAt" yaml:"savedAt"`
	Cipher  adaptive.CipherType `json:"cipher" yaml:"cipher"`
}

// sessionRecord is the stored form. The token is only kept inside Payload.
type sessionRecord struct {
	Version int              `json:"version"`
	Meta    SessionMeta      `json:"meta"`
	User    *domain.UserInfo `json:"user"`
	Payload []byte           `json:"payload"`
}

// SessionStore remembers one logged-in session across runs. The session
// token is encrypted with a key derived from the local master key.
type SessionStore struct {
	engine KVEngine
	key    []byte
	cipher adaptive.Cipher
	now    func() time.Time
}

// NewSessionStore creates a store over engine. tokenKey must be 32 bytes.
func NewSessionStore(engine KVEngine, tokenKey []byte) (*SessionStore, error) {
	c, err := adaptive.New(tokenKey)
	if err != nil {
		return nil, fmt.Errorf("storage: session cipher: %w", err)
	}
	return &SessionStore{
		engine: engine,
		key:    append([]byte(nil), tokenKey...),
		cipher: c,
		now:    time.Now,
	}, nil
}

// Save stores info, replacing any previous session.
func (s *SessionStore) Save(ctx context.Context, info *domain.UserInfo) error {
	if info == nil || info.Token == "" {
		return domain.ErrUnauthenticated.WithDetails("nothing to remember")
	}

	payload, err := s.cipher.Encrypt([]byte(info.Token), sessionKey)
	if err != nil {
		return domain.ErrStorage.WithDetails("encrypt token").WithCause(err)
	}

	user := info.Clone()
	user.Token = ""
	rec := sessionRecord{
		Version: sessionRecordVersion,
		Meta: SessionMeta{
			UserID:  info.UserID,
			KbGUID:  info.KbGUID,
			SavedAt: s.now().UTC(),
			Cipher:  s.cipher.Type(),
		},
		User:    user,
		Payload: payload,
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return domain.ErrStorage.WithDetails("encode session").WithCause(err)
	}
	if err := s.engine.Set(ctx, sessionKey, data); err != nil {
		return domain.ErrStorage.WithDetails("save session").WithCause(err)
	}
	return nil
}

// Load returns the remembered session with its token decrypted.
func (s *SessionStore) Load(ctx context.Context) (*domain.UserInfo, error) {
	rec, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	c := s.cipher
	if rec.Meta.Cipher != "" && rec.Meta.Cipher != c.Type() {
		if c, err = adaptive.NewWithType(s.key, rec.Meta.Cipher); err != nil {
			return nil, domain.ErrStorage.WithDetails("session cipher").WithCause(err)
		}
	}

	token, err := c.Decrypt(rec.Payload, sessionKey)
	if err != nil {
		return nil, domain.ErrStorage.WithDetails("decrypt token: wrong key or corrupted data").WithCause(err)
	}

	user := rec.User
	if user == nil {
		user = &domain.UserInfo{UserID: rec.Meta.UserID, KbGUID: rec.Meta.KbGUID}
	}
	user.Token = string(token)
	return user, nil
}

// Meta returns the description of the remembered session.
func (s *SessionStore) Meta(ctx context.Context) (*SessionMeta, error) {
	rec, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	meta := rec.Meta
	return &meta, nil
}

// Forget removes the remembered session. It reports whether one existed.
func (s *SessionStore) Forget(ctx context.Context) (bool, error) {
	if _, err := s.engine.Get(ctx, sessionKey); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return false, domain.ErrStorage.WithCause(err)
	}
	if err := s.engine.Delete(ctx, sessionKey); err != nil {
		return false, domain.ErrStorage.WithDetails("delete session").WithCause(err)
	}
	return true, nil
}

// Stats returns the size of the underlying engine.
func (s *SessionStore) Stats(ctx context.Context) (*KVStats, error) {
	return s.engine.Stats(ctx)
}

// Close runs value log GC and closes the engine.
func (s *SessionStore) Close() error {
	if _, err := s.engine.GC(context.Background()); err != nil {
		s.engine.Close()
		return err
	}
	return s.engine.Close()
}

func (s *SessionStore) read(ctx context.Context) (*sessionRecord, error) {
	data, err := s.engine.Get(ctx, sessionKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, domain.ErrStorage.WithDetails("read session").WithCause(err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, domain.ErrStorage.WithDetails("decode session").WithCause(err)
	}
	if rec.Version != sessionRecordVersion {
		return nil, domain.ErrStorage.WithDetails(fmt.Sprintf("unsupported session record version %d", rec.Version))
	}
	return &rec, nil
}
