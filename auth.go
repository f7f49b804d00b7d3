package hirewise

import (
	"context"
	"errors"
	"sync"
)

// ErrNoCredential is returned when a token is required but none is held.
var ErrNoCredential = errors.New("hirewise: no credential available")

// TokenSource yields the credential used for REST calls and the socket
// handshake. Implementations may refresh lazily; callers treat the token
// as opaque.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource backed by a fixed string.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoCredential
	}
	return string(s), nil
}

// AuthStore holds the signed-in session: the bearer token and the
// authenticated user id. It is constructed once at application start and
// injected wherever a credential is needed; Clear is called on sign-out.
type AuthStore struct {
	mu     sync.RWMutex
	token  string
	userID int64
}

// NewAuthStore creates an empty store (signed-out state).
func NewAuthStore() *AuthStore { return &AuthStore{} }

// SetSession installs the credential and user identity after sign-in.
func (s *AuthStore) SetSession(token string, userID int64) {
	s.mu.Lock()
	s.token = token
	s.userID = userID
	s.mu.Unlock()
}

// Token implements TokenSource.
func (s *AuthStore) Token(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNoCredential
	}
	return s.token, nil
}

// UserID returns the authenticated user id, or 0 when signed out.
func (s *AuthStore) UserID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Clear drops the session on sign-out. Callers pair this with
// HistoryCache.Reset so no stale per-user state survives.
func (s *AuthStore) Clear() {
	s.mu.Lock()
	s.token = ""
	s.userID = 0
	s.mu.Unlock()
}
