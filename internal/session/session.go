// Package session holds the authenticated context explicitly. Nothing in
// the core reads ambient storage; callers own a Session and pass it where
// it is needed.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrBadToken     = errors.New("malformed access token")
	ErrNotLoggedIn  = errors.New("no active session")
	ErrAdminOnly    = errors.New("admin privilege required")
	ErrTokenExpired = errors.New("session expired")
)

// Claims mirrors the access token payload issued by the service. The
// client reads claims without verifying the signature; the secret, and
// all authority, stay server-side.
type Claims struct {
	UserID  int64 `json:"user_id"`
	IsAdmin bool  `json:"is_admin"`
	jwt.RegisteredClaims
}

// TokenStore persists the raw token between runs. Implementations must be
// safe for concurrent use.
type TokenStore interface {
	Token() string
	SetToken(token string)
	Clear()
}

// MemoryStore is a TokenStore for tests and single-run tools.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemoryStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *MemoryStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// Session is the explicit login state: token, decoded claims, and the
// admin-mode toggle. Admin mode is a client-visible switch gated by the
// is_admin claim; the service re-validates authority on every call.
type Session struct {
	mu        sync.Mutex
	store     TokenStore
	claims    *Claims
	adminMode bool
	now       func() time.Time
}

// New builds a session over store. A token already in the store is decoded
// eagerly; a malformed stored token leaves the session logged out.
func New(store TokenStore) *Session {
	s := &Session{store: store, now: time.Now}
	if tok := store.Token(); tok != "" {
		if claims, err := decode(tok); err == nil {
			s.claims = claims
		} else {
			store.Clear()
		}
	}
	return s
}

// SetToken installs a fresh access token, replacing any previous login.
// Admin mode defaults to on for admins, matching first-use behavior.
func (s *Session) SetToken(token string) error {
	claims, err := decode(token)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims = claims
	s.adminMode = claims.IsAdmin
	s.store.SetToken(token)
	return nil
}

// Token returns the raw bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claims == nil {
		return ""
	}
	return s.store.Token()
}

// Claims returns the decoded claims of the active session.
func (s *Session) Claims() (Claims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claims == nil {
		return Claims{}, ErrNotLoggedIn
	}
	return *s.claims, nil
}

// Expired reports whether the token carries an exp in the past.
func (s *Session) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claims == nil || s.claims.ExpiresAt == nil {
		return false
	}
	return s.claims.ExpiresAt.Before(s.now())
}

// IsAdmin reports the is_admin claim of the active session.
func (s *Session) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims != nil && s.claims.IsAdmin
}

// SetAdminMode toggles admin mode. Non-admins cannot enable it.
func (s *Session) SetAdminMode(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on && (s.claims == nil || !s.claims.IsAdmin) {
		return ErrAdminOnly
	}
	s.adminMode = on
	return nil
}

// AdminModeEnabled reports whether management actions are exposed:
// admin claim present and the toggle on.
func (s *Session) AdminModeEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.claims != nil && s.claims.IsAdmin && s.adminMode
}

// Invalidate drops the session after the service rejects the token
// (401/403).
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims = nil
	s.adminMode = false
	s.store.Clear()
}

func decode(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, errors.Join(ErrBadToken, err)
	}
	return claims, nil
}
