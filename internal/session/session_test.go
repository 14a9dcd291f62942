package session_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ganghaofan/mealorder/internal/session"
	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, userID int64, isAdmin bool, exp time.Time) string {
	t.Helper()
	claims := session.Claims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func TestSetTokenDecodesClaims(t *testing.T) {
	s := session.New(&session.MemoryStore{})
	tok := signToken(t, 42, false, time.Now().Add(time.Hour))

	if err := s.SetToken(tok); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	claims, err := s.Claims()
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if claims.UserID != 42 || claims.IsAdmin {
		t.Errorf("claims = %+v", claims)
	}
	if s.Token() != tok {
		t.Error("raw token not retained")
	}
	if s.Expired() {
		t.Error("fresh token reported expired")
	}
}

func TestMalformedToken(t *testing.T) {
	s := session.New(&session.MemoryStore{})
	if err := s.SetToken("not-a-jwt"); !errors.Is(err, session.ErrBadToken) {
		t.Fatalf("err = %v, want ErrBadToken", err)
	}
	if _, err := s.Claims(); !errors.Is(err, session.ErrNotLoggedIn) {
		t.Errorf("Claims after bad token = %v, want ErrNotLoggedIn", err)
	}
}

func TestStoredTokenRestored(t *testing.T) {
	store := &session.MemoryStore{}
	store.SetToken(signToken(t, 7, true, time.Now().Add(time.Hour)))

	s := session.New(store)
	claims, err := s.Claims()
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if claims.UserID != 7 || !claims.IsAdmin {
		t.Errorf("claims = %+v", claims)
	}

	// A corrupt stored token leaves the session logged out and clears it.
	bad := &session.MemoryStore{}
	bad.SetToken("garbage")
	s2 := session.New(bad)
	if _, err := s2.Claims(); err == nil {
		t.Error("corrupt stored token should not log in")
	}
	if bad.Token() != "" {
		t.Error("corrupt stored token should be cleared")
	}
}

func TestAdminModeGating(t *testing.T) {
	s := session.New(&session.MemoryStore{})

	// Non-admin can never enable admin mode.
	if err := s.SetToken(signToken(t, 1, false, time.Now().Add(time.Hour))); err != nil {
		t.Fatal(err)
	}
	if err := s.SetAdminMode(true); !errors.Is(err, session.ErrAdminOnly) {
		t.Fatalf("SetAdminMode = %v, want ErrAdminOnly", err)
	}
	if s.AdminModeEnabled() {
		t.Error("admin mode enabled for non-admin")
	}

	// Admin gets it on by default and can toggle.
	if err := s.SetToken(signToken(t, 2, true, time.Now().Add(time.Hour))); err != nil {
		t.Fatal(err)
	}
	if !s.AdminModeEnabled() {
		t.Error("admin mode should default on for admins")
	}
	if err := s.SetAdminMode(false); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if s.AdminModeEnabled() {
		t.Error("toggle off ignored")
	}
}

func TestExpiry(t *testing.T) {
	s := session.New(&session.MemoryStore{})
	if err := s.SetToken(signToken(t, 1, false, time.Now().Add(-time.Minute))); err != nil {
		t.Fatal(err)
	}
	if !s.Expired() {
		t.Error("past exp should report expired")
	}
}

func TestInvalidate(t *testing.T) {
	store := &session.MemoryStore{}
	s := session.New(store)
	if err := s.SetToken(signToken(t, 3, true, time.Now().Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	s.Invalidate()

	if s.Token() != "" || s.IsAdmin() || s.AdminModeEnabled() {
		t.Error("invalidate must drop token, claims and admin mode")
	}
	if store.Token() != "" {
		t.Error("invalidate must clear the store")
	}
}
