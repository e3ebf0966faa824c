package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestService(now time.Time) *HMACService {
	s := NewHMACService("access-secret", "refresh-secret", "verify-secret", time.Hour, 24*time.Hour, 2*time.Hour)
	s.now = func() time.Time { return now }
	return s
}

func TestAccessTokenRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := newTestService(now)
	id := uuid.New()

	tok, err := s.GenerateAccessToken(id, "a@b.c")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !tok.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected expiry %v, got %v", now.Add(time.Hour), tok.ExpiresAt)
	}

	c, err := s.ValidateToken(tok.Value, TokenTypeAccess)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if c.UserID != id || c.Email != "a@b.c" || c.ID != tok.ID {
		t.Fatalf("unexpected claims: %+v", c)
	}
}

func TestValidateRejectsOtherTokenTypes(t *testing.T) {
	s := newTestService(time.Now())
	id := uuid.New()

	refresh, err := s.GenerateRefreshToken(id)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := s.ValidateToken(refresh.Value, TokenTypeAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if _, err := s.ValidateToken(refresh.Value, TokenTypeRefresh); err != nil {
		t.Fatalf("expected refresh token to validate, got %v", err)
	}
}

func TestValidateExpired(t *testing.T) {
	issued := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := newTestService(issued)

	tok, err := s.GenerateVerifyToken(uuid.New(), "a@b.c")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	s.now = func() time.Time { return issued.Add(3 * time.Hour) }
	if _, err := s.ValidateToken(tok.Value, TokenTypeVerify); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateGarbage(t *testing.T) {
	s := newTestService(time.Now())
	if _, err := s.ValidateToken("not-a-token", TokenTypeAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	if _, err := s.ValidateToken("x", "unknown"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for unknown type, got %v", err)
	}
}
