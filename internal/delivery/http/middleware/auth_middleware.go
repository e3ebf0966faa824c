package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"skillbridge/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const (
	CtxUserIDKey   = "user_id"
	CtxEmailKey    = "email"
	CtxTokenExpKey = "token_expires_at"
)

// RevocationChecker reports whether a token id was revoked before expiry.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthMiddleware struct {
	jwt     jwt.Service
	revoked RevocationChecker
}

func NewAuthMiddleware(jwtSvc jwt.Service, revoked RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwtSvc, revoked: revoked}
}

func (m *AuthMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		token, ok := BearerToken(c.Get("Authorization"))
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		claims, err := m.jwt.ValidateToken(token, jwt.TokenTypeAccess)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return NewAppError(fiber.StatusUnauthorized, "Token expired", nil, err)
			}
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
		}
		if claims.UserID == uuid.Nil {
			return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, nil)
		}

		// A denylist outage must not lock everyone out.
		if m.revoked != nil && claims.ID != "" {
			if revoked, err := m.revoked.IsRevoked(c.Context(), claims.ID); err == nil && revoked {
				return NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, nil)
			}
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxEmailKey, claims.Email)
		c.Locals(CtxTokenExpKey, claims.ExpiresAtTime())

		return c.Next()
	}
}

// UserID returns the authenticated user stored by AuthMiddleware.
func UserID(c fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals(CtxUserIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func TokenExpiresAt(c fiber.Ctx) time.Time {
	t, _ := c.Locals(CtxTokenExpKey).(time.Time)
	return t
}

func BearerToken(authHeader string) (string, bool) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}
