package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// AdminMiddleware must run after AuthMiddleware.
type AdminMiddleware struct {
	roles AdminChecker
}

func NewAdminMiddleware(roles AdminChecker) *AdminMiddleware {
	return &AdminMiddleware{roles: roles}
}

func (m *AdminMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		userID, ok := UserID(c)
		if !ok {
			return NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
		}

		isAdmin, err := m.roles.IsAdmin(c.Context(), userID)
		if err != nil {
			return NewAppError(fiber.StatusInternalServerError, "", nil, err)
		}
		if !isAdmin {
			return NewAppError(fiber.StatusForbidden, "Admin access required", nil, nil)
		}
		return c.Next()
	}
}
