package v1

import (
	"skillbridge/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterAuth(r fiber.Router, authHandler *handler.AuthHandler, mw Middlewares) {
	if r == nil || authHandler == nil {
		return
	}

	authHandler.RegisterRoutes(r, mw.RateLimit)
}

// RegisterPublic mounts the catalogue endpoints that need no session.
func RegisterPublic(r fiber.Router, h Handlers) {
	if r == nil {
		return
	}
	if h.Jobs != nil {
		h.Jobs.RegisterPublicRoutes(r)
	}
	if h.Membership != nil {
		h.Membership.RegisterPublicRoutes(r.Group("/membership"))
	}
}
