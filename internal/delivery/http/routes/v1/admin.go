package v1

import (
	"skillbridge/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

// RegisterAdmin expects r to already carry the admin role check.
func RegisterAdmin(r fiber.Router, adminHandler *handler.AdminHandler) {
	if r == nil || adminHandler == nil {
		return
	}

	adminHandler.RegisterRoutes(r)
}
