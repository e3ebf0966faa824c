package handler

import (
	"context"
	"net/http"
	"time"

	"skillbridge/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

// Pinger is any dependency whose reachability belongs in /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks  map[string]Pinger
	metrics http.Handler
}

func NewHealthHandler(checks map[string]Pinger, metrics http.Handler) *HealthHandler {
	return &HealthHandler{checks: checks, metrics: metrics}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.HandleHealth)
	if h.metrics != nil {
		r.Get("/metrics", adaptor.HTTPHandler(h.metrics))
	}
}

// HandleHealth reports 503 when any dependency is down.
func (h *HealthHandler) HandleHealth(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			deps[name] = "down"
			status = fiber.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	msg := response.MessageOK
	if status != fiber.StatusOK {
		msg = "degraded"
	}
	return c.Status(status).JSON(response.SemanticResponse{Status: status, Message: msg, Data: deps})
}
