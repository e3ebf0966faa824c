package routes

import (
	"skillbridge/internal/delivery/http/handler"
	"skillbridge/internal/delivery/http/middleware"
	v1 "skillbridge/internal/delivery/http/routes/v1"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health *handler.HealthHandler
	v1     v1.Handlers
	mw     v1.Middlewares
}

func NewRegistry(health *handler.HealthHandler, handlers v1.Handlers, mw v1.Middlewares) *Registry {
	return &Registry{health: health, v1: handlers, mw: mw}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
	r.registerFallback(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health == nil {
		return
	}
	r.health.RegisterRoutes(app)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.v1, r.mw)
}

// registerFallback answers unknown paths with the JSON envelope instead of
// fiber's plain-text 404. It must be registered last.
func (r *Registry) registerFallback(app *fiber.App) {
	app.Use(func(c fiber.Ctx) error {
		return middleware.NewAppError(fiber.StatusNotFound, "Route not found", fiber.Map{"path": c.Path()}, nil)
	})
}
