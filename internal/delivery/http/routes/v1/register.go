package v1

import (
	"skillbridge/internal/delivery/http/handler"
	"skillbridge/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Handlers struct {
	Auth        *handler.AuthHandler
	Profile     *handler.ProfileHandler
	Jobs        *handler.JobsHandler
	Submissions *handler.SubmissionsHandler
	Membership  *handler.MembershipHandler
	Admin       *handler.AdminHandler
	Realtime    *ws.Handler
}

type Middlewares struct {
	Auth      fiber.Handler
	Admin     fiber.Handler
	RateLimit fiber.Handler
}

func Register(r fiber.Router, h Handlers, mw Middlewares) {
	if r == nil {
		return
	}

	RegisterAuth(r.Group("/auth"), h.Auth, mw)
	RegisterPublic(r, h)

	if h.Realtime != nil {
		r.Get("/ws/submissions", h.Realtime.HandleSubmissionsWS)
	}

	protected := r.Group("", mw.Auth)
	if h.Auth != nil {
		h.Auth.RegisterProtectedRoutes(protected.Group("/auth"))
	}
	RegisterUsers(protected.Group("/users"), h.Profile)
	RegisterJobs(protected, h.Jobs, h.Submissions, mw.RateLimit)
	if h.Membership != nil {
		h.Membership.RegisterRoutes(protected.Group("/membership"))
	}

	RegisterAdmin(protected.Group("/admin", mw.Admin), h.Admin)
}
