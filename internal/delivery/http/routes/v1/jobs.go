package v1

import (
	"skillbridge/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterJobs(r fiber.Router, jobsHandler *handler.JobsHandler, submissionsHandler *handler.SubmissionsHandler, limit fiber.Handler) {
	if r == nil {
		return
	}
	if jobsHandler == nil {
		return
	}

	jobsHandler.RegisterRoutes(r)
	if submissionsHandler != nil {
		submissionsHandler.RegisterRoutes(r, limit)
	}
}
