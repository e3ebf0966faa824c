package handler

import (
	"errors"

	"skillbridge/internal/delivery/http/dto"
	"skillbridge/internal/delivery/http/middleware"
	"skillbridge/internal/pkg/response"
	"skillbridge/internal/usecase"
	ucjob "skillbridge/internal/usecase/job"

	"github.com/gofiber/fiber/v3"
)

type JobsHandler struct {
	list usecase.JobListUsecase
	jobs *ucjob.Service
}

func NewJobsHandler(list usecase.JobListUsecase, jobs *ucjob.Service) *JobsHandler {
	return &JobsHandler{list: list, jobs: jobs}
}

func (h *JobsHandler) RegisterPublicRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/categories", h.HandleListCategories)
}

func (h *JobsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/jobs", h.HandleListJobs)
	r.Get("/jobs/:id", h.HandleGetJob)
	r.Get("/jobs/:id/file", h.HandleJobFile)
}

func (h *JobsHandler) HandleListJobs(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	limit, offset, err := parsePage(c, 20)
	if err != nil {
		return err
	}
	categoryID, err := uuidQuery(c, "category_id")
	if err != nil {
		return err
	}

	items, err := h.list.ListJobs(c.Context(), userID, usecase.JobListParams{
		CategoryID:     categoryID,
		Difficulty:     c.Query("difficulty"),
		RequiredTier:   c.Query("required_tier"),
		AccessibleOnly: fiber.Query[bool](c, "accessible_only"),
		Search:         c.Query("search"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		return mapJobListUsecaseError(err)
	}

	out := make([]dto.JobListItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.JobListItemResponse{JobResponse: dto.NewJobResponse(it.Job), IsAccessible: it.IsAccessible})
	}
	return response.Page(c, out, limit, offset)
}

func (h *JobsHandler) HandleGetJob(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	jobID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	d, err := h.jobs.Detail(c.Context(), userID, jobID)
	if err != nil {
		return mapJobError(err)
	}

	res := dto.JobDetailResponse{
		JobResponse:    dto.NewJobResponse(d.Job),
		CanAccess:      d.CanAccess,
		CanSubmit:      d.CanSubmit,
		HasSubmitted:   d.HasSubmitted,
		RemainingToday: d.RemainingToday,
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

// HandleJobFile redirects to a short-lived download link.
func (h *JobsHandler) HandleJobFile(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	jobID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	link, err := h.jobs.FileURL(c.Context(), userID, jobID)
	if err != nil {
		return mapJobError(err)
	}
	return c.Redirect().Status(fiber.StatusFound).To(link)
}

func (h *JobsHandler) HandleListCategories(c fiber.Ctx) error {
	cats, err := h.jobs.Categories(c.Context())
	if err != nil {
		return mapJobError(err)
	}
	out := make([]dto.CategoryResponse, 0, len(cats))
	for _, cat := range cats {
		out = append(out, dto.NewCategoryResponse(cat))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func mapJobListUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

func mapJobError(err error) error {
	switch {
	case errors.Is(err, ucjob.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, err)
	case errors.Is(err, ucjob.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, "Upgrade your membership to access this job", nil, err)
	case errors.Is(err, ucjob.ErrNoFile):
		return middleware.NewAppError(fiber.StatusNotFound, "Job has no attachment", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
