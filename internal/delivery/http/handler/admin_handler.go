package handler

import (
	"errors"
	"fmt"

	"skillbridge/internal/delivery/http/dto"
	"skillbridge/internal/delivery/http/middleware"
	"skillbridge/internal/pkg/response"
	ucadmin "skillbridge/internal/usecase/admin"
	ucmembership "skillbridge/internal/usecase/membership"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	admin      *ucadmin.Service
	membership *ucmembership.Service
	reviews    *prometheus.CounterVec
}

type jobActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

type reviewRequest struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
}

type confirmRequest struct {
	Status string `json:"status"`
}

func NewAdminHandler(admin *ucadmin.Service, membership *ucmembership.Service, reviews *prometheus.CounterVec) *AdminHandler {
	return &AdminHandler{admin: admin, membership: membership, reviews: reviews}
}

func (h *AdminHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/stats", h.HandleStats)

	r.Post("/jobs", h.HandleCreateJob)
	r.Put("/jobs/:id", h.HandleUpdateJob)
	r.Delete("/jobs/:id", h.HandleDeleteJob)
	r.Patch("/jobs/:id/active", h.HandleSetJobActive)

	r.Post("/categories", h.HandleCreateCategory)

	r.Get("/submissions", h.HandleListSubmissions)
	r.Get("/submissions/export", h.HandleExportSubmissions)
	r.Post("/submissions/:id/review", h.HandleReview)

	r.Post("/transactions/:id/confirm", h.HandleConfirmTransaction)
}

func (h *AdminHandler) HandleStats(c fiber.Ctx) error {
	stats, err := h.admin.Stats(c.Context())
	if err != nil {
		return mapAdminError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, stats)
}

func (h *AdminHandler) HandleCreateJob(c fiber.Ctx) error {
	in, file, closeFile, err := h.readJobPayload(c)
	if err != nil {
		return err
	}
	defer closeFile()

	j, err := h.admin.CreateJob(c.Context(), in, file)
	if err != nil {
		return mapAdminError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Job created", dto.NewJobResponse(j))
}

func (h *AdminHandler) HandleUpdateJob(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	in, file, closeFile, err := h.readJobPayload(c)
	if err != nil {
		return err
	}
	defer closeFile()

	j, err := h.admin.UpdateJob(c.Context(), id, in, file)
	if err != nil {
		return mapAdminError(err)
	}
	return response.Success(c, fiber.StatusOK, "Job updated", dto.NewJobResponse(j))
}

func (h *AdminHandler) HandleDeleteJob(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.admin.DeleteJob(c.Context(), id); err != nil {
		return mapAdminError(err)
	}
	return response.Success(c, fiber.StatusOK, "Job deleted", nil)
}

func (h *AdminHandler) HandleSetJobActive(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req jobActiveRequest
	if err := c.Bind().Body(&req); err != nil || req.IsActive == nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "is_active is required", nil, err)
	}

	if err := h.admin.SetJobActive(c.Context(), id, *req.IsActive); err != nil {
		return mapAdminError(err)
	}
	return response.Success(c, fiber.StatusOK, "Job updated", map[string]any{"id": id, "is_active": *req.IsActive})
}

func (h *AdminHandler) HandleCreateCategory(c fiber.Ctx) error {
	var req categoryRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	cat, err := h.admin.CreateCategory(c.Context(), req.Name)
	if err != nil {
		return mapAdminError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Category created", dto.NewCategoryResponse(cat))
}

func (h *AdminHandler) HandleListSubmissions(c fiber.Ctx) error {
	limit, offset, err := parsePage(c, 50)
	if err != nil {
		return err
	}

	items, err := h.admin.ListSubmissions(c.Context(), c.Query("status"), c.Query("search"), limit, offset)
	if err != nil {
		return mapAdminError(err)
	}
	out := make([]dto.SubmissionResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.NewSubmissionResponse(it))
	}
	return response.Page(c, out, limit, offset)
}

func (h *AdminHandler) HandleExportSubmissions(c fiber.Ctx) error {
	status := c.Query("status", "all")
	b, _, err := h.admin.ExportSubmissionsXLSX(c.Context(), status)
	if err != nil {
		return mapAdminError(err)
	}

	name := fmt.Sprintf("submissions-%s-%s.xlsx", status, nowUTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Status(fiber.StatusOK).Send(b)
}

func (h *AdminHandler) HandleReview(c fiber.Ctx) error {
	reviewerID, err := requireUserID(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req reviewRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	sub, err := h.admin.Review(c.Context(), reviewerID, id, req.Status, req.Feedback)
	if err != nil {
		return mapAdminError(err)
	}
	if h.reviews != nil {
		h.reviews.WithLabelValues(string(sub.Status)).Inc()
	}
	return response.Success(c, fiber.StatusOK, "Submission "+string(sub.Status), dto.NewSubmissionResponse(sub))
}

func (h *AdminHandler) HandleConfirmTransaction(c fiber.Ctx) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req confirmRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	tx, err := h.membership.Confirm(c.Context(), id, req.Status)
	if err != nil {
		return mapMembershipError(err)
	}
	return response.Success(c, fiber.StatusOK, "Transaction "+string(tx.Status), dto.NewTransactionResponse(tx))
}

// readJobPayload accepts a JSON body, or multipart form data with the JSON
// document in "payload" and an optional "file".
func (h *AdminHandler) readJobPayload(c fiber.Ctx) (ucadmin.JobInput, *ucadmin.FileInput, func(), error) {
	noop := func() {}

	raw := c.Body()
	var file *ucadmin.FileInput
	closeFile := noop

	if isMultipart(c) {
		raw = []byte(c.FormValue("payload"))
		if fh, err := c.FormFile("file"); err == nil && fh != nil && fh.Size > 0 {
			f, err := fh.Open()
			if err != nil {
				return ucadmin.JobInput{}, nil, noop, middleware.NewAppError(fiber.StatusBadRequest, "Could not read uploaded file", nil, err)
			}
			closeFile = func() { _ = f.Close() }
			file = &ucadmin.FileInput{
				Name:        fh.Filename,
				ContentType: fileContentType(fh),
				Size:        fh.Size,
				Reader:      f,
			}
		}
	}

	in, err := ucadmin.DecodeJobPayload(raw)
	if err != nil {
		closeFile()
		return ucadmin.JobInput{}, nil, noop, mapAdminError(err)
	}
	return in, file, closeFile, nil
}

func mapAdminError(err error) error {
	var verr *ucadmin.ValidationError
	switch {
	case errors.As(err, &verr):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid job payload", verr.Problems, err)
	case errors.Is(err, ucadmin.ErrInvalidPayload):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid job payload", nil, err)
	case errors.Is(err, ucadmin.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, ucadmin.ErrJobNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, err)
	case errors.Is(err, ucadmin.ErrCategoryMissing):
		return middleware.NewAppError(fiber.StatusBadRequest, "Category not found", nil, err)
	case errors.Is(err, ucadmin.ErrCategoryExists):
		return middleware.NewAppError(fiber.StatusConflict, "Category already exists", nil, err)
	case errors.Is(err, ucadmin.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Submission not found", nil, err)
	case errors.Is(err, ucadmin.ErrAlreadyReviewed):
		return middleware.NewAppError(fiber.StatusConflict, "Submission already reviewed", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
