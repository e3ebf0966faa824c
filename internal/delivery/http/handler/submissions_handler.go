package handler

import (
	"errors"
	"mime/multipart"
	"strings"

	"skillbridge/internal/delivery/http/dto"
	"skillbridge/internal/delivery/http/middleware"
	"skillbridge/internal/pkg/response"
	ucsub "skillbridge/internal/usecase/submission"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
)

type SubmissionsHandler struct {
	svc      *ucsub.Service
	outcomes *prometheus.CounterVec
}

type submitRequest struct {
	Content string `json:"content"`
}

func NewSubmissionsHandler(svc *ucsub.Service, outcomes *prometheus.CounterVec) *SubmissionsHandler {
	return &SubmissionsHandler{svc: svc, outcomes: outcomes}
}

func (h *SubmissionsHandler) RegisterRoutes(r fiber.Router, limit fiber.Handler) {
	if r == nil {
		return
	}
	if limit == nil {
		limit = func(c fiber.Ctx) error { return c.Next() }
	}

	r.Post("/jobs/:id/submissions", limit, h.HandleSubmit)
	r.Get("/submissions", h.HandleListMine)
}

// HandleSubmit takes multipart form data (content, file) or a JSON body
// with text content only.
func (h *SubmissionsHandler) HandleSubmit(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	jobID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	in := ucsub.SubmitInput{UserID: userID, JobID: jobID}

	if isMultipart(c) {
		in.Content = c.FormValue("content")
		fh, ferr := c.FormFile("file")
		if ferr == nil && fh != nil && fh.Size > 0 {
			f, err := fh.Open()
			if err != nil {
				return middleware.NewAppError(fiber.StatusBadRequest, "Could not read uploaded file", nil, err)
			}
			defer f.Close()
			in.File = &ucsub.FileInput{
				Name:        fh.Filename,
				ContentType: fileContentType(fh),
				Size:        fh.Size,
				Reader:      f,
			}
		}
	} else {
		var req submitRequest
		if err := c.Bind().Body(&req); err != nil {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
		}
		in.Content = req.Content
	}

	sub, err := h.svc.Submit(c.Context(), in)
	h.observe(err)
	if err != nil {
		return mapSubmissionError(err)
	}
	return response.Success(c, fiber.StatusCreated, "Submission received", dto.NewSubmissionResponse(sub))
}

func (h *SubmissionsHandler) HandleListMine(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	limit, offset, err := parsePage(c, 50)
	if err != nil {
		return err
	}

	res, err := h.svc.ListMine(c.Context(), userID, c.Query("status"), limit, offset)
	if err != nil {
		return mapSubmissionError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewSubmissionList(res.Items, res.Counts))
}

func (h *SubmissionsHandler) observe(err error) {
	if h.outcomes == nil {
		return
	}
	outcome := "accepted"
	switch {
	case err == nil:
	case errors.Is(err, ucsub.ErrQuotaExceeded):
		outcome = "quota_exceeded"
	case errors.Is(err, ucsub.ErrAlreadySubmitted):
		outcome = "duplicate"
	case errors.Is(err, ucsub.ErrUploadFailed):
		outcome = "upload_failed"
	default:
		outcome = "rejected"
	}
	h.outcomes.WithLabelValues(outcome).Inc()
}

func isMultipart(c fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

func fileContentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get(fiber.HeaderContentType); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func mapSubmissionError(err error) error {
	switch {
	case errors.Is(err, ucsub.ErrJobNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Job not found", nil, err)
	case errors.Is(err, ucsub.ErrNoMembership):
		return middleware.NewAppError(fiber.StatusForbidden, "An active membership is required to submit work", nil, err)
	case errors.Is(err, ucsub.ErrTierTooLow):
		return middleware.NewAppError(fiber.StatusForbidden, "Upgrade your membership to submit to this job", nil, err)
	case errors.Is(err, ucsub.ErrAlreadySubmitted):
		return middleware.NewAppError(fiber.StatusConflict, "You have already submitted work for this job", nil, err)
	case errors.Is(err, ucsub.ErrEmptySubmission):
		return middleware.NewAppError(fiber.StatusBadRequest, "Please provide a file or text content", nil, err)
	case errors.Is(err, ucsub.ErrFileTooLarge):
		return middleware.NewAppError(fiber.StatusRequestEntityTooLarge, "File size must be less than 100MB", nil, err)
	case errors.Is(err, ucsub.ErrQuotaExceeded):
		return middleware.NewAppError(fiber.StatusTooManyRequests, "Daily submission limit reached", nil, err)
	case errors.Is(err, ucsub.ErrJobFull):
		return middleware.NewAppError(fiber.StatusConflict, "This job is no longer accepting submissions", nil, err)
	case errors.Is(err, ucsub.ErrUploadFailed):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Failed to upload file. Please try submitting as text instead.", nil, err)
	case errors.Is(err, ucsub.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
