package dto

import (
	"time"

	"skillbridge/internal/domain/job"

	"github.com/google/uuid"
)

type CategoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type FileResponse struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type JobResponse struct {
	ID                 uuid.UUID     `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Instructions       string        `json:"instructions"`
	PaymentAmount      float64       `json:"payment_amount"`
	Difficulty         string        `json:"difficulty"`
	RequiredTier       string        `json:"required_tier"`
	EstimatedTime      *string       `json:"estimated_time"`
	Deadline           *time.Time    `json:"deadline"`
	SubmissionFormat   *string       `json:"submission_format"`
	MaxSubmissions     *int          `json:"max_submissions"`
	CurrentSubmissions int           `json:"current_submissions"`
	IsActive           bool          `json:"is_active"`
	CategoryID         *uuid.UUID    `json:"category_id"`
	CategoryName       *string       `json:"category_name"`
	File               *FileResponse `json:"file"`
	CreatedAt          time.Time     `json:"created_at"`
}

type JobListItemResponse struct {
	JobResponse
	IsAccessible bool `json:"is_accessible"`
}

type JobDetailResponse struct {
	JobResponse
	CanAccess      bool `json:"can_access"`
	CanSubmit      bool `json:"can_submit"`
	HasSubmitted   bool `json:"has_submitted"`
	RemainingToday int  `json:"remaining_today"`
}

func NewCategoryResponse(c job.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name}
}

func NewJobResponse(j job.Job) JobResponse {
	res := JobResponse{
		ID:                 j.ID,
		Title:              j.Title,
		Description:        j.Description,
		Instructions:       j.Instructions,
		PaymentAmount:      j.PaymentAmount,
		Difficulty:         string(j.Difficulty),
		RequiredTier:       string(j.RequiredTier),
		EstimatedTime:      j.EstimatedTime,
		Deadline:           j.Deadline,
		SubmissionFormat:   j.SubmissionFormat,
		MaxSubmissions:     j.MaxSubmissions,
		CurrentSubmissions: j.CurrentSubmissions,
		IsActive:           j.IsActive,
		CategoryID:         j.CategoryID,
		CategoryName:       j.CategoryName,
		CreatedAt:          j.CreatedAt,
	}
	if j.File != nil {
		res.File = &FileResponse{URL: j.File.URL, Name: j.File.Name, Type: j.File.Type}
	}
	return res
}
