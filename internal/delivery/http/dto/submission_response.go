package dto

import (
	"time"

	"skillbridge/internal/domain/submission"

	"github.com/google/uuid"
)

type SubmissionFileResponse struct {
	URL  string `json:"url"`
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

type SubmissionResponse struct {
	ID                uuid.UUID               `json:"id"`
	JobID             uuid.UUID               `json:"job_id"`
	UserID            uuid.UUID               `json:"user_id"`
	JobTitle          string                  `json:"job_title,omitempty"`
	JobDifficulty     string                  `json:"job_difficulty,omitempty"`
	JobCategory       *string                 `json:"job_category,omitempty"`
	UserEmail         string                  `json:"user_email,omitempty"`
	UserFullName      *string                 `json:"user_full_name,omitempty"`
	SubmissionContent string                  `json:"submission_content"`
	File              *SubmissionFileResponse `json:"file"`
	PaymentAmount     float64                 `json:"payment_amount"`
	Status            string                  `json:"status"`
	AdminFeedback     *string                 `json:"admin_feedback"`
	ReviewedAt        *time.Time              `json:"reviewed_at"`
	CreatedAt         time.Time               `json:"created_at"`
}

type SubmissionListResponse struct {
	Items  []SubmissionResponse `json:"items"`
	Counts submission.Counts    `json:"counts"`
}

func NewSubmissionResponse(s submission.Submission) SubmissionResponse {
	res := SubmissionResponse{
		ID:                s.ID,
		JobID:             s.JobID,
		UserID:            s.UserID,
		JobTitle:          s.JobTitle,
		JobDifficulty:     s.JobDifficulty,
		JobCategory:       s.JobCategory,
		UserEmail:         s.UserEmail,
		UserFullName:      s.UserFullName,
		SubmissionContent: s.SubmissionContent,
		PaymentAmount:     s.PaymentAmount,
		Status:            string(s.Status),
		AdminFeedback:     s.AdminFeedback,
		ReviewedAt:        s.ReviewedAt,
		CreatedAt:         s.CreatedAt,
	}
	if s.File != nil {
		res.File = &SubmissionFileResponse{URL: s.File.URL, Name: s.File.Name, Type: s.File.Type, Size: s.File.Size}
	}
	return res
}

func NewSubmissionList(items []submission.Submission, counts submission.Counts) SubmissionListResponse {
	out := make([]SubmissionResponse, 0, len(items))
	for _, it := range items {
		out = append(out, NewSubmissionResponse(it))
	}
	return SubmissionListResponse{Items: out, Counts: counts}
}
