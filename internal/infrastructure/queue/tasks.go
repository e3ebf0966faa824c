package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TypeResetQuotas        = "membership:reset_quotas"
	TypeExpireMemberships  = "membership:expire"
	TypeSubmissionReviewed = "submission:reviewed"
)

type SubmissionReviewedPayload struct {
	SubmissionID uuid.UUID `json:"submission_id"`
	UserID       uuid.UUID `json:"user_id"`
	JobTitle     string    `json:"job_title"`
	Status       string    `json:"status"`
	Amount       float64   `json:"amount"`
	ReviewedAt   time.Time `json:"reviewed_at"`
}

func NewSubmissionReviewedTask(payload SubmissionReviewedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal review payload: %w", err)
	}
	return asynq.NewTask(TypeSubmissionReviewed, body), nil
}

func ParseSubmissionReviewedPayload(task *asynq.Task) (SubmissionReviewedPayload, error) {
	var payload SubmissionReviewedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return SubmissionReviewedPayload{}, fmt.Errorf("unmarshal review payload: %w", err)
	}
	if payload.SubmissionID == uuid.Nil || payload.UserID == uuid.Nil {
		return SubmissionReviewedPayload{}, fmt.Errorf("review payload missing ids")
	}
	return payload, nil
}

func NewResetQuotasTask() *asynq.Task {
	return asynq.NewTask(TypeResetQuotas, nil)
}

func NewExpireMembershipsTask() *asynq.Task {
	return asynq.NewTask(TypeExpireMemberships, nil)
}
