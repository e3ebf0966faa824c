package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

func TestSubmissionReviewedTaskRoundTrip(t *testing.T) {
	payload := SubmissionReviewedPayload{
		SubmissionID: uuid.New(),
		UserID:       uuid.New(),
		JobTitle:     "Label 50 images",
		Status:       "approved",
		Amount:       12.5,
		ReviewedAt:   time.Now().UTC(),
	}

	task, err := NewSubmissionReviewedTask(payload)
	if err != nil {
		t.Fatalf("NewSubmissionReviewedTask returned error: %v", err)
	}
	if task.Type() != TypeSubmissionReviewed {
		t.Fatalf("expected type %q, got %q", TypeSubmissionReviewed, task.Type())
	}

	parsed, err := ParseSubmissionReviewedPayload(task)
	if err != nil {
		t.Fatalf("ParseSubmissionReviewedPayload returned error: %v", err)
	}
	if parsed.SubmissionID != payload.SubmissionID || parsed.Amount != payload.Amount {
		t.Fatalf("unexpected payload: %+v", parsed)
	}
}

func TestParseSubmissionReviewedPayloadRejectsMissingIDs(t *testing.T) {
	task := asynq.NewTask(TypeSubmissionReviewed, []byte(`{"status":"approved"}`))
	if _, err := ParseSubmissionReviewedPayload(task); err == nil {
		t.Fatalf("expected error for payload without ids")
	}
}
