package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"skillbridge/internal/domain/membership"
	"skillbridge/internal/domain/profile"
	"skillbridge/internal/domain/submission"
	"skillbridge/internal/domain/transaction"
	"skillbridge/internal/infrastructure/queue"
)

// Maintenance holds the periodic and review follow-up jobs. The asynq server
// and the marketctl sweep command both call it.
type Maintenance struct {
	Profiles     profile.Repository
	Transactions transaction.Repository
	Logger       *log.Logger
}

func (m Maintenance) ResetQuotas(ctx context.Context, now time.Time) (int64, error) {
	n, err := m.Profiles.ResetDailyQuotas(ctx, membership.QuotaDay(now))
	if err != nil {
		return 0, fmt.Errorf("reset daily quotas: %w", err)
	}
	m.logf("[Worker] daily quotas reset profiles=%d", n)
	return n, nil
}

func (m Maintenance) ExpireMemberships(ctx context.Context, now time.Time) (int64, error) {
	n, err := m.Profiles.ExpireMemberships(ctx, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("expire memberships: %w", err)
	}
	m.logf("[Worker] memberships expired profiles=%d", n)
	return n, nil
}

// RecordEarning writes the completed earning for an approved submission.
// It reports false when the earning was already recorded or the submission
// was not approved.
func (m Maintenance) RecordEarning(ctx context.Context, p queue.SubmissionReviewedPayload) (bool, error) {
	if p.Status != string(submission.StatusApproved) {
		return false, nil
	}
	created, err := m.Transactions.CreateOnce(ctx, transaction.Transaction{
		UserID:      p.UserID,
		Type:        transaction.TypeEarning,
		Amount:      p.Amount,
		Status:      transaction.StatusCompleted,
		Description: "Payment for " + p.JobTitle,
		ReferenceID: EarningReference(p.SubmissionID.String()),
	})
	if err != nil {
		return false, fmt.Errorf("record earning: %w", err)
	}
	if created {
		m.logf("[Worker] earning recorded submission_id=%s user_id=%s amount=%.2f", p.SubmissionID, p.UserID, p.Amount)
	}
	return created, nil
}

func EarningReference(submissionID string) string {
	return "submission_" + submissionID
}

func (m Maintenance) logf(format string, args ...any) {
	if m.Logger != nil {
		m.Logger.Printf(format, args...)
	}
}
