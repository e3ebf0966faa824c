package submission

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create consumes one unit of daily quota, one job slot and credits pending
	// earnings in the same transaction as the insert.
	Create(ctx context.Context, n NewSubmission) (Submission, error)
	Exists(ctx context.Context, userID, jobID uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (Submission, error)
	List(ctx context.Context, f ListFilter) ([]Submission, error)
	CountByStatus(ctx context.Context, userID *uuid.UUID) (Counts, error)
	// Review moves a pending submission to its final status and shifts the
	// member's earnings accordingly.
	Review(ctx context.Context, r Review) (Submission, error)
	SumApproved(ctx context.Context) (float64, error)
}
