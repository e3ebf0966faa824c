package profile

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("profile not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Profile, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, fullName, avatarURL *string) error
	ApplyMembership(ctx context.Context, id uuid.UUID, change MembershipChange) error
	// ExpireMemberships downgrades every membership that lapsed before now.
	ExpireMemberships(ctx context.Context, now time.Time) (int64, error)
	// ResetDailyQuotas zeroes counters stamped before day.
	ResetDailyQuotas(ctx context.Context, day time.Time) (int64, error)
}
