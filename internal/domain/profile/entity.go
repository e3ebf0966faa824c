package profile

import (
	"time"

	"skillbridge/internal/domain/membership"

	"github.com/google/uuid"
)

type Profile struct {
	ID                  uuid.UUID
	Email               string
	FullName            *string
	AvatarURL           *string
	MembershipTier      membership.Tier
	MembershipStatus    membership.Status
	MembershipExpiresAt *time.Time
	DailyTasksUsed      int
	LastTaskResetDate   time.Time
	TotalEarnings       float64
	PendingEarnings     float64
	ApprovedEarnings    float64
	TasksCompleted      int
	Rating              *float64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RemainingToday is the number of submissions the member may still make today.
func (p Profile) RemainingToday(now time.Time) int {
	return membership.Remaining(p.MembershipTier, p.DailyTasksUsed, p.LastTaskResetDate, now)
}

// MembershipChange is applied by checkout and by admin payment confirmation.
type MembershipChange struct {
	Tier           membership.Tier
	Status         membership.Status
	ExpiresAt      *time.Time
	ResetDailyUsed bool
}
