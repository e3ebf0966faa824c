package dto

import (
	"time"

	"skillbridge/internal/domain/profile"

	"github.com/google/uuid"
)

type ProfileResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Email               string     `json:"email"`
	FullName            *string    `json:"full_name"`
	AvatarURL           *string    `json:"avatar_url"`
	MembershipTier      string     `json:"membership_tier"`
	MembershipStatus    string     `json:"membership_status"`
	MembershipExpiresAt *time.Time `json:"membership_expires_at"`
	DailyTasksUsed      int        `json:"daily_tasks_used"`
	DailyLimit          int        `json:"daily_limit"`
	RemainingToday      int        `json:"remaining_today"`
	LastTaskResetDate   string     `json:"last_task_reset_date"`
	TotalEarnings       float64    `json:"total_earnings"`
	PendingEarnings     float64    `json:"pending_earnings"`
	ApprovedEarnings    float64    `json:"approved_earnings"`
	TasksCompleted      int        `json:"tasks_completed"`
	Rating              *float64   `json:"rating"`
	CreatedAt           time.Time  `json:"created_at"`
}

// NewProfileResponse reports -1 for unlimited limits.
func NewProfileResponse(p profile.Profile, now time.Time) ProfileResponse {
	return ProfileResponse{
		ID:                  p.ID,
		Email:               p.Email,
		FullName:            p.FullName,
		AvatarURL:           p.AvatarURL,
		MembershipTier:      string(p.MembershipTier),
		MembershipStatus:    string(p.MembershipStatus),
		MembershipExpiresAt: p.MembershipExpiresAt,
		DailyTasksUsed:      p.DailyTasksUsed,
		DailyLimit:          p.MembershipTier.DailyLimit(),
		RemainingToday:      p.RemainingToday(now),
		LastTaskResetDate:   p.LastTaskResetDate.Format("2006-01-02"),
		TotalEarnings:       p.TotalEarnings,
		PendingEarnings:     p.PendingEarnings,
		ApprovedEarnings:    p.ApprovedEarnings,
		TasksCompleted:      p.TasksCompleted,
		Rating:              p.Rating,
		CreatedAt:           p.CreatedAt,
	}
}
