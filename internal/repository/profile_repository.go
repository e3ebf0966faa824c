package repository

import (
	"context"
	"time"

	"skillbridge/internal/database"
	"skillbridge/internal/domain/membership"
	"skillbridge/internal/domain/profile"

	"github.com/google/uuid"
)

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (profile.Profile, error) {
	var p profile.Profile
	err := r.db.QueryRow(ctx,
		`SELECT id, email, full_name, avatar_url, membership_tier, membership_status,
		        membership_expires_at, daily_tasks_used, last_task_reset_date,
		        total_earnings, pending_earnings, approved_earnings, tasks_completed,
		        rating, created_at, updated_at
		 FROM profiles WHERE id = $1`,
		id,
	).Scan(
		&p.ID, &p.Email, &p.FullName, &p.AvatarURL, &p.MembershipTier, &p.MembershipStatus,
		&p.MembershipExpiresAt, &p.DailyTasksUsed, &p.LastTaskResetDate,
		&p.TotalEarnings, &p.PendingEarnings, &p.ApprovedEarnings, &p.TasksCompleted,
		&p.Rating, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}
	return p, nil
}

// UpdateDetails leaves a field untouched when its argument is nil.
func (r *PostgresProfileRepository) UpdateDetails(ctx context.Context, id uuid.UUID, fullName, avatarURL *string) error {
	n, err := r.db.Exec(ctx,
		`UPDATE profiles
		 SET full_name = COALESCE($2, full_name),
		     avatar_url = COALESCE($3, avatar_url),
		     updated_at = now()
		 WHERE id = $1`,
		id, fullName, avatarURL,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return profile.ErrNotFound
	}
	return nil
}

func (r *PostgresProfileRepository) ApplyMembership(ctx context.Context, id uuid.UUID, change profile.MembershipChange) error {
	n, err := r.db.Exec(ctx,
		`UPDATE profiles
		 SET membership_tier = $2,
		     membership_status = $3,
		     membership_expires_at = $4,
		     daily_tasks_used = CASE WHEN $5 THEN 0 ELSE daily_tasks_used END,
		     updated_at = now()
		 WHERE id = $1`,
		id, change.Tier, change.Status, change.ExpiresAt, change.ResetDailyUsed,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return profile.ErrNotFound
	}
	return nil
}

func (r *PostgresProfileRepository) ExpireMemberships(ctx context.Context, now time.Time) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE profiles
		 SET membership_tier = $2,
		     membership_status = $3,
		     updated_at = now()
		 WHERE membership_tier <> $2
		   AND membership_expires_at IS NOT NULL
		   AND membership_expires_at < $1`,
		now, membership.TierNone, membership.StatusExpired,
	)
}

func (r *PostgresProfileRepository) ResetDailyQuotas(ctx context.Context, day time.Time) (int64, error) {
	return r.db.Exec(ctx,
		`UPDATE profiles
		 SET daily_tasks_used = 0, last_task_reset_date = $1, updated_at = now()
		 WHERE last_task_reset_date < $1`,
		day,
	)
}
