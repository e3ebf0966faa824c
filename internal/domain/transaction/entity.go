package transaction

import (
	"context"
	"errors"
	"time"

	"skillbridge/internal/domain/membership"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("transaction not found")
	ErrNotPending     = errors.New("transaction already settled")
	ErrDuplicateRefID = errors.New("transaction reference already recorded")
)

type Type string

const (
	TypeSubscription Type = "subscription"
	TypeEarning      Type = "earning"
	TypePayout       Type = "payout"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        Type
	Amount      float64
	Status      Status
	Description string
	ReferenceID string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// MembershipTier is the plan a subscription paid for; empty for other types.
	MembershipTier membership.Tier
}

// ProfileUpdate is written to the payer's profile in the same database
// transaction that settles a subscription.
type ProfileUpdate struct {
	Tier      membership.Tier
	Status    membership.Status
	ExpiresAt *time.Time
	// OnlyIfPendingOn skips the update unless the profile is still
	// pending_payment on this tier.
	OnlyIfPendingOn membership.Tier
}

type Repository interface {
	Create(ctx context.Context, t Transaction) (Transaction, error)
	// CreateOnce reports false when a row with the same reference already exists.
	CreateOnce(ctx context.Context, t Transaction) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Transaction, error)
	// SettleSubscription settles a pending subscription and applies update
	// to the payer's profile atomically. Nothing is written when either
	// step fails.
	SettleSubscription(ctx context.Context, id uuid.UUID, status Status, update ProfileUpdate) (Transaction, error)
	SumCompletedSubscriptions(ctx context.Context) (float64, error)
}
