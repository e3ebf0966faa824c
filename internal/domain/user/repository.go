package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type Repository interface {
	// CreateWithProfile inserts the identity row and its empty profile atomically.
	CreateWithProfile(ctx context.Context, u User, fullName *string) error
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// MarkEmailVerified reports false when the address was already verified.
	MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	Count(ctx context.Context) (int, error)
}

type RoleRepository interface {
	HasRole(ctx context.Context, userID uuid.UUID, role Role) (bool, error)
	GrantRole(ctx context.Context, userID uuid.UUID, role Role) error
}
