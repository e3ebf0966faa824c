package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID
	Email           string
	PasswordHash    string
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (u User) Verified() bool {
	return u.EmailVerifiedAt != nil && !u.EmailVerifiedAt.IsZero()
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)
