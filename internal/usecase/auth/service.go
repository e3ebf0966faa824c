package auth

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"skillbridge/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrEmailNotVerified       = errors.New("email not confirmed")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInternal               = errors.New("internal error")
)

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

type LoginInput struct {
	Email    string
	Password string
}

const (
	minPasswordLen = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
	maxFullNameRunes = 100
)

type Service struct {
	users           user.Repository
	requireVerified bool
	cost            int
	// missHash is compared against on unknown emails so both login
	// failures cost one bcrypt round.
	missHash []byte
}

func NewService(users user.Repository, requireVerified bool) *Service {
	return NewServiceWithCost(users, requireVerified, bcrypt.DefaultCost)
}

// NewServiceWithCost lets tests trade hash strength for speed.
func NewServiceWithCost(users user.Repository, requireVerified bool, cost int) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	miss, _ := bcrypt.GenerateFromPassword([]byte("skillbridge-unknown-account"), cost)
	return &Service{users: users, requireVerified: requireVerified, cost: cost, missHash: miss}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	email := normalizeEmail(in.Email)
	if !looksLikeEmail(email) {
		return user.User{}, ErrInvalidInput
	}
	if !isValidPassword(in.Password) {
		return user.User{}, ErrInvalidInput
	}
	name := strings.TrimSpace(in.FullName)
	if utf8.RuneCountInString(name) > maxFullNameRunes {
		return user.User{}, ErrInvalidInput
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return user.User{}, ErrInternal
	}
	if exists {
		return user.User{}, ErrEmailAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return user.User{}, ErrInternal
	}

	u := user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
	}

	var fullName *string
	if name != "" {
		fullName = &name
	}

	if err := s.users.CreateWithProfile(ctx, u, fullName); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return user.User{}, ErrEmailAlreadyRegistered
		}
		return user.User{}, ErrInternal
	}

	created, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return user.User{}, ErrInternal
	}
	return sanitizeUser(created), nil
}

func (s *Service) Login(ctx context.Context, in LoginInput) (user.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return user.User{}, ErrInvalidCredentials
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.missHash, []byte(in.Password))
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return user.User{}, ErrInvalidCredentials
	}
	if s.requireVerified && !u.Verified() {
		return user.User{}, ErrEmailNotVerified
	}

	return sanitizeUser(u), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func looksLikeEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}

func isValidPassword(pw string) bool {
	return len(strings.TrimSpace(pw)) >= minPasswordLen && len(pw) <= maxPasswordBytes
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
