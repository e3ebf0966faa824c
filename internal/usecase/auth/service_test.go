package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"skillbridge/internal/domain/user"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type stubUsers struct {
	user.Repository
	byEmail map[string]user.User
	names   map[uuid.UUID]*string
}

func newStubUsers() *stubUsers {
	return &stubUsers{byEmail: map[string]user.User{}, names: map[uuid.UUID]*string{}}
}

func (s *stubUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := s.byEmail[email]
	return ok, nil
}

func (s *stubUsers) CreateWithProfile(_ context.Context, u user.User, fullName *string) error {
	s.byEmail[u.Email] = u
	s.names[u.ID] = fullName
	return nil
}

func (s *stubUsers) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"bad email", RegisterInput{Email: "not-an-email", Password: "password1"}, ErrInvalidInput},
		{"short password", RegisterInput{Email: "a@b.co", Password: "short"}, ErrInvalidInput},
		{"password past bcrypt limit", RegisterInput{Email: "a@b.co", Password: strings.Repeat("p", 73)}, ErrInvalidInput},
		{"long name", RegisterInput{Email: "a@b.co", Password: "password1", FullName: strings.Repeat("n", 101)}, ErrInvalidInput},
		{"ok", RegisterInput{Email: " A@B.co ", Password: "password1", FullName: "  Ada  "}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := newStubUsers()
			svc := NewServiceWithCost(users, false, bcrypt.MinCost)

			u, err := svc.Register(context.Background(), tt.in)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.want != nil {
				return
			}
			if u.Email != "a@b.co" || u.PasswordHash != "" {
				t.Fatalf("unexpected user %+v", u)
			}
			if name := users.names[u.ID]; name == nil || *name != "Ada" {
				t.Fatalf("expected trimmed full name, got %v", name)
			}
		})
	}
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	users := newStubUsers()
	svc := NewServiceWithCost(users, false, bcrypt.MinCost)
	in := RegisterInput{Email: "dup@example.com", Password: "password1"}

	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	users := newStubUsers()
	svc := NewServiceWithCost(users, true, bcrypt.MinCost)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{Email: "worker@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "password1"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Email: "worker@example.com", Password: "wrong-pass"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Email: "worker@example.com", Password: "password1"}); !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("unverified: expected not verified, got %v", err)
	}

	stored := users.byEmail[u.Email]
	now := time.Now()
	stored.EmailVerifiedAt = &now
	users.byEmail[u.Email] = stored

	got, err := svc.Login(ctx, LoginInput{Email: "WORKER@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("verified login: %v", err)
	}
	if got.ID != u.ID || got.PasswordHash != "" {
		t.Fatalf("unexpected user %+v", got)
	}
}
