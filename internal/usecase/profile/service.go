package profile

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"skillbridge/internal/domain/profile"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("profile not found")
	ErrInternal     = errors.New("internal error")
)

type UpdateInput struct {
	FullName  *string
	AvatarURL *string
}

type Service struct {
	profiles profile.Repository
}

func NewService(profiles profile.Repository) *Service {
	return &Service{profiles: profiles}
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (profile.Profile, error) {
	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return profile.Profile{}, ErrNotFound
		}
		return profile.Profile{}, ErrInternal
	}
	return p, nil
}

func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, in UpdateInput) (profile.Profile, error) {
	if in.FullName == nil && in.AvatarURL == nil {
		return profile.Profile{}, ErrInvalidInput
	}

	var fullName, avatar *string
	if in.FullName != nil {
		v := strings.TrimSpace(*in.FullName)
		if v == "" || len(v) > 120 {
			return profile.Profile{}, ErrInvalidInput
		}
		fullName = &v
	}
	if in.AvatarURL != nil {
		v := strings.TrimSpace(*in.AvatarURL)
		u, err := url.Parse(v)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return profile.Profile{}, ErrInvalidInput
		}
		avatar = &v
	}

	if err := s.profiles.UpdateDetails(ctx, userID, fullName, avatar); err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return profile.Profile{}, ErrNotFound
		}
		return profile.Profile{}, ErrInternal
	}
	return s.GetMe(ctx, userID)
}
