package usecase

import (
	"context"
	"time"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}

// TokenDenylist remembers revoked tokens by jti.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	// Claim atomically marks jti as used until its expiry and reports false
	// when it was already used or revoked.
	Claim(ctx context.Context, jti string, until time.Time) (bool, error)
}
