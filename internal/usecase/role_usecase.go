package usecase

import (
	"context"
	"log"
	"time"

	"skillbridge/internal/domain/user"

	"github.com/google/uuid"
)

const adminRoleKeyPrefix = "auth:admin:"

// Roles answers admin checks from Redis before hitting user_roles.
type Roles struct {
	repo   user.RoleRepository
	cache  Cache
	ttl    time.Duration
	logger *log.Logger
}

func NewRoles(repo user.RoleRepository, cache Cache, logger *log.Logger) *Roles {
	return &Roles{repo: repo, cache: cache, ttl: 5 * time.Minute, logger: logger}
}

func (r *Roles) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	key := adminRoleKeyPrefix + userID.String()
	if r.cache != nil {
		var cached bool
		if hit, err := r.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	ok, err := r.repo.HasRole(ctx, userID, user.RoleAdmin)
	if err != nil {
		return false, err
	}

	if r.cache != nil {
		if err := r.cache.SetJSON(ctx, key, ok, r.ttl); err != nil && r.logger != nil {
			r.logger.Printf("[Roles] cache set failed user_id=%s err=%v", userID, err)
		}
	}
	return ok, nil
}

func (r *Roles) Grant(ctx context.Context, userID uuid.UUID, role user.Role) error {
	if err := r.repo.GrantRole(ctx, userID, role); err != nil {
		return err
	}
	if r.cache != nil {
		_ = r.cache.Delete(ctx, adminRoleKeyPrefix+userID.String())
	}
	return nil
}
