package job

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (Job, error)
	Create(ctx context.Context, j Job) (Job, error)
	Update(ctx context.Context, j Job) (Job, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	CountActive(ctx context.Context) (int, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, name string) (Category, error)
}
