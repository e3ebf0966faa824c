package repository

import (
	"context"
	"strings"

	"skillbridge/internal/database"
	"skillbridge/internal/domain/job"
)

type PostgresCategoryRepository struct {
	db database.DB
}

func NewPostgresCategoryRepository(db database.DB) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{db: db}
}

func (r *PostgresCategoryRepository) List(ctx context.Context) ([]job.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at FROM job_categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Category, 0)
	for rows.Next() {
		var c job.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresCategoryRepository) Create(ctx context.Context, name string) (job.Category, error) {
	var c job.Category
	err := r.db.QueryRow(ctx,
		`INSERT INTO job_categories (name) VALUES ($1) RETURNING id, name, created_at`,
		strings.TrimSpace(name),
	).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "job_categories_name_key") {
			return job.Category{}, job.ErrCategoryExists
		}
		return job.Category{}, err
	}
	return c, nil
}
