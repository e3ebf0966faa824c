package seeder

import (
	"context"
	"fmt"

	"skillbridge/internal/database"
)

var defaultCategories = []string{
	"Content Writing",
	"Data Entry",
	"Graphic Design",
	"Research",
	"Social Media",
	"Transcription",
	"Translation",
	"Web Development",
}

type CategoriesSeeder struct{}

func (CategoriesSeeder) Name() string { return "job_categories" }

func (CategoriesSeeder) Run(ctx context.Context, db database.DB) error {
	if err := requireColumns(ctx, db, "job_categories", "id", "name", "created_at"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, name := range defaultCategories {
		if _, err := tx.Exec(ctx, `INSERT INTO job_categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
