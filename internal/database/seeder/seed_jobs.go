package seeder

import (
	"context"
	"fmt"

	"skillbridge/internal/database"
)

type demoJob struct {
	Title         string
	Category      string
	Description   string
	Instructions  string
	Payment       float64
	Difficulty    string
	RequiredTier  string
	EstimatedTime string
}

var demoJobs = []demoJob{
	{
		Title:         "Write a 500-word product description",
		Category:      "Content Writing",
		Description:   "Describe a handmade leather wallet for an online store listing.",
		Instructions:  "Plain English, no headings. Mention materials, size and care.",
		Payment:       8,
		Difficulty:    "easy",
		RequiredTier:  "regular",
		EstimatedTime: "1 hour",
	},
	{
		Title:         "Clean a 200-row contact spreadsheet",
		Category:      "Data Entry",
		Description:   "Remove duplicates and normalise phone numbers in the attached sheet.",
		Instructions:  "Return the cleaned file as CSV or XLSX.",
		Payment:       10,
		Difficulty:    "easy",
		RequiredTier:  "regular",
		EstimatedTime: "2 hours",
	},
	{
		Title:         "Design three social media banners",
		Category:      "Graphic Design",
		Description:   "Banners for a coffee shop's autumn campaign in 1200x628.",
		Instructions:  "Submit PNG exports and the source file in one ZIP.",
		Payment:       25,
		Difficulty:    "medium",
		RequiredTier:  "pro",
		EstimatedTime: "4 hours",
	},
	{
		Title:         "Translate a landing page from English to Spanish",
		Category:      "Translation",
		Description:   "About 900 words of marketing copy.",
		Instructions:  "Keep the tone informal. Submit as a DOCX.",
		Payment:       30,
		Difficulty:    "medium",
		RequiredTier:  "pro",
		EstimatedTime: "3 hours",
	},
	{
		Title:         "Build a responsive pricing section",
		Category:      "Web Development",
		Description:   "HTML and CSS for a three-column pricing table matching the mockup.",
		Instructions:  "No frameworks. Submit a ZIP with index.html and styles.css.",
		Payment:       60,
		Difficulty:    "hard",
		RequiredTier:  "vip",
		EstimatedTime: "1 day",
	},
}

// DemoJobsSeeder inserts the demo catalogue once; rows are matched by title.
type DemoJobsSeeder struct{}

func (DemoJobsSeeder) Name() string { return "jobs" }

func (DemoJobsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := requireColumns(ctx, db, "jobs",
		"id",
		"title",
		"description",
		"instructions",
		"payment_amount",
		"difficulty",
		"required_tier",
		"estimated_time",
		"category_id",
		"is_active",
	); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, it := range demoJobs {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO jobs (title, description, instructions, payment_amount, difficulty, required_tier, estimated_time, category_id)
			 SELECT $1::text, $2, $3, $4, $5, $6, $7, (SELECT id FROM job_categories WHERE name = $8)
			 WHERE NOT EXISTS (SELECT 1 FROM jobs WHERE title = $1::text)`,
			it.Title,
			it.Description,
			it.Instructions,
			it.Payment,
			it.Difficulty,
			it.RequiredTier,
			it.EstimatedTime,
			it.Category,
		)
		if err != nil {
			return fmt.Errorf("insert %q: %w", it.Title, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
