package seeder

import (
	"context"
	"fmt"
	"log"
	"time"

	"skillbridge/internal/database"
)

// Seeder inserts reference rows. Run must be safe to repeat.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}

// Defaults lists the seeders in dependency order: jobs reference categories.
func Defaults() []Seeder {
	return []Seeder{
		CategoriesSeeder{},
		DemoJobsSeeder{},
	}
}

type Runner struct {
	Seeders []Seeder
	// Only restricts the run to the named seeders when non-empty.
	Only   []string
	Logger *log.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return fmt.Errorf("seed: nil db")
	}

	selected, err := r.selected()
	if err != nil {
		return err
	}

	for _, s := range selected {
		start := time.Now()
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		if r.Logger != nil {
			r.Logger.Printf("[Seeder] done name=%s elapsed_ms=%d", s.Name(), time.Since(start).Milliseconds())
		}
	}
	return nil
}

func (r Runner) selected() ([]Seeder, error) {
	if len(r.Only) == 0 {
		out := make([]Seeder, 0, len(r.Seeders))
		for _, s := range r.Seeders {
			if s != nil {
				out = append(out, s)
			}
		}
		return out, nil
	}

	byName := make(map[string]Seeder, len(r.Seeders))
	for _, s := range r.Seeders {
		if s != nil {
			byName[s.Name()] = s
		}
	}
	out := make([]Seeder, 0, len(r.Only))
	for _, name := range r.Only {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("seed: unknown seeder %q", name)
		}
		out = append(out, s)
	}
	return out, nil
}
