package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"skillbridge/internal/app"
	"skillbridge/internal/config"
	"skillbridge/internal/database/migration"
	"skillbridge/internal/database/seeder"
	"skillbridge/internal/domain/submission"
	"skillbridge/internal/domain/user"
	"skillbridge/migrations"

	"github.com/spf13/cobra"
)

// withContainer loads config, connects and releases the shared dependencies
// around fn.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *app.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c, err := app.NewContainer(cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		_ = c.Close()
	}()
	return fn(cmd.Context(), c)
}

func newMigrateCmd() *cobra.Command {
	var (
		dir    string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				r := migration.Runner{Source: migrations.FS, Logger: c.Logger}
				if dir != "" {
					r = migration.Runner{Dir: dir, Logger: c.Logger}
				}

				if dryRun {
					pending, err := r.Pending(ctx, c.DB.SQLDB())
					if err != nil {
						return err
					}
					for _, m := range pending {
						fmt.Fprintf(cmd.OutOrStdout(), "pending V%d %s\n", m.Version, m.Name)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%d pending migration(s)\n", len(pending))
					return nil
				}

				if err := r.Run(ctx, c.DB.SQLDB()); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations up to date")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "read migrations from this directory instead of the embedded set")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list pending migrations without applying them")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var only []string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the default categories and demo jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				r := seeder.Runner{Seeders: seeder.Defaults(), Only: only, Logger: c.Logger}
				if err := r.Run(ctx, c.DB); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "seed complete")
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&only, "only", nil, "run only these seeders (job_categories, jobs)")
	return cmd
}

func newGrantAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant-admin <email>",
		Short: "Give an existing account the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := strings.ToLower(strings.TrimSpace(args[0]))
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				u, err := c.Users.GetByEmail(ctx, email)
				if err != nil {
					if errors.Is(err, user.ErrNotFound) {
						return fmt.Errorf("no account for %s", email)
					}
					return err
				}
				if err := c.Roles().Grant(ctx, u.ID, user.RoleAdmin); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "granted admin to %s (%s)\n", email, u.ID)
				return nil
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	var status, out string
	cmd := &cobra.Command{
		Use:   "export-submissions",
		Short: "Write submissions to an XLSX workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" {
				if _, err := submission.ParseStatus(status); err != nil {
					return fmt.Errorf("invalid status %q", status)
				}
			}
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				data, rows, err := c.AdminService().ExportSubmissionsXLSX(ctx, status)
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d submissions to %s\n", rows, out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only export this status (pending, approved, rejected)")
	cmd.Flags().StringVarP(&out, "out", "o", "submissions.xlsx", "output file")
	return cmd
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run the daily quota reset and membership expiry once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, c *app.Container) error {
				m := c.Maintenance()
				now := time.Now().UTC()
				reset, err := m.ResetQuotas(ctx, now)
				if err != nil {
					return err
				}
				expired, err := m.ExpireMemberships(ctx, now)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "quotas reset=%d memberships expired=%d\n", reset, expired)
				return nil
			})
		},
	}
}
