package repository

import (
	"context"
	"strings"
	"time"

	"skillbridge/internal/database"
	"skillbridge/internal/domain/user"

	"github.com/google/uuid"
)

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateWithProfile(ctx context.Context, u user.User, fullName *string) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO users (id, email, password_hash, email_verified_at)
			 VALUES ($1, $2, $3, $4)`,
			u.ID, strings.ToLower(u.Email), u.PasswordHash, u.EmailVerifiedAt,
		)
		if err != nil {
			if database.IsUniqueViolation(err, "users_email_key") {
				return user.ErrEmailTaken
			}
			return err
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO profiles (id, email, full_name) VALUES ($1, $2, $3)`,
			u.ID, strings.ToLower(u.Email), fullName,
		); err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			u.ID, user.RoleUser,
		)
		return err
	})
}

const userColumns = `id, email, password_hash, email_verified_at, created_at, updated_at`

func scanUser(row database.Row) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.EmailVerifiedAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if database.IsNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	))
}

func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&exists)
	return exists, err
}

func (r *PostgresUserRepository) MarkEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	n, err := r.db.Exec(ctx,
		`UPDATE users SET email_verified_at = $2, updated_at = now()
		 WHERE id = $1 AND email_verified_at IS NULL`,
		id, at,
	)
	if err != nil {
		return false, err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (r *PostgresUserRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func (r *PostgresUserRepository) HasRole(ctx context.Context, userID uuid.UUID, role user.Role) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM user_roles WHERE user_id = $1 AND role = $2)`,
		userID, role,
	).Scan(&ok)
	return ok, err
}

func (r *PostgresUserRepository) GrantRole(ctx context.Context, userID uuid.UUID, role user.Role) error {
	n, err := r.db.Exec(ctx,
		`INSERT INTO user_roles (user_id, role)
		 SELECT id, $2 FROM users WHERE id = $1
		 ON CONFLICT DO NOTHING`,
		userID, role,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}
