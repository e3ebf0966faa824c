package repository

import (
	"context"
	"errors"
	"fmt"

	"skillbridge/internal/database"
	"skillbridge/internal/domain/membership"
	"skillbridge/internal/domain/profile"
	"skillbridge/internal/domain/transaction"

	"github.com/google/uuid"
)

type PostgresTransactionRepository struct {
	db database.DB
}

func NewPostgresTransactionRepository(db database.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db}
}

const transactionColumns = `id, user_id, type, amount, status, description, reference_id,
	COALESCE(membership_tier, ''), created_at, updated_at`

func scanTransaction(row database.Row) (transaction.Transaction, error) {
	var t transaction.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Status, &t.Description, &t.ReferenceID,
		&t.MembershipTier, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return transaction.Transaction{}, transaction.ErrNotFound
		}
		return transaction.Transaction{}, err
	}
	return t, nil
}

func (r *PostgresTransactionRepository) Create(ctx context.Context, t transaction.Transaction) (transaction.Transaction, error) {
	out, err := scanTransaction(r.db.QueryRow(ctx,
		`INSERT INTO transactions (user_id, type, amount, status, description, reference_id, membership_tier)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		 RETURNING `+transactionColumns,
		t.UserID, t.Type, t.Amount, t.Status, t.Description, t.ReferenceID, string(t.MembershipTier),
	))
	if err != nil && database.IsUniqueViolation(err, "transactions_reference_id_key") {
		return transaction.Transaction{}, transaction.ErrDuplicateRefID
	}
	return out, err
}

func (r *PostgresTransactionRepository) CreateOnce(ctx context.Context, t transaction.Transaction) (bool, error) {
	n, err := r.db.Exec(ctx,
		`INSERT INTO transactions (user_id, type, amount, status, description, reference_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (reference_id) DO NOTHING`,
		t.UserID, t.Type, t.Amount, t.Status, t.Description, t.ReferenceID,
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (transaction.Transaction, error) {
	return scanTransaction(r.db.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
}

func (r *PostgresTransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]transaction.Transaction, error) {
	limit, _ = clampPage(limit, 0, 50, 200)
	rows, err := r.db.Query(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]transaction.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresTransactionRepository) SettleSubscription(ctx context.Context, id uuid.UUID, status transaction.Status, update transaction.ProfileUpdate) (transaction.Transaction, error) {
	var settled transaction.Transaction
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		t, err := scanTransaction(tx.QueryRow(ctx,
			`UPDATE transactions SET status = $2, updated_at = now()
			 WHERE id = $1 AND status = $3 AND type = $4
			 RETURNING `+transactionColumns,
			id, status, transaction.StatusPending, transaction.TypeSubscription,
		))
		if err != nil {
			return err
		}

		query := `UPDATE profiles
			 SET membership_tier = $2,
			     membership_status = $3,
			     membership_expires_at = $4,
			     updated_at = now()
			 WHERE id = $1`
		args := []any{t.UserID, update.Tier, update.Status, update.ExpiresAt}
		if update.OnlyIfPendingOn != "" {
			query += ` AND membership_status = $5 AND membership_tier = $6`
			args = append(args, membership.StatusPendingPayment, update.OnlyIfPendingOn)
		}
		n, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("apply membership: %w", err)
		}
		if n == 0 && update.OnlyIfPendingOn == "" {
			return profile.ErrNotFound
		}

		settled = t
		return nil
	})
	if errors.Is(err, transaction.ErrNotFound) {
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return transaction.Transaction{}, gerr
		}
		return transaction.Transaction{}, transaction.ErrNotPending
	}
	if err != nil {
		return transaction.Transaction{}, err
	}
	return settled, nil
}

// SumCompletedSubscriptions is reported as revenue, so the stored negative
// amounts are flipped.
func (r *PostgresTransactionRepository) SumCompletedSubscriptions(ctx context.Context) (float64, error) {
	var sum float64
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(-amount), 0) FROM transactions WHERE type = $1 AND status = $2`,
		transaction.TypeSubscription, transaction.StatusCompleted,
	).Scan(&sum)
	return sum, err
}
