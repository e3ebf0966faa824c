package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"skillbridge/internal/database"
	"skillbridge/internal/domain/membership"
	"skillbridge/internal/domain/profile"
	"skillbridge/internal/domain/transaction"

	"github.com/google/uuid"
)

type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

type scriptedTx struct {
	row        database.Row
	execN      int64
	execErr    error
	execSQL    []string
	execArgs   [][]any
	committed  bool
	rolledBack bool
}

func (t *scriptedTx) Exec(_ context.Context, query string, args ...any) (int64, error) {
	t.execSQL = append(t.execSQL, query)
	t.execArgs = append(t.execArgs, args)
	return t.execN, t.execErr
}

func (t *scriptedTx) Query(context.Context, string, ...any) (database.Rows, error) {
	return nil, errors.New("unexpected query")
}

func (t *scriptedTx) QueryRow(context.Context, string, ...any) database.Row { return t.row }

func (t *scriptedTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *scriptedTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type scriptedDB struct {
	database.DB
	tx     *scriptedTx
	lookup database.Row
}

func (d *scriptedDB) Begin(context.Context) (database.Tx, error) { return d.tx, nil }

func (d *scriptedDB) QueryRow(context.Context, string, ...any) database.Row { return d.lookup }

func transactionRow(t transaction.Transaction) rowFunc {
	return func(dest ...any) error {
		*dest[0].(*uuid.UUID) = t.ID
		*dest[1].(*uuid.UUID) = t.UserID
		*dest[2].(*transaction.Type) = t.Type
		*dest[3].(*float64) = t.Amount
		*dest[4].(*transaction.Status) = t.Status
		*dest[5].(*string) = t.Description
		*dest[6].(*string) = t.ReferenceID
		*dest[7].(*membership.Tier) = t.MembershipTier
		*dest[8].(*time.Time) = t.CreatedAt
		*dest[9].(*time.Time) = t.UpdatedAt
		return nil
	}
}

func noRows(...any) error { return sql.ErrNoRows }

func TestSettleSubscription(t *testing.T) {
	settled := transaction.Transaction{
		ID: uuid.New(), UserID: uuid.New(), Type: transaction.TypeSubscription,
		Status: transaction.StatusCompleted, Amount: -15, MembershipTier: membership.TierRegular,
	}
	expires := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	activate := transaction.ProfileUpdate{Tier: membership.TierRegular, Status: membership.StatusActive, ExpiresAt: &expires}

	t.Run("commits both writes", func(t *testing.T) {
		tx := &scriptedTx{row: transactionRow(settled), execN: 1}
		repo := NewPostgresTransactionRepository(&scriptedDB{tx: tx})

		got, err := repo.SettleSubscription(context.Background(), settled.ID, transaction.StatusCompleted, activate)
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if got.ID != settled.ID || got.MembershipTier != membership.TierRegular {
			t.Fatalf("unexpected transaction %+v", got)
		}
		if !tx.committed || len(tx.execSQL) != 1 {
			t.Fatalf("expected one profile write and a commit, got %d writes committed=%v", len(tx.execSQL), tx.committed)
		}
		if args := tx.execArgs[0]; args[0] != settled.UserID || args[1] != membership.TierRegular {
			t.Fatalf("profile update targets wrong row or tier: %v", args)
		}
	})

	t.Run("profile failure rolls the settlement back", func(t *testing.T) {
		tx := &scriptedTx{row: transactionRow(settled), execErr: errors.New("conn reset")}
		repo := NewPostgresTransactionRepository(&scriptedDB{tx: tx})

		if _, err := repo.SettleSubscription(context.Background(), settled.ID, transaction.StatusCompleted, activate); err == nil {
			t.Fatalf("expected error")
		}
		if tx.committed || !tx.rolledBack {
			t.Fatalf("expected rollback, committed=%v rolledBack=%v", tx.committed, tx.rolledBack)
		}
	})

	t.Run("missing profile rolls back", func(t *testing.T) {
		tx := &scriptedTx{row: transactionRow(settled), execN: 0}
		repo := NewPostgresTransactionRepository(&scriptedDB{tx: tx})

		_, err := repo.SettleSubscription(context.Background(), settled.ID, transaction.StatusCompleted, activate)
		if !errors.Is(err, profile.ErrNotFound) || tx.committed {
			t.Fatalf("expected profile.ErrNotFound without commit, got %v committed=%v", err, tx.committed)
		}
	})

	t.Run("guarded revert may match no profile", func(t *testing.T) {
		tx := &scriptedTx{row: transactionRow(settled), execN: 0}
		repo := NewPostgresTransactionRepository(&scriptedDB{tx: tx})
		revert := transaction.ProfileUpdate{Tier: membership.TierNone, Status: membership.StatusNone, OnlyIfPendingOn: membership.TierRegular}

		if _, err := repo.SettleSubscription(context.Background(), settled.ID, transaction.StatusFailed, revert); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if !tx.committed {
			t.Fatalf("expected commit")
		}
		if !strings.Contains(tx.execSQL[0], "membership_status = $5 AND membership_tier = $6") {
			t.Fatalf("expected guarded update, got %s", tx.execSQL[0])
		}
	})

	t.Run("already settled", func(t *testing.T) {
		tx := &scriptedTx{row: rowFunc(noRows)}
		repo := NewPostgresTransactionRepository(&scriptedDB{tx: tx, lookup: transactionRow(settled)})

		_, err := repo.SettleSubscription(context.Background(), settled.ID, transaction.StatusCompleted, activate)
		if !errors.Is(err, transaction.ErrNotPending) {
			t.Fatalf("expected ErrNotPending, got %v", err)
		}
		if len(tx.execSQL) != 0 || tx.committed {
			t.Fatalf("expected no profile write")
		}
	})

	t.Run("unknown transaction", func(t *testing.T) {
		tx := &scriptedTx{row: rowFunc(noRows)}
		repo := NewPostgresTransactionRepository(&scriptedDB{tx: tx, lookup: rowFunc(noRows)})

		_, err := repo.SettleSubscription(context.Background(), uuid.New(), transaction.StatusCompleted, activate)
		if !errors.Is(err, transaction.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
