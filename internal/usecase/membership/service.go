package membership

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"skillbridge/internal/domain/membership"
	"skillbridge/internal/domain/profile"
	"skillbridge/internal/domain/transaction"
	"skillbridge/internal/pkg/payment"

	"github.com/google/uuid"
)

var (
	ErrInvalidPlan  = errors.New("unknown membership plan")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrNotPending   = errors.New("transaction already settled")
	ErrNotCheckout  = errors.New("transaction is not a membership payment")
	ErrInternal     = errors.New("internal error")
)

type CheckoutResult struct {
	Plan        membership.Plan
	PaymentURL  string
	PayPalEmail string
	ReferenceID string
	ExpiresAt   time.Time
	// Transaction is nil when recording the pending payment failed.
	Transaction *transaction.Transaction
}

type Service struct {
	profiles     profile.Repository
	transactions transaction.Repository
	paypal       payment.PayPal
	logger       *log.Logger
	now          func() time.Time
}

func NewService(profiles profile.Repository, transactions transaction.Repository, paypal payment.PayPal, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		profiles:     profiles,
		transactions: transactions,
		paypal:       paypal,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *Service) Plans() []membership.Plan {
	return membership.Plans()
}

// Checkout builds the payment link and optimistically switches the member to
// the chosen tier. Bookkeeping failures are logged; the link is still
// returned so the member can pay.
func (s *Service) Checkout(ctx context.Context, userID uuid.UUID, tier string) (CheckoutResult, error) {
	t, err := membership.ParseTier(tier)
	if err != nil {
		return CheckoutResult{}, ErrInvalidPlan
	}
	plan, ok := membership.PlanFor(t)
	if !ok {
		return CheckoutResult{}, ErrInvalidPlan
	}

	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return CheckoutResult{}, ErrNotFound
		}
		return CheckoutResult{}, ErrInternal
	}

	now := s.now()
	res := CheckoutResult{
		Plan:        plan,
		PaymentURL:  s.paypal.SendMoneyLink(plan.PriceUSD, plan.Name, p.Email),
		PayPalEmail: s.paypal.Email,
		ReferenceID: payment.ReferenceID(now, userID),
		ExpiresAt:   membership.ExpiresAt(now),
	}

	tx, err := s.transactions.Create(ctx, transaction.Transaction{
		UserID:      userID,
		Type:        transaction.TypeSubscription,
		Amount:      -float64(plan.PriceUSD),
		Status:      transaction.StatusPending,
		Description: fmt.Sprintf("%s Membership - PayPal Payment Pending", plan.Name),
		ReferenceID: res.ReferenceID,

		MembershipTier: plan.Tier,
	})
	if err != nil {
		s.logger.Printf("[Membership] record transaction failed user_id=%s ref=%s err=%v", userID, res.ReferenceID, err)
	} else {
		res.Transaction = &tx
	}

	err = s.profiles.ApplyMembership(ctx, userID, profile.MembershipChange{
		Tier:           plan.Tier,
		Status:         membership.StatusPendingPayment,
		ExpiresAt:      &res.ExpiresAt,
		ResetDailyUsed: true,
	})
	if err != nil {
		s.logger.Printf("[Membership] profile update failed user_id=%s tier=%s err=%v", userID, plan.Tier, err)
	}

	s.logger.Printf("[Membership] checkout user_id=%s tier=%s ref=%s", userID, plan.Tier, res.ReferenceID)
	return res, nil
}

func (s *Service) Transactions(ctx context.Context, userID uuid.UUID, limit int) ([]transaction.Transaction, error) {
	out, err := s.transactions.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, ErrInternal
	}
	return out, nil
}

// Confirm settles a pending membership payment together with the payer's
// profile. A completed payment activates the tier that transaction paid for.
// A failed one drops the member back to none, unless the profile has since
// moved on to another checkout or plan.
func (s *Service) Confirm(ctx context.Context, txID uuid.UUID, status string) (transaction.Transaction, error) {
	st := transaction.Status(status)
	if st != transaction.StatusCompleted && st != transaction.StatusFailed {
		return transaction.Transaction{}, ErrInvalidInput
	}

	current, err := s.transactions.GetByID(ctx, txID)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			return transaction.Transaction{}, ErrNotFound
		}
		return transaction.Transaction{}, ErrInternal
	}
	if current.Type != transaction.TypeSubscription {
		return transaction.Transaction{}, ErrNotCheckout
	}
	if current.Status != transaction.StatusPending {
		return transaction.Transaction{}, ErrNotPending
	}
	tier, ok := paidTier(current)
	if !ok {
		s.logger.Printf("[Membership] cannot resolve plan id=%s amount=%.2f", current.ID, current.Amount)
		return transaction.Transaction{}, ErrNotCheckout
	}

	update := transaction.ProfileUpdate{
		Tier:            membership.TierNone,
		Status:          membership.StatusNone,
		OnlyIfPendingOn: tier,
	}
	if st == transaction.StatusCompleted {
		expires := membership.ExpiresAt(current.CreatedAt)
		update = transaction.ProfileUpdate{
			Tier:      tier,
			Status:    membership.StatusActive,
			ExpiresAt: &expires,
		}
	}

	settled, err := s.transactions.SettleSubscription(ctx, txID, st, update)
	if err != nil {
		switch {
		case errors.Is(err, transaction.ErrNotPending):
			return transaction.Transaction{}, ErrNotPending
		case errors.Is(err, transaction.ErrNotFound):
			return transaction.Transaction{}, ErrNotFound
		default:
			s.logger.Printf("[Membership] settle failed id=%s err=%v", txID, err)
			return transaction.Transaction{}, ErrInternal
		}
	}

	s.logger.Printf("[Membership] transaction settled id=%s user_id=%s status=%s tier=%s", settled.ID, settled.UserID, settled.Status, tier)
	return settled, nil
}

// paidTier resolves the plan of a subscription. Rows written before the tier
// was recorded fall back to matching the charged price.
func paidTier(t transaction.Transaction) (membership.Tier, bool) {
	if t.MembershipTier.Valid() && t.MembershipTier != membership.TierNone {
		return t.MembershipTier, true
	}
	for _, p := range membership.Plans() {
		if float64(p.PriceUSD) == -t.Amount {
			return p.Tier, true
		}
	}
	return "", false
}
