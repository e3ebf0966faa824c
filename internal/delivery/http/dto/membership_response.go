package dto

import (
	"time"

	"skillbridge/internal/domain/membership"
	"skillbridge/internal/domain/transaction"

	"github.com/google/uuid"
)

type PlanResponse struct {
	Tier       string `json:"tier"`
	Name       string `json:"name"`
	PriceUSD   int    `json:"price_usd"`
	DailyLimit int    `json:"daily_limit"`
}

type TransactionResponse struct {
	ID             uuid.UUID `json:"id"`
	Type           string    `json:"type"`
	Amount         float64   `json:"amount"`
	Status         string    `json:"status"`
	Description    string    `json:"description"`
	ReferenceID    string    `json:"reference_id"`
	MembershipTier string    `json:"membership_tier,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type CheckoutResponse struct {
	Plan        PlanResponse         `json:"plan"`
	PaymentURL  string               `json:"payment_url"`
	PayPalEmail string               `json:"paypal_email"`
	ReferenceID string               `json:"reference_id"`
	ExpiresAt   time.Time            `json:"membership_expires_at"`
	Transaction *TransactionResponse `json:"transaction"`
}

func NewPlanResponse(p membership.Plan) PlanResponse {
	return PlanResponse{Tier: string(p.Tier), Name: p.Name, PriceUSD: p.PriceUSD, DailyLimit: p.Tier.DailyLimit()}
}

func NewTransactionResponse(t transaction.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:             t.ID,
		Type:           string(t.Type),
		Amount:         t.Amount,
		Status:         string(t.Status),
		Description:    t.Description,
		ReferenceID:    t.ReferenceID,
		MembershipTier: string(t.MembershipTier),
		CreatedAt:      t.CreatedAt,
	}
}
