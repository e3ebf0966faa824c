package handler

import (
	"errors"

	"skillbridge/internal/delivery/http/dto"
	"skillbridge/internal/delivery/http/middleware"
	"skillbridge/internal/pkg/response"
	ucmembership "skillbridge/internal/usecase/membership"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
)

type MembershipHandler struct {
	svc       *ucmembership.Service
	checkouts *prometheus.CounterVec
}

type checkoutRequest struct {
	Tier string `json:"tier"`
}

func NewMembershipHandler(svc *ucmembership.Service, checkouts *prometheus.CounterVec) *MembershipHandler {
	return &MembershipHandler{svc: svc, checkouts: checkouts}
}

func (h *MembershipHandler) RegisterPublicRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/plans", h.HandlePlans)
}

func (h *MembershipHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/checkout", h.HandleCheckout)
	r.Get("/transactions", h.HandleTransactions)
}

func (h *MembershipHandler) HandlePlans(c fiber.Ctx) error {
	plans := h.svc.Plans()
	out := make([]dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, dto.NewPlanResponse(p))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

// HandleCheckout returns the payment link. Membership is switched to
// pending_payment before the member pays.
func (h *MembershipHandler) HandleCheckout(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req checkoutRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	res, err := h.svc.Checkout(c.Context(), userID, req.Tier)
	if err != nil {
		return mapMembershipError(err)
	}
	if h.checkouts != nil {
		h.checkouts.WithLabelValues(string(res.Plan.Tier)).Inc()
	}

	out := dto.CheckoutResponse{
		Plan:        dto.NewPlanResponse(res.Plan),
		PaymentURL:  res.PaymentURL,
		PayPalEmail: res.PayPalEmail,
		ReferenceID: res.ReferenceID,
		ExpiresAt:   res.ExpiresAt,
	}
	if res.Transaction != nil {
		tx := dto.NewTransactionResponse(*res.Transaction)
		out.Transaction = &tx
	}
	return response.Success(c, fiber.StatusOK, "Complete the payment to activate your membership", out)
}

func (h *MembershipHandler) HandleTransactions(c fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	limit, err := parseQueryIntStrict(c, "limit", 50)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid limit", nil, err)
	}

	txs, err := h.svc.Transactions(c.Context(), userID, limit)
	if err != nil {
		return mapMembershipError(err)
	}
	out := make([]dto.TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, dto.NewTransactionResponse(t))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func mapMembershipError(err error) error {
	switch {
	case errors.Is(err, ucmembership.ErrInvalidPlan):
		return middleware.NewAppError(fiber.StatusBadRequest, "Unknown membership plan", nil, err)
	case errors.Is(err, ucmembership.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, ucmembership.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Not found", nil, err)
	case errors.Is(err, ucmembership.ErrNotPending):
		return middleware.NewAppError(fiber.StatusConflict, "Transaction already settled", nil, err)
	case errors.Is(err, ucmembership.ErrNotCheckout):
		return middleware.NewAppError(fiber.StatusConflict, "Transaction is not a membership payment", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
