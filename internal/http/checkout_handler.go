package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ShiLuis/KapePOS/internal/domain"
)

type CheckoutAPI interface {
	Checkout(ctx context.Context, terminalID string, method domain.PaymentMethod, createdBy string) (domain.Order, error)
}

type CheckoutHandler struct {
	checkout CheckoutAPI
	timeout  time.Duration
}

func NewCheckoutHandler(checkout CheckoutAPI, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		timeout:  timeout,
	}
}

type CheckoutRequestDTO struct {
	PaymentMethod string `json:"payment_method"`
}

type ReceiptDTO struct {
	Order   domain.Order `json:"order"`
	Warning string       `json:"warning,omitempty"`
}

// POST /api/v1/checkout
//
// 201 when the order is stored. 202 when the store is unreachable: the body
// still carries the receipt, marked persisted=false, and the cart is kept.
// A stored order whose cart could not be cleared is still 201, with a warning.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cashier := getCashier(r.Context())
	if cashier == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing "+HeaderCashier+" header")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	order, err := h.checkout.Checkout(ctx, getTerminalID(r.Context()), method, cashier)
	switch {
	case err == nil:
		respondJSON(w, http.StatusCreated, ReceiptDTO{Order: roundedOrder(order)})
	case errors.Is(err, domain.ErrCartNotCleared) && order.Persisted:
		respondJSON(w, http.StatusCreated, ReceiptDTO{
			Order:   roundedOrder(order),
			Warning: "order saved but the cart was not cleared; clear it before the next sale",
		})
	case errors.Is(err, domain.ErrPersistenceUnavailable) && order.ID != "":
		respondJSON(w, http.StatusAccepted, ReceiptDTO{
			Order:   roundedOrder(order),
			Warning: "order could not be saved; keep this receipt",
		})
	default:
		handleServiceError(w, err)
	}
}

func roundedOrder(o domain.Order) domain.Order {
	t := o.Totals().Rounded()
	o.Subtotal, o.Discount, o.Tax, o.Total = t.Subtotal, t.Discount, t.Tax, t.Total
	return o
}
