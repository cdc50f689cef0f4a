package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

type OrderAPI interface {
	Location() *time.Location
	Get(ctx context.Context, idOrNumber string) (*domain.Order, error)
	List(ctx context.Context, from, to time.Time) ([]domain.Order, error)
	DailySummary(ctx context.Context, date time.Time) (domain.DailySummary, error)
}

type OrdersHandler struct {
	orders  OrderAPI
	timeout time.Duration
	now     func() time.Time
}

func NewOrdersHandler(orders OrderAPI, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		orders:  orders,
		timeout: timeout,
		now:     time.Now,
	}
}

// GET /api/v1/orders?start=&end=
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	from, err := h.parseBound(q.Get("start"), false)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_start", err.Error())
		return
	}
	to, err := h.parseBound(q.Get("end"), true)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_end", err.Error())
		return
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		respondError(w, http.StatusBadRequest, "invalid_range", "end is before start")
		return
	}

	orders, err := h.orders.List(ctx, from, to)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	dtos := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, roundedOrder(o))
	}
	respondJSON(w, http.StatusOK, dtos)
}

// GET /api/v1/orders/{id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.orders.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, roundedOrder(*order))
}

// GET /api/v1/orders/summary/daily?date=YYYY-MM-DD
//
// A date that does not parse yields the all-zero summary, not an error.
func (h *OrdersHandler) DailySummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	loc := h.orders.Location()
	date := h.now().In(loc)
	if raw := r.URL.Query().Get("date"); raw != "" {
		// on error the parsed time is zero, which the service summarizes as empty
		date, _ = time.ParseInLocation(dateLayout, raw, loc)
	}

	s, err := h.orders.DailySummary(ctx, date)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	for i := range s.Orders {
		s.Orders[i] = roundedOrder(s.Orders[i])
	}
	respondJSON(w, http.StatusOK, s)
}

// parseBound accepts RFC 3339 or a bare date in the order location. A bare
// end date covers the whole day.
func (h *OrdersHandler) parseBound(raw string, end bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(dateLayout, raw, h.orders.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither RFC 3339 nor YYYY-MM-DD", raw)
	}
	if end {
		d = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return d, nil
}
