package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ShiLuis/KapePOS/internal/domain"
	"github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError converts a domain error into an HTTP status.
func handleServiceError(w http.ResponseWriter, err error) {
	var (
		httpStatus int
		code       string
		message    string
	)

	switch {
	case errors.Is(err, domain.ErrInvalidSelection):
		httpStatus, code = http.StatusUnprocessableEntity, "invalid_selection"
	case errors.Is(err, domain.ErrInvalidDiscount):
		httpStatus, code = http.StatusUnprocessableEntity, "invalid_discount"
	case errors.Is(err, domain.ErrInvalidPaymentMethod):
		httpStatus, code = http.StatusBadRequest, "invalid_payment_method"
	case errors.Is(err, domain.ErrQuantityLimit):
		httpStatus, code = http.StatusUnprocessableEntity, "quantity_limit"
	case errors.Is(err, domain.ErrCartCheckedOut):
		httpStatus, code = http.StatusConflict, "cart_checked_out"
	case errors.Is(err, domain.ErrEmptyCart):
		httpStatus, code = http.StatusUnprocessableEntity, "empty_cart"
	case errors.Is(err, domain.ErrInvalidMenuItem):
		httpStatus, code = http.StatusUnprocessableEntity, "invalid_menu_item"
	case errors.Is(err, domain.ErrItemUnavailable):
		httpStatus, code = http.StatusConflict, "item_unavailable"
	case errors.Is(err, domain.ErrMenuItemNotFound):
		httpStatus, code = http.StatusNotFound, "menu_item_not_found"
	case errors.Is(err, domain.ErrOrderNotFound):
		httpStatus, code = http.StatusNotFound, "order_not_found"
	case errors.Is(err, domain.ErrLineNotFound):
		httpStatus, code = http.StatusNotFound, "line_not_found"
	case errors.Is(err, domain.ErrPersistenceUnavailable):
		httpStatus, code = http.StatusServiceUnavailable, "persistence_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus, code, message = http.StatusGatewayTimeout, "timeout", "request timed out"
	default:
		log.Error().Err(err).Msg("unhandled service error")
		httpStatus, code, message = http.StatusInternalServerError, "internal_error", "internal server error"
	}

	if message == "" {
		message = err.Error()
	}
	respondError(w, httpStatus, code, message)
}
