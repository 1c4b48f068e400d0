package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/apexfit/storefront/internal/cart"
	"github.com/apexfit/storefront/internal/catalog"
	"github.com/apexfit/storefront/internal/checkout"
	"github.com/apexfit/storefront/internal/payment"
)

type ErrorResponse struct {
	Error  string                `json:"error"`
	Code   string                `json:"code,omitempty"`
	Fields []checkout.FieldError `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleDomainError converts the core's sentinel errors to HTTP statuses.
func handleDomainError(w http.ResponseWriter, err error) {
	var verrs checkout.ValidationErrors
	var decline *payment.DeclineError

	switch {
	case errors.As(err, &verrs):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  err.Error(),
			Code:   "validation_failed",
			Fields: verrs,
		})
	case errors.As(err, &decline):
		respondError(w, http.StatusPaymentRequired, "payment_declined", err.Error())
	case errors.Is(err, payment.ErrGatewayUnavailable):
		respondError(w, http.StatusServiceUnavailable, "payment_unavailable", err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, cart.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrIllegalTransition),
		errors.Is(err, checkout.ErrSubmissionInFlight),
		errors.Is(err, checkout.ErrCheckoutNotOpen):
		respondError(w, http.StatusConflict, "conflict", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
