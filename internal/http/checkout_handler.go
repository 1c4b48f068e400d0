package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/apexfit/storefront/internal/checkout"
	"github.com/apexfit/storefront/internal/session"
)

type CheckoutHandler struct {
	sessions *session.Manager
	timeout  time.Duration
}

func NewCheckoutHandler(sessions *session.Manager, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		timeout:  timeout,
	}
}

func (h *CheckoutHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sessionID := sessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "no_session", "missing session")
		return nil, false
	}
	s, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to resolve session")
		return nil, false
	}
	return s, true
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, s.Checkout.State())
}

// Open gates on a non-empty cart. The wizard itself does not: that check is
// a presentation rule.
func (h *CheckoutHandler) Open(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if len(s.Cart.Lines()) == 0 {
		handleDomainError(w, checkout.ErrEmptyCart)
		return
	}
	if err := s.Checkout.Open(); err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Checkout.State())
}

func (h *CheckoutHandler) Next(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Checkout.Next(); err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Checkout.State())
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Checkout.Back(); err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Checkout.State())
}

func (h *CheckoutHandler) Close(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Checkout.Close(); err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Checkout.State())
}

func (h *CheckoutHandler) SetForm(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var form checkout.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := s.Checkout.SetForm(form); err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.Checkout.State())
}

// Submit holds the connection for the full simulated gateway round trip.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	order, err := s.Checkout.Submit(ctx)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
