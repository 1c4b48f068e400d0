package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/apexfit/storefront/internal/cart"
	"github.com/apexfit/storefront/internal/catalog"
	"github.com/apexfit/storefront/internal/session"
)

type CartHandler struct {
	sessions    *session.Manager
	catalog     catalog.Repository
	maxQuantity int
	timeout     time.Duration
}

func NewCartHandler(sessions *session.Manager, repo catalog.Repository, maxQuantity int, timeout time.Duration) *CartHandler {
	return &CartHandler{
		sessions:    sessions,
		catalog:     repo,
		maxQuantity: maxQuantity,
		timeout:     timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"color,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Lines      []cart.Line `json:"lines"`
	Total      float64     `json:"total"`
	DrawerOpen bool        `json:"drawer_open"`
}

func cartResponse(s *session.Session) CartResponse {
	lines := s.Cart.Lines()
	if lines == nil {
		lines = []cart.Line{}
	}
	return CartResponse{
		Lines:      lines,
		Total:      s.Cart.Total(),
		DrawerOpen: s.Cart.DrawerOpen(),
	}
}

func (h *CartHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
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

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity <= 0 || req.Quantity > h.maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.catalog.Get(ctx, req.ProductID)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	if err := s.Cart.Add(ctx, *product, req.Quantity, req.Color); err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(s))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity <= 0 || req.Quantity > h.maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	if err := s.Cart.UpdateQuantity(ctx, productID, req.Quantity, r.URL.Query().Get("color")); err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	productID, ok := parseProductID(w, r)
	if !ok {
		return
	}

	if err := s.Cart.Remove(ctx, productID, r.URL.Query().Get("color")); err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.Cart.Clear(ctx); err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(s))
}

type DrawerRequestDTO struct {
	Open bool `json:"open"`
}

// SetDrawer reports explicit drawer interaction, cancelling the auto-close.
func (h *CartHandler) SetDrawer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req DrawerRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	s.Cart.SetDrawerOpen(req.Open)
	respondJSON(w, http.StatusOK, cartResponse(s))
}

func parseProductID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "product_id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return id, true
}
