package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/apexfit/storefront/internal/catalog"
)

type CatalogHandler struct {
	repo    catalog.Repository
	timeout time.Duration
}

func NewCatalogHandler(repo catalog.Repository, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		repo:    repo,
		timeout: timeout,
	}
}

type ProductsResponse struct {
	Products []catalog.Product `json:"products"`
}

func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	category := catalog.Category(r.URL.Query().Get("category"))
	if category != "" && !category.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_category", "unknown product category")
		return
	}

	products, err := h.repo.List(ctx, category)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ProductsResponse{Products: products})
}

func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	idStr := chi.URLParam(r, "product_id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	product, err := h.repo.Get(ctx, id)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}
