package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/apexfit/storefront/internal/catalog"
	"github.com/apexfit/storefront/internal/session"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	MaxQuantity    int
}

// NewRouter assembles the storefront API surface.
func NewRouter(sessions *session.Manager, products catalog.Repository, cfg RouterConfig) http.Handler {
	catalogHandler := NewCatalogHandler(products, cfg.RequestTimeout)
	cartHandler := NewCartHandler(sessions, products, cfg.MaxQuantity, cfg.RequestTimeout)
	checkoutHandler := NewCheckoutHandler(sessions, cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.List)
			r.Get("/{product_id}", catalogHandler.Get)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Put("/drawer", cartHandler.SetDrawer)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.Get)
			r.Post("/open", checkoutHandler.Open)
			r.Post("/next", checkoutHandler.Next)
			r.Post("/back", checkoutHandler.Back)
			r.Post("/close", checkoutHandler.Close)
			r.Put("/form", checkoutHandler.SetForm)
			r.Post("/submit", checkoutHandler.Submit)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
