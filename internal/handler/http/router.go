package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/MiniShopGo/internal/catalog"
	"github.com/utafrali/MiniShopGo/internal/service"
	"github.com/utafrali/MiniShopGo/pkg/health"
	"github.com/utafrali/MiniShopGo/pkg/middleware"
)

// NewRouter creates a chi router with all shop service routes registered.
func NewRouter(
	cartService *service.CartService,
	checkoutService *service.CheckoutService,
	cat catalog.Catalog,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("shop"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	cartHandler := NewCartHandler(cartService, logger)
	checkoutHandler := NewCheckoutHandler(checkoutService, logger)
	productHandler := NewProductHandler(cat, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/products", productHandler.ListProducts)

		r.Post("/cart", cartHandler.MutateCart)
		r.Get("/cart", cartHandler.GetCart)
		r.Delete("/cart/{id}", cartHandler.RemoveLine)

		r.Post("/checkout", checkoutHandler.Checkout)
	})

	return r
}
