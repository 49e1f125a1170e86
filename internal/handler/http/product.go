package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/MiniShopGo/internal/catalog"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	catalog catalog.Catalog
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(cat catalog.Catalog, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: cat,
		logger:  logger,
	}
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: products})
}
