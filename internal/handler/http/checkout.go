package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/utafrali/MiniShopGo/internal/service"
	"github.com/utafrali/MiniShopGo/pkg/validator"
)

// CheckoutHandler handles HTTP requests for checkout.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// CheckoutRequest is the JSON request body for checkout. CartItems is
// optional; when omitted or empty the server-side cart is checked out.
type CheckoutRequest struct {
	CartItems []service.CheckoutItem `json:"cartItems" validate:"omitempty,dive"`
}

// Checkout handles POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, response{
				Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
			})
			return
		}

		if err := validator.Validate(req); err != nil {
			writeValidationError(w, err)
			return
		}
	}

	receipt, err := h.service.Checkout(r.Context(), req.CartItems)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: receipt})
}
