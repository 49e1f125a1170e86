package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/MiniShopGo/internal/catalog"
	"github.com/utafrali/MiniShopGo/internal/domain"
	"github.com/utafrali/MiniShopGo/internal/event"
	"github.com/utafrali/MiniShopGo/internal/repository"
	apperrors "github.com/utafrali/MiniShopGo/pkg/errors"
)

// CheckoutItem is a client-supplied line in a checkout request. Only the
// product id and quantity are trusted; prices always come from the catalog.
type CheckoutItem struct {
	ProductID string `json:"productId" validate:"required"`
	Qty       int    `json:"qty" validate:"gt=0"`
}

// CheckoutService finalizes the cart into a receipt.
type CheckoutService struct {
	cartRepo    repository.CartLines
	receiptRepo repository.Receipts
	catalog     catalog.Catalog
	producer    *event.Producer
	logger      *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(cartRepo repository.CartLines, receiptRepo repository.Receipts, cat catalog.Catalog, producer *event.Producer, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		cartRepo:    cartRepo,
		receiptRepo: receiptRepo,
		catalog:     cat,
		producer:    producer,
		logger:      logger,
	}
}

// Checkout totals the given items at current catalog prices, persists a
// receipt and drains the server-side cart. When items is empty the
// server-side cart is used instead. An empty cart cannot be checked out.
//
// Items whose product no longer exists in the catalog contribute zero to the
// total, mirroring how the cart view renders them.
func (s *CheckoutService) Checkout(ctx context.Context, items []CheckoutItem) (*domain.Receipt, error) {
	if len(items) == 0 {
		lines, err := s.cartRepo.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("find cart lines: %w", err)
		}
		for _, line := range lines {
			items = append(items, CheckoutItem{ProductID: line.ProductID, Qty: line.Qty})
		}
	}

	if len(items) == 0 {
		return nil, apperrors.InvalidInput("cannot checkout with empty cart")
	}

	var total float64
	for _, item := range items {
		product, err := s.catalog.Get(ctx, item.ProductID)
		switch {
		case err == nil:
			total += product.Price * float64(item.Qty)
		case errors.Is(err, apperrors.ErrNotFound):
			// Product gone since it was added; it prices at zero.
		default:
			return nil, fmt.Errorf("resolve product: %w", err)
		}
	}

	receipt := &domain.Receipt{
		ID:        uuid.NewString(),
		Total:     total,
		Timestamp: time.Now().UTC(),
	}

	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		return nil, fmt.Errorf("persist receipt: %w", err)
	}

	if err := s.cartRepo.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if err := s.producer.PublishCheckoutCompleted(ctx, receipt, len(items)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish checkout.completed event",
			slog.String("receipt_id", receipt.ID),
			slog.String("error", err.Error()),
		)
	}
	if err := s.producer.PublishCartCleared(ctx); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "checkout completed",
		slog.String("receipt_id", receipt.ID),
		slog.Float64("total", receipt.Total),
		slog.Int("item_count", len(items)),
	)

	return receipt, nil
}
