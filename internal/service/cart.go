package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/MiniShopGo/internal/catalog"
	"github.com/utafrali/MiniShopGo/internal/domain"
	"github.com/utafrali/MiniShopGo/internal/event"
	"github.com/utafrali/MiniShopGo/internal/repository"
	apperrors "github.com/utafrali/MiniShopGo/pkg/errors"
)

// Outcome distinguishes what a cart mutation did, for the HTTP boundary to
// translate into a status code.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
	OutcomeRemoved Outcome = "removed"
)

// MutationResult is the result of applying a quantity delta to a product.
// Line is set for created/updated outcomes; RemovedID for removed.
type MutationResult struct {
	Outcome   Outcome
	Line      *domain.CartLine
	RemovedID string
}

// CartService implements the cart mutation and read use cases atop the
// cart-line repository's primitives.
type CartService struct {
	repo     repository.CartLines
	catalog  catalog.Catalog
	producer *event.Producer
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartLines, cat catalog.Catalog, producer *event.Producer, logger *slog.Logger) *CartService {
	return &CartService{
		repo:     repo,
		catalog:  cat,
		producer: producer,
		logger:   logger,
	}
}

// ApplyDelta applies a quantity delta to the cart line for the given product:
// creating the line on first add, updating it via the optimistic version
// check, or removing it when the quantity falls to zero or below.
//
// A versioned write that loses a concurrent race fails with ErrConflict. The
// engine never retries; the caller re-reads and resubmits.
func (s *CartService) ApplyDelta(ctx context.Context, productID string, qty int) (*MutationResult, error) {
	if productID == "" {
		return nil, apperrors.InvalidInput("productId is required")
	}

	// Fail fast with a service-level signal before attempting a mutation.
	if err := s.repo.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "storage liveness probe failed",
			slog.String("error", err.Error()),
		)
		return nil, apperrors.ServiceUnavailable("cart storage is unavailable, retry later")
	}

	if _, err := s.catalog.Get(ctx, productID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("resolve product: %w", err)
	}

	line, err := s.repo.FindByProductID(ctx, productID)
	switch {
	case err == nil:
		return s.mutateExisting(ctx, line, qty)
	case errors.Is(err, apperrors.ErrNotFound):
		return s.createLine(ctx, productID, qty)
	default:
		return nil, fmt.Errorf("find cart line: %w", err)
	}
}

func (s *CartService) mutateExisting(ctx context.Context, line *domain.CartLine, qty int) (*MutationResult, error) {
	newQty := line.Qty + qty

	if newQty <= 0 {
		removed, err := s.repo.RemoveIfVersion(ctx, line.ID, line.Version)
		if err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				return nil, apperrors.Conflict("cart line was modified concurrently, please retry")
			}
			return nil, fmt.Errorf("remove cart line: %w", err)
		}

		s.publishUpdated(ctx, removed, true)
		s.logger.InfoContext(ctx, "cart line removed",
			slog.String("line_id", removed.ID),
			slog.String("product_id", removed.ProductID),
		)

		return &MutationResult{Outcome: OutcomeRemoved, RemovedID: removed.ID}, nil
	}

	updated, err := s.repo.Update(ctx, line.ID, newQty, line.Version)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.Conflict("cart line was modified concurrently, please retry")
		}
		return nil, fmt.Errorf("update cart line: %w", err)
	}

	s.publishUpdated(ctx, updated, false)
	s.logger.InfoContext(ctx, "cart line updated",
		slog.String("line_id", updated.ID),
		slog.String("product_id", updated.ProductID),
		slog.Int("qty", updated.Qty),
		slog.Int("version", updated.Version),
	)

	return &MutationResult{Outcome: OutcomeUpdated, Line: updated}, nil
}

func (s *CartService) createLine(ctx context.Context, productID string, qty int) (*MutationResult, error) {
	if qty <= 0 {
		return nil, apperrors.InvalidInput("cannot create a cart line with non-positive qty")
	}

	created, err := s.repo.Create(ctx, productID, qty)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			// Lost a concurrent first-add race for the same product.
			return nil, apperrors.Conflict("cart line was created concurrently, please retry")
		}
		return nil, fmt.Errorf("create cart line: %w", err)
	}

	s.publishUpdated(ctx, created, false)
	s.logger.InfoContext(ctx, "cart line created",
		slog.String("line_id", created.ID),
		slog.String("product_id", created.ProductID),
		slog.Int("qty", created.Qty),
	)

	return &MutationResult{Outcome: OutcomeCreated, Line: created}, nil
}

// RemoveLine deletes a cart line by id, unconditionally. Fails with a
// not-found signal if the id does not exist.
func (s *CartService) RemoveLine(ctx context.Context, id string) (*domain.CartLine, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("cart line id is required")
	}

	removed, err := s.repo.Remove(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("cart line", id)
		}
		return nil, fmt.Errorf("remove cart line: %w", err)
	}

	s.publishUpdated(ctx, removed, true)
	s.logger.InfoContext(ctx, "cart line deleted",
		slog.String("line_id", removed.ID),
	)

	return removed, nil
}

// GetCart returns the cart view: every line enriched with the product's
// current catalog name and price. Prices are resolved live, never cached on
// the line, so a catalog price change shows up immediately. A line whose
// product has been deleted from the catalog still appears, with name
// "Unknown" and price 0.
func (s *CartService) GetCart(ctx context.Context) (*domain.CartView, error) {
	lines, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("find cart lines: %w", err)
	}

	view := &domain.CartView{Items: make([]domain.CartViewItem, 0, len(lines))}
	for _, line := range lines {
		name := "Unknown"
		price := 0.0

		product, err := s.catalog.Get(ctx, line.ProductID)
		switch {
		case err == nil:
			name = product.Name
			price = product.Price
		case !errors.Is(err, apperrors.ErrNotFound):
			return nil, fmt.Errorf("resolve product: %w", err)
		}

		lineTotal := price * float64(line.Qty)
		view.Items = append(view.Items, domain.CartViewItem{
			ID:        line.ID,
			ProductID: line.ProductID,
			Name:      name,
			Price:     price,
			Qty:       line.Qty,
			LineTotal: lineTotal,
		})
		view.Total += lineTotal
	}

	return view, nil
}

// publishUpdated emits a cart.updated event, best effort. Publish failures
// are logged and never fail the mutation.
func (s *CartService) publishUpdated(ctx context.Context, line *domain.CartLine, removed bool) {
	if err := s.producer.PublishCartUpdated(ctx, line, removed); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("line_id", line.ID),
			slog.String("error", err.Error()),
		)
	}
}
