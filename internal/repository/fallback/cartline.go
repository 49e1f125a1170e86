package fallback

import (
	"context"
	"errors"
	"log/slog"

	"github.com/utafrali/MiniShopGo/internal/domain"
	"github.com/utafrali/MiniShopGo/internal/repository"
	apperrors "github.com/utafrali/MiniShopGo/pkg/errors"
)

// CartLines decorates a persistent cart-line repository with a per-call
// in-memory standby. When the primary fails with an infrastructure error the
// operation is retried once against the standby, trading durability for
// availability. Domain errors (not found, conflict, already exists) pass
// through untouched; retrying those would change their meaning.
//
// Ping is never redirected: it reports the health of the persistent backend
// so callers can fail fast with a storage-unavailable signal.
type CartLines struct {
	primary repository.CartLines
	standby repository.CartLines
	logger  *slog.Logger
}

// NewCartLines creates the fallback decorator.
func NewCartLines(primary, standby repository.CartLines, logger *slog.Logger) *CartLines {
	return &CartLines{
		primary: primary,
		standby: standby,
		logger:  logger,
	}
}

// isBackendError reports whether err is an infrastructure failure rather
// than a domain outcome.
func isBackendError(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrAlreadyExists),
		errors.Is(err, apperrors.ErrInvalidInput):
		return false
	}
	return true
}

func (f *CartLines) warn(ctx context.Context, op string, err error) {
	f.logger.WarnContext(ctx, "primary store failed, falling back to in-memory",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
}

func (f *CartLines) Ping(ctx context.Context) error {
	return f.primary.Ping(ctx)
}

func (f *CartLines) Create(ctx context.Context, productID string, qty int) (*domain.CartLine, error) {
	line, err := f.primary.Create(ctx, productID, qty)
	if isBackendError(err) {
		f.warn(ctx, "create", err)
		return f.standby.Create(ctx, productID, qty)
	}
	return line, err
}

func (f *CartLines) FindByProductID(ctx context.Context, productID string) (*domain.CartLine, error) {
	line, err := f.primary.FindByProductID(ctx, productID)
	if isBackendError(err) {
		f.warn(ctx, "find_by_product_id", err)
		return f.standby.FindByProductID(ctx, productID)
	}
	return line, err
}

func (f *CartLines) FindAll(ctx context.Context) ([]domain.CartLine, error) {
	lines, err := f.primary.FindAll(ctx)
	if isBackendError(err) {
		f.warn(ctx, "find_all", err)
		return f.standby.FindAll(ctx)
	}
	return lines, err
}

func (f *CartLines) Update(ctx context.Context, id string, qty, expectedVersion int) (*domain.CartLine, error) {
	line, err := f.primary.Update(ctx, id, qty, expectedVersion)
	if isBackendError(err) {
		f.warn(ctx, "update", err)
		return f.standby.Update(ctx, id, qty, expectedVersion)
	}
	return line, err
}

func (f *CartLines) RemoveIfVersion(ctx context.Context, id string, expectedVersion int) (*domain.CartLine, error) {
	line, err := f.primary.RemoveIfVersion(ctx, id, expectedVersion)
	if isBackendError(err) {
		f.warn(ctx, "remove_if_version", err)
		return f.standby.RemoveIfVersion(ctx, id, expectedVersion)
	}
	return line, err
}

func (f *CartLines) Remove(ctx context.Context, id string) (*domain.CartLine, error) {
	line, err := f.primary.Remove(ctx, id)
	if isBackendError(err) {
		f.warn(ctx, "remove", err)
		return f.standby.Remove(ctx, id)
	}
	return line, err
}

func (f *CartLines) Clear(ctx context.Context) error {
	err := f.primary.Clear(ctx)
	if isBackendError(err) {
		f.warn(ctx, "clear", err)
		return f.standby.Clear(ctx)
	}
	return err
}
