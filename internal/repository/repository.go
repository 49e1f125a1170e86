package repository

import (
	"context"

	"github.com/utafrali/MiniShopGo/internal/domain"
)

// CartLines defines the persistence operations for cart-line records.
//
// Every mutation shares one conflict-detection discipline: Create is
// conditional on productID absence, and the versioned operations (Update,
// RemoveIfVersion) are compare-and-swap on the line's version token.
// Implementations return the pkg/errors sentinels:
//
//   - ErrNotFound       when a lookup misses
//   - ErrAlreadyExists  when Create races an existing line for the product
//   - ErrConflict       when a versioned write loses a concurrent race
type CartLines interface {
	// Ping probes the liveness of the backing store. The in-memory
	// implementation always succeeds; there is nothing to probe.
	Ping(ctx context.Context) error

	// Create inserts a new line with version 0. It fails with
	// ErrAlreadyExists if a line for the product already exists.
	Create(ctx context.Context, productID string, qty int) (*domain.CartLine, error)

	// FindByProductID returns the line for the given product, or ErrNotFound.
	FindByProductID(ctx context.Context, productID string) (*domain.CartLine, error)

	// FindAll returns a snapshot of all current lines. Order is not significant.
	FindAll(ctx context.Context) ([]domain.CartLine, error)

	// Update persists qty and increments the version by 1, but only if the
	// stored version equals expectedVersion. A mismatch, or a line that has
	// vanished since the read, fails with ErrConflict.
	Update(ctx context.Context, id string, qty, expectedVersion int) (*domain.CartLine, error)

	// RemoveIfVersion deletes the line only if the stored version equals
	// expectedVersion, returning the deleted record. A mismatch or a line
	// that has vanished fails with ErrConflict.
	RemoveIfVersion(ctx context.Context, id string, expectedVersion int) (*domain.CartLine, error)

	// Remove deletes the line unconditionally and returns the deleted
	// record, or ErrNotFound if absent.
	Remove(ctx context.Context, id string) (*domain.CartLine, error)

	// Clear deletes every line. It succeeds against an empty set.
	Clear(ctx context.Context) error
}

// Receipts defines the persistence operations for checkout receipts.
type Receipts interface {
	// Create persists a receipt. Receipts are immutable; there is no update.
	Create(ctx context.Context, receipt *domain.Receipt) error
}
