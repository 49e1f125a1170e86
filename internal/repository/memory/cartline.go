package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/utafrali/MiniShopGo/internal/domain"
	apperrors "github.com/utafrali/MiniShopGo/pkg/errors"
)

// CartLines is the process-local cart-line table used when no persistent
// store is configured or reachable. Contents are lost on restart.
//
// A table-wide mutex keeps the version CAS atomic across concurrent request
// goroutines.
type CartLines struct {
	mu        sync.RWMutex
	lines     map[string]domain.CartLine // id -> line
	byProduct map[string]string          // productID -> id
}

// NewCartLines creates an empty in-memory cart-line store.
func NewCartLines() *CartLines {
	return &CartLines{
		lines:     make(map[string]domain.CartLine),
		byProduct: make(map[string]string),
	}
}

// Ping always succeeds; there is nothing to probe in-process.
func (s *CartLines) Ping(_ context.Context) error {
	return nil
}

// Create inserts a new line with version 0, failing with ErrAlreadyExists if
// a line for the product is already present.
func (s *CartLines) Create(_ context.Context, productID string, qty int) (*domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byProduct[productID]; ok {
		return nil, apperrors.ErrAlreadyExists
	}

	line := domain.CartLine{
		ID:        uuid.New().String(),
		ProductID: productID,
		Qty:       qty,
		Version:   0,
	}
	s.lines[line.ID] = line
	s.byProduct[productID] = line.ID

	return &line, nil
}

// FindByProductID returns the line for the given product, or ErrNotFound.
func (s *CartLines) FindByProductID(_ context.Context, productID string) (*domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byProduct[productID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	line := s.lines[id]
	return &line, nil
}

// FindAll returns a snapshot of all current lines.
func (s *CartLines) FindAll(_ context.Context) ([]domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CartLine, 0, len(s.lines))
	for _, line := range s.lines {
		out = append(out, line)
	}
	return out, nil
}

// Update applies the version CAS: the write succeeds only when the stored
// version equals expectedVersion, and increments the version by 1.
func (s *CartLines) Update(_ context.Context, id string, qty, expectedVersion int) (*domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[id]
	if !ok || line.Version != expectedVersion {
		return nil, apperrors.ErrConflict
	}

	line.Qty = qty
	line.Version = expectedVersion + 1
	s.lines[id] = line

	return &line, nil
}

// RemoveIfVersion deletes the line only when the stored version equals
// expectedVersion, returning the deleted record.
func (s *CartLines) RemoveIfVersion(_ context.Context, id string, expectedVersion int) (*domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[id]
	if !ok || line.Version != expectedVersion {
		return nil, apperrors.ErrConflict
	}

	delete(s.lines, id)
	delete(s.byProduct, line.ProductID)

	return &line, nil
}

// Remove deletes the line unconditionally and returns the deleted record.
func (s *CartLines) Remove(_ context.Context, id string) (*domain.CartLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.lines[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	delete(s.lines, id)
	delete(s.byProduct, line.ProductID)

	return &line, nil
}

// Clear deletes every line. Succeeds against an empty set.
func (s *CartLines) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = make(map[string]domain.CartLine)
	s.byProduct = make(map[string]string)
	return nil
}
