package memory

import (
	"context"
	"sync"

	"github.com/utafrali/MiniShopGo/internal/domain"
)

// Receipts is the process-local receipt table used when PostgreSQL is not
// configured. Contents are lost on restart; the system favors availability
// over durability here.
type Receipts struct {
	mu       sync.Mutex
	receipts []domain.Receipt
}

// NewReceipts creates an empty in-memory receipt store.
func NewReceipts() *Receipts {
	return &Receipts{}
}

// Create appends a receipt.
func (s *Receipts) Create(_ context.Context, receipt *domain.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.receipts = append(s.receipts, *receipt)
	return nil
}

// All returns a snapshot of stored receipts, oldest first.
func (s *Receipts) All() []domain.Receipt {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Receipt, len(s.receipts))
	copy(out, s.receipts)
	return out
}
