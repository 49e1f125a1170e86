package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/utafrali/MiniShopGo/internal/domain"
)

// DBTX is the subset of pgxpool.Pool the receipt repository uses.
// pgxmock satisfies it in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Receipts implements repository.Receipts using PostgreSQL.
type Receipts struct {
	pool DBTX
}

// NewReceipts creates a new PostgreSQL-backed receipt repository.
func NewReceipts(pool DBTX) *Receipts {
	return &Receipts{pool: pool}
}

// Create inserts a receipt. Receipts are immutable; there is no update path.
func (r *Receipts) Create(ctx context.Context, receipt *domain.Receipt) error {
	query := `
		INSERT INTO receipts (id, total, created_at)
		VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query,
		receipt.ID,
		receipt.Total,
		receipt.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}

	return nil
}
