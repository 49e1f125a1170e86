package fallback

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/MiniShopGo/internal/domain"
	"github.com/utafrali/MiniShopGo/internal/repository"
	"github.com/utafrali/MiniShopGo/internal/repository/memory"
	apperrors "github.com/utafrali/MiniShopGo/pkg/errors"
)

var errBackend = errors.New("connection reset by peer")

// failingCartLines simulates a persistent store whose infrastructure is down.
// Every operation fails with a backend error.
type failingCartLines struct{}

func (failingCartLines) Ping(context.Context) error { return errBackend }

func (failingCartLines) Create(context.Context, string, int) (*domain.CartLine, error) {
	return nil, errBackend
}

func (failingCartLines) FindByProductID(context.Context, string) (*domain.CartLine, error) {
	return nil, errBackend
}

func (failingCartLines) FindAll(context.Context) ([]domain.CartLine, error) {
	return nil, errBackend
}

func (failingCartLines) Update(context.Context, string, int, int) (*domain.CartLine, error) {
	return nil, errBackend
}

func (failingCartLines) RemoveIfVersion(context.Context, string, int) (*domain.CartLine, error) {
	return nil, errBackend
}

func (failingCartLines) Remove(context.Context, string) (*domain.CartLine, error) {
	return nil, errBackend
}

func (failingCartLines) Clear(context.Context) error { return errBackend }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newHealthyFallback() (*CartLines, repository.CartLines) {
	primary := memory.NewCartLines()
	return NewCartLines(primary, memory.NewCartLines(), testLogger()), primary
}

func TestHealthyPrimaryServesReadsAndWrites(t *testing.T) {
	f, primary := newHealthyFallback()
	ctx := context.Background()

	created, err := f.Create(ctx, "p1", 2)
	require.NoError(t, err)

	// The write landed on the primary, not the standby.
	fromPrimary, err := primary.FindByProductID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, fromPrimary.ID)

	found, err := f.FindByProductID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestBackendErrorFallsBackToStandby(t *testing.T) {
	f := NewCartLines(failingCartLines{}, memory.NewCartLines(), testLogger())
	ctx := context.Background()

	created, err := f.Create(ctx, "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, created.Version)

	found, err := f.FindByProductID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	updated, err := f.Update(ctx, created.ID, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Version)

	all, err := f.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	removed, err := f.RemoveIfVersion(ctx, created.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, created.ID, removed.ID)

	require.NoError(t, f.Clear(ctx))
}

func TestDomainErrorsPassThrough(t *testing.T) {
	f, primary := newHealthyFallback()
	ctx := context.Background()

	created, err := primary.Create(ctx, "p1", 2)
	require.NoError(t, err)

	// A conflict from the primary must not be retried on the standby, where
	// the line does not even exist.
	_, err = f.Update(ctx, created.ID, 5, 99)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = f.FindByProductID(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.Create(ctx, "p1", 1)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestPingReportsPrimaryHealthOnly(t *testing.T) {
	f := NewCartLines(failingCartLines{}, memory.NewCartLines(), testLogger())

	// The standby would answer, but Ping is the persistent backend's probe.
	assert.ErrorIs(t, f.Ping(context.Background()), errBackend)
}
