package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/MiniShopGo/pkg/errors"
)

func TestCreate(t *testing.T) {
	s := NewCartLines()
	ctx := context.Background()

	line, err := s.Create(ctx, "p1", 2)

	require.NoError(t, err)
	assert.NotEmpty(t, line.ID)
	assert.Equal(t, "p1", line.ProductID)
	assert.Equal(t, 2, line.Qty)
	assert.Equal(t, 0, line.Version)
}

func TestCreate_DuplicateProduct(t *testing.T) {
	s := NewCartLines()
	ctx := context.Background()

	_, err := s.Create(ctx, "p1", 1)
	require.NoError(t, err)

	_, err = s.Create(ctx, "p1", 1)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestFindByProductID(t *testing.T) {
	s := NewCartLines()
	ctx := context.Background()

	created, err := s.Create(ctx, "p1", 2)
	require.NoError(t, err)

	found, err := s.FindByProductID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, created, found)

	_, err = s.FindByProductID(ctx, "p2")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdate_VersionCAS(t *testing.T) {
	s := NewCartLines()
	ctx := context.Background()

	created, err := s.Create(ctx, "p1", 2)
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Qty)
	assert.Equal(t, 1, updated.Version)

	// A stale version must not win.
	_, err = s.Update(ctx, created.ID, 7, 0)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// The current version must.
	updated, err = s.Update(ctx, created.ID, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
}

func TestUpdate_MissingLine(t *testing.T) {
	s := NewCartLines()

	_, err := s.Update(context.Background(), "missing", 1, 0)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRemoveIfVersion(t *testing.T) {
	s := NewCartLines()
	ctx := context.Background()

	created, err := s.Create(ctx, "p1", 2)
	require.NoError(t, err)

	_, err = s.RemoveIfVersion(ctx, created.ID, 3)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	removed, err := s.RemoveIfVersion(ctx, created.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, created.ID, removed.ID)

	_, err = s.FindByProductID(ctx, "p1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRemove(t *testing.T) {
	s := NewCartLines()
	ctx := context.Background()

	created, err := s.Create(ctx, "p1", 2)
	require.NoError(t, err)

	removed, err := s.Remove(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, removed.ID)

	_, err = s.Remove(ctx, created.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRemove_FreesProductForRecreate(t *testing.T) {
	s := NewCartLines()
	ctx := context.Background()

	created, err := s.Create(ctx, "p1", 2)
	require.NoError(t, err)

	_, err = s.Remove(ctx, created.ID)
	require.NoError(t, err)

	recreated, err := s.Create(ctx, "p1", 1)
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, recreated.ID)
	assert.Equal(t, 0, recreated.Version)
}

func TestClear(t *testing.T) {
	s := NewCartLines()
	ctx := context.Background()

	// Clearing an empty store succeeds.
	require.NoError(t, s.Clear(ctx))

	_, err := s.Create(ctx, "p1", 1)
	require.NoError(t, err)
	_, err = s.Create(ctx, "p2", 1)
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx))

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdate_ConcurrentCASAdmitsOneWinner(t *testing.T) {
	s := NewCartLines()
	ctx := context.Background()

	created, err := s.Create(ctx, "p1", 1)
	require.NoError(t, err)

	const writers = 16
	var wg sync.WaitGroup
	wins := make(chan struct{}, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(qty int) {
			defer wg.Done()
			if _, err := s.Update(ctx, created.ID, qty, 0); err == nil {
				wins <- struct{}{}
			}
		}(i + 2)
	}
	wg.Wait()
	close(wins)

	assert.Len(t, wins, 1)

	line, err := s.FindByProductID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, line.Version)
}
