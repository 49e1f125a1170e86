package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/MiniShopGo/internal/domain"
	apperrors "github.com/utafrali/MiniShopGo/pkg/errors"
)

const (
	lineKeyPrefix    = "cart:line:"
	productKeyPrefix = "cart:product:"
)

// CartLines implements repository.CartLines on Redis. Each line is one JSON
// document under cart:line:<id>, with a cart:product:<productId> index key
// enforcing at most one line per product.
//
// The conditional operations run inside WATCH transactions: a concurrent
// write to a watched key aborts the EXEC, which surfaces as ErrConflict
// (or ErrAlreadyExists for Create), never as a silent overwrite.
type CartLines struct {
	client *redis.Client
}

// NewCartLines creates a new Redis-backed cart-line repository.
func NewCartLines(client *redis.Client) *CartLines {
	return &CartLines{client: client}
}

func lineKey(id string) string { return lineKeyPrefix + id }

func productKey(productID string) string { return productKeyPrefix + productID }

// Ping issues a lightweight liveness probe against the store.
func (r *CartLines) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Create inserts a new line with version 0, conditional on no line existing
// for the product. A concurrent create for the same product loses the race
// with ErrAlreadyExists.
func (r *CartLines) Create(ctx context.Context, productID string, qty int) (*domain.CartLine, error) {
	line := domain.CartLine{
		ID:        uuid.New().String(),
		ProductID: productID,
		Qty:       qty,
		Version:   0,
	}

	data, err := json.Marshal(line)
	if err != nil {
		return nil, fmt.Errorf("marshal cart line: %w", err)
	}

	idxKey := productKey(productID)
	txf := func(tx *redis.Tx) error {
		_, err := tx.Get(ctx, idxKey).Result()
		if err == nil {
			return apperrors.ErrAlreadyExists
		}
		if !errors.Is(err, redis.Nil) {
			return fmt.Errorf("check product index: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, lineKey(line.ID), data, 0)
			pipe.Set(ctx, idxKey, line.ID, 0)
			return nil
		})
		return err
	}

	if err := r.client.Watch(ctx, txf, idxKey); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, apperrors.ErrAlreadyExists
		}
		return nil, err
	}

	return &line, nil
}

// FindByProductID returns the line for the given product, or ErrNotFound.
func (r *CartLines) FindByProductID(ctx context.Context, productID string) (*domain.CartLine, error) {
	id, err := r.client.Get(ctx, productKey(productID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get product index: %w", err)
	}

	return r.getLine(ctx, id)
}

// FindAll returns a snapshot of all current lines.
func (r *CartLines) FindAll(ctx context.Context) ([]domain.CartLine, error) {
	keys, err := r.scanKeys(ctx, lineKeyPrefix+"*")
	if err != nil {
		return nil, err
	}

	lines := make([]domain.CartLine, 0, len(keys))
	for _, key := range keys {
		data, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				// Deleted between SCAN and GET; skip.
				continue
			}
			return nil, fmt.Errorf("get cart line: %w", err)
		}

		var line domain.CartLine
		if err := json.Unmarshal(data, &line); err != nil {
			return nil, fmt.Errorf("unmarshal cart line: %w", err)
		}
		lines = append(lines, line)
	}

	return lines, nil
}

// Update applies the version CAS under WATCH: the write lands only if the
// stored version still equals expectedVersion, and increments the version.
func (r *CartLines) Update(ctx context.Context, id string, qty, expectedVersion int) (*domain.CartLine, error) {
	var updated domain.CartLine

	key := lineKey(id)
	txf := func(tx *redis.Tx) error {
		line, err := getLineTx(ctx, tx, key)
		if err != nil {
			return err
		}
		if line.Version != expectedVersion {
			return apperrors.ErrConflict
		}

		line.Qty = qty
		line.Version = expectedVersion + 1

		data, err := json.Marshal(line)
		if err != nil {
			return fmt.Errorf("marshal cart line: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = *line
		return nil
	}

	if err := r.client.Watch(ctx, txf, key); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, apperrors.ErrConflict
		}
		return nil, err
	}

	return &updated, nil
}

// RemoveIfVersion deletes the line under the same version discipline as
// Update, returning the deleted record.
func (r *CartLines) RemoveIfVersion(ctx context.Context, id string, expectedVersion int) (*domain.CartLine, error) {
	var removed domain.CartLine

	key := lineKey(id)
	txf := func(tx *redis.Tx) error {
		line, err := getLineTx(ctx, tx, key)
		if err != nil {
			return err
		}
		if line.Version != expectedVersion {
			return apperrors.ErrConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.Del(ctx, productKey(line.ProductID))
			return nil
		})
		if err != nil {
			return err
		}

		removed = *line
		return nil
	}

	if err := r.client.Watch(ctx, txf, key); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			return nil, apperrors.ErrConflict
		}
		return nil, err
	}

	return &removed, nil
}

// Remove deletes the line unconditionally and returns the deleted record,
// or ErrNotFound if absent.
func (r *CartLines) Remove(ctx context.Context, id string) (*domain.CartLine, error) {
	var removed domain.CartLine

	key := lineKey(id)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("get cart line: %w", err)
		}

		var line domain.CartLine
		if err := json.Unmarshal(data, &line); err != nil {
			return fmt.Errorf("unmarshal cart line: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.Del(ctx, productKey(line.ProductID))
			return nil
		})
		if err != nil {
			return err
		}

		removed = line
		return nil
	}

	if err := r.client.Watch(ctx, txf, key); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			// Deleted concurrently; report the line as already gone.
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}

	return &removed, nil
}

// Clear deletes every line and index key. Succeeds against an empty set.
func (r *CartLines) Clear(ctx context.Context) error {
	for _, pattern := range []string{lineKeyPrefix + "*", productKeyPrefix + "*"} {
		keys, err := r.scanKeys(ctx, pattern)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			continue
		}
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("clear cart lines: %w", err)
		}
	}
	return nil
}

func (r *CartLines) getLine(ctx context.Context, id string) (*domain.CartLine, error) {
	data, err := r.client.Get(ctx, lineKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("get cart line: %w", err)
	}

	var line domain.CartLine
	if err := json.Unmarshal(data, &line); err != nil {
		return nil, fmt.Errorf("unmarshal cart line: %w", err)
	}
	return &line, nil
}

func (r *CartLines) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}
	return keys, nil
}

// getLineTx reads and decodes a line inside a WATCH transaction. A missing
// key means the line vanished after the caller's read, which the versioned
// operations report as ErrConflict.
func getLineTx(ctx context.Context, tx *redis.Tx, key string) (*domain.CartLine, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.ErrConflict
		}
		return nil, fmt.Errorf("get cart line: %w", err)
	}

	var line domain.CartLine
	if err := json.Unmarshal(data, &line); err != nil {
		return nil, fmt.Errorf("unmarshal cart line: %w", err)
	}
	return &line, nil
}
