// Package redis implements the record store on top of Redis.
// Each record is kept as a plain string value under its shortcode key.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/shorty/internal/entity"
)

const defaultMaxTxRetries = 10

// ErrTxRetriesExceeded is returned when an optimistic transaction keeps losing to concurrent writers.
var ErrTxRetriesExceeded = errors.New("maximum transaction retries exceeded")

type RecordRepository struct {
	client       *redis.Client
	maxTxRetries int
}

type Option func(*RecordRepository)

// WithMaxTxRetries sets how many times Update retries a WATCH transaction
// aborted by a concurrent write.
func WithMaxTxRetries(n int) Option {
	return func(r *RecordRepository) {
		r.maxTxRetries = n
	}
}

func NewRecordRepository(client *redis.Client, opts ...Option) *RecordRepository {
	r := &RecordRepository{
		client:       client,
		maxTxRetries: defaultMaxTxRetries,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *RecordRepository) Get(ctx context.Context, key string) (string, error) {
	const op = "adapter.repository.redis.RecordRepository.Get"

	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("%s: %w", op, entity.ErrRecordNotFound)
		}

		return "", fmt.Errorf("%s: failed to get key: %w: %w", op, entity.ErrStoreUnavailable, err)
	}

	return value, nil
}

func (r *RecordRepository) Set(ctx context.Context, key, value string) error {
	const op = "adapter.repository.redis.RecordRepository.Set"

	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("%s: failed to set key: %w: %w", op, entity.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *RecordRepository) Exists(ctx context.Context, key string) (bool, error) {
	const op = "adapter.repository.redis.RecordRepository.Exists"

	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("%s: failed to check key: %w: %w", op, entity.ErrStoreUnavailable, err)
	}

	return n > 0, nil
}

func (r *RecordRepository) SetNX(ctx context.Context, key, value string) (bool, error) {
	const op = "adapter.repository.redis.RecordRepository.SetNX"

	ok, err := r.client.SetNX(ctx, key, value, 0).Result()
	if err != nil {
		return false, fmt.Errorf("%s: failed to set key if absent: %w: %w", op, entity.ErrStoreUnavailable, err)
	}

	return ok, nil
}

// Update runs fn inside a WATCH/MULTI transaction on key. The transaction is
// retried when another client modifies key between the read and the write.
func (r *RecordRepository) Update(ctx context.Context, key string, fn func(string) (string, error)) (string, error) {
	const op = "adapter.repository.redis.RecordRepository.Update"

	var (
		next  string
		fnErr error
	)

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				fnErr = entity.ErrRecordNotFound
				return fnErr
			}
			return err
		}

		next, fnErr = fn(current)
		if fnErr != nil {
			return fnErr
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < r.maxTxRetries; i++ {
		fnErr = nil

		err := r.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return next, nil
		case fnErr != nil:
			return "", fmt.Errorf("%s: %w", op, fnErr)
		case errors.Is(err, redis.TxFailedErr):
			continue
		default:
			return "", fmt.Errorf("%s: failed to update key: %w: %w", op, entity.ErrStoreUnavailable, err)
		}
	}

	return "", fmt.Errorf("%s: %w: %w", op, entity.ErrStoreUnavailable, ErrTxRetriesExceeded)
}
