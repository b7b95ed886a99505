// Package memory provides an in-process key-value store for records.
// It is used for local development and as the store in tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vadimbarashkov/shorty/internal/entity"
)

type RecordRepository struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewRecordRepository() *RecordRepository {
	return &RecordRepository{data: make(map[string]string)}
}

func (r *RecordRepository) Get(ctx context.Context, key string) (string, error) {
	const op = "adapter.repository.memory.RecordRepository.Get"

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.data[key]
	if !ok {
		return "", fmt.Errorf("%s: %w", op, entity.ErrRecordNotFound)
	}

	return value, nil
}

func (r *RecordRepository) Set(ctx context.Context, key, value string) error {
	const op = "adapter.repository.memory.RecordRepository.Set"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[key] = value
	return nil
}

func (r *RecordRepository) Exists(ctx context.Context, key string) (bool, error) {
	const op = "adapter.repository.memory.RecordRepository.Exists"

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.data[key]
	return ok, nil
}

func (r *RecordRepository) SetNX(ctx context.Context, key, value string) (bool, error) {
	const op = "adapter.repository.memory.RecordRepository.SetNX"

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[key]; ok {
		return false, nil
	}

	r.data[key] = value
	return true, nil
}

// Update applies fn to the current value of key under the write lock.
func (r *RecordRepository) Update(ctx context.Context, key string, fn func(string) (string, error)) (string, error) {
	const op = "adapter.repository.memory.RecordRepository.Update"

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.data[key]
	if !ok {
		return "", fmt.Errorf("%s: %w", op, entity.ErrRecordNotFound)
	}

	next, err := fn(current)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	r.data[key] = next
	return next, nil
}
