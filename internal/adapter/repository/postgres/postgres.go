// Package postgres implements the record store on top of a single
// key-value table in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/vadimbarashkov/shorty/internal/entity"
)

const uniqueViolationErrCode = "23505"

func isUniqueViolationError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.SQLState() == uniqueViolationErrCode
}

type RecordRepository struct {
	db *sqlx.DB
}

func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) Get(ctx context.Context, key string) (string, error) {
	const op = "adapter.repository.postgres.RecordRepository.Get"
	const query = `SELECT value FROM records WHERE key = $1`

	var value string

	if err := r.db.GetContext(ctx, &value, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, entity.ErrRecordNotFound)
		}

		return "", fmt.Errorf("%s: failed to get row from records table: %w: %w", op, entity.ErrStoreUnavailable, err)
	}

	return value, nil
}

func (r *RecordRepository) Set(ctx context.Context, key, value string) error {
	const op = "adapter.repository.postgres.RecordRepository.Set"
	const query = `INSERT INTO records(key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("%s: failed to upsert into records table: %w: %w", op, entity.ErrStoreUnavailable, err)
	}

	return nil
}

func (r *RecordRepository) Exists(ctx context.Context, key string) (bool, error) {
	const op = "adapter.repository.postgres.RecordRepository.Exists"
	const query = `SELECT EXISTS(SELECT 1 FROM records WHERE key = $1)`

	var exists bool

	if err := r.db.GetContext(ctx, &exists, query, key); err != nil {
		return false, fmt.Errorf("%s: failed to check records table: %w: %w", op, entity.ErrStoreUnavailable, err)
	}

	return exists, nil
}

// SetNX inserts the row and relies on the primary key to reject duplicates.
func (r *RecordRepository) SetNX(ctx context.Context, key, value string) (bool, error) {
	const op = "adapter.repository.postgres.RecordRepository.SetNX"
	const query = `INSERT INTO records(key, value) VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		if isUniqueViolationError(err) {
			return false, nil
		}

		return false, fmt.Errorf("%s: failed to insert into records table: %w: %w", op, entity.ErrStoreUnavailable, err)
	}

	return true, nil
}

// Update locks the row with SELECT ... FOR UPDATE, applies fn and writes the
// result back in the same transaction.
func (r *RecordRepository) Update(ctx context.Context, key string, fn func(string) (string, error)) (string, error) {
	const op = "adapter.repository.postgres.RecordRepository.Update"
	const (
		selectQuery = `SELECT value FROM records WHERE key = $1 FOR UPDATE`
		updateQuery = `UPDATE records SET value = $1, updated_at = NOW() WHERE key = $2`
	)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: failed to begin transaction: %w: %w", op, entity.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	var current string

	if err := tx.GetContext(ctx, &current, selectQuery, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, entity.ErrRecordNotFound)
		}

		return "", fmt.Errorf("%s: failed to lock row in records table: %w: %w", op, entity.ErrStoreUnavailable, err)
	}

	next, err := fn(current)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, updateQuery, next, key); err != nil {
		return "", fmt.Errorf("%s: failed to update records table row: %w: %w", op, entity.ErrStoreUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: failed to commit transaction: %w: %w", op, entity.ErrStoreUnavailable, err)
	}

	return next, nil
}
