// Package usecase implements the record lifecycle: creating shortcodes,
// looking records up and counting visits on top of a key-value store.
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vadimbarashkov/shorty/internal/entity"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const maxRetries = 5

var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating shortcode")

type recordStore interface {
	Get(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	SetNX(ctx context.Context, key, value string) (bool, error)
	Update(ctx context.Context, key string, fn func(string) (string, error)) (string, error)
}

type Option func(*RecordUseCase)

// WithClock replaces the time source used for startDate and lastSeenDate.
func WithClock(now func() time.Time) Option {
	return func(uc *RecordUseCase) {
		uc.now = now
	}
}

// WithGenerator replaces the shortcode generator.
func WithGenerator(generate func() (string, error)) Option {
	return func(uc *RecordUseCase) {
		uc.generate = generate
	}
}

type RecordUseCase struct {
	store    recordStore
	now      func() time.Time
	generate func() (string, error)
}

func New(store recordStore, opts ...Option) *RecordUseCase {
	uc := &RecordUseCase{
		store:    store,
		now:      func() time.Time { return time.Now().UTC() },
		generate: generateShortcode,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

func generateShortcode() (string, error) {
	return gonanoid.Generate(entity.ShortcodeAlphabet, entity.ShortcodeLength)
}

// Create stores a new record for in.URL. A caller-supplied shortcode that is
// taken fails with entity.ErrShortcodeInUse; a generated one is regenerated.
func (uc *RecordUseCase) Create(ctx context.Context, in entity.CreateInput) (*entity.Record, error) {
	const op = "usecase.RecordUseCase.Create"

	if in.URL == "" {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidURL)
	}

	if in.Shortcode != "" {
		if !entity.IsValidShortcode(in.Shortcode) {
			return nil, fmt.Errorf("%s: %w", op, entity.ErrInvalidShortcode)
		}

		rec, err := uc.save(ctx, in.Shortcode, in.URL)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to create record: %w", op, err)
		}

		return rec, nil
	}

	for i := 0; i < maxRetries; i++ {
		shortcode, err := uc.generate()
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate shortcode: %w", op, err)
		}

		if !entity.IsValidShortcode(shortcode) {
			continue
		}

		rec, err := uc.save(ctx, shortcode, in.URL)
		if err != nil {
			if errors.Is(err, entity.ErrShortcodeInUse) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to create record: %w", op, err)
		}

		return rec, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

func (uc *RecordUseCase) save(ctx context.Context, shortcode, url string) (*entity.Record, error) {
	exists, err := uc.store.Exists(ctx, shortcode)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, entity.ErrShortcodeInUse
	}

	rec := &entity.Record{
		Shortcode: shortcode,
		URL:       url,
		StartDate: uc.now(),
	}

	value, err := encodeRecord(rec)
	if err != nil {
		return nil, err
	}

	ok, err := uc.store.SetNX(ctx, shortcode, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, entity.ErrShortcodeInUse
	}

	return rec, nil
}

// Find returns the record stored under shortcode. The boolean is false when
// nothing is stored there. The shortcode format is not checked.
func (uc *RecordUseCase) Find(ctx context.Context, shortcode string) (*entity.Record, bool, error) {
	const op = "usecase.RecordUseCase.Find"

	value, err := uc.store.Get(ctx, shortcode)
	if err != nil {
		if errors.Is(err, entity.ErrRecordNotFound) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("%s: failed to get record: %w", op, err)
	}

	rec, err := decodeRecord(value)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	return rec, true, nil
}

// RecordVisit counts one redirect for rec. The increment is applied to the
// stored record, not to rec, so concurrent visits are never lost.
func (uc *RecordUseCase) RecordVisit(ctx context.Context, rec *entity.Record) (*entity.Record, error) {
	const op = "usecase.RecordUseCase.RecordVisit"

	if rec == nil {
		return nil, fmt.Errorf("%s: %w", op, entity.ErrRecordNotFound)
	}

	value, err := uc.store.Update(ctx, rec.Shortcode, func(current string) (string, error) {
		fresh, err := decodeRecord(current)
		if err != nil {
			return "", err
		}

		fresh.Visit(uc.now())

		return encodeRecord(fresh)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to record visit: %w", op, err)
	}

	updated, err := decodeRecord(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

func encodeRecord(rec *entity.Record) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to encode record: %w", err)
	}

	return string(data), nil
}

func decodeRecord(value string) (*entity.Record, error) {
	var rec entity.Record

	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}

	return &rec, nil
}
