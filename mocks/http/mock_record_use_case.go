package http

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vadimbarashkov/shorty/internal/entity"
)

// MockRecordUseCase is a testify mock of the use case consumed by the HTTP handlers.
type MockRecordUseCase struct {
	mock.Mock
}

func (m *MockRecordUseCase) Create(ctx context.Context, in entity.CreateInput) (*entity.Record, error) {
	args := m.Called(ctx, in)
	rec, _ := args.Get(0).(*entity.Record)
	return rec, args.Error(1)
}

func (m *MockRecordUseCase) Find(ctx context.Context, shortcode string) (*entity.Record, bool, error) {
	args := m.Called(ctx, shortcode)
	rec, _ := args.Get(0).(*entity.Record)
	return rec, args.Bool(1), args.Error(2)
}

func (m *MockRecordUseCase) RecordVisit(ctx context.Context, rec *entity.Record) (*entity.Record, error) {
	args := m.Called(ctx, rec)
	updated, _ := args.Get(0).(*entity.Record)
	return updated, args.Error(1)
}

// NewMockRecordUseCase creates a MockRecordUseCase whose expectations are asserted on test cleanup.
func NewMockRecordUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRecordUseCase {
	m := &MockRecordUseCase{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
