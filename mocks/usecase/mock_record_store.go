package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRecordStore is a testify mock of the store consumed by usecase.RecordUseCase.
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockRecordStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockRecordStore) SetNX(ctx context.Context, key, value string) (bool, error) {
	args := m.Called(ctx, key, value)
	return args.Bool(0), args.Error(1)
}

// Update passes the value returned by the mock through fn, the same way a
// real store would, unless the mock returns an error.
func (m *MockRecordStore) Update(ctx context.Context, key string, fn func(string) (string, error)) (string, error) {
	args := m.Called(ctx, key, fn)
	if err := args.Error(1); err != nil {
		return "", err
	}
	return fn(args.String(0))
}

// NewMockRecordStore creates a MockRecordStore whose expectations are asserted on test cleanup.
func NewMockRecordStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRecordStore {
	m := &MockRecordStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
