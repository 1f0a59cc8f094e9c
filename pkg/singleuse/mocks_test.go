package singleuse_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/billingkit/authkit/pkg/singleuse"
)

// MockStore is a mock implementation of singleuse.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Insert(ctx context.Context, token singleuse.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockStore) DeleteUnused(ctx context.Context, userID uuid.UUID, purpose singleuse.Purpose) error {
	args := m.Called(ctx, userID, purpose)
	return args.Error(0)
}

func (m *MockStore) ListActive(ctx context.Context, purpose singleuse.Purpose) ([]singleuse.Token, error) {
	args := m.Called(ctx, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]singleuse.Token), args.Error(1)
}

func (m *MockStore) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, usedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
