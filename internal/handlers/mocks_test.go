package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jlindqvist/leasetrack/internal/db"
	"github.com/jlindqvist/leasetrack/internal/models"
)

// MockLeaseStore is a mock implementation of db.LeaseStore
type MockLeaseStore struct {
	mock.Mock
}

func (m *MockLeaseStore) Get(ctx context.Context) (*models.LeaseInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LeaseInfo), args.Error(1)
}

func (m *MockLeaseStore) Put(ctx context.Context, lease models.LeaseInfo) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

// MockReadingStore is a mock implementation of db.ReadingStore
type MockReadingStore struct {
	mock.Mock
}

func (m *MockReadingStore) Get(ctx context.Context) (*db.ReadingList, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db.ReadingList), args.Error(1)
}

func (m *MockReadingStore) Replace(ctx context.Context, readings []models.MileageReading, expectedVersion int64) error {
	args := m.Called(ctx, readings, expectedVersion)
	return args.Error(0)
}
