package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jlindqvist/leasetrack/internal/db"
	"github.com/jlindqvist/leasetrack/internal/models"
)

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

func TestBuildReading(t *testing.T) {
	s := &Subscriber{}
	now := time.Date(2025, 8, 1, 17, 30, 0, 0, time.UTC)

	reading, err := s.buildReading(readingMessage{Mileage: 1234.5, Note: "Fuel stop"}, now)
	require.NoError(t, err)
	assert.NotEmpty(t, reading.ID)
	assert.Equal(t, "2025-08-01", reading.Date)
	assert.Equal(t, "17:30", reading.Time)
	assert.Equal(t, 1234.5, reading.Mileage)
	assert.Equal(t, "Fuel stop", reading.Note)

	// Explicit date without a time stays untimed
	reading, err = s.buildReading(readingMessage{Mileage: 1000, Date: "2025-07-15"}, now)
	require.NoError(t, err)
	assert.Equal(t, "2025-07-15", reading.Date)
	assert.Empty(t, reading.Time)
}

func TestBuildReading_Invalid(t *testing.T) {
	s := &Subscriber{}
	now := time.Date(2025, 8, 1, 17, 30, 0, 0, time.UTC)

	_, err := s.buildReading(readingMessage{Mileage: -1}, now)
	assert.Error(t, err)

	_, err = s.buildReading(readingMessage{Mileage: 100, Date: "15/07/2025"}, now)
	assert.Error(t, err)

	_, err = s.buildReading(readingMessage{Mileage: 100, Date: "2025-07-15", Time: "5pm"}, now)
	assert.Error(t, err)
}

func TestTryStore_AppendsAndReplaces(t *testing.T) {
	store := new(MockReadingStore)
	store.On("Get", mock.Anything).Return(&db.ReadingList{
		Version: 2,
		Readings: []models.MileageReading{
			{ID: "a", Date: "2025-07-09", Mileage: 0},
		},
	}, nil)
	store.On("Replace", mock.Anything, mock.MatchedBy(func(readings []models.MileageReading) bool {
		return len(readings) == 2 && readings[1].Mileage == 500
	}), int64(2)).Return(nil)

	s := &Subscriber{store: store}
	err := s.tryStore(context.Background(), models.MileageReading{
		ID: "b", Date: "2025-08-01", Mileage: 500,
	})
	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestTryStore_RejectsNonMonotonic(t *testing.T) {
	store := new(MockReadingStore)
	store.On("Get", mock.Anything).Return(&db.ReadingList{
		Version: 2,
		Readings: []models.MileageReading{
			{ID: "a", Date: "2025-07-09", Mileage: 1000},
		},
	}, nil)

	s := &Subscriber{store: store}
	err := s.tryStore(context.Background(), models.MileageReading{
		ID: "b", Date: "2025-08-01", Mileage: 500,
	})
	assert.Error(t, err)
	store.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
}

func TestStoreReading_RetriesOnConflict(t *testing.T) {
	store := new(MockReadingStore)
	store.On("Get", mock.Anything).Return(&db.ReadingList{Version: 1}, nil)
	store.On("Replace", mock.Anything, mock.Anything, int64(1)).Return(db.ErrVersionConflict)

	s := &Subscriber{store: store}
	err := s.storeReading(models.MileageReading{ID: "a", Date: "2025-08-01", Mileage: 100})
	assert.ErrorIs(t, err, db.ErrVersionConflict)
	store.AssertNumberOfCalls(t, "Replace", replaceRetries)
}
