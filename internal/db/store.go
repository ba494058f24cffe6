package db

import (
	"context"
	"errors"

	"github.com/jlindqvist/leasetrack/internal/models"
)

var (
	// ErrNotFound is returned when a document has not been created yet.
	ErrNotFound = errors.New("not found")
	// ErrVersionConflict is returned when a conditional replace lost a race
	// against a concurrent writer.
	ErrVersionConflict = errors.New("version conflict")
)

// LeaseStore persists the singleton lease record, replaced wholesale.
type LeaseStore interface {
	Get(ctx context.Context) (*models.LeaseInfo, error)
	Put(ctx context.Context, lease models.LeaseInfo) error
}

// ReadingList is the whole readings document plus the version stamp used for
// conditional replacement.
type ReadingList struct {
	Version  int64
	Readings []models.MileageReading
}

// ReadingStore persists the reading list as a single versioned document.
// Replace succeeds only when expectedVersion still matches the stored
// document (0 creates it), so concurrent read-modify-write cycles cannot
// silently drop each other's writes.
type ReadingStore interface {
	Get(ctx context.Context) (*ReadingList, error)
	Replace(ctx context.Context, readings []models.MileageReading, expectedVersion int64) error
}
