package mileage

import (
	"fmt"

	"github.com/jlindqvist/leasetrack/internal/models"
)

// OutOfOrderError reports a candidate reading whose odometer value breaks
// chronological monotonicity against its neighbours.
type OutOfOrderError struct {
	Field   string
	Message string
}

func (e *OutOfOrderError) Error() string {
	return e.Message
}

// ValidateReading checks the single invariant every write must preserve:
// ordered by CompareReadings, mileage is non-decreasing. On edit the record
// being edited must be excluded from others. Pure check, no side effects.
func ValidateReading(candidate models.MileageReading, others []models.MileageReading) error {
	var (
		maxBefore     float64
		maxBeforeDate string
		hasBefore     bool
		minAfter      float64
		minAfterDate  string
		hasAfter      bool
	)

	for _, r := range others {
		switch {
		case CompareReadings(r, candidate) < 0:
			if !hasBefore || r.Mileage > maxBefore {
				maxBefore = r.Mileage
				maxBeforeDate = r.Date
			}
			hasBefore = true
		case CompareReadings(r, candidate) > 0:
			if !hasAfter || r.Mileage < minAfter {
				minAfter = r.Mileage
				minAfterDate = r.Date
			}
			hasAfter = true
		}
	}

	if hasBefore && candidate.Mileage < maxBefore {
		return &OutOfOrderError{
			Field:   "mileage",
			Message: fmt.Sprintf("mileage must be at least %g (reading on %s)", maxBefore, maxBeforeDate),
		}
	}
	if hasAfter && candidate.Mileage > minAfter {
		return &OutOfOrderError{
			Field:   "mileage",
			Message: fmt.Sprintf("mileage must be at most %g (reading on %s)", minAfter, minAfterDate),
		}
	}
	return nil
}
