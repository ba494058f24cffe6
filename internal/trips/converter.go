package trips

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/jlindqvist/leasetrack/internal/mileage"
	"github.com/jlindqvist/leasetrack/internal/models"
)

const (
	minDistanceKm = 1
	maxDistanceKm = 2000
	maxNoteLength = 200

	// Trip timestamps within this window of an existing reading are rejected
	// to keep odometer entries unambiguous.
	conflictTolerance = time.Second
)

// Accepted timestamp layouts for trip start/end times.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Convert turns a trip submission into the readings to append: a START
// reading at the resolved start time with the previous odometer value, and an
// END reading at start + distance. When a reading already exists on the start
// date only the END reading is produced. The caller appends the result to the
// full list, re-sorts, and persists the list as a whole.
func Convert(input models.TripInput, existing []models.MileageReading, now time.Time) ([]models.MileageReading, error) {
	if math.IsNaN(input.Distance) {
		return nil, &Error{Kind: KindInvalidDistance, Field: "distance", Message: "distance is required"}
	}
	if input.Distance < minDistanceKm || input.Distance > maxDistanceKm {
		return nil, &Error{
			Kind:    KindInvalidDistance,
			Field:   "distance",
			Message: fmt.Sprintf("trip distance must be between %d and %d km", minDistanceKm, maxDistanceKm),
		}
	}

	start, end, err := resolveTimestamps(input.StartTime, input.EndTime, now)
	if err != nil {
		return nil, err
	}

	if len([]rune(input.Note)) > maxNoteLength {
		return nil, &Error{
			Kind:    KindNoteTooLong,
			Field:   "note",
			Message: fmt.Sprintf("note exceeds maximum length (%d characters)", maxNoteLength),
		}
	}

	for _, r := range existing {
		ts, err := mileage.ReadingDateTime(r.Date, r.Time)
		if err != nil {
			continue
		}
		if absDuration(ts.Sub(start)) < conflictTolerance || absDuration(ts.Sub(end)) < conflictTolerance {
			return nil, &Error{
				Kind:    KindTimeConflict,
				Field:   "startTime",
				Message: "trip times conflict with existing readings",
				Details: fmt.Sprintf("conflict with reading at %s %s", r.Date, r.Time),
			}
		}
	}

	startOdometer := 0.0
	if len(existing) > 0 {
		sorted := mileage.Sorted(existing)
		startOdometer = sorted[len(sorted)-1].Mileage
	}
	endOdometer := startOdometer + input.Distance

	startUTC := start.UTC()
	endUTC := end.UTC()
	startDate := startUTC.Format(mileage.DateLayout)

	created := make([]models.MileageReading, 0, 2)

	// Skip the START reading when the start date already has a reading, so a
	// day of repeated trips does not pile up redundant entries.
	if !hasReadingOnDate(existing, startDate) {
		created = append(created, models.MileageReading{
			ID:        uuid.NewString(),
			Date:      startDate,
			Time:      startUTC.Format(mileage.TimeLayout),
			Mileage:   startOdometer,
			Note:      "",
			CreatedAt: now,
		})
	}

	created = append(created, models.MileageReading{
		ID:        uuid.NewString(),
		Date:      endUTC.Format(mileage.DateLayout),
		Time:      endUTC.Format(mileage.TimeLayout),
		Mileage:   endOdometer,
		Note:      models.TripNotePrefix + input.Note,
		CreatedAt: now,
	})

	return created, nil
}

// resolveTimestamps fills in whichever trip boundary is missing: one minute
// before now, after the given start, or before the given end.
func resolveTimestamps(startStr, endStr string, now time.Time) (start, end time.Time, err error) {
	var haveStart, haveEnd bool

	if startStr != "" {
		start, err = parseTimestamp(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, &Error{
				Kind:    KindInvalidTimestamp,
				Field:   "startTime",
				Message: "invalid start time format",
				Details: startStr,
			}
		}
		haveStart = true
	}
	if endStr != "" {
		end, err = parseTimestamp(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, &Error{
				Kind:    KindInvalidTimestamp,
				Field:   "endTime",
				Message: "invalid end time format",
				Details: endStr,
			}
		}
		haveEnd = true
	}

	switch {
	case !haveStart && !haveEnd:
		end = now
		start = now.Add(-time.Minute)
	case haveStart && !haveEnd:
		end = start.Add(time.Minute)
	case !haveStart && haveEnd:
		start = end.Add(-time.Minute)
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, &Error{
			Kind:    KindInvalidTimeOrder,
			Field:   "endTime",
			Message: "end time must be after start time",
		}
	}
	return start, end, nil
}

func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func hasReadingOnDate(readings []models.MileageReading, date string) bool {
	for _, r := range readings {
		if r.Date == date {
			return true
		}
	}
	return false
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
