package mileage

import (
	"fmt"
	"sort"
	"time"

	"github.com/jlindqvist/leasetrack/internal/models"
)

const (
	// DateLayout is the calendar-date form used everywhere (YYYY-MM-DD).
	DateLayout = "2006-01-02"
	// TimeLayout is the optional time-of-day form (HH:MM).
	TimeLayout = "15:04"
)

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// ReadingDateTime returns the point in time a reading refers to. A missing
// time counts as midnight, so readings without a time sort before any timed
// reading on the same date.
func ReadingDateTime(date, timeOfDay string) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	if timeOfDay == "" {
		return d, nil
	}
	tod, err := time.Parse(TimeLayout, timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", timeOfDay, err)
	}
	return d.Add(time.Duration(tod.Hour())*time.Hour + time.Duration(tod.Minute())*time.Minute), nil
}

// mustReadingTime is the comparator-internal variant; unparseable values sort
// to the zero time so a bad record cannot panic a sort.
func mustReadingTime(r models.MileageReading) time.Time {
	t, err := ReadingDateTime(r.Date, r.Time)
	if err != nil {
		return time.Time{}
	}
	return t
}

// CompareReadings orders readings by (date, time-or-midnight). Full timestamp
// ties are broken by CreatedAt and then ID so the order is deterministic
// everywhere it is used: validation, statistics and chart generation.
func CompareReadings(a, b models.MileageReading) int {
	ta, tb := mustReadingTime(a), mustReadingTime(b)
	if ta.Before(tb) {
		return -1
	}
	if ta.After(tb) {
		return 1
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		if a.CreatedAt.Before(b.CreatedAt) {
			return -1
		}
		return 1
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// Sorted returns a chronologically sorted copy of the readings.
func Sorted(readings []models.MileageReading) []models.MileageReading {
	out := make([]models.MileageReading, len(readings))
	copy(out, readings)
	sort.SliceStable(out, func(i, j int) bool {
		return CompareReadings(out[i], out[j]) < 0
	})
	return out
}

// IsFuture reports whether a reading's timestamp lies after now. Future
// readings are shown as preliminary.
func IsFuture(date, timeOfDay string, now time.Time) bool {
	t, err := ReadingDateTime(date, timeOfDay)
	if err != nil {
		return false
	}
	return t.After(now)
}

// DaysBetween returns the whole-day difference to - from, truncated toward
// zero the way calendar-day arithmetic expects.
func DaysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

// FractionalDays returns the signed fractional day count to - from. Callers
// using it as a divisor must guard against zero.
func FractionalDays(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}

// startOfMonth returns the first day of t's month at midnight.
func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// endOfMonth returns the last day of t's month at midnight.
func endOfMonth(t time.Time) time.Time {
	return startOfMonth(t).AddDate(0, 1, -1)
}
