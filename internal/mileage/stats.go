package mileage

import (
	"fmt"
	"math"
	"time"

	"github.com/jlindqvist/leasetrack/internal/models"
)

// LeaseTerm is the parsed, validated form of the lease date range.
type LeaseTerm struct {
	Start     time.Time
	End       time.Time
	TotalDays int
}

// ParseLeaseTerm validates the lease date range and total limit.
func ParseLeaseTerm(lease models.LeaseInfo) (LeaseTerm, error) {
	start, err := ParseDate(lease.StartDate)
	if err != nil {
		return LeaseTerm{}, err
	}
	end, err := ParseDate(lease.EndDate)
	if err != nil {
		return LeaseTerm{}, err
	}
	totalDays := DaysBetween(start, end)
	if totalDays <= 0 {
		return LeaseTerm{}, fmt.Errorf("lease end date %s is not after start date %s", lease.EndDate, lease.StartDate)
	}
	if lease.TotalLimit <= 0 {
		return LeaseTerm{}, fmt.Errorf("lease total limit must be positive, got %d", lease.TotalLimit)
	}
	return LeaseTerm{Start: start, End: end, TotalDays: totalDays}, nil
}

// CalculateStats computes the budget picture at refDate (default: now).
// It is a pure function of its inputs; the clock is always passed in.
func CalculateStats(readings []models.MileageReading, lease models.LeaseInfo, refDate *time.Time, now time.Time) (models.CalculatedStats, error) {
	term, err := ParseLeaseTerm(lease)
	if err != nil {
		return models.CalculatedStats{}, err
	}

	ref := now
	if refDate != nil {
		ref = *refDate
	}

	sorted := Sorted(readings)
	currentMileage := mileageAtReference(sorted, ref)

	totalDays := term.TotalDays
	daysElapsed := DaysBetween(term.Start, ref)
	if daysElapsed > totalDays {
		daysElapsed = totalDays
	}
	if daysElapsed < 0 {
		daysElapsed = 0
	}
	daysRemaining := totalDays - daysElapsed

	dailyBudget := float64(lease.TotalLimit) / float64(totalDays)
	budgetedMileage := math.Round(dailyBudget * float64(daysElapsed))
	remainingBudget := float64(lease.TotalLimit) - currentMileage

	// Rate required from here to land exactly on the limit at lease end.
	remainingDailyBudget := 0.0
	if daysRemaining > 0 {
		remainingDailyBudget = remainingBudget / float64(daysRemaining)
	}

	currentRate := 0.0
	if daysElapsed > 0 {
		currentRate = currentMileage / float64(daysElapsed)
	}
	projectedTotal := math.Round(currentRate * float64(totalDays))

	variance := budgetedMileage - currentMileage
	isOnTrack := currentMileage <= budgetedMileage
	percentageUsed := currentMileage / float64(lease.TotalLimit) * 100
	optimalPercentage := budgetedMileage / float64(lease.TotalLimit) * 100

	// Whole days of zero driving until the linearly growing optimal line
	// catches up with the current odometer value.
	daysToOptimal := 0
	if variance < 0 {
		daysToOptimal = int(math.Ceil(math.Abs(variance) / dailyBudget))
	}

	return models.CalculatedStats{
		CurrentMileage:       currentMileage,
		BudgetedMileage:      budgetedMileage,
		RemainingBudget:      remainingBudget,
		CurrentRate:          currentRate,
		ProjectedTotal:       projectedTotal,
		ProjectedTotalTrend:  projectedTotal,
		IsOnTrack:            isOnTrack,
		Variance:             variance,
		PercentageUsed:       percentageUsed,
		OptimalPercentage:    optimalPercentage,
		DaysElapsed:          daysElapsed,
		DaysRemaining:        daysRemaining,
		TotalDays:            totalDays,
		DailyBudget:          dailyBudget,
		RemainingDailyBudget: remainingDailyBudget,
		DaysToOptimal:        daysToOptimal,
		MonthlyStats:         monthlyStats(sorted, lease, term, now),
	}, nil
}

// mileageAtReference resolves the odometer value at ref from sorted readings:
// an exact date match wins, otherwise linear interpolation by elapsed-day
// ratio between the nearest readings, otherwise flat extrapolation from the
// latest earlier reading. With only future readings the lease is assumed to
// start at odometer zero.
func mileageAtReference(sorted []models.MileageReading, ref time.Time) float64 {
	if len(sorted) == 0 {
		return 0
	}
	refStr := ref.Format(DateLayout)

	for _, r := range sorted {
		if r.Date == refStr {
			return r.Mileage
		}
	}

	var past, future []models.MileageReading
	for _, r := range sorted {
		if r.Date <= refStr {
			past = append(past, r)
		} else {
			future = append(future, r)
		}
	}

	switch {
	case len(past) > 0 && len(future) > 0:
		prev, next := past[len(past)-1], future[0]
		prevDate, err1 := ParseDate(prev.Date)
		nextDate, err2 := ParseDate(next.Date)
		if err1 != nil || err2 != nil {
			return prev.Mileage
		}
		span := DaysBetween(prevDate, nextDate)
		if span <= 0 {
			return prev.Mileage
		}
		ratio := float64(DaysBetween(prevDate, ref)) / float64(span)
		return math.Round(prev.Mileage + (next.Mileage-prev.Mileage)*ratio)
	case len(past) > 0:
		return past[len(past)-1].Mileage
	default:
		return 0
	}
}

// monthlyStats walks every calendar month overlapping the lease and computes
// its budget share and mileage delta. Months that end after today carry a
// projection from the current average rate instead of readings.
func monthlyStats(sorted []models.MileageReading, lease models.LeaseInfo, term LeaseTerm, now time.Time) []models.MonthlyStats {
	var stats []models.MonthlyStats
	dailyBudget := float64(lease.TotalLimit) / float64(term.TotalDays)

	current := startOfMonth(term.Start)
	last := endOfMonth(term.End)

	for current.Before(last) {
		monthStart := startOfMonth(current)
		monthEnd := endOfMonth(current)

		effectiveStart := monthStart
		if term.Start.After(monthStart) {
			effectiveStart = term.Start
		}
		effectiveEnd := monthEnd
		if term.End.Before(monthEnd) {
			effectiveEnd = term.End
		}
		if effectiveStart.After(effectiveEnd) {
			current = current.AddDate(0, 1, 0)
			continue
		}

		daysInMonth := DaysBetween(effectiveStart, effectiveEnd) + 1
		monthBudget := math.Round(dailyBudget * float64(daysInMonth))

		startMileage, hasStart := mileageAtDate(sorted, effectiveStart)
		endMileage, hasEnd := mileageAtDate(sorted, effectiveEnd)

		isProjected := effectiveEnd.After(now)

		actual := 0.0
		if !isProjected && hasStart && hasEnd {
			actual = endMileage - startMileage
		} else if isProjected && len(sorted) > 0 {
			elapsed := DaysBetween(term.Start, now)
			if elapsed > 0 {
				rate := sorted[len(sorted)-1].Mileage / float64(elapsed)
				actual = math.Round(rate * float64(daysInMonth))
			}
		}

		stats = append(stats, models.MonthlyStats{
			Month:        current.Format("January"),
			Year:         current.Year(),
			StartMileage: startMileage,
			EndMileage:   endMileage,
			Budget:       monthBudget,
			Actual:       actual,
			Variance:     monthBudget - actual,
			IsProjected:  isProjected,
		})

		current = current.AddDate(0, 1, 0)
	}

	return stats
}

// mileageAtDate returns the reading value on date, or the latest earlier
// reading's value. The second return is false when no reading exists at or
// before the date.
func mileageAtDate(sorted []models.MileageReading, date time.Time) (float64, bool) {
	dateStr := date.Format(DateLayout)
	for _, r := range sorted {
		if r.Date == dateStr {
			return r.Mileage, true
		}
	}

	var before *models.MileageReading
	for i := range sorted {
		d, err := ParseDate(sorted[i].Date)
		if err != nil {
			continue
		}
		if d.Before(date) {
			before = &sorted[i]
		}
	}
	if before == nil {
		return 0, false
	}
	return before.Mileage, true
}
