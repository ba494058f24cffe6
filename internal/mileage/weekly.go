package mileage

import (
	"math"
	"time"

	"github.com/jlindqvist/leasetrack/internal/models"
)

// GetMileageAtDate resolves the odometer value at an arbitrary date for the
// weekly view. Unlike the statistics lookup it estimates a value before the
// first reading from the rate between lease start and that reading, so a week
// straddling the first reading still gets a sensible delta.
func GetMileageAtDate(sorted []models.MileageReading, date, leaseStart time.Time) float64 {
	dateStr := date.Format(DateLayout)
	for _, r := range sorted {
		if r.Date == dateStr {
			return r.Mileage
		}
	}

	var before, after *models.MileageReading
	for i := range sorted {
		d, err := ParseDate(sorted[i].Date)
		if err != nil {
			continue
		}
		if !d.After(date) {
			before = &sorted[i]
		} else if after == nil {
			after = &sorted[i]
		}
	}

	switch {
	case before != nil && after != nil:
		prevDate, _ := ParseDate(before.Date)
		nextDate, _ := ParseDate(after.Date)
		span := DaysBetween(prevDate, nextDate)
		if span <= 0 {
			return before.Mileage
		}
		ratio := float64(DaysBetween(prevDate, date)) / float64(span)
		return before.Mileage + (after.Mileage-before.Mileage)*ratio
	case before != nil:
		return before.Mileage
	case after != nil:
		if date.Before(leaseStart) {
			return 0
		}
		firstDate, _ := ParseDate(after.Date)
		daysFromStart := DaysBetween(leaseStart, firstDate)
		if daysFromStart <= 0 {
			return 0
		}
		rate := after.Mileage / float64(daysFromStart)
		days := DaysBetween(leaseStart, date)
		if days < 0 {
			days = 0
		}
		return rate * float64(days)
	default:
		return 0
	}
}

// CalculateWeeklyStats computes one Monday-to-Sunday week against its budget
// share. The budget uses the recommended remaining daily rate when stats are
// supplied, otherwise the flat optimal rate. For the current week the usage
// window ends at now and a full-week projection is included.
func CalculateWeeklyStats(readings []models.MileageReading, lease models.LeaseInfo, weekDate time.Time, stats *models.CalculatedStats, now time.Time) (models.WeeklyStats, error) {
	term, err := ParseLeaseTerm(lease)
	if err != nil {
		return models.WeeklyStats{}, err
	}

	weekStart := startOfWeek(weekDate)
	weekEnd := weekStart.AddDate(0, 0, 6)
	isCurrentWeek := weekStart.Equal(startOfWeek(now))

	optimalDailyBudget := float64(lease.TotalLimit) / float64(term.TotalDays)
	dailyBudget := optimalDailyBudget
	if stats != nil && stats.RemainingDailyBudget != 0 {
		dailyBudget = stats.RemainingDailyBudget
	}
	weeklyBudget := dailyBudget * 7

	sorted := Sorted(readings)

	weekStartMileage := GetMileageAtDate(sorted, weekStart, term.Start)
	endDate := weekEnd
	if isCurrentWeek {
		endDate = now
	}
	weekEndMileage := GetMileageAtDate(sorted, endDate, term.Start)

	usedThisWeek := math.Max(0, weekEndMileage-weekStartMileage)
	remainingThisWeek := math.Max(0, weeklyBudget-usedThisWeek)

	daysIntoWeek := 7
	if isCurrentWeek {
		daysIntoWeek = DaysBetween(weekStart, now) + 1
		if daysIntoWeek > 7 {
			daysIntoWeek = 7
		}
	}

	projected := usedThisWeek
	if isCurrentWeek && daysIntoWeek > 0 {
		projected = usedThisWeek / float64(daysIntoWeek) * 7
	}

	return models.WeeklyStats{
		WeekStart:            weekStart,
		WeekEnd:              weekEnd,
		WeeklyBudget:         weeklyBudget,
		UsedThisWeek:         usedThisWeek,
		RemainingThisWeek:    remainingThisWeek,
		DailyBudget:          dailyBudget,
		IsCurrentWeek:        isCurrentWeek,
		DaysIntoWeek:         daysIntoWeek,
		ProjectedWeeklyUsage: projected,
		IsOnTrack:            projected <= weeklyBudget,
		DailyUsage:           dailyUsage(sorted, term.Start, weekStart, now),
	}, nil
}

// dailyUsage builds the per-day bars of a week: each day's delta between its
// midnight boundaries, with today's delta cut off at now.
func dailyUsage(sorted []models.MileageReading, leaseStart, weekStart, now time.Time) []models.DailyUsage {
	today := midnight(now)
	usage := make([]models.DailyUsage, 0, 7)
	for i := 0; i < 7; i++ {
		day := weekStart.AddDate(0, 0, i)
		isToday := day.Equal(today)
		isFuture := day.After(today)

		var used float64
		if !isFuture {
			end := day.AddDate(0, 0, 1)
			if isToday {
				end = now
			}
			used = math.Max(0, GetMileageAtDate(sorted, end, leaseStart)-GetMileageAtDate(sorted, day, leaseStart))
		}

		usage = append(usage, models.DailyUsage{
			Date:     day,
			Usage:    used,
			DayName:  day.Format("Mon"),
			IsToday:  isToday,
			IsFuture: isFuture,
		})
	}
	return usage
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday of t's week at midnight.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return midnight(t).AddDate(0, 0, -offset)
}
