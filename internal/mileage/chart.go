package mileage

import (
	"math"
	"sort"
	"time"

	"github.com/jlindqvist/leasetrack/internal/models"
)

// Cumulative-usage thresholds for the yearly crossing markers on multi-year
// leases.
const (
	year1ThresholdKm = 15000
	year2ThresholdKm = 30000
)

// GenerateChartData builds the aligned time series used to visualize the
// budget trajectory: actual and preliminary remaining kilometers, the optimal
// linear budget, a trend extrapolation of the average rate as of the selected
// date (or now), and a recommended path that exactly exhausts the allowance
// by lease end. Forecast crossing dates are injected as extra axis points.
func GenerateChartData(readings []models.MileageReading, lease models.LeaseInfo, selectedDate string, includePreliminary bool, viewMode models.ViewMode, now time.Time) (models.ChartData, error) {
	term, err := ParseLeaseTerm(lease)
	if err != nil {
		return models.ChartData{}, err
	}

	var selected *time.Time
	if selectedDate != "" {
		d, err := ParseDate(selectedDate)
		if err != nil {
			return models.ChartData{}, err
		}
		selected = &d
	}

	viewStart, viewEnd := term.Start, term.End
	yearOffset := 0
	if viewMode != models.ViewTotal && models.IsValidViewMode(viewMode) {
		switch viewMode {
		case models.ViewYear2:
			yearOffset = 1
		case models.ViewYear3:
			yearOffset = 2
		}
		viewStart = term.Start.AddDate(0, 0, yearOffset*365)
		viewEnd = viewStart.AddDate(0, 0, 365)
		if viewEnd.After(term.End) {
			viewEnd = term.End
		}
	}

	sorted := Sorted(readings)
	totalLimit := float64(lease.TotalLimit)
	dailyBudget := totalLimit / float64(term.TotalDays)

	referenceDate := now
	if selected != nil {
		referenceDate = *selected
	}

	// Average rate as of the reference date, shared by the trend line and
	// the crossing forecasts.
	averageRate, haveRate := referenceRate(sorted, term.Start, referenceDate, now, includePreliminary)

	var zeroCrossing, year1Crossing, year2Crossing *time.Time
	if averageRate > 0 {
		zeroCrossing = crossingDate(term, averageRate, totalLimit)
		year1Crossing = crossingDate(term, averageRate, year1ThresholdKm)
		year2Crossing = crossingDate(term, averageRate, year2ThresholdKm)
	}

	// Axis points: a date-deduplicated set of reading dates, view boundaries,
	// today and forecast crossings, restricted to the view window.
	seen := make(map[string]bool)
	var points []time.Time
	add := func(t time.Time) {
		key := t.Format(DateLayout)
		if !seen[key] {
			seen[key] = true
			points = append(points, t)
		}
	}
	for _, r := range sorted {
		d, err := ParseDate(r.Date)
		if err != nil {
			continue
		}
		if !d.Before(viewStart) && !d.After(viewEnd) {
			add(d)
		}
	}
	add(viewStart)
	add(viewEnd)
	if now.After(viewStart) && now.Before(viewEnd) {
		add(now)
	}
	for _, c := range []*time.Time{zeroCrossing, year1Crossing, year2Crossing} {
		if c != nil && !c.Before(viewStart) && !c.After(viewEnd) {
			add(*c)
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Before(points[j]) })

	// The recommended-path anchor is loop invariant: mileage at the selected
	// date (interpolated if needed), or the latest reading up to now.
	referenceMileage := projectionAnchor(sorted, referenceDate, now, selected != nil)

	data := models.ChartData{
		CurrentDateIndex: -1,
		ViewMode:         viewMode,
		YearOffset:       yearOffset,
		TotalLimit:       lease.TotalLimit,
	}

	for i, point := range points {
		dateStr := point.Format(DateLayout)
		data.Labels = append(data.Labels, point.Format("Jan 02, 2006"))
		data.Dates = append(data.Dates, dateStr)

		if math.Abs(FractionalDays(now, point)) < 1 {
			data.CurrentDateIndex = i
		}
		if selectedDate != "" && dateStr == selectedDate {
			idx := i
			data.SelectedDateIndex = &idx
		}

		actual, preliminary := remainingAt(sorted, point, dateStr, now, totalLimit)
		data.ActualData = append(data.ActualData, actual)
		data.PreliminaryData = append(data.PreliminaryData, preliminary)

		daysFromStart := DaysBetween(term.Start, point)
		data.OptimalData = append(data.OptimalData, totalLimit-math.Round(dailyBudget*float64(daysFromStart)))

		if len(sorted) > 0 && haveRate {
			data.TrendData = append(data.TrendData, math.Max(0, totalLimit-math.Round(averageRate*float64(daysFromStart))))
		} else {
			data.TrendData = append(data.TrendData, totalLimit)
		}

		if len(sorted) > 0 && !point.Before(referenceDate) {
			daysFromRef := DaysBetween(referenceDate, point)
			remainingDays := DaysBetween(referenceDate, term.End)
			futureRate := 0.0
			if remainingDays > 0 {
				futureRate = (totalLimit - referenceMileage) / float64(remainingDays)
			}
			projected := math.Round(totalLimit - (referenceMileage + futureRate*float64(daysFromRef)))
			data.ProjectedData = append(data.ProjectedData, &projected)
		} else {
			data.ProjectedData = append(data.ProjectedData, nil)
		}
	}

	data.ZeroCrossingDate, data.ZeroCrossingIndex = locateCrossing(zeroCrossing, data.Dates)
	data.Year1CrossingDate, data.Year1CrossingIndex = locateCrossing(year1Crossing, data.Dates)
	data.Year2CrossingDate, data.Year2CrossingIndex = locateCrossing(year2Crossing, data.Dates)

	return data, nil
}

// referenceRate computes the average daily rate as of the reference date:
// exact or interpolated mileage divided by the elapsed days. When the
// reference falls past the last reading the elapsed days stop at that
// reading's date. Preliminary (future-dated) readings only count when
// includePreliminary is set.
func referenceRate(sorted []models.MileageReading, start, referenceDate, now time.Time, includePreliminary bool) (float64, bool) {
	if len(sorted) == 0 {
		return 0, false
	}

	usable := 0
	for _, r := range sorted {
		d, err := ParseDate(r.Date)
		if err != nil {
			continue
		}
		if d.After(referenceDate) {
			continue
		}
		if !includePreliminary && d.After(now) {
			continue
		}
		usable++
	}
	if usable == 0 {
		return 0, false
	}

	var mileage float64
	var elapsed int

	refStr := referenceDate.Format(DateLayout)
	var exact *models.MileageReading
	for i := range sorted {
		if sorted[i].Date == refStr {
			exact = &sorted[i]
			break
		}
	}

	if exact != nil {
		mileage = exact.Mileage
		elapsed = DaysBetween(start, referenceDate)
	} else {
		var before, after *models.MileageReading
		for i := range sorted {
			d, err := ParseDate(sorted[i].Date)
			if err != nil {
				continue
			}
			if d.Before(referenceDate) {
				before = &sorted[i]
			} else if d.After(referenceDate) && after == nil {
				after = &sorted[i]
			}
		}
		switch {
		case before != nil && after != nil:
			prevDate, _ := ParseDate(before.Date)
			nextDate, _ := ParseDate(after.Date)
			span := DaysBetween(prevDate, nextDate)
			ratio := 0.0
			if span > 0 {
				ratio = float64(DaysBetween(prevDate, referenceDate)) / float64(span)
			}
			mileage = before.Mileage + (after.Mileage-before.Mileage)*ratio
			elapsed = DaysBetween(start, referenceDate)
		case before != nil:
			lastDate, _ := ParseDate(before.Date)
			mileage = before.Mileage
			elapsed = DaysBetween(start, lastDate)
		}
	}

	if elapsed <= 0 {
		return 0, true
	}
	return mileage / float64(elapsed), true
}

// crossingDate forecasts the date the trend line reaches the given cumulative
// usage, or nil when that date falls on or after lease end.
func crossingDate(term LeaseTerm, rate, thresholdKm float64) *time.Time {
	days := int(math.Round(thresholdKm / rate))
	d := term.Start.AddDate(0, 0, days)
	if !d.Before(term.End) {
		return nil
	}
	return &d
}

// remainingAt computes the actual and preliminary remaining-km values for one
// axis point. Exactly one of them is set for points covered by readings;
// future points without a reading get neither.
func remainingAt(sorted []models.MileageReading, point time.Time, dateStr string, now time.Time, totalLimit float64) (actual, preliminary *float64) {
	for i := range sorted {
		if sorted[i].Date == dateStr {
			v := totalLimit - sorted[i].Mileage
			if point.After(now) {
				return nil, &v
			}
			return &v, nil
		}
	}

	if point.After(now) {
		return nil, nil
	}

	var before, after *models.MileageReading
	for i := range sorted {
		d, err := ParseDate(sorted[i].Date)
		if err != nil {
			continue
		}
		if d.Before(point) {
			before = &sorted[i]
		} else if d.After(point) && after == nil {
			after = &sorted[i]
		}
	}

	var v float64
	switch {
	case before != nil && after != nil:
		prevDate, _ := ParseDate(before.Date)
		nextDate, _ := ParseDate(after.Date)
		span := DaysBetween(prevDate, nextDate)
		ratio := 0.0
		if span > 0 {
			ratio = float64(DaysBetween(prevDate, point)) / float64(span)
		}
		interpolated := before.Mileage + (after.Mileage-before.Mileage)*ratio
		v = totalLimit - math.Round(interpolated)
	case before != nil:
		v = totalLimit - before.Mileage
	default:
		v = totalLimit
	}
	return &v, nil
}

// projectionAnchor finds the mileage the recommended path starts from: the
// value at the selected date (exact, interpolated, or last before), or the
// latest reading not after now when no date is selected.
func projectionAnchor(sorted []models.MileageReading, referenceDate, now time.Time, hasSelected bool) float64 {
	if len(sorted) == 0 {
		return 0
	}

	if !hasSelected {
		var last *models.MileageReading
		for i := range sorted {
			d, err := ParseDate(sorted[i].Date)
			if err != nil {
				continue
			}
			if !d.After(now) {
				last = &sorted[i]
			}
		}
		if last == nil {
			return 0
		}
		return last.Mileage
	}

	refStr := referenceDate.Format(DateLayout)
	for i := range sorted {
		if sorted[i].Date == refStr {
			return sorted[i].Mileage
		}
	}

	var before, after *models.MileageReading
	for i := range sorted {
		d, err := ParseDate(sorted[i].Date)
		if err != nil {
			continue
		}
		if !d.After(referenceDate) {
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
		ratio := float64(DaysBetween(prevDate, referenceDate)) / float64(span)
		return before.Mileage + (after.Mileage-before.Mileage)*ratio
	case before != nil:
		return before.Mileage
	default:
		return 0
	}
}

func locateCrossing(crossing *time.Time, dates []string) (string, *int) {
	if crossing == nil {
		return "", nil
	}
	dateStr := crossing.Format(DateLayout)
	for i, d := range dates {
		if d == dateStr {
			idx := i
			return dateStr, &idx
		}
	}
	return dateStr, nil
}
