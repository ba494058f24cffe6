package mileage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlindqvist/leasetrack/internal/models"
)

func yearLease() models.LeaseInfo {
	return models.LeaseInfo{
		StartDate:   "2025-01-01",
		EndDate:     "2026-01-01",
		AnnualLimit: 36500,
		TotalLimit:  36500,
	}
}

func TestParseLeaseTerm(t *testing.T) {
	term, err := ParseLeaseTerm(yearLease())
	require.NoError(t, err)
	assert.Equal(t, 365, term.TotalDays)

	_, err = ParseLeaseTerm(models.LeaseInfo{StartDate: "2025-01-01", EndDate: "2024-01-01", TotalLimit: 100})
	assert.Error(t, err)

	_, err = ParseLeaseTerm(models.LeaseInfo{StartDate: "2025-01-01", EndDate: "2026-01-01", TotalLimit: 0})
	assert.Error(t, err)

	_, err = ParseLeaseTerm(models.LeaseInfo{StartDate: "not-a-date", EndDate: "2026-01-01", TotalLimit: 100})
	assert.Error(t, err)
}

func TestCalculateStats_BudgetMath(t *testing.T) {
	readings := []models.MileageReading{
		{ID: "a", Date: "2025-01-11", Mileage: 1200},
	}
	ref := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)

	stats, err := CalculateStats(readings, yearLease(), &ref, ref)
	require.NoError(t, err)

	assert.Equal(t, 1200.0, stats.CurrentMileage)
	assert.Equal(t, 10, stats.DaysElapsed)
	assert.Equal(t, 355, stats.DaysRemaining)
	assert.Equal(t, 100.0, stats.DailyBudget)
	assert.Equal(t, 1000.0, stats.BudgetedMileage)
	assert.Equal(t, -200.0, stats.Variance)
	assert.False(t, stats.IsOnTrack)
	assert.Equal(t, 35300.0, stats.RemainingBudget)
	assert.InDelta(t, 35300.0/355, stats.RemainingDailyBudget, 1e-9)
	assert.Equal(t, 120.0, stats.CurrentRate)
	assert.Equal(t, 43800.0, stats.ProjectedTotal)
	// 200 km over budget at 100 km/day takes 2 zero-driving days to recover
	assert.Equal(t, 2, stats.DaysToOptimal)
}

func TestCalculateStats_OnTrack(t *testing.T) {
	readings := []models.MileageReading{
		{ID: "a", Date: "2025-01-11", Mileage: 900},
	}
	ref := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)

	stats, err := CalculateStats(readings, yearLease(), &ref, ref)
	require.NoError(t, err)

	assert.True(t, stats.IsOnTrack)
	assert.Equal(t, 100.0, stats.Variance)
	assert.Equal(t, 0, stats.DaysToOptimal)
}

func TestCalculateStats_Interpolation(t *testing.T) {
	readings := []models.MileageReading{
		{ID: "a", Date: "2025-01-01", Mileage: 0},
		{ID: "b", Date: "2025-01-11", Mileage: 100},
	}
	ref := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)

	stats, err := CalculateStats(readings, yearLease(), &ref, now)
	require.NoError(t, err)

	// Halfway between the readings by elapsed days
	assert.Equal(t, 50.0, stats.CurrentMileage)
}

func TestCalculateStats_ExactMatchWins(t *testing.T) {
	readings := []models.MileageReading{
		{ID: "a", Date: "2025-01-01", Mileage: 0},
		{ID: "b", Date: "2025-01-06", Mileage: 80},
		{ID: "c", Date: "2025-01-11", Mileage: 100},
	}
	ref := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	stats, err := CalculateStats(readings, yearLease(), &ref, ref)
	require.NoError(t, err)

	assert.Equal(t, 80.0, stats.CurrentMileage)
}

func TestCalculateStats_FlatBeyondLastReading(t *testing.T) {
	readings := []models.MileageReading{
		{ID: "a", Date: "2025-01-01", Mileage: 0},
		{ID: "b", Date: "2025-01-11", Mileage: 100},
	}
	ref := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	stats, err := CalculateStats(readings, yearLease(), &ref, ref)
	require.NoError(t, err)

	assert.Equal(t, 100.0, stats.CurrentMileage)
}

func TestCalculateStats_NoReadings(t *testing.T) {
	ref := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)

	stats, err := CalculateStats(nil, yearLease(), &ref, ref)
	require.NoError(t, err)

	assert.Equal(t, 0.0, stats.CurrentMileage)
	assert.Equal(t, 0.0, stats.ProjectedTotal)
	assert.True(t, stats.IsOnTrack)
}

func TestCalculateStats_BeforeLeaseStart(t *testing.T) {
	ref := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)

	stats, err := CalculateStats(nil, yearLease(), &ref, ref)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.DaysElapsed)
	assert.Equal(t, 365, stats.DaysRemaining)
	assert.Equal(t, 0.0, stats.CurrentRate)
}

func TestCalculateStats_AfterLeaseEnd(t *testing.T) {
	ref := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	stats, err := CalculateStats(nil, yearLease(), &ref, ref)
	require.NoError(t, err)

	assert.Equal(t, 365, stats.DaysElapsed)
	assert.Equal(t, 0, stats.DaysRemaining)
	assert.Equal(t, 0.0, stats.RemainingDailyBudget)
}

func TestMonthlyStats(t *testing.T) {
	lease := models.LeaseInfo{
		StartDate:  "2025-01-01",
		EndDate:    "2025-04-01",
		TotalLimit: 9000,
	}
	readings := []models.MileageReading{
		{ID: "a", Date: "2025-01-01", Mileage: 0},
		{ID: "b", Date: "2025-01-31", Mileage: 3000},
	}
	now := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)

	stats, err := CalculateStats(readings, lease, nil, now)
	require.NoError(t, err)
	require.Len(t, stats.MonthlyStats, 4)

	jan := stats.MonthlyStats[0]
	assert.Equal(t, "January", jan.Month)
	assert.Equal(t, 2025, jan.Year)
	assert.False(t, jan.IsProjected)
	assert.Equal(t, 3000.0, jan.Actual)

	feb := stats.MonthlyStats[1]
	assert.Equal(t, "February", feb.Month)
	assert.True(t, feb.IsProjected)
	assert.Positive(t, feb.Actual)

	apr := stats.MonthlyStats[3]
	assert.Equal(t, "April", apr.Month)
	assert.True(t, apr.IsProjected)
}
