package mileage

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlindqvist/leasetrack/internal/models"
)

func TestGenerateChartData_Series(t *testing.T) {
	readings := []models.MileageReading{
		{ID: "a", Date: "2025-01-01", Mileage: 0},
		{ID: "b", Date: "2025-01-11", Mileage: 2000},
	}
	now := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)

	data, err := GenerateChartData(readings, yearLease(), "", false, models.ViewTotal, now)
	require.NoError(t, err)

	require.NotEmpty(t, data.Dates)
	assert.True(t, sort.StringsAreSorted(data.Dates))
	assert.Equal(t, len(data.Dates), len(data.Labels))
	assert.Equal(t, len(data.Dates), len(data.ActualData))
	assert.Equal(t, len(data.Dates), len(data.PreliminaryData))
	assert.Equal(t, len(data.Dates), len(data.OptimalData))
	assert.Equal(t, len(data.Dates), len(data.TrendData))
	assert.Equal(t, len(data.Dates), len(data.ProjectedData))

	assert.Equal(t, "2025-01-01", data.Dates[0])
	assert.Equal(t, "2026-01-01", data.Dates[len(data.Dates)-1])

	// Optimal runs linearly from the full allowance down to zero
	assert.Equal(t, 36500.0, data.OptimalData[0])
	assert.Equal(t, 0.0, data.OptimalData[len(data.OptimalData)-1])
	for i := 1; i < len(data.OptimalData); i++ {
		assert.LessOrEqual(t, data.OptimalData[i], data.OptimalData[i-1])
	}

	// Reading dates carry actual remaining values, not preliminary
	require.NotNil(t, data.ActualData[0])
	assert.Equal(t, 36500.0, *data.ActualData[0])
	assert.Nil(t, data.PreliminaryData[0])

	idx := indexOf(t, data.Dates, "2025-01-11")
	require.NotNil(t, data.ActualData[idx])
	assert.Equal(t, 34500.0, *data.ActualData[idx])
	assert.Equal(t, idx, data.CurrentDateIndex)

	// The recommended path lands exactly on zero at lease end
	last := data.ProjectedData[len(data.ProjectedData)-1]
	require.NotNil(t, last)
	assert.Equal(t, 0.0, *last)
	// and is absent before the reference date
	assert.Nil(t, data.ProjectedData[0])
}

func TestGenerateChartData_Crossings(t *testing.T) {
	// 200 km/day against a 100 km/day budget: the trend exhausts the
	// allowance halfway through the lease.
	readings := []models.MileageReading{
		{ID: "a", Date: "2025-01-01", Mileage: 0},
		{ID: "b", Date: "2025-01-11", Mileage: 2000},
	}
	now := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)

	data, err := GenerateChartData(readings, yearLease(), "", false, models.ViewTotal, now)
	require.NoError(t, err)

	// round(36500/200) = 183 days after start
	assert.Equal(t, "2025-07-03", data.ZeroCrossingDate)
	require.NotNil(t, data.ZeroCrossingIndex)
	assert.Equal(t, "2025-07-03", data.Dates[*data.ZeroCrossingIndex])

	// 15000/200 = 75 days, 30000/200 = 150 days
	assert.Equal(t, "2025-03-17", data.Year1CrossingDate)
	assert.Equal(t, "2025-05-31", data.Year2CrossingDate)
}

func TestGenerateChartData_OnBudgetOmitsCrossing(t *testing.T) {
	// Exactly on budget: the forecast reaches zero at lease end, so no
	// crossing marker is produced.
	readings := []models.MileageReading{
		{ID: "a", Date: "2025-01-01", Mileage: 0},
		{ID: "b", Date: "2025-01-11", Mileage: 1000},
	}
	now := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)

	data, err := GenerateChartData(readings, yearLease(), "", false, models.ViewTotal, now)
	require.NoError(t, err)

	assert.Empty(t, data.ZeroCrossingDate)
	assert.Nil(t, data.ZeroCrossingIndex)
}

func TestGenerateChartData_NoReadings(t *testing.T) {
	now := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)

	data, err := GenerateChartData(nil, yearLease(), "", false, models.ViewTotal, now)
	require.NoError(t, err)

	assert.Empty(t, data.ZeroCrossingDate)
	for _, v := range data.TrendData {
		assert.Equal(t, 36500.0, v)
	}
	for _, v := range data.ProjectedData {
		assert.Nil(t, v)
	}
}

func TestGenerateChartData_SelectedDate(t *testing.T) {
	readings := []models.MileageReading{
		{ID: "a", Date: "2025-01-01", Mileage: 0},
		{ID: "b", Date: "2025-01-11", Mileage: 2000},
	}
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	data, err := GenerateChartData(readings, yearLease(), "2025-01-11", false, models.ViewTotal, now)
	require.NoError(t, err)

	require.NotNil(t, data.SelectedDateIndex)
	assert.Equal(t, "2025-01-11", data.Dates[*data.SelectedDateIndex])

	_, err = GenerateChartData(readings, yearLease(), "nonsense", false, models.ViewTotal, now)
	assert.Error(t, err)
}

func TestGenerateChartData_ViewModes(t *testing.T) {
	lease := models.LeaseInfo{
		StartDate:   "2025-07-09",
		EndDate:     "2028-07-09",
		AnnualLimit: 15000,
		TotalLimit:  45000,
	}
	readings := []models.MileageReading{
		{ID: "a", Date: "2025-07-09", Mileage: 0},
	}
	now := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	data, err := GenerateChartData(readings, lease, "", false, models.ViewYear2, now)
	require.NoError(t, err)

	assert.Equal(t, models.ViewYear2, data.ViewMode)
	assert.Equal(t, 1, data.YearOffset)
	assert.Equal(t, "2026-07-09", data.Dates[0])
	assert.Equal(t, "2027-07-09", data.Dates[len(data.Dates)-1])

	data, err = GenerateChartData(readings, lease, "", false, models.ViewYear3, now)
	require.NoError(t, err)
	assert.Equal(t, 2, data.YearOffset)
	assert.Equal(t, "2027-07-09", data.Dates[0])
	// 2028 is a leap year, so 365 days fall one short of the lease end
	assert.Equal(t, "2028-07-08", data.Dates[len(data.Dates)-1])
}

func indexOf(t *testing.T, dates []string, want string) int {
	t.Helper()
	for i, d := range dates {
		if d == want {
			return i
		}
	}
	t.Fatalf("date %s not found in %v", want, dates)
	return -1
}
