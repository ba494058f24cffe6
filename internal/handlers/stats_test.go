package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jlindqvist/leasetrack/internal/db"
	"github.com/jlindqvist/leasetrack/internal/models"
)

func statsFixtures() (*MockLeaseStore, *MockReadingStore) {
	leaseStore := new(MockLeaseStore)
	leaseStore.On("Get", mock.Anything).Return(&models.LeaseInfo{
		ID:          "default",
		StartDate:   "2025-01-01",
		EndDate:     "2026-01-01",
		AnnualLimit: 36500,
		TotalLimit:  36500,
	}, nil)

	readingStore := new(MockReadingStore)
	readingStore.On("Get", mock.Anything).Return(&db.ReadingList{
		Version: 1,
		Readings: []models.MileageReading{
			{ID: "r1", Date: "2025-01-01", Mileage: 0},
			{ID: "r2", Date: "2025-01-11", Mileage: 1200},
		},
	}, nil)
	return leaseStore, readingStore
}

func TestStats(t *testing.T) {
	leaseStore, readingStore := statsFixtures()
	handler := NewStatsHandler(leaseStore, readingStore)
	handler.clock = fixedClock(time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	handler.Stats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var stats models.CalculatedStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, 1200.0, stats.CurrentMileage)
	assert.Equal(t, 10, stats.DaysElapsed)
	assert.False(t, stats.IsOnTrack)
	assert.NotEmpty(t, stats.MonthlyStats)
}

func TestStats_RefDate(t *testing.T) {
	leaseStore, readingStore := statsFixtures()
	handler := NewStatsHandler(leaseStore, readingStore)
	handler.clock = fixedClock(time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodGet, "/api/stats?date=2025-01-06", nil)
	rec := httptest.NewRecorder()
	handler.Stats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var stats models.CalculatedStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.Equal(t, 600.0, stats.CurrentMileage)
	assert.Equal(t, 5, stats.DaysElapsed)
}

func TestStats_InvalidDate(t *testing.T) {
	leaseStore, readingStore := statsFixtures()
	handler := NewStatsHandler(leaseStore, readingStore)

	req := httptest.NewRequest(http.MethodGet, "/api/stats?date=garbage", nil)
	rec := httptest.NewRecorder()
	handler.Stats(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStats_DefaultsWithoutWriting(t *testing.T) {
	leaseStore := new(MockLeaseStore)
	leaseStore.On("Get", mock.Anything).Return(nil, db.ErrNotFound)
	readingStore := new(MockReadingStore)
	readingStore.On("Get", mock.Anything).Return(nil, db.ErrNotFound)

	handler := NewStatsHandler(leaseStore, readingStore)
	handler.clock = fixedClock(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	handler.Stats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	leaseStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	readingStore.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything, mock.Anything)
}

func TestWeekly(t *testing.T) {
	leaseStore, readingStore := statsFixtures()
	handler := NewStatsHandler(leaseStore, readingStore)
	handler.clock = fixedClock(time.Date(2025, 1, 11, 12, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodGet, "/api/stats/weekly", nil)
	rec := httptest.NewRecorder()
	handler.Weekly(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var weekly models.WeeklyStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&weekly))
	assert.True(t, weekly.IsCurrentWeek)
	assert.Len(t, weekly.DailyUsage, 7)
	assert.Equal(t, time.Monday, weekly.WeekStart.Weekday())
}

func TestWeekly_ExplicitWeek(t *testing.T) {
	leaseStore, readingStore := statsFixtures()
	handler := NewStatsHandler(leaseStore, readingStore)
	handler.clock = fixedClock(time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodGet, "/api/stats/weekly?week=2025-01-08", nil)
	rec := httptest.NewRecorder()
	handler.Weekly(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var weekly models.WeeklyStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&weekly))
	assert.False(t, weekly.IsCurrentWeek)
	assert.Equal(t, "2025-01-06", weekly.WeekStart.Format("2006-01-02"))
}

func TestChart(t *testing.T) {
	leaseStore, readingStore := statsFixtures()
	handler := NewStatsHandler(leaseStore, readingStore)
	handler.clock = fixedClock(time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodGet, "/api/chart", nil)
	rec := httptest.NewRecorder()
	handler.Chart(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var chart models.ChartData
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&chart))
	assert.NotEmpty(t, chart.Dates)
	assert.Equal(t, models.ViewTotal, chart.ViewMode)
	assert.Equal(t, 36500, chart.TotalLimit)
}

func TestChart_InvalidView(t *testing.T) {
	leaseStore, readingStore := statsFixtures()
	handler := NewStatsHandler(leaseStore, readingStore)

	req := httptest.NewRequest(http.MethodGet, "/api/chart?view=decade", nil)
	rec := httptest.NewRecorder()
	handler.Chart(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExport(t *testing.T) {
	leaseStore, readingStore := statsFixtures()
	handler := NewStatsHandler(leaseStore, readingStore)
	handler.clock = fixedClock(time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodGet, "/api/stats/export", nil)
	rec := httptest.NewRecorder()
	handler.Export(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "lease-mileage-2025-01-11.xlsx")
	assert.NotEmpty(t, rec.Body.Bytes())
}
