package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jlindqvist/leasetrack/internal/db"
	"github.com/jlindqvist/leasetrack/internal/export"
	"github.com/jlindqvist/leasetrack/internal/mileage"
	"github.com/jlindqvist/leasetrack/internal/models"
)

// StatsHandler serves the derived views: budget statistics, the weekly
// breakdown, the chart series and the spreadsheet export. All of them are
// pure functions of the stored lease and readings.
type StatsHandler struct {
	leaseStore   db.LeaseStore
	readingStore db.ReadingStore
	generator    *export.Generator
	clock        func() time.Time
}

// NewStatsHandler creates a new statistics handler
func NewStatsHandler(leaseStore db.LeaseStore, readingStore db.ReadingStore) *StatsHandler {
	return &StatsHandler{
		leaseStore:   leaseStore,
		readingStore: readingStore,
		generator:    export.NewGenerator(),
		clock:        time.Now,
	}
}

// load fetches lease and readings, substituting defaults for documents that
// have not been created yet. Derived views never write.
func (h *StatsHandler) load(r *http.Request) (models.LeaseInfo, []models.MileageReading, error) {
	lease, err := h.leaseStore.Get(r.Context())
	if errors.Is(err, db.ErrNotFound) {
		seeded := models.DefaultLease(h.clock())
		lease = &seeded
	} else if err != nil {
		return models.LeaseInfo{}, nil, err
	}

	list, err := h.readingStore.Get(r.Context())
	if errors.Is(err, db.ErrNotFound) {
		list = &db.ReadingList{}
	} else if err != nil {
		return models.LeaseInfo{}, nil, err
	}
	return *lease, list.Readings, nil
}

func refDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := mileage.ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Stats handles GET /api/stats.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	refDate, err := refDateParam(r, "date")
	if err != nil {
		respondFieldError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD", "date")
		return
	}

	lease, readings, err := h.load(r)
	if err != nil {
		log.WithError(err).Error("failed to load data for stats")
		respondError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	stats, err := mileage.CalculateStats(readings, lease, refDate, h.clock())
	if err != nil {
		log.WithError(err).Error("failed to calculate stats")
		respondError(w, http.StatusInternalServerError, "Failed to calculate statistics")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Weekly handles GET /api/stats/weekly.
func (h *StatsHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	now := h.clock()
	weekDate := now
	if d, err := refDateParam(r, "week"); err != nil {
		respondFieldError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD", "week")
		return
	} else if d != nil {
		weekDate = *d
	}

	lease, readings, err := h.load(r)
	if err != nil {
		log.WithError(err).Error("failed to load data for weekly stats")
		respondError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	stats, err := mileage.CalculateStats(readings, lease, nil, now)
	if err != nil {
		log.WithError(err).Error("failed to calculate stats")
		respondError(w, http.StatusInternalServerError, "Failed to calculate statistics")
		return
	}

	weekly, err := mileage.CalculateWeeklyStats(readings, lease, weekDate, &stats, now)
	if err != nil {
		log.WithError(err).Error("failed to calculate weekly stats")
		respondError(w, http.StatusInternalServerError, "Failed to calculate weekly statistics")
		return
	}
	respondJSON(w, http.StatusOK, weekly)
}

// Chart handles GET /api/chart.
func (h *StatsHandler) Chart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	selectedDate := r.URL.Query().Get("date")
	if selectedDate != "" {
		if _, err := mileage.ParseDate(selectedDate); err != nil {
			respondFieldError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD", "date")
			return
		}
	}

	includePreliminary := r.URL.Query().Get("preliminary") != "false"

	viewMode := models.ViewMode(r.URL.Query().Get("view"))
	if viewMode == "" {
		viewMode = models.ViewTotal
	}
	if !models.IsValidViewMode(viewMode) {
		respondFieldError(w, http.StatusBadRequest, "Invalid view mode", "view")
		return
	}

	lease, readings, err := h.load(r)
	if err != nil {
		log.WithError(err).Error("failed to load data for chart")
		respondError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	chart, err := mileage.GenerateChartData(readings, lease, selectedDate, includePreliminary, viewMode, h.clock())
	if err != nil {
		log.WithError(err).Error("failed to generate chart data")
		respondError(w, http.StatusInternalServerError, "Failed to generate chart data")
		return
	}
	respondJSON(w, http.StatusOK, chart)
}

// Export handles GET /api/stats/export: the monthly breakdown as a
// spreadsheet.
func (h *StatsHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	lease, readings, err := h.load(r)
	if err != nil {
		log.WithError(err).Error("failed to load data for export")
		respondError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	now := h.clock()
	stats, err := mileage.CalculateStats(readings, lease, nil, now)
	if err != nil {
		log.WithError(err).Error("failed to calculate stats")
		respondError(w, http.StatusInternalServerError, "Failed to calculate statistics")
		return
	}

	content, err := h.generator.Generate(lease, stats)
	if err != nil {
		log.WithError(err).Error("failed to generate spreadsheet")
		respondError(w, http.StatusInternalServerError, "Failed to generate export")
		return
	}

	fileName := fmt.Sprintf("lease-mileage-%s.xlsx", now.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}
