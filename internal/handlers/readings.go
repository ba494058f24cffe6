package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jlindqvist/leasetrack/internal/db"
	"github.com/jlindqvist/leasetrack/internal/mileage"
	"github.com/jlindqvist/leasetrack/internal/models"
)

// ReadingsHandler serves the reading list. Every write passes the
// monotonicity gate and replaces the whole versioned document; a lost race
// against a concurrent writer is reported as a conflict instead of silently
// dropping the peer's write.
type ReadingsHandler struct {
	store db.ReadingStore
	clock func() time.Time
}

// NewReadingsHandler creates a new readings handler
func NewReadingsHandler(store db.ReadingStore) *ReadingsHandler {
	return &ReadingsHandler{store: store, clock: time.Now}
}

func (h *ReadingsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	case http.MethodPut:
		h.update(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// loadOrSeed fetches the reading list, seeding the initial records on first
// access the way the lease record is seeded.
func (h *ReadingsHandler) loadOrSeed(r *http.Request) (*db.ReadingList, error) {
	list, err := h.store.Get(r.Context())
	if err == nil {
		return list, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	now := h.clock()
	seeded := []models.MileageReading{
		{ID: uuid.NewString(), Date: "2025-07-09", Mileage: 0, Note: "Lease start", CreatedAt: now},
	}
	if err := h.store.Replace(r.Context(), seeded, 0); err != nil {
		if errors.Is(err, db.ErrVersionConflict) {
			// Another request seeded first; use its result.
			return h.store.Get(r.Context())
		}
		return nil, err
	}
	return &db.ReadingList{Version: 1, Readings: seeded}, nil
}

func (h *ReadingsHandler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.loadOrSeed(r)
	if err != nil {
		log.WithError(err).Error("failed to fetch readings")
		respondError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, list.Readings)
}

type readingRequest struct {
	ID      string  `json:"id"`
	Date    string  `json:"date"`
	Time    string  `json:"time"`
	Mileage float64 `json:"mileage"`
	Note    string  `json:"note"`
}

func (h *ReadingsHandler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	candidate := models.MileageReading{
		ID:        uuid.NewString(),
		Date:      req.Date,
		Time:      req.Time,
		Mileage:   req.Mileage,
		Note:      req.Note,
		CreatedAt: h.clock(),
	}

	list, err := h.loadOrSeed(r)
	if err != nil {
		log.WithError(err).Error("failed to fetch readings")
		respondError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	// A second reading on the same date replaces the first one.
	readings := make([]models.MileageReading, 0, len(list.Readings)+1)
	for _, existing := range list.Readings {
		if existing.Date != candidate.Date {
			readings = append(readings, existing)
		}
	}

	if err := mileage.ValidateReading(candidate, readings); err != nil {
		var oe *mileage.OutOfOrderError
		if errors.As(err, &oe) {
			respondFieldError(w, http.StatusBadRequest, oe.Message, oe.Field)
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	readings = mileage.Sorted(append(readings, candidate))
	if !h.persist(w, r, readings, list.Version) {
		return
	}
	respondJSON(w, http.StatusCreated, candidate)
}

func (h *ReadingsHandler) update(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if req.ID == "" {
		respondFieldError(w, http.StatusBadRequest, "Reading ID required", "id")
		return
	}

	list, err := h.loadOrSeed(r)
	if err != nil {
		log.WithError(err).Error("failed to fetch readings")
		respondError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	index := -1
	for i, existing := range list.Readings {
		if existing.ID == req.ID {
			index = i
			break
		}
	}
	if index == -1 {
		respondError(w, http.StatusNotFound, "Reading not found")
		return
	}

	updated := list.Readings[index]
	updated.Date = req.Date
	updated.Time = req.Time
	updated.Mileage = req.Mileage
	updated.Note = req.Note

	others := make([]models.MileageReading, 0, len(list.Readings)-1)
	for i, existing := range list.Readings {
		if i != index {
			others = append(others, existing)
		}
	}

	if err := mileage.ValidateReading(updated, others); err != nil {
		var oe *mileage.OutOfOrderError
		if errors.As(err, &oe) {
			respondFieldError(w, http.StatusBadRequest, oe.Message, oe.Field)
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	readings := mileage.Sorted(append(others, updated))
	if !h.persist(w, r, readings, list.Version) {
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *ReadingsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		respondFieldError(w, http.StatusBadRequest, "Reading ID required", "id")
		return
	}

	list, err := h.loadOrSeed(r)
	if err != nil {
		log.WithError(err).Error("failed to fetch readings")
		respondError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	readings := make([]models.MileageReading, 0, len(list.Readings))
	for _, existing := range list.Readings {
		if existing.ID != id {
			readings = append(readings, existing)
		}
	}
	if len(readings) == len(list.Readings) {
		respondError(w, http.StatusNotFound, "Reading not found")
		return
	}

	if !h.persist(w, r, readings, list.Version) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *ReadingsHandler) decode(w http.ResponseWriter, r *http.Request) (readingRequest, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return readingRequest{}, false
	}
	var req readingRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return readingRequest{}, false
	}
	if _, err := mileage.ParseDate(req.Date); err != nil {
		respondFieldError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD", "date")
		return readingRequest{}, false
	}
	if req.Time != "" {
		if _, err := mileage.ReadingDateTime(req.Date, req.Time); err != nil {
			respondFieldError(w, http.StatusBadRequest, "Invalid time format, expected HH:MM", "time")
			return readingRequest{}, false
		}
	}
	if req.Mileage < 0 {
		respondFieldError(w, http.StatusBadRequest, "Mileage must be non-negative", "mileage")
		return readingRequest{}, false
	}
	return req, true
}

func (h *ReadingsHandler) persist(w http.ResponseWriter, r *http.Request, readings []models.MileageReading, version int64) bool {
	err := h.store.Replace(r.Context(), readings, version)
	if errors.Is(err, db.ErrVersionConflict) {
		respondError(w, http.StatusConflict, "Readings were modified concurrently, retry")
		return false
	}
	if err != nil {
		log.WithError(err).Error("failed to save readings")
		respondError(w, http.StatusServiceUnavailable, "Database unavailable")
		return false
	}
	return true
}
