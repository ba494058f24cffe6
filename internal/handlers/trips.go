package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jlindqvist/leasetrack/internal/db"
	"github.com/jlindqvist/leasetrack/internal/mileage"
	"github.com/jlindqvist/leasetrack/internal/models"
	"github.com/jlindqvist/leasetrack/internal/trips"
)

// TripsHandler converts trip submissions into odometer readings. Validation
// fully precedes the single persist, so a rejected trip never leaves a
// partial write.
type TripsHandler struct {
	store db.ReadingStore
	clock func() time.Time
}

// NewTripsHandler creates a new trips handler
func NewTripsHandler(store db.ReadingStore) *TripsHandler {
	return &TripsHandler{store: store, clock: time.Now}
}

func (h *TripsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	var input models.TripInput
	if err := json.Unmarshal(body, &input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	list, err := h.store.Get(r.Context())
	if errors.Is(err, db.ErrNotFound) {
		list = &db.ReadingList{Version: 0}
	} else if err != nil {
		log.WithError(err).Error("failed to fetch readings")
		respondError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	created, err := trips.Convert(input, list.Readings, h.clock())
	if err != nil {
		var te *trips.Error
		if errors.As(err, &te) {
			respondJSON(w, http.StatusBadRequest, errorResponse{
				Error:   te.Message,
				Field:   te.Field,
				Details: te.Details,
			})
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	readings := mileage.Sorted(append(list.Readings, created...))
	if err := h.store.Replace(r.Context(), readings, list.Version); err != nil {
		if errors.Is(err, db.ErrVersionConflict) {
			respondError(w, http.StatusConflict, "Readings were modified concurrently, retry")
			return
		}
		log.WithError(err).Error("failed to save readings")
		respondError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	log.WithFields(log.Fields{
		"distance": input.Distance,
		"created":  len(created),
	}).Info("trip converted to readings")

	respondJSON(w, http.StatusCreated, created)
}
