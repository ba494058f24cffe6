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
)

// LeaseHandler serves the singleton lease record: seeded on first access,
// replaced wholesale on POST, merge-updated on PUT.
type LeaseHandler struct {
	store db.LeaseStore
	clock func() time.Time
}

// NewLeaseHandler creates a new lease handler
func NewLeaseHandler(store db.LeaseStore) *LeaseHandler {
	return &LeaseHandler{store: store, clock: time.Now}
}

func (h *LeaseHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPost:
		h.replace(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *LeaseHandler) get(w http.ResponseWriter, r *http.Request) {
	lease, err := h.store.Get(r.Context())
	if errors.Is(err, db.ErrNotFound) {
		seeded := models.DefaultLease(h.clock())
		if err := h.store.Put(r.Context(), seeded); err != nil {
			log.WithError(err).Error("failed to seed lease record")
			respondError(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
		respondJSON(w, http.StatusOK, seeded)
		return
	}
	if err != nil {
		log.WithError(err).Error("failed to fetch lease record")
		respondError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, lease)
}

type leaseRequest struct {
	StartDate        string  `json:"startDate"`
	EndDate          string  `json:"endDate"`
	AnnualLimit      int     `json:"annualLimit"`
	TotalLimit       int     `json:"totalLimit"`
	OverageCostPerKm float64 `json:"overageCostPerKm"`
	CreatedAt        string  `json:"createdAt"`
}

func (h *LeaseHandler) replace(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	var req leaseRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	now := h.clock()
	lease := models.LeaseInfo{
		ID:               "default",
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		AnnualLimit:      req.AnnualLimit,
		TotalLimit:       req.TotalLimit,
		OverageCostPerKm: req.OverageCostPerKm,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.CreatedAt != "" {
		if created, err := time.Parse(time.RFC3339, req.CreatedAt); err == nil {
			lease.CreatedAt = created
		}
	}

	if _, err := mileage.ParseLeaseTerm(lease); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Put(r.Context(), lease); err != nil {
		log.WithError(err).Error("failed to save lease record")
		respondError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, lease)
}

type leasePatch struct {
	StartDate        *string  `json:"startDate"`
	EndDate          *string  `json:"endDate"`
	AnnualLimit      *int     `json:"annualLimit"`
	TotalLimit       *int     `json:"totalLimit"`
	OverageCostPerKm *float64 `json:"overageCostPerKm"`
}

func (h *LeaseHandler) update(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	var patch leasePatch
	if err := json.Unmarshal(body, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	now := h.clock()
	existing, err := h.store.Get(r.Context())
	if errors.Is(err, db.ErrNotFound) {
		seeded := models.DefaultLease(now)
		existing = &seeded
	} else if err != nil {
		log.WithError(err).Error("failed to fetch lease record")
		respondError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	lease := *existing
	if patch.StartDate != nil {
		lease.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		lease.EndDate = *patch.EndDate
	}
	if patch.AnnualLimit != nil {
		lease.AnnualLimit = *patch.AnnualLimit
	}
	if patch.TotalLimit != nil {
		lease.TotalLimit = *patch.TotalLimit
	}
	if patch.OverageCostPerKm != nil {
		lease.OverageCostPerKm = *patch.OverageCostPerKm
	}
	lease.ID = "default"
	lease.UpdatedAt = now

	if _, err := mileage.ParseLeaseTerm(lease); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Put(r.Context(), lease); err != nil {
		log.WithError(err).Error("failed to update lease record")
		respondError(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, lease)
}
