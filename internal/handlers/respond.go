package handlers

import (
	"encoding/json"
	"net/http"
)

// errorResponse is the JSON error body: a message plus the offending field
// for validation failures.
type errorResponse struct {
	Error   string      `json:"error"`
	Field   string      `json:"field,omitempty"`
	Value   interface{} `json:"value,omitempty"`
	Details string      `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

func respondFieldError(w http.ResponseWriter, status int, message, field string) {
	respondJSON(w, status, errorResponse{Error: message, Field: field})
}
