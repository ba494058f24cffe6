package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/jlindqvist/leasetrack/internal/auth"
	"github.com/jlindqvist/leasetrack/internal/models"
)

// AuthHandler handles the admin login.
type AuthHandler struct {
	authService *auth.Service
	clock       func() time.Time
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		clock:       time.Now,
	}
}

// Login checks the admin password and issues a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var loginReq models.LoginRequest
	if err := json.Unmarshal(body, &loginReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if loginReq.Password == "" {
		respondError(w, http.StatusBadRequest, "Password is required")
		return
	}

	if !h.authService.CheckPassword(loginReq.Password) {
		log.WithField("remote", r.RemoteAddr).Warn("failed login attempt")
		respondError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token, err := h.authService.GenerateToken(h.clock())
	if err != nil {
		log.WithError(err).Error("failed to generate session token")
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondJSON(w, http.StatusOK, models.LoginResponse{Success: true, Token: token})
}
