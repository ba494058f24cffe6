package models

// LoginRequest represents a login request
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// Claims represents the session token claims
type Claims struct {
	Subject string `json:"sub"`
	Exp     int64  `json:"exp"`
}
