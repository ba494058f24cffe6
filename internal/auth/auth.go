package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jlindqvist/leasetrack/internal/models"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service handles the single-admin authentication: password check on login,
// then short-lived signed session tokens instead of a long-lived shared
// secret mirrored into the client.
type Service struct {
	jwtSecret    []byte
	tokenExp     time.Duration
	password     string
	passwordHash string
}

// NewService creates an authentication service. All configuration is passed
// in; the service reads no environment of its own. passwordHash, when set,
// takes precedence over the plain password.
func NewService(jwtSecret string, tokenExp time.Duration, password, passwordHash string) (*Service, error) {
	if jwtSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if password == "" && passwordHash == "" {
		return nil, errors.New("admin password or password hash is required")
	}
	if tokenExp <= 0 {
		tokenExp = 24 * time.Hour
	}
	return &Service{
		jwtSecret:    []byte(jwtSecret),
		tokenExp:     tokenExp,
		password:     password,
		passwordHash: passwordHash,
	}, nil
}

// CheckPassword verifies the admin password. A configured bcrypt hash is
// checked with bcrypt; a plain configured password is compared in constant
// time.
func (s *Service) CheckPassword(password string) bool {
	if s.passwordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(s.password), []byte(password)) == 1
}

// HashPassword hashes a password using bcrypt, for generating the
// ADMIN_PASSWORD_HASH value.
func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// GenerateToken issues a signed session token for the admin.
func (s *Service) GenerateToken(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": "admin",
		"exp": now.Add(s.tokenExp).Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken validates a session token and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*models.Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &models.Claims{Subject: sub, Exp: int64(exp)}, nil
}

// ExtractTokenFromHeader extracts the token from an Authorization header.
func (s *Service) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrInvalidToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}
