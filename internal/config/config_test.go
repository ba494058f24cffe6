package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_PASSWORD", "hunter2")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "leasetrack", cfg.Mongo.Database)
	assert.Equal(t, "leasetrack/readings", cfg.MQTT.Topic)
	assert.Equal(t, "hunter2", cfg.Auth.AdminPassword)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("MONGO_DB", "leasetrack_dev")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "leasetrack_dev", cfg.Mongo.Database)
	assert.Equal(t, "2h0m0s", cfg.Auth.TokenExpiry.String())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidExpiry(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_EXPIRY", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("ADMIN_PASSWORD", "")

	_, err := Load()
	assert.Error(t, err)
}
