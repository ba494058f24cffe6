package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type MongoConfig struct {
	URI      string
	Database string
}

type AuthConfig struct {
	JWTSecret         string
	TokenExpiry       time.Duration
	AdminPassword     string
	AdminPasswordHash string
}

type MQTTConfig struct {
	BrokerURL string
	Topic     string
}

type Config struct {
	Environment string
	LogLevel    string
	HTTP        HTTPConfig
	Mongo       MongoConfig
	Auth        AuthConfig
	MQTT        MQTTConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	tokenExpiry := 24 * time.Hour
	if raw := v.GetString("JWT_EXPIRY"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRY: %w", err)
		}
		tokenExpiry = parsed
	}

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("PORT"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("MONGO_URI"),
			Database: v.GetString("MONGO_DB"),
		},
		Auth: AuthConfig{
			JWTSecret:         v.GetString("JWT_SECRET"),
			TokenExpiry:       tokenExpiry,
			AdminPassword:     v.GetString("ADMIN_PASSWORD"),
			AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),
		},
		MQTT: MQTTConfig{
			BrokerURL: v.GetString("MQTT_BROKER_URL"),
			Topic:     v.GetString("MQTT_TOPIC"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Mongo.Database == "" {
		cfg.Mongo.Database = "leasetrack"
	}
	if cfg.MQTT.Topic == "" {
		cfg.MQTT.Topic = "leasetrack/readings"
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Auth.AdminPassword == "" && cfg.Auth.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	return nil
}
