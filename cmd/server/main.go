package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/jlindqvist/leasetrack/internal/auth"
	"github.com/jlindqvist/leasetrack/internal/config"
	"github.com/jlindqvist/leasetrack/internal/db"
	"github.com/jlindqvist/leasetrack/internal/handlers"
	"github.com/jlindqvist/leasetrack/internal/ingest"
	"github.com/jlindqvist/leasetrack/internal/middleware"
)

const loginRateLimit = 10 // attempts per minute per IP

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	client, err := db.Connect(ctx, cfg.Mongo.URI)
	cancel()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(ctx)
	}()
	log.Info("Connected to MongoDB")

	database := client.Database(cfg.Mongo.Database)
	leaseStore := &db.MongoLeaseStore{Collection: database.Collection("lease")}
	readingStore := &db.MongoReadingStore{Collection: database.Collection("readings")}

	authService, err := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry, cfg.Auth.AdminPassword, cfg.Auth.AdminPasswordHash)
	if err != nil {
		log.Fatalf("Failed to set up auth: %v", err)
	}

	authHandler := handlers.NewAuthHandler(authService)
	leaseHandler := handlers.NewLeaseHandler(leaseStore)
	readingsHandler := handlers.NewReadingsHandler(readingStore)
	tripsHandler := handlers.NewTripsHandler(readingStore)
	statsHandler := handlers.NewStatsHandler(leaseStore, readingStore)

	authMW := middleware.NewAuthMiddleware(authService)
	rateLimit := middleware.NewRateLimitMiddleware()

	mux := http.NewServeMux()
	mux.Handle("/api/auth/login", rateLimit.RateLimit(loginRateLimit, 60)(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("/api/lease", leaseHandler.Handle)
	mux.HandleFunc("/api/readings", readingsHandler.Handle)
	mux.HandleFunc("/api/trips", tripsHandler.Handle)
	mux.HandleFunc("/api/stats", statsHandler.Stats)
	mux.HandleFunc("/api/stats/weekly", statsHandler.Weekly)
	mux.HandleFunc("/api/stats/export", statsHandler.Export)
	mux.HandleFunc("/api/chart", statsHandler.Chart)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var subscriber *ingest.Subscriber
	if cfg.MQTT.BrokerURL != "" {
		subscriber = ingest.NewSubscriber(cfg.MQTT.BrokerURL, cfg.MQTT.Topic, readingStore)
		if err := subscriber.Start(); err != nil {
			log.Fatalf("Failed to start MQTT ingest: %v", err)
		}
		defer subscriber.Stop()
	}

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      authMW.Authenticate(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Graceful shutdown failed: %v", err)
	}
}
