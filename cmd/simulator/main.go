package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Driving profile used to generate plausible trips. Weekday commutes plus the
// occasional longer weekend drive.
const (
	commuteMinKm = 18.0
	commuteMaxKm = 34.0
	weekendMinKm = 40.0
	weekendMaxKm = 220.0
)

type tripRequest struct {
	Distance  float64 `json:"distance"`
	StartTime string  `json:"startTime,omitempty"`
	EndTime   string  `json:"endTime,omitempty"`
	Note      string  `json:"note,omitempty"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

var authToken string

func authorizedPost(url string, body *bytes.Buffer) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	return client.Do(req)
}

func login(apiURL, password string) error {
	data, err := json.Marshal(map[string]string{"password": password})
	if err != nil {
		return err
	}
	resp, err := authorizedPost(apiURL+"/auth/login", bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status: %d", resp.StatusCode)
	}
	var result loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	if !result.Success || result.Token == "" {
		return fmt.Errorf("login rejected")
	}
	authToken = result.Token
	return nil
}

func randomTrip(now time.Time) tripRequest {
	var distance float64
	var note string
	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		distance = weekendMinKm + rand.Float64()*(weekendMaxKm-weekendMinKm)
		note = "Weekend drive"
	} else {
		distance = commuteMinKm + rand.Float64()*(commuteMaxKm-commuteMinKm)
		note = "Commute"
	}

	durationMin := distance / 0.7 // rough 42 km/h average
	end := now
	start := end.Add(-time.Duration(durationMin) * time.Minute)

	return tripRequest{
		Distance:  float64(int(distance*10)) / 10,
		StartTime: start.Format(time.RFC3339),
		EndTime:   end.Format(time.RFC3339),
		Note:      note,
	}
}

func postTrip(apiURL string, trip tripRequest) error {
	data, err := json.Marshal(trip)
	if err != nil {
		return fmt.Errorf("failed to marshal trip: %w", err)
	}
	resp, err := authorizedPost(apiURL+"/trips", bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to post trip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("trip creation failed with status: %d", resp.StatusCode)
	}
	log.WithFields(log.Fields{
		"distance": trip.Distance,
		"note":     trip.Note,
	}).Info("Posted trip")
	return nil
}

func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("ADMIN_PASSWORD is required")
	}

	intervalSec := 3600
	if raw := os.Getenv("SIM_INTERVAL_SECONDS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			log.Fatalf("Invalid SIM_INTERVAL_SECONDS: %s", raw)
		}
		intervalSec = parsed
	}

	if err := login(apiURL, password); err != nil {
		log.Fatalf("Failed to log in: %v", err)
	}
	log.WithField("api_url", apiURL).Info("Simulator started")

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for {
		trip := randomTrip(time.Now())
		if err := postTrip(apiURL, trip); err != nil {
			log.WithError(err).Warn("Trip post failed")
			// Token may have expired; try once to refresh it.
			if err := login(apiURL, password); err != nil {
				log.WithError(err).Error("Re-login failed")
			}
		}
		<-ticker.C
	}
}
