package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jlindqvist/leasetrack/internal/db"
	"github.com/jlindqvist/leasetrack/internal/mileage"
	"github.com/jlindqvist/leasetrack/internal/models"
)

const (
	connectTimeout = 10 * time.Second
	writeTimeout   = 5 * time.Second
	replaceRetries = 3
)

// readingMessage is the payload accepted on the readings topic. Date and time
// default to the moment the message is handled.
type readingMessage struct {
	Mileage float64 `json:"mileage"`
	Date    string  `json:"date,omitempty"`
	Time    string  `json:"time,omitempty"`
	Note    string  `json:"note,omitempty"`
}

// Subscriber consumes odometer readings published over MQTT and folds them
// into the reading list the same way the HTTP API does.
type Subscriber struct {
	client mqtt.Client
	store  db.ReadingStore
	topic  string
}

func NewSubscriber(brokerURL, topic string, store db.ReadingStore) *Subscriber {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(fmt.Sprintf("leasetrack-ingest-%s", uuid.NewString()[:8])).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)

	return &Subscriber{
		client: mqtt.NewClient(opts),
		store:  store,
		topic:  topic,
	}
}

// Start connects to the broker and subscribes to the readings topic.
func (s *Subscriber) Start() error {
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	if token := s.client.Subscribe(s.topic, 1, s.handleMessage); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", s.topic, token.Error())
	}
	log.WithField("topic", s.topic).Info("MQTT ingest started")
	return nil
}

func (s *Subscriber) Stop() {
	s.client.Disconnect(250)
}

func (s *Subscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var payload readingMessage
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		log.WithError(err).Warn("Dropping malformed reading message")
		return
	}

	reading, err := s.buildReading(payload, time.Now().UTC())
	if err != nil {
		log.WithError(err).Warn("Dropping invalid reading message")
		return
	}

	if err := s.storeReading(reading); err != nil {
		log.WithError(err).WithField("date", reading.Date).Error("Failed to store reading")
		return
	}
	log.WithFields(log.Fields{
		"date":    reading.Date,
		"mileage": reading.Mileage,
	}).Info("Stored reading from MQTT")
}

func (s *Subscriber) buildReading(payload readingMessage, now time.Time) (models.MileageReading, error) {
	if payload.Mileage < 0 {
		return models.MileageReading{}, errors.New("mileage must not be negative")
	}

	date := payload.Date
	if date == "" {
		date = now.Format(mileage.DateLayout)
	} else if _, err := mileage.ParseDate(date); err != nil {
		return models.MileageReading{}, fmt.Errorf("invalid date %q", payload.Date)
	}

	clock := payload.Time
	if clock == "" && payload.Date == "" {
		clock = now.Format(mileage.TimeLayout)
	}
	if clock != "" {
		if _, err := time.Parse(mileage.TimeLayout, clock); err != nil {
			return models.MileageReading{}, fmt.Errorf("invalid time %q", payload.Time)
		}
	}

	return models.MileageReading{
		ID:        uuid.NewString(),
		Date:      date,
		Time:      clock,
		Mileage:   payload.Mileage,
		Note:      payload.Note,
		CreatedAt: now,
	}, nil
}

// storeReading runs the same read-validate-replace cycle the readings handler
// does, retrying a few times when a concurrent writer bumps the version.
func (s *Subscriber) storeReading(reading models.MileageReading) error {
	for attempt := 0; attempt < replaceRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := s.tryStore(ctx, reading)
		cancel()
		if err == nil {
			return nil
		}
		if !errors.Is(err, db.ErrVersionConflict) {
			return err
		}
	}
	return db.ErrVersionConflict
}

func (s *Subscriber) tryStore(ctx context.Context, reading models.MileageReading) error {
	list, err := s.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			return err
		}
		list = &db.ReadingList{}
	}

	readings := make([]models.MileageReading, 0, len(list.Readings))
	for _, r := range list.Readings {
		if r.Date != reading.Date {
			readings = append(readings, r)
		}
	}
	if err := mileage.ValidateReading(reading, readings); err != nil {
		return err
	}
	readings = mileage.Sorted(append(readings, reading))

	return s.store.Replace(ctx, readings, list.Version)
}
