package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jlindqvist/leasetrack/internal/models"
)

const singletonID = "default"

// Connect connects to MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoLeaseStore stores the lease record in a collection holding one
// document.
type MongoLeaseStore struct {
	Collection *mongo.Collection
}

func (s *MongoLeaseStore) Get(ctx context.Context) (*models.LeaseInfo, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	var lease models.LeaseInfo
	err := s.Collection.FindOne(ctx, bson.M{"_id": singletonID}).Decode(&lease)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &lease, nil
}

func (s *MongoLeaseStore) Put(ctx context.Context, lease models.LeaseInfo) error {
	if s.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	lease.ID = singletonID
	opts := options.Replace().SetUpsert(true)
	_, err := s.Collection.ReplaceOne(ctx, bson.M{"_id": singletonID}, lease, opts)
	return err
}

// readingsDoc is the persisted shape of the reading list.
type readingsDoc struct {
	ID       string                  `bson:"_id"`
	Version  int64                   `bson:"version"`
	Readings []models.MileageReading `bson:"readings"`
}

// MongoReadingStore stores the whole reading list as one versioned document.
type MongoReadingStore struct {
	Collection *mongo.Collection
}

func (s *MongoReadingStore) Get(ctx context.Context) (*ReadingList, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	var doc readingsDoc
	err := s.Collection.FindOne(ctx, bson.M{"_id": singletonID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ReadingList{Version: doc.Version, Readings: doc.Readings}, nil
}

// Replace writes the list conditionally on the version stamp. Version 0
// creates the document; any other expected version must still match the
// stored one or the write is rejected with ErrVersionConflict.
func (s *MongoReadingStore) Replace(ctx context.Context, readings []models.MileageReading, expectedVersion int64) error {
	if s.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	doc := readingsDoc{
		ID:       singletonID,
		Version:  expectedVersion + 1,
		Readings: readings,
	}

	if expectedVersion == 0 {
		_, err := s.Collection.InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			return ErrVersionConflict
		}
		return err
	}

	result, err := s.Collection.ReplaceOne(ctx, bson.M{"_id": singletonID, "version": expectedVersion}, doc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}
