package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/folio/folio/internal/model"
)

// MongoStore keeps each record as one document in a MongoDB collection.
type MongoStore struct {
	client       *mongo.Client
	statusChecks *mongo.Collection
	contacts     *mongo.Collection
}

// NewMongo connects to MongoDB and verifies the connection.
func NewMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetMinPoolSize(2).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(dbName)
	return &MongoStore{
		client:       client,
		statusChecks: db.Collection(StatusChecksCollection),
		contacts:     db.Collection(ContactSubmissionsCollection),
	}, nil
}

// InsertStatusCheck stores a status check document.
func (s *MongoStore) InsertStatusCheck(ctx context.Context, sc *model.StatusCheck) error {
	res, err := s.statusChecks.InsertOne(ctx, sc)
	if err != nil {
		return fmt.Errorf("insert status check: %w", err)
	}
	if !res.Acknowledged {
		return fmt.Errorf("insert status check %s: %w", sc.ID, ErrNotAcknowledged)
	}
	return nil
}

// ListStatusChecks returns up to limit status checks in natural order.
func (s *MongoStore) ListStatusChecks(ctx context.Context, limit int) ([]*model.StatusCheck, error) {
	cur, err := s.statusChecks.Find(ctx, bson.D{}, options.Find().SetLimit(int64(clampLimit(limit))))
	if err != nil {
		return nil, fmt.Errorf("find status checks: %w", err)
	}
	defer cur.Close(ctx)

	var docs []model.StatusCheck
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode status checks: %w", err)
	}

	checks := make([]*model.StatusCheck, 0, len(docs))
	for i := range docs {
		docs[i].Timestamp = docs[i].Timestamp.UTC()
		checks = append(checks, &docs[i])
	}
	return checks, nil
}

// InsertContactMessage stores a contact submission document.
func (s *MongoStore) InsertContactMessage(ctx context.Context, msg *model.ContactMessage) error {
	res, err := s.contacts.InsertOne(ctx, msg)
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	if !res.Acknowledged {
		return fmt.Errorf("insert contact message %s: %w", msg.ID, ErrNotAcknowledged)
	}
	return nil
}

// Ping checks MongoDB connectivity.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client and releases the pool.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
