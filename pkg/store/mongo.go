package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists circuits in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and uses the "circuits" collection of
// the given database. The connection is verified before returning.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection("circuits"),
	}, nil
}

// Create stores a new circuit.
func (s *MongoStore) Create(ctx context.Context, name, cdcText string) (*Circuit, error) {
	now := time.Now().UTC()
	c := Circuit{
		ID:        uuid.New(),
		Name:      name,
		CDC:       cdcText,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		return nil, fmt.Errorf("insert circuit: %w", err)
	}
	return &c, nil
}

// Get returns the circuit with the given id.
func (s *MongoStore) Get(ctx context.Context, id uuid.UUID) (*Circuit, error) {
	var c Circuit
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find circuit: %w", err)
	}
	return &c, nil
}

// List returns all circuits sorted by creation time.
func (s *MongoStore) List(ctx context.Context) ([]*Circuit, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list circuits: %w", err)
	}
	defer cur.Close(ctx)

	var out []*Circuit
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode circuits: %w", err)
	}
	return out, nil
}

// Update replaces name and text of an existing circuit.
func (s *MongoStore) Update(ctx context.Context, id uuid.UUID, name, cdcText string) (*Circuit, error) {
	update := bson.M{"$set": bson.M{
		"name":       name,
		"cdc":        cdcText,
		"updated_at": time.Now().UTC(),
	}}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, fmt.Errorf("update circuit: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes a circuit.
func (s *MongoStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete circuit: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
