package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mcoot/lineupsheet/internal/model"
	"github.com/mcoot/lineupsheet/internal/storage"
)

// Storage is a MongoDB-backed implementation of the storage interface.
// A TTL index on expires_at removes documents EvictionGrace after expiry.
type Storage struct {
	client     *mongo.Client
	collection *mongo.Collection
	cfg        Config
}

// New connects to MongoDB and ensures the collection indexes exist
func New(ctx context.Context, cfg Config) (*Storage, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := NewWithClient(client, cfg)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewWithClient creates a Mongo storage with an existing client
func NewWithClient(client *mongo.Client, cfg Config) *Storage {
	return &Storage{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		cfg:        cfg,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// EnsureIndexes creates the TTL index used for physical eviction
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(s.cfg.EvictionGrace / time.Second)),
	})
	if err != nil {
		return fmt.Errorf("create ttl index: %w", err)
	}
	return nil
}

// Close disconnects the client
func (s *Storage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Storage) CreateLineup(ctx context.Context, lineup *model.Lineup) error {
	doc, err := toDocument(lineup)
	if err != nil {
		return err
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.ErrLineupExists
		}
		return fmt.Errorf("insert lineup: %w", err)
	}
	return nil
}

func (s *Storage) GetLineup(ctx context.Context, id model.LineupID) (*model.Lineup, error) {
	var doc lineupDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrLineupNotFound
		}
		return nil, fmt.Errorf("find lineup: %w", err)
	}
	return doc.toModel()
}

// ReplaceRoster only matches the document while its version is unchanged;
// a miss is disambiguated into not-found or conflict with a follow-up count.
func (s *Storage) ReplaceRoster(ctx context.Context, id model.LineupID, expectedVersion int64, roster model.Roster) error {
	filter := bson.M{"_id": string(id), "version": expectedVersion}
	update := bson.M{"$set": bson.M{
		"roster":  toRosterDocument(roster),
		"version": expectedVersion + 1,
	}}

	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update roster: %w", err)
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return fmt.Errorf("count lineup: %w", err)
	}
	if n == 0 {
		return model.ErrLineupNotFound
	}
	return model.ErrVersionConflict
}
