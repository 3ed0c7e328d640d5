package db

import (
	"context"
	"fmt"
	"time"

	"reputation-leaderboard/internal/application/ports"
	"reputation-leaderboard/internal/domain/models"
	"reputation-leaderboard/internal/infrastructure/logger"
	"reputation-leaderboard/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAdapter loads the seed collection from MongoDB
type MongoAdapter struct {
	client   *mongo.Client
	database *mongo.Database
	config   MongoConfig
}

// MongoConfig holds MongoDB configuration
type MongoConfig struct {
	URI               string
	Database          string
	UsersCollection   string
	ConnectionTimeout time.Duration
	QueryTimeout      time.Duration
}

var _ ports.SeedSource = (*MongoAdapter)(nil)

// NewMongoAdapter creates a new MongoDB adapter
func NewMongoAdapter(uri, database, collection string) (*MongoAdapter, error) {
	config := MongoConfig{
		URI:               uri,
		Database:          database,
		UsersCollection:   collection,
		ConnectionTimeout: 10 * time.Second,
		QueryTimeout:      30 * time.Second,
	}
	if config.UsersCollection == "" {
		config.UsersCollection = "leaderboard_users"
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	adapter := &MongoAdapter{
		client:   client,
		database: client.Database(config.Database),
		config:   config,
	}

	if err := adapter.createIndexes(); err != nil {
		logger.Warning("Failed to create indexes: %v", err)
	}

	return adapter, nil
}

func (m *MongoAdapter) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.config.QueryTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "wallet_address", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}},
		{Keys: bson.D{{Key: "reputation_points", Value: -1}}},
	}

	if _, err := m.database.Collection(m.config.UsersCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create users indexes: %w", err)
	}
	return nil
}

// Name identifies the seed source
func (m *MongoAdapter) Name() string {
	return "mongodb"
}

// LoadUsers reads every user document in creation order
func (m *MongoAdapter) LoadUsers(ctx context.Context) ([]models.LeaderboardUser, error) {
	ctx, cancel := context.WithTimeout(ctx, m.config.QueryTimeout)
	defer cancel()

	collection := m.database.Collection(m.config.UsersCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.LeaderboardUser
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	return users, nil
}

// Close disconnects from MongoDB
func (m *MongoAdapter) Close() error {
	ctx, cancel := utils.TimeoutContext(5 * time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
