package db

import (
	"context"
	"fmt"

	"transcript-fetcher/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client wraps the MongoDB client and database connection
type Client struct {
	mongoClient *mongo.Client
	database    *mongo.Database
	collection  *mongo.Collection
}

// NewClient creates a new database client
func NewClient(connectionString, databaseName, collectionName string) *Client {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Return client with nil - error will be caught during Connect()
		return &Client{}
	}

	database := mongoClient.Database(databaseName)
	collection := database.Collection(collectionName)

	return &Client{
		mongoClient: mongoClient,
		database:    database,
		collection:  collection,
	}
}

// Connect establishes connection to MongoDB
func (c *Client) Connect(ctx context.Context) error {
	if c.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return c.mongoClient.Ping(ctx, nil)
}

// Close closes the MongoDB connection
func (c *Client) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

// SaveTranscriptRecord saves a transcript record, including its attempt log,
// to the database. Records are keyed by content ID so re-running acquisition
// for the same item overwrites the previous outcome instead of duplicating it.
func (c *Client) SaveTranscriptRecord(ctx context.Context, record *domain.TranscriptRecord) error {
	if c.collection == nil {
		return fmt.Errorf("collection not initialized")
	}

	// Use content ID as unique identifier for upsert operation
	filter := bson.M{"content_id": record.ContentID}
	update := bson.M{"$set": record}
	opts := options.Update().SetUpsert(true)

	_, err := c.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// GetExistingContentIDs fetches all stored content IDs and returns them as a
// map (set). The service layer uses this to skip items that already have a
// transcript or a recorded unavailable outcome.
func (c *Client) GetExistingContentIDs(ctx context.Context) (map[string]bool, error) {
	if c.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}

	// Query to get only the content ID field from all documents
	cursor, err := c.collection.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"content_id": 1, "_id": 0}))
	if err != nil {
		return nil, fmt.Errorf("failed to query content IDs: %w", err)
	}
	defer cursor.Close(ctx)

	idSet := make(map[string]bool)
	for cursor.Next(ctx) {
		var result struct {
			ContentID string `bson:"content_id"`
		}
		if err := cursor.Decode(&result); err != nil {
			continue // Skip invalid documents
		}
		if result.ContentID != "" {
			idSet[result.ContentID] = true
		}
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return idSet, nil
}

// GetReadyRecords fetches every record whose transcript was acquired
// successfully. Used by the replicator to mirror transcripts into Postgres.
func (c *Client) GetReadyRecords(ctx context.Context) ([]domain.TranscriptRecord, error) {
	if c.collection == nil {
		return nil, fmt.Errorf("collection not initialized")
	}

	cursor, err := c.collection.Find(ctx, bson.M{"status": domain.StatusReady})
	if err != nil {
		return nil, fmt.Errorf("failed to query ready records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []domain.TranscriptRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	return records, nil
}
