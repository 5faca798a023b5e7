package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	"github.com/jshah-ind/travelbot/internal/domain/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoAttemptRepository implements AttemptRepository
type MongoAttemptRepository struct {
	collection *mongo.Collection
}

// NewMongoAttemptRepository creates a new extraction attempt repository
func NewMongoAttemptRepository(db *mongo.Database) repository.AttemptRepository {
	collection := db.Collection("extraction_attempts")

	// Create index on createdAt for time-window summaries
	ctx := context.Background()
	createdIndex := mongo.IndexModel{
		Keys: bson.M{"createdAt": 1},
	}
	collection.Indexes().CreateOne(ctx, createdIndex)

	// Create compound index for per-strategy queries
	strategyIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "strategy", Value: 1}, {Key: "outcome", Value: 1}},
	}
	collection.Indexes().CreateOne(ctx, strategyIndex)

	return &MongoAttemptRepository{
		collection: collection,
	}
}

// Save inserts one attempt, assigning an ID when missing
func (r *MongoAttemptRepository) Save(ctx context.Context, attempt *entity.ExtractionAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, attempt); err != nil {
		return fmt.Errorf("failed to save extraction attempt: %w", err)
	}
	return nil
}

// Summary aggregates attempts per strategy since the given time
func (r *MongoAttemptRepository) Summary(ctx context.Context, since time.Time) ([]entity.StrategyStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"createdAt": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$strategy",
			"attempts": bson.M{"$sum": 1},
			"successes": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$outcome", string(entity.OutcomeSuccess)}}, 1, 0},
			}},
			"avgLatencyMs": bson.M{"$avg": "$latencyMs"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate extraction attempts: %w", err)
	}
	defer cursor.Close(ctx)

	var stats []entity.StrategyStats
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode attempt summary: %w", err)
	}
	return stats, nil
}
