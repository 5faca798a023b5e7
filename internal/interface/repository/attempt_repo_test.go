package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoAttemptRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("save assigns id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())
		r := NewMongoAttemptRepository(mt.DB)

		mt.AddMockResponses(mtest.CreateSuccessResponse())
		attempt := &entity.ExtractionAttempt{
			ResolutionID: "res-1",
			Strategy:     "openai",
			Outcome:      entity.OutcomeTimeout,
			LatencyMs:    8000,
			QueryText:    "delhi to mumbai",
		}
		require.NoError(t, r.Save(context.Background(), attempt))
		assert.NotEmpty(t, attempt.ID)
		assert.False(t, attempt.CreatedAt.IsZero())
	})

	mt.Run("save error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())
		r := NewMongoAttemptRepository(mt.DB)

		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))
		err := r.Save(context.Background(), &entity.ExtractionAttempt{ID: "dup", Strategy: "keyword"})
		assert.ErrorContains(t, err, "duplicate key")
	})

	mt.Run("summary", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(), mtest.CreateSuccessResponse())
		r := NewMongoAttemptRepository(mt.DB)

		ns := mt.DB.Name() + ".extraction_attempts"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "keyword"}, {Key: "attempts", Value: int64(10)}, {Key: "successes", Value: int64(9)}, {Key: "avgLatencyMs", Value: 1.5}},
			bson.D{{Key: "_id", Value: "openai"}, {Key: "attempts", Value: int64(12)}, {Key: "successes", Value: int64(10)}, {Key: "avgLatencyMs", Value: 940.0}},
		))

		stats, err := r.Summary(context.Background(), time.Now().Add(-time.Hour))
		require.NoError(t, err)
		require.Len(t, stats, 2)
		assert.Equal(t, "keyword", stats[0].Strategy)
		assert.Equal(t, int64(9), stats[0].Successes)
		assert.Equal(t, 940.0, stats[1].AvgLatencyMs)
	})
}
