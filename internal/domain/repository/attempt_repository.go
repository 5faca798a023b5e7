package repository

import (
	"context"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
)

// AttemptRepository stores extraction attempts for analytics
type AttemptRepository interface {
	Save(ctx context.Context, attempt *entity.ExtractionAttempt) error
	Summary(ctx context.Context, since time.Time) ([]entity.StrategyStats, error)
}
