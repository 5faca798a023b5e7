package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
)

// ErrNotFound is returned when a keyed record does not exist
var ErrNotFound = errors.New("record not found")

// AirlineObservation is one sighting of an airline to be upserted
type AirlineObservation struct {
	Code        string
	DisplayName string
	Alias       string // normalized; empty means no alias to attach
	SeenAt      time.Time
}

// AirlineRepository defines the interface for airline operations
type AirlineRepository interface {
	List(ctx context.Context) ([]*entity.AirlineRecord, error)
	GetByCode(ctx context.Context, code string) (*entity.AirlineRecord, error)
	// Upsert atomically creates or updates the record for obs.Code, attaches
	// obs.Alias (moving it from any other code) and bumps usage_count by one.
	Upsert(ctx context.Context, obs AirlineObservation) (*entity.AirlineRecord, error)
	// Seed inserts the record if its code is unseen and adds missing aliases
	// without touching counters.
	Seed(ctx context.Context, seed entity.AirlineSeed, at time.Time) error
}
