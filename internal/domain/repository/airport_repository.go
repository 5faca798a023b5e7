package repository

import (
	"context"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
)

// AirportRepository defines the interface for airport lookups
type AirportRepository interface {
	GetByAirportCode(ctx context.Context, code string) (*entity.Airport, error)
	List(ctx context.Context) ([]*entity.Airport, error)
}
