package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	"github.com/jshah-ind/travelbot/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAirportRepository implements the AirportRepository interface
type GormAirportRepository struct {
	db *gorm.DB
}

// NewGormAirportRepository creates a new GORM airport repository
func NewGormAirportRepository(db *gorm.DB) repository.AirportRepository {
	return &GormAirportRepository{
		db: db,
	}
}

// Timezonelist GORM model for the shared airport/timezone reference table
type Timezonelist struct {
	ID          uint           `gorm:"primaryKey"`
	AirportCode string         `gorm:"column:airportcode;unique"`
	AirportName string         `gorm:"column:airport_name"`
	CityCode    string         `gorm:"column:citycode"`
	CityName    string         `gorm:"column:cityname"`
	GmtTz       string         `gorm:"column:gmttz"`
	TzName      string         `gorm:"column:tzname"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the default table name
func (Timezonelist) TableName() string {
	return "m_timezone_list"
}

// GetByAirportCode finds an airport by IATA code
func (r *GormAirportRepository) GetByAirportCode(ctx context.Context, code string) (*entity.Airport, error) {
	var row Timezonelist
	result := r.db.WithContext(ctx).Where("airportcode = ?", code).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get airport %s: %w", code, result.Error)
	}
	return toAirport(row), nil
}

// List returns every airport in the reference table
func (r *GormAirportRepository) List(ctx context.Context) ([]*entity.Airport, error) {
	var rows []Timezonelist
	if err := r.db.WithContext(ctx).Order("airportcode").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list airports: %w", err)
	}
	airports := make([]*entity.Airport, 0, len(rows))
	for _, row := range rows {
		airports = append(airports, toAirport(row))
	}
	return airports, nil
}

func toAirport(row Timezonelist) *entity.Airport {
	return &entity.Airport{
		AirportCode: row.AirportCode,
		AirportName: row.AirportName,
		CityCode:    row.CityCode,
		CityName:    row.CityName,
		TzName:      row.TzName,
	}
}
