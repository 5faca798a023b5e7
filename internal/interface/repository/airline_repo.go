package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	"github.com/jshah-ind/travelbot/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAirlineRepository implements the AirlineRepository interface
type GormAirlineRepository struct {
	db *gorm.DB
}

// NewGormAirlineRepository creates a new GORM airline repository
func NewGormAirlineRepository(db *gorm.DB) repository.AirlineRepository {
	return &GormAirlineRepository{
		db: db,
	}
}

// Airlines GORM model for database mapping
type Airlines struct {
	Code        string    `gorm:"column:code;primaryKey;size:8"`
	DisplayName string    `gorm:"column:display_name"`
	FirstSeen   time.Time `gorm:"column:first_seen"`
	LastSeen    time.Time `gorm:"column:last_seen"`
	UsageCount  int64     `gorm:"column:usage_count"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the default table name
func (Airlines) TableName() string {
	return "airlines"
}

// AirlineAliases maps a normalized alias to exactly one airline code
type AirlineAliases struct {
	Alias       string `gorm:"column:alias;primaryKey"`
	AirlineCode string `gorm:"column:airline_code;index;size:8"`
	UpdatedAt   time.Time
}

// TableName overrides the default table name
func (AirlineAliases) TableName() string {
	return "airline_aliases"
}

// List returns every airline with its aliases
func (r *GormAirlineRepository) List(ctx context.Context) ([]*entity.AirlineRecord, error) {
	var airlines []Airlines
	if err := r.db.WithContext(ctx).Order("code").Find(&airlines).Error; err != nil {
		return nil, fmt.Errorf("failed to list airlines: %w", err)
	}

	var aliases []AirlineAliases
	if err := r.db.WithContext(ctx).Order("alias").Find(&aliases).Error; err != nil {
		return nil, fmt.Errorf("failed to list airline aliases: %w", err)
	}

	byCode := make(map[string][]string, len(airlines))
	for _, a := range aliases {
		byCode[a.AirlineCode] = append(byCode[a.AirlineCode], a.Alias)
	}

	records := make([]*entity.AirlineRecord, 0, len(airlines))
	for _, a := range airlines {
		records = append(records, toAirlineRecord(a, byCode[a.Code]))
	}
	return records, nil
}

// GetByCode finds an airline by code
func (r *GormAirlineRepository) GetByCode(ctx context.Context, code string) (*entity.AirlineRecord, error) {
	return getAirline(r.db.WithContext(ctx), code)
}

// Upsert creates or updates the airline and moves the alias onto it.
// INSERT ... ON CONFLICT increments usage_count under the row lock so
// concurrent learners never lose an update.
func (r *GormAirlineRepository) Upsert(ctx context.Context, obs repository.AirlineObservation) (*entity.AirlineRecord, error) {
	var record *entity.AirlineRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := Airlines{
			Code:        obs.Code,
			DisplayName: obs.DisplayName,
			FirstSeen:   obs.SeenAt,
			LastSeen:    obs.SeenAt,
			UsageCount:  1,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "code"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"usage_count":  gorm.Expr("airlines.usage_count + 1"),
				"last_seen":    gorm.Expr("GREATEST(airlines.last_seen, EXCLUDED.last_seen)"),
				"display_name": gorm.Expr("COALESCE(NULLIF(EXCLUDED.display_name, ''), airlines.display_name)"),
				"updated_at":   obs.SeenAt,
			}),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("failed to upsert airline %s: %w", obs.Code, err)
		}

		if obs.Alias != "" {
			alias := AirlineAliases{Alias: obs.Alias, AirlineCode: obs.Code, UpdatedAt: obs.SeenAt}
			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "alias"}},
				DoUpdates: clause.AssignmentColumns([]string{"airline_code", "updated_at"}),
			}).Create(&alias).Error
			if err != nil {
				return fmt.Errorf("failed to upsert alias %s: %w", obs.Alias, err)
			}
		}

		record, err = getAirline(tx, obs.Code)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Seed inserts catalog entries without touching learned counters
func (r *GormAirlineRepository) Seed(ctx context.Context, seed entity.AirlineSeed, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := Airlines{
			Code:        seed.Code,
			DisplayName: seed.DisplayName,
			FirstSeen:   at,
			LastSeen:    at,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to seed airline %s: %w", seed.Code, err)
		}
		for _, a := range seed.Aliases {
			alias := AirlineAliases{Alias: a, AirlineCode: seed.Code, UpdatedAt: at}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&alias).Error; err != nil {
				return fmt.Errorf("failed to seed alias %s: %w", a, err)
			}
		}
		return nil
	})
}

func getAirline(db *gorm.DB, code string) (*entity.AirlineRecord, error) {
	var airline Airlines
	result := db.Where("code = ?", code).First(&airline)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get airline %s: %w", code, result.Error)
	}

	var aliases []AirlineAliases
	if err := db.Where("airline_code = ?", code).Find(&aliases).Error; err != nil {
		return nil, fmt.Errorf("failed to get aliases for %s: %w", code, err)
	}
	names := make([]string, 0, len(aliases))
	for _, a := range aliases {
		names = append(names, a.Alias)
	}
	sort.Strings(names)

	return toAirlineRecord(airline, names), nil
}

// Convert GORM model to domain entity
func toAirlineRecord(a Airlines, aliases []string) *entity.AirlineRecord {
	if aliases == nil {
		aliases = []string{}
	}
	return &entity.AirlineRecord{
		Code:        a.Code,
		DisplayName: a.DisplayName,
		Aliases:     aliases,
		FirstSeen:   a.FirstSeen,
		LastSeen:    a.LastSeen,
		UsageCount:  a.UsageCount,
	}
}
