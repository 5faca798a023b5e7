package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	"github.com/jshah-ind/travelbot/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormContextRepository implements the ContextRepository interface
type GormContextRepository struct {
	db *gorm.DB
}

// NewGormContextRepository creates a new GORM conversation context repository
func NewGormContextRepository(db *gorm.DB) repository.ContextRepository {
	return &GormContextRepository{
		db: db,
	}
}

// ConversationContexts GORM model for database mapping
type ConversationContexts struct {
	OwnerKey      string                  `gorm:"column:owner_key;primaryKey"`
	Filters       entity.ExtractedFilters `gorm:"column:filters;type:jsonb;serializer:json"`
	OriginalQuery string                  `gorm:"column:original_query"`
	CreatedAt     time.Time               `gorm:"column:created_at"`
	ExpiresAt     time.Time               `gorm:"column:expires_at;index"`
}

// TableName overrides the default table name
func (ConversationContexts) TableName() string {
	return "conversation_contexts"
}

// Get finds the context stored for ownerKey, expired or not
func (r *GormContextRepository) Get(ctx context.Context, ownerKey string) (*entity.ConversationContext, error) {
	var row ConversationContexts
	result := r.db.WithContext(ctx).Where("owner_key = ?", ownerKey).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get context for %s: %w", ownerKey, result.Error)
	}

	return &entity.ConversationContext{
		OwnerKey:      row.OwnerKey,
		Filters:       row.Filters,
		OriginalQuery: row.OriginalQuery,
		CreatedAt:     row.CreatedAt,
		ExpiresAt:     row.ExpiresAt,
	}, nil
}

// Save replaces the owner's context
func (r *GormContextRepository) Save(ctx context.Context, c *entity.ConversationContext) error {
	row := ConversationContexts{
		OwnerKey:      c.OwnerKey,
		Filters:       c.Filters,
		OriginalQuery: c.OriginalQuery,
		CreatedAt:     c.CreatedAt,
		ExpiresAt:     c.ExpiresAt,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"filters", "original_query", "created_at", "expires_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save context for %s: %w", c.OwnerKey, err)
	}
	return nil
}

// Delete removes the owner's context if present
func (r *GormContextRepository) Delete(ctx context.Context, ownerKey string) error {
	err := r.db.WithContext(ctx).Where("owner_key = ?", ownerKey).Delete(&ConversationContexts{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete context for %s: %w", ownerKey, err)
	}
	return nil
}

// DeleteExpired physically removes contexts whose expiry has passed
func (r *GormContextRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&ConversationContexts{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired contexts: %w", result.Error)
	}
	return result.RowsAffected, nil
}
