package repository

import (
	"context"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
)

// ContextRepository persists one conversation context per owner key
type ContextRepository interface {
	// Get returns ErrNotFound when no context exists. Callers still check
	// expiry since physical deletion is lazy.
	Get(ctx context.Context, ownerKey string) (*entity.ConversationContext, error)
	Save(ctx context.Context, c *entity.ConversationContext) error
	Delete(ctx context.Context, ownerKey string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
