package repository

import (
	"context"
	"sync"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	"github.com/jshah-ind/travelbot/internal/domain/repository"
)

// MemoryContextRepository keeps contexts in process memory
type MemoryContextRepository struct {
	mu       sync.RWMutex
	contexts map[string]entity.ConversationContext
}

// NewMemoryContextRepository creates an empty in-memory context repository
func NewMemoryContextRepository() repository.ContextRepository {
	return &MemoryContextRepository{
		contexts: make(map[string]entity.ConversationContext),
	}
}

func (r *MemoryContextRepository) Get(ctx context.Context, ownerKey string) (*entity.ConversationContext, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contexts[ownerKey]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *MemoryContextRepository) Save(ctx context.Context, c *entity.ConversationContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.contexts[c.OwnerKey] = *c
	return nil
}

func (r *MemoryContextRepository) Delete(ctx context.Context, ownerKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.contexts, ownerKey)
	return nil
}

func (r *MemoryContextRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for key, c := range r.contexts {
		if !c.IsLive(now) {
			delete(r.contexts, key)
			n++
		}
	}
	return n, nil
}
