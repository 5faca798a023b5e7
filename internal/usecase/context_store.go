package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	"github.com/jshah-ind/travelbot/internal/domain/repository"
	"github.com/jshah-ind/travelbot/pkg/logger"
	"github.com/jshah-ind/travelbot/pkg/metrics"

	"github.com/facebookgo/clock"
)

// DefaultContextTTL is how long a resolved context stays live after its
// last write
const DefaultContextTTL = 30 * time.Minute

// ErrInvalidOwnerKey is returned for a blank owner key
var ErrInvalidOwnerKey = errors.New("invalid owner key")

// ConversationContextStore keeps the last resolved filters per owner and
// merges new turns into them. Merges for one owner are serialized; merges
// for different owners never wait on each other.
type ConversationContextStore struct {
	repo    repository.ContextRepository
	merger  *ContextMerger
	clock   clock.Clock
	ttl     time.Duration
	locks   *keyedMutex
	metrics *metrics.Metrics
	logger  logger.Logger
}

// StoreOption configures a ConversationContextStore
type StoreOption func(*ConversationContextStore)

// WithContextTTL overrides DefaultContextTTL
func WithContextTTL(ttl time.Duration) StoreOption {
	return func(s *ConversationContextStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithStoreClock sets the clock used for expiry
func WithStoreClock(c clock.Clock) StoreOption {
	return func(s *ConversationContextStore) { s.clock = c }
}

// WithStoreMetrics enables prometheus reporting
func WithStoreMetrics(m *metrics.Metrics) StoreOption {
	return func(s *ConversationContextStore) { s.metrics = m }
}

// NewConversationContextStore creates a store over repo
func NewConversationContextStore(repo repository.ContextRepository, merger *ContextMerger, log logger.Logger, opts ...StoreOption) *ConversationContextStore {
	s := &ConversationContextStore{
		repo:   repo,
		merger: merger,
		clock:  clock.New(),
		ttl:    DefaultContextTTL,
		locks:  newKeyedMutex(),
		logger: log.With("component", "context_store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the configured context lifetime
func (s *ConversationContextStore) TTL() time.Duration {
	return s.ttl
}

// Merge reads the owner's live context, merges next into it and writes the
// result back with a fresh expiry. An all-absent result is returned but
// not stored; it replaces any prior context by deleting it.
func (s *ConversationContextStore) Merge(ctx context.Context, ownerKey, queryText string, next *entity.ExtractedFilters) (*entity.ExtractedFilters, error) {
	if ownerKey == "" {
		return nil, ErrInvalidOwnerKey
	}

	unlock := s.locks.Lock(ownerKey)
	defer unlock()

	now := s.clock.Now()
	prior, err := s.live(ctx, ownerKey, now)
	if err != nil {
		return nil, err
	}

	var priorFilters *entity.ExtractedFilters
	createdAt := now
	if prior != nil {
		priorFilters = &prior.Filters
		createdAt = prior.CreatedAt
	}

	result := s.merger.Merge(priorFilters, next)
	if s.metrics != nil {
		s.metrics.ContextMerges.WithLabelValues(string(result.Turn)).Inc()
	}
	s.logger.Debug("Merged conversation turn", "owner", ownerKey, "turn", result.Turn, "had_context", prior != nil)

	if result.Filters.IsEmpty() {
		if prior != nil {
			if err := s.repo.Delete(ctx, ownerKey); err != nil {
				s.countError("context_delete")
				return nil, fmt.Errorf("failed to clear context: %w", err)
			}
		}
		return &result.Filters, nil
	}

	err = s.repo.Save(ctx, &entity.ConversationContext{
		OwnerKey:      ownerKey,
		Filters:       result.Filters,
		OriginalQuery: queryText,
		CreatedAt:     createdAt,
		ExpiresAt:     now.Add(s.ttl),
	})
	if err != nil {
		s.countError("context_save")
		return nil, fmt.Errorf("failed to store context: %w", err)
	}
	return &result.Filters, nil
}

// Get returns the owner's live context or repository.ErrNotFound
func (s *ConversationContextStore) Get(ctx context.Context, ownerKey string) (*entity.ConversationContext, error) {
	c, err := s.live(ctx, ownerKey, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

// Clear drops the owner's context
func (s *ConversationContextStore) Clear(ctx context.Context, ownerKey string) error {
	unlock := s.locks.Lock(ownerKey)
	defer unlock()

	if err := s.repo.Delete(ctx, ownerKey); err != nil {
		s.countError("context_delete")
		return fmt.Errorf("failed to clear context: %w", err)
	}
	return nil
}

// live reads the context and treats an expired one as absent
func (s *ConversationContextStore) live(ctx context.Context, ownerKey string, now time.Time) (*entity.ConversationContext, error) {
	c, err := s.repo.Get(ctx, ownerKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		s.countError("context_get")
		return nil, fmt.Errorf("failed to read context: %w", err)
	}
	if !c.IsLive(now) {
		return nil, nil
	}
	return c, nil
}

// Sweep physically deletes expired contexts
func (s *ConversationContextStore) Sweep(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.clock.Now())
	if err != nil {
		s.countError("context_sweep")
		return 0, fmt.Errorf("failed to sweep contexts: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ContextsSwept.Add(float64(n))
	}
	return n, nil
}

// RunSweeper sweeps every interval until ctx is done
func (s *ConversationContextStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := s.clock.Ticker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Context sweeper stopped")
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				s.logger.Error("Error sweeping contexts", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info("Swept expired contexts", "count", n)
			}
		}
	}
}

func (s *ConversationContextStore) countError(op string) {
	if s.metrics != nil {
		s.metrics.ErrorsCount.WithLabelValues(op).Inc()
	}
}
