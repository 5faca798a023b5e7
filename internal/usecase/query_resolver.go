package usecase

import (
	"context"
	"strings"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	"github.com/jshah-ind/travelbot/pkg/logger"
	"github.com/jshah-ind/travelbot/pkg/metrics"

	"github.com/facebookgo/clock"
)

// FilterResolver turns text into filters without ever failing
type FilterResolver interface {
	Resolve(ctx context.Context, text string) Extraction
}

// ContextMergeStore stores and merges per-owner filters
type ContextMergeStore interface {
	Merge(ctx context.Context, ownerKey, queryText string, next *entity.ExtractedFilters) (*entity.ExtractedFilters, error)
}

// QueryResolver is the entry point the chat layer calls for every turn
type QueryResolver struct {
	extractor FilterResolver
	store     ContextMergeStore
	metrics   *metrics.Metrics
	clock     clock.Clock
	logger    logger.Logger
}

// NewQueryResolver wires extraction and context merging together
func NewQueryResolver(extractor FilterResolver, store ContextMergeStore, log logger.Logger, m *metrics.Metrics) *QueryResolver {
	return &QueryResolver{
		extractor: extractor,
		store:     store,
		metrics:   m,
		clock:     clock.New(),
		logger:    log.With("component", "query_resolver"),
	}
}

type resolveResult struct {
	filters *entity.ExtractedFilters
	err     error
}

// ResolveAndMerge extracts filters from queryText and merges them into the
// owner's conversation context. Only context store failures are returned.
//
// The work runs detached from ctx: if the caller gives up, it gets
// ctx.Err() while extraction and the context write still complete.
func (r *QueryResolver) ResolveAndMerge(ctx context.Context, ownerKey, queryText string) (*entity.ExtractedFilters, error) {
	ownerKey = strings.TrimSpace(ownerKey)
	if ownerKey == "" {
		return nil, ErrInvalidOwnerKey
	}

	done := make(chan resolveResult, 1)
	go func() {
		filters, err := r.resolve(context.WithoutCancel(ctx), ownerKey, queryText)
		done <- resolveResult{filters: filters, err: err}
	}()

	select {
	case res := <-done:
		return res.filters, res.err
	case <-ctx.Done():
		r.logger.Warn("Caller abandoned resolution", "owner", ownerKey, "error", ctx.Err())
		return nil, ctx.Err()
	}
}

func (r *QueryResolver) resolve(ctx context.Context, ownerKey, queryText string) (*entity.ExtractedFilters, error) {
	start := r.clock.Now()
	extraction := r.extractor.Resolve(ctx, queryText)

	merged, err := r.store.Merge(ctx, ownerKey, queryText, extraction.Filters)
	if err != nil {
		r.logger.Error("Failed to merge conversation context", "owner", ownerKey, "error", err)
		return nil, err
	}

	if r.metrics != nil {
		r.metrics.ResolveTime.Observe(r.clock.Now().Sub(start).Seconds())
	}
	r.logger.Info("Resolved query",
		"owner", ownerKey,
		"resolution_id", extraction.ResolutionID,
		"strategy", extraction.Strategy,
	)
	return merged, nil
}
