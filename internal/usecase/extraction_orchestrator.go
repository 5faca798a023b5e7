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
	"github.com/google/uuid"
)

const attemptRecordTimeout = 500 * time.Millisecond

// Extraction is the orchestrator's answer for one query
type Extraction struct {
	ResolutionID string
	Strategy     string
	Filters      *entity.ExtractedFilters
}

// ExtractionOrchestrator runs extractors in order and returns the first
// non-empty result. Later strategies only run when earlier ones failed.
type ExtractionOrchestrator struct {
	strategies []Extractor
	attempts   repository.AttemptRepository
	metrics    *metrics.Metrics
	clock      clock.Clock
	logger     logger.Logger
}

// OrchestratorOption configures an ExtractionOrchestrator
type OrchestratorOption func(*ExtractionOrchestrator)

// WithAttemptRepository records every attempt for analytics
func WithAttemptRepository(r repository.AttemptRepository) OrchestratorOption {
	return func(o *ExtractionOrchestrator) { o.attempts = r }
}

// WithOrchestratorMetrics enables prometheus reporting
func WithOrchestratorMetrics(m *metrics.Metrics) OrchestratorOption {
	return func(o *ExtractionOrchestrator) { o.metrics = m }
}

// WithOrchestratorClock sets the clock used for latencies and timestamps
func WithOrchestratorClock(c clock.Clock) OrchestratorOption {
	return func(o *ExtractionOrchestrator) { o.clock = c }
}

// NewExtractionOrchestrator creates an orchestrator over strategies in
// the given order
func NewExtractionOrchestrator(strategies []Extractor, log logger.Logger, opts ...OrchestratorOption) *ExtractionOrchestrator {
	o := &ExtractionOrchestrator{
		strategies: strategies,
		clock:      clock.New(),
		logger:     log.With("component", "extraction_orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Strategies returns the chain's strategy names in order
func (o *ExtractionOrchestrator) Strategies() []string {
	names := make([]string, len(o.strategies))
	for i, s := range o.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve never fails. When every strategy comes back empty it returns an
// all-absent filter set attributed to StrategyNone.
func (o *ExtractionOrchestrator) Resolve(ctx context.Context, text string) Extraction {
	resolutionID := uuid.NewString()
	log := o.logger.With("resolution_id", resolutionID)

	for i, s := range o.strategies {
		start := o.clock.Now()
		filters, outcome, err := o.run(ctx, s, text)
		latency := o.clock.Now().Sub(start)

		o.record(ctx, &entity.ExtractionAttempt{
			ResolutionID: resolutionID,
			Strategy:     s.Name(),
			Position:     i,
			Outcome:      outcome,
			LatencyMs:    latency.Milliseconds(),
			QueryText:    text,
			AirlineCodes: airlineCodes(filters),
			Error:        errString(err),
			CreatedAt:    start,
		}, latency)

		if outcome == entity.OutcomeSuccess {
			log.Info("Query resolved", "strategy", s.Name(), "position", i, "latency_ms", latency.Milliseconds())
			o.observeResolution(s.Name())
			return Extraction{ResolutionID: resolutionID, Strategy: s.Name(), Filters: filters}
		}
		log.Info("Extraction strategy yielded no result", "strategy", s.Name(), "outcome", outcome, "error", err)
	}

	log.Warn("All extraction strategies yielded no result", "strategies", len(o.strategies))
	o.observeResolution(StrategyNone)
	return Extraction{ResolutionID: resolutionID, Strategy: StrategyNone, Filters: &entity.ExtractedFilters{}}
}

// run invokes one strategy, converting panics into failures
func (o *ExtractionOrchestrator) run(ctx context.Context, s Extractor, text string) (filters *entity.ExtractedFilters, outcome entity.AttemptOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			filters, outcome, err = nil, entity.OutcomePanic, fmt.Errorf("%s: %w: panic: %v", s.Name(), ErrStrategyUnavailable, r)
		}
	}()

	filters, err = s.Extract(ctx, text)
	switch {
	case err != nil:
		return nil, classifyFailure(err), err
	case filters.IsEmpty():
		return nil, entity.OutcomeEmpty, nil
	}
	return filters, entity.OutcomeSuccess, nil
}

func classifyFailure(err error) entity.AttemptOutcome {
	switch {
	case errors.Is(err, ErrModelTimeout), errors.Is(err, context.DeadlineExceeded):
		return entity.OutcomeTimeout
	case errors.Is(err, ErrUnparseableResponse):
		return entity.OutcomeParseError
	case errors.Is(err, ErrDirectoryUnavailable):
		return entity.OutcomeUnavailable
	}
	return entity.OutcomeError
}

// record reports the attempt; failures here never affect resolution
func (o *ExtractionOrchestrator) record(ctx context.Context, attempt *entity.ExtractionAttempt, latency time.Duration) {
	if o.metrics != nil {
		o.metrics.StrategyAttempts.WithLabelValues(attempt.Strategy, string(attempt.Outcome)).Inc()
		o.metrics.StrategyLatency.WithLabelValues(attempt.Strategy).Observe(latency.Seconds())
	}
	if o.attempts == nil {
		return
	}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), attemptRecordTimeout)
	defer cancel()
	if err := o.attempts.Save(recordCtx, attempt); err != nil {
		o.logger.Warn("Failed to record extraction attempt", "strategy", attempt.Strategy, "error", err)
		if o.metrics != nil {
			o.metrics.ErrorsCount.WithLabelValues("record_attempt").Inc()
		}
	}
}

func (o *ExtractionOrchestrator) observeResolution(strategy string) {
	if o.metrics != nil {
		o.metrics.Resolutions.WithLabelValues(strategy).Inc()
	}
}

func airlineCodes(f *entity.ExtractedFilters) []string {
	if f == nil {
		return nil
	}
	return f.AirlineCodes()
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
