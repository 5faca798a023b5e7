package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	"github.com/jshah-ind/travelbot/pkg/logger"
	"github.com/jshah-ind/travelbot/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	name    string
	filters *entity.ExtractedFilters
	err     error
	panics  bool

	mu    sync.Mutex
	calls int
}

func (f *fakeExtractor) Name() string { return f.name }

func (f *fakeExtractor) Extract(ctx context.Context, text string) (*entity.ExtractedFilters, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.panics {
		panic("boom")
	}
	return f.filters, f.err
}

func (f *fakeExtractor) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts []*entity.ExtractionAttempt
	err      error
}

func (r *fakeAttemptRepo) Save(ctx context.Context, a *entity.ExtractionAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("attempt save without deadline")
	}
	r.attempts = append(r.attempts, a)
	return r.err
}

func (r *fakeAttemptRepo) Summary(ctx context.Context, since time.Time) ([]entity.StrategyStats, error) {
	return nil, nil
}

func routeFilters(origin, dest string) *entity.ExtractedFilters {
	return &entity.ExtractedFilters{Origin: entity.Set(origin), Destination: entity.Set(dest)}
}

func testMetrics() *metrics.Metrics {
	return metrics.NewMetricsWithRegisterer("test", prometheus.NewRegistry())
}

func TestOrchestratorFirstSuccessWins(t *testing.T) {
	first := &fakeExtractor{name: "openai", err: errors.New("down")}
	second := &fakeExtractor{name: "keyword_directory", filters: routeFilters("DEL", "BOM")}
	third := &fakeExtractor{name: "keyword", filters: routeFilters("BLR", "MAA")}

	o := NewExtractionOrchestrator([]Extractor{first, second, third}, logger.NewNopLogger())
	assert.Equal(t, []string{"openai", "keyword_directory", "keyword"}, o.Strategies())

	got := o.Resolve(context.Background(), "delhi to mumbai")
	assert.Equal(t, "keyword_directory", got.Strategy)
	assert.Equal(t, "DEL", got.Filters.Origin.ValueOr(""))
	assert.NotEmpty(t, got.ResolutionID)
	assert.Equal(t, 1, first.Calls())
	assert.Equal(t, 1, second.Calls())
	assert.Equal(t, 0, third.Calls())
}

func TestOrchestratorEmptyFallsThrough(t *testing.T) {
	empty := &fakeExtractor{name: "openai", filters: &entity.ExtractedFilters{}}
	nilResult := &fakeExtractor{name: "gemini"}
	clearedOnly := &fakeExtractor{name: "keyword", filters: &entity.ExtractedFilters{CabinClass: entity.Cleared[entity.CabinClass]()}}

	o := NewExtractionOrchestrator([]Extractor{empty, nilResult, clearedOnly}, logger.NewNopLogger())
	got := o.Resolve(context.Background(), "any class")
	assert.Equal(t, "keyword", got.Strategy)
	assert.True(t, got.Filters.CabinClass.IsCleared())
}

func TestOrchestratorAllFail(t *testing.T) {
	attempts := &fakeAttemptRepo{}
	m := testMetrics()
	o := NewExtractionOrchestrator([]Extractor{
		&fakeExtractor{name: "openai", err: ErrModelTimeout},
		&fakeExtractor{name: "gemini", panics: true},
		&fakeExtractor{name: "keyword", filters: &entity.ExtractedFilters{}},
	}, logger.NewNopLogger(), WithAttemptRepository(attempts), WithOrchestratorMetrics(m))

	got := o.Resolve(context.Background(), "hello")
	assert.Equal(t, StrategyNone, got.Strategy)
	require.NotNil(t, got.Filters)
	assert.True(t, got.Filters.IsEmpty())

	require.Len(t, attempts.attempts, 3)
	assert.Equal(t, entity.OutcomeTimeout, attempts.attempts[0].Outcome)
	assert.Equal(t, entity.OutcomePanic, attempts.attempts[1].Outcome)
	assert.Contains(t, attempts.attempts[1].Error, "boom")
	assert.Equal(t, entity.OutcomeEmpty, attempts.attempts[2].Outcome)
	for i, a := range attempts.attempts {
		assert.Equal(t, i, a.Position)
		assert.Equal(t, got.ResolutionID, a.ResolutionID)
		assert.Equal(t, "hello", a.QueryText)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions.WithLabelValues(StrategyNone)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StrategyAttempts.WithLabelValues("gemini", "panic")))
}

func TestOrchestratorEmptyChain(t *testing.T) {
	o := NewExtractionOrchestrator(nil, logger.NewNopLogger())
	got := o.Resolve(context.Background(), "delhi to mumbai")
	assert.Equal(t, StrategyNone, got.Strategy)
	assert.True(t, got.Filters.IsEmpty())
}

func TestOrchestratorRecordFailureDoesNotAffectResult(t *testing.T) {
	attempts := &fakeAttemptRepo{err: errors.New("mongo down")}
	o := NewExtractionOrchestrator([]Extractor{
		&fakeExtractor{name: "keyword", filters: routeFilters("DEL", "GOI")},
	}, logger.NewNopLogger(), WithAttemptRepository(attempts))

	got := o.Resolve(context.Background(), "delhi to goa")
	assert.Equal(t, "keyword", got.Strategy)
	require.Len(t, attempts.attempts, 1)
	assert.Equal(t, entity.OutcomeSuccess, attempts.attempts[0].Outcome)
}

func TestOrchestratorRecordsAirlineCodes(t *testing.T) {
	attempts := &fakeAttemptRepo{}
	f := routeFilters("DEL", "DXB")
	f.AddAirline(entity.AirlineRef{Code: "EK", Name: "Emirates"})
	o := NewExtractionOrchestrator([]Extractor{&fakeExtractor{name: "openai", filters: f}},
		logger.NewNopLogger(), WithAttemptRepository(attempts))

	o.Resolve(context.Background(), "emirates to dubai")
	require.Len(t, attempts.attempts, 1)
	assert.Equal(t, []string{"EK"}, attempts.attempts[0].AirlineCodes)
}

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		err  error
		want entity.AttemptOutcome
	}{
		{ErrModelTimeout, entity.OutcomeTimeout},
		{context.DeadlineExceeded, entity.OutcomeTimeout},
		{ErrUnparseableResponse, entity.OutcomeParseError},
		{ErrDirectoryUnavailable, entity.OutcomeUnavailable},
		{errors.New("other"), entity.OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, classifyFailure(tt.err))
		})
	}
}
