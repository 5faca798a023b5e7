package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	repo "github.com/jshah-ind/travelbot/internal/interface/repository"
	"github.com/jshah-ind/travelbot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completerFunc func(ctx context.Context, system, user string) (string, error)

func (f completerFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

func staticCompleter(answer string) Completer {
	return completerFunc(func(context.Context, string, string) (string, error) {
		return answer, nil
	})
}

func newTestModelExtractor(t *testing.T, c Completer, opts ...ModelOption) *ModelExtractor {
	t.Helper()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	base := []ModelOption{
		WithModelClock(mockClockAt(now), istLocation(t)),
		WithAirportCatalog(NewAirportCatalog()),
	}
	return NewModelExtractor(StrategyOpenAI, c, logger.NewNopLogger(), append(base, opts...)...)
}

func TestModelExtractorParsesAnswer(t *testing.T) {
	answer := "```json\n" + `{
		"origin": "Delhi",
		"destination": "BOM",
		"departure_date": "2025-03-20",
		"passengers": 2,
		"cabin_class": "business",
		"filters": {"direct_only": true}
	}` + "\n```"

	var gotSystem string
	c := completerFunc(func(_ context.Context, system, user string) (string, error) {
		gotSystem = system
		assert.Equal(t, "delhi to mumbai on 20 march, 2 people business nonstop", user)
		return answer, nil
	})
	m := newTestModelExtractor(t, c)

	f, err := m.Extract(context.Background(), "delhi to mumbai on 20 march, 2 people business nonstop")
	require.NoError(t, err)
	assert.Contains(t, gotSystem, "2025-03-10")
	assert.Equal(t, "DEL", f.Origin.ValueOr(""))
	assert.Equal(t, "BOM", f.Destination.ValueOr(""))
	assert.Equal(t, entity.Date("2025-03-20"), f.DepartureDate.ValueOr(""))
	assert.True(t, f.ReturnDate.IsAbsent())
	assert.Equal(t, 2, f.Passengers())
	assert.Equal(t, entity.CabinBusiness, f.CabinClass.ValueOr(""))
	assert.True(t, f.DirectOnly.ValueOr(false))
	assert.True(t, f.SpecificAirlines.IsAbsent())
}

func TestModelExtractorRelativeDatesOverrideModel(t *testing.T) {
	m := newTestModelExtractor(t, staticCompleter(`{"destination":"GOI","departure_date":"2025-03-12"}`))

	f, err := m.Extract(context.Background(), "goa tomorrow")
	require.NoError(t, err)
	assert.Equal(t, entity.Date("2025-03-11"), f.DepartureDate.ValueOr(""))
}

func TestModelExtractorDropsImplausibleDates(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   entity.Date
	}{
		{"past", `{"departure_date":"2024-12-01"}`, ""},
		{"too far", `{"departure_date":"2028-01-01"}`, ""},
		{"today", `{"departure_date":"2025-03-10"}`, "2025-03-10"},
		{"within horizon", `{"departure_date":"2026-12-31"}`, "2026-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModelExtractor(t, staticCompleter(tt.answer))
			f, err := m.Extract(context.Background(), "flights please")
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.DepartureDate.ValueOr(""))
		})
	}
}

func TestModelExtractorRejectsBadAnswers(t *testing.T) {
	tests := []struct {
		name   string
		answer string
	}{
		{"prose", "Sorry, I can only help with flights."},
		{"unknown cabin", `{"cabin_class":"PREMIUM_PLUS"}`},
		{"bad date", `{"departure_date":"next tuesday"}`},
		{"wrong types", `{"passengers":"two"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModelExtractor(t, staticCompleter(tt.answer))
			f, err := m.Extract(context.Background(), "flights please")
			assert.Nil(t, f)
			assert.ErrorIs(t, err, ErrStrategyUnavailable)
			assert.ErrorIs(t, err, ErrUnparseableResponse)
		})
	}
}

func TestModelExtractorTimeoutIgnoresCallerCancel(t *testing.T) {
	c := completerFunc(func(ctx context.Context, _, _ string) (string, error) {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		<-ctx.Done()
		return "", ctx.Err()
	})
	m := newTestModelExtractor(t, c, WithModelTimeout(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := m.Extract(ctx, "delhi to mumbai")
	assert.ErrorIs(t, err, ErrStrategyUnavailable)
	assert.ErrorIs(t, err, ErrModelTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestModelExtractorTransportError(t *testing.T) {
	c := completerFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("connection refused")
	})
	m := newTestModelExtractor(t, c)

	_, err := m.Extract(context.Background(), "delhi to mumbai")
	assert.ErrorIs(t, err, ErrStrategyUnavailable)
	assert.NotErrorIs(t, err, ErrModelTimeout)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestModelExtractorAirlines(t *testing.T) {
	ctx := context.Background()
	d := NewAirlineDirectory(repo.NewMemoryAirlineRepository(), logger.NewNopLogger())
	require.NoError(t, d.Seed(ctx, DefaultAirlineCatalog()))

	answer := `{"filters":{"specific_airlines":["air-india",{"code":"XY","name":"Flynas"},"Unknown Carrier",{"code":"bad!","name":"Mystery Jet"}]}}`
	m := newTestModelExtractor(t, staticCompleter(answer), WithAirlineDirectory(d, d))

	f, err := m.Extract(ctx, "air india or flynas")
	require.NoError(t, err)
	assert.Equal(t, []string{"AI", "XY"}, f.AirlineCodes())

	rec, ok := d.Lookup("flynas")
	require.True(t, ok)
	assert.Equal(t, "XY", rec.Code)
	assert.Equal(t, int64(1), rec.UsageCount)
}

func TestModelExtractorAnyAirline(t *testing.T) {
	m := newTestModelExtractor(t, staticCompleter(`{"cabin_class":"any","filters":{"specific_airlines":["any"]}}`))

	f, err := m.Extract(context.Background(), "any airline any class")
	require.NoError(t, err)
	assert.True(t, f.SpecificAirlines.IsCleared())
	assert.True(t, f.CabinClass.IsCleared())
}

func TestModelExtractorWithoutDirectoryDropsAirlines(t *testing.T) {
	m := newTestModelExtractor(t, staticCompleter(`{"origin":"DEL","filters":{"specific_airlines":["IndiGo"]}}`))

	f, err := m.Extract(context.Background(), "from delhi on indigo")
	require.NoError(t, err)
	assert.Equal(t, "DEL", f.Origin.ValueOr(""))
	assert.True(t, f.SpecificAirlines.IsAbsent())
}
