package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	repo "github.com/jshah-ind/travelbot/internal/interface/repository"
	"github.com/jshah-ind/travelbot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingLearner struct{}

func (failingLearner) Learn(ctx context.Context, code, displayName, rawMention string) (*entity.AirlineRecord, error) {
	return nil, errors.New("db down")
}

func TestInventoryLearnerLearnsDistinctCarriers(t *testing.T) {
	ctx := context.Background()
	d := NewAirlineDirectory(repo.NewMemoryAirlineRepository(), logger.NewNopLogger())
	require.NoError(t, d.Seed(ctx, DefaultAirlineCatalog()))
	l := NewInventoryLearner(d, logger.NewNopLogger())

	n, err := l.LearnFromOffers(ctx, []CarrierObservation{
		{Code: "6e", Name: "IndiGo"},
		{Code: "6E", Name: "indigo"},
		{Code: "XY", Name: "flynas"},
		{Code: "", Name: "Unknown"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rec, ok := d.Lookup("flynas")
	require.True(t, ok)
	assert.Equal(t, "XY", rec.Code)

	rec, ok = d.Lookup("indigo")
	require.True(t, ok)
	assert.Equal(t, int64(1), rec.UsageCount)
}

func TestInventoryLearnerAllFailed(t *testing.T) {
	l := NewInventoryLearner(failingLearner{}, logger.NewNopLogger())

	n, err := l.LearnFromOffers(context.Background(), []CarrierObservation{{Code: "AI", Name: "Air India"}})
	assert.Equal(t, 0, n)
	assert.ErrorContains(t, err, "db down")
}

func TestInventoryLearnerNothingToLearn(t *testing.T) {
	l := NewInventoryLearner(failingLearner{}, logger.NewNopLogger())

	n, err := l.LearnFromOffers(context.Background(), nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, n)
}
