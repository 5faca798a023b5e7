package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	"github.com/jshah-ind/travelbot/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAirlineRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryAirlineRepository()
	t0 := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	rec, err := r.Upsert(ctx, repository.AirlineObservation{Code: "AI", DisplayName: "Air India", Alias: "airindia", SeenAt: t0})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.UsageCount)
	assert.Equal(t, t0, rec.FirstSeen)

	// older observation keeps last_seen, blank name keeps display name
	rec, err = r.Upsert(ctx, repository.AirlineObservation{Code: "AI", Alias: "airindia", SeenAt: t0.Add(-time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.UsageCount)
	assert.Equal(t, t0, rec.LastSeen)
	assert.Equal(t, "Air India", rec.DisplayName)
	assert.Equal(t, []string{"airindia"}, rec.Aliases)

	_, err = r.GetByCode(ctx, "ZZ")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemoryAirlineRepositoryAliasMoves(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryAirlineRepository()
	now := time.Now()

	require.NoError(t, r.Seed(ctx, entity.AirlineSeed{Code: "IX", DisplayName: "Air India Express", Aliases: []string{"aiexpress"}}, now))
	// seeding never steals an alias
	require.NoError(t, r.Seed(ctx, entity.AirlineSeed{Code: "AI", DisplayName: "Air India", Aliases: []string{"airindia", "aiexpress"}}, now))

	ix, err := r.GetByCode(ctx, "IX")
	require.NoError(t, err)
	assert.Equal(t, []string{"aiexpress"}, ix.Aliases)

	_, err = r.Upsert(ctx, repository.AirlineObservation{Code: "AI", Alias: "aiexpress", SeenAt: now})
	require.NoError(t, err)

	ix, err = r.GetByCode(ctx, "IX")
	require.NoError(t, err)
	assert.Empty(t, ix.Aliases)

	ai, err := r.GetByCode(ctx, "AI")
	require.NoError(t, err)
	assert.Equal(t, []string{"aiexpress", "airindia"}, ai.Aliases)
	assert.Equal(t, int64(1), ai.UsageCount)

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "AI", all[0].Code)
}

func TestMemoryContextRepository(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryContextRepository()
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, r.Save(ctx, sampleContext("a", now, time.Minute)))
	require.NoError(t, r.Save(ctx, sampleContext("b", now, time.Hour)))

	got, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "DEL", got.Filters.Origin.ValueOr(""))

	n, err := r.DeleteExpired(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = r.Get(ctx, "a")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, r.Delete(ctx, "b"))
	_, err = r.Get(ctx, "b")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
