package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	"github.com/jshah-ind/travelbot/internal/domain/repository"
	repo "github.com/jshah-ind/travelbot/internal/interface/repository"
	"github.com/jshah-ind/travelbot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listOnlyRepo serves a fixed record set, for index behaviour tests
type listOnlyRepo struct {
	repository.AirlineRepository
	records []*entity.AirlineRecord
	err     error
	calls   int
	mu      sync.Mutex
}

func (r *listOnlyRepo) List(ctx context.Context) ([]*entity.AirlineRecord, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return r.records, r.err
}

func newSeededDirectory(t *testing.T) *AirlineDirectory {
	t.Helper()
	mock := mockClockAt(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	d := NewAirlineDirectory(repo.NewMemoryAirlineRepository(), logger.NewNopLogger(), WithDirectoryClock(mock))
	require.NoError(t, d.Seed(context.Background(), DefaultAirlineCatalog()))
	return d
}

func TestDirectoryNotReadyUntilLoaded(t *testing.T) {
	d := NewAirlineDirectory(repo.NewMemoryAirlineRepository(), logger.NewNopLogger())
	assert.False(t, d.Ready())

	require.NoError(t, d.Refresh(context.Background()))
	assert.True(t, d.Ready())
}

func TestDirectoryRefreshError(t *testing.T) {
	d := NewAirlineDirectory(&listOnlyRepo{err: errors.New("db down")}, logger.NewNopLogger())
	assert.Error(t, d.Refresh(context.Background()))
	assert.False(t, d.Ready())
}

func TestDirectoryLookupSpellings(t *testing.T) {
	d := newSeededDirectory(t)

	for _, mention := range []string{"air-india", "air_india", "airindia", "Air India", "AIR INDIA", "AI"} {
		t.Run(mention, func(t *testing.T) {
			rec, ok := d.Lookup(mention)
			require.True(t, ok)
			assert.Equal(t, "AI", rec.Code)
			assert.Equal(t, "Air India", rec.DisplayName)
		})
	}
}

func TestDirectoryLookupFuzzy(t *testing.T) {
	d := newSeededDirectory(t)

	tests := []struct {
		mention string
		code    string
	}{
		{"air indai", "AI"},
		{"indgo", "6E"},
		{"spicjet", "SG"},
		{"emirats", "EK"},
	}
	for _, tt := range tests {
		t.Run(tt.mention, func(t *testing.T) {
			rec, ok := d.Lookup(tt.mention)
			require.True(t, ok)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestDirectoryLookupMiss(t *testing.T) {
	d := newSeededDirectory(t)

	for _, mention := range []string{"", "delhi", "zz", "mumbai", "cheapest", "india", "indian", "thailand", "oman", "singapore"} {
		_, ok := d.Lookup(mention)
		assert.False(t, ok, mention)
	}
}

func TestDirectoryTieBreak(t *testing.T) {
	tests := []struct {
		name    string
		usageA  int64
		usageB  int64
		mention string
		want    string
	}{
		{"exact name prefers usage", 1, 5, "Skyway", "XB"},
		{"exact name prefers smaller code", 3, 3, "skyway", "XA"},
		{"fuzzy prefers usage", 1, 5, "skywai", "XB"},
		{"fuzzy prefers smaller code", 2, 2, "skywai", "XA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewAirlineDirectory(&listOnlyRepo{records: []*entity.AirlineRecord{
				{Code: "XB", DisplayName: "Skyway", UsageCount: tt.usageB},
				{Code: "XA", DisplayName: "Skyway", UsageCount: tt.usageA},
			}}, logger.NewNopLogger())
			require.NoError(t, d.Refresh(context.Background()))

			rec, ok := d.Lookup(tt.mention)
			require.True(t, ok)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestDirectoryThresholdOption(t *testing.T) {
	d := NewAirlineDirectory(repo.NewMemoryAirlineRepository(), logger.NewNopLogger(), WithMatchThreshold(0.99))
	require.NoError(t, d.Seed(context.Background(), DefaultAirlineCatalog()))

	_, ok := d.Lookup("indgo")
	assert.False(t, ok)
}

func TestDirectoryLearn(t *testing.T) {
	ctx := context.Background()
	d := newSeededDirectory(t)

	_, ok := d.Lookup("Maharaja Air")
	require.False(t, ok)

	rec, err := d.Learn(ctx, "ai", "Air India", "Maharaja Air")
	require.NoError(t, err)
	assert.Equal(t, "AI", rec.Code)
	assert.Equal(t, int64(1), rec.UsageCount)
	assert.Contains(t, rec.Aliases, "maharajaair")

	found, ok := d.Lookup("maharaja-air")
	require.True(t, ok)
	assert.Equal(t, "AI", found.Code)

	// learning the same mention again only bumps the counter
	rec, err = d.Learn(ctx, "AI", "Air India", "MAHARAJA AIR")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.UsageCount)
	count := 0
	for _, a := range rec.Aliases {
		if a == "maharajaair" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestDirectoryLearnNewAirline(t *testing.T) {
	ctx := context.Background()
	d := newSeededDirectory(t)

	rec, err := d.Learn(ctx, "FD", "Thai AirAsia", "thai airasia")
	require.NoError(t, err)
	assert.Equal(t, "Thai AirAsia", rec.DisplayName)

	found, ok := d.Lookup("Thai Air Asia")
	require.True(t, ok)
	assert.Equal(t, "FD", found.Code)
}

func TestDirectoryLearnMovesAlias(t *testing.T) {
	ctx := context.Background()
	d := newSeededDirectory(t)

	_, err := d.Learn(ctx, "IX", "Air India Express", "ai express")
	require.NoError(t, err)
	_, err = d.Learn(ctx, "AI", "Air India", "ai express")
	require.NoError(t, err)

	rec, ok := d.Lookup("ai express")
	require.True(t, ok)
	assert.Equal(t, "AI", rec.Code)

	for _, r := range d.Records() {
		if r.Code == "IX" {
			assert.NotContains(t, r.Aliases, "aiexpress")
		}
	}
}

func TestDirectoryLearnInvalidCode(t *testing.T) {
	d := newSeededDirectory(t)
	_, err := d.Learn(context.Background(), "  ", "Nobody", "nobody")
	assert.ErrorIs(t, err, ErrInvalidAirlineCode)
}

func TestDirectoryConcurrentLearn(t *testing.T) {
	ctx := context.Background()
	d := newSeededDirectory(t)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mention := "Akasa Airlines"
			if i%2 == 0 {
				mention = "akasa-airlines"
			}
			_, err := d.Learn(ctx, "QP", "Akasa Air", mention)
			assert.NoError(t, err)
			d.Lookup(fmt.Sprintf("akasa %d", i))
		}(i)
	}
	wg.Wait()

	var qp *entity.AirlineRecord
	for _, r := range d.Records() {
		if r.Code == "QP" {
			qp = r
		}
	}
	require.NotNil(t, qp)
	assert.Equal(t, int64(workers), qp.UsageCount)

	seen := map[string]int{}
	for _, a := range qp.Aliases {
		seen[a]++
	}
	for alias, n := range seen {
		assert.Equal(t, 1, n, alias)
	}
	assert.Equal(t, 1, seen["akasaairlines"])
}

// snapshotRepo serves List from a frozen snapshot while writes go through
type snapshotRepo struct {
	repository.AirlineRepository
	snapshot []*entity.AirlineRecord
}

func (r *snapshotRepo) List(ctx context.Context) ([]*entity.AirlineRecord, error) {
	if r.snapshot != nil {
		return r.snapshot, nil
	}
	return r.AirlineRepository.List(ctx)
}

func TestDirectoryRefreshKeepsNewerLearns(t *testing.T) {
	ctx := context.Background()
	r := &snapshotRepo{AirlineRepository: repo.NewMemoryAirlineRepository()}
	d := NewAirlineDirectory(r, logger.NewNopLogger())
	require.NoError(t, d.Seed(ctx, DefaultAirlineCatalog()))

	stale, err := r.AirlineRepository.List(ctx)
	require.NoError(t, err)

	_, err = d.Learn(ctx, "AI", "Air India", "Maharaja Air")
	require.NoError(t, err)
	_, err = d.Learn(ctx, "FD", "Thai AirAsia", "thai airasia")
	require.NoError(t, err)

	r.snapshot = stale
	require.NoError(t, d.Refresh(ctx))

	rec, ok := d.Lookup("maharaja air")
	require.True(t, ok)
	assert.Equal(t, "AI", rec.Code)
	assert.Equal(t, int64(1), rec.UsageCount)

	rec, ok = d.Lookup("thai airasia")
	require.True(t, ok)
	assert.Equal(t, "FD", rec.Code)

	// a snapshot ahead of the index wins
	ahead, err := r.AirlineRepository.List(ctx)
	require.NoError(t, err)
	for _, a := range ahead {
		if a.Code == "AI" {
			a.UsageCount = 7
		}
	}
	r.snapshot = ahead
	require.NoError(t, d.Refresh(ctx))

	rec, ok = d.Lookup("air india")
	require.True(t, ok)
	assert.Equal(t, int64(7), rec.UsageCount)
}

func TestDirectoryConcurrentRefreshShared(t *testing.T) {
	r := &listOnlyRepo{records: []*entity.AirlineRecord{{Code: "AI", DisplayName: "Air India"}}}
	d := NewAirlineDirectory(r, logger.NewNopLogger())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, d.Refresh(context.Background()))
		}()
	}
	wg.Wait()

	assert.True(t, d.Ready())
	assert.LessOrEqual(t, r.calls, 20)
	assert.GreaterOrEqual(t, r.calls, 1)
}
