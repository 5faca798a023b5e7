package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	"github.com/jshah-ind/travelbot/internal/domain/repository"
)

// MemoryAirlineRepository keeps airlines in process memory. A single mutex
// makes every upsert atomic.
type MemoryAirlineRepository struct {
	mu      sync.Mutex
	records map[string]*entity.AirlineRecord
	aliases map[string]string
}

// NewMemoryAirlineRepository creates an empty in-memory airline repository
func NewMemoryAirlineRepository() repository.AirlineRepository {
	return &MemoryAirlineRepository{
		records: make(map[string]*entity.AirlineRecord),
		aliases: make(map[string]string),
	}
}

func (r *MemoryAirlineRepository) List(ctx context.Context) ([]*entity.AirlineRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.AirlineRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *MemoryAirlineRepository) GetByCode(ctx context.Context, code string) (*entity.AirlineRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rec.Clone(), nil
}

func (r *MemoryAirlineRepository) Upsert(ctx context.Context, obs repository.AirlineObservation) (*entity.AirlineRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[obs.Code]
	if !ok {
		rec = &entity.AirlineRecord{
			Code:        obs.Code,
			DisplayName: obs.DisplayName,
			Aliases:     []string{},
			FirstSeen:   obs.SeenAt,
		}
		r.records[obs.Code] = rec
	}
	if obs.DisplayName != "" {
		rec.DisplayName = obs.DisplayName
	}
	if obs.SeenAt.After(rec.LastSeen) {
		rec.LastSeen = obs.SeenAt
	}
	rec.UsageCount++

	if obs.Alias != "" {
		r.attachAlias(obs.Alias, rec)
	}
	return rec.Clone(), nil
}

func (r *MemoryAirlineRepository) Seed(ctx context.Context, seed entity.AirlineSeed, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[seed.Code]
	if !ok {
		rec = &entity.AirlineRecord{
			Code:        seed.Code,
			DisplayName: seed.DisplayName,
			Aliases:     []string{},
			FirstSeen:   at,
			LastSeen:    at,
		}
		r.records[seed.Code] = rec
	}
	for _, a := range seed.Aliases {
		if _, taken := r.aliases[a]; !taken {
			r.attachAlias(a, rec)
		}
	}
	return nil
}

// attachAlias moves alias onto rec. Caller holds mu.
func (r *MemoryAirlineRepository) attachAlias(alias string, rec *entity.AirlineRecord) {
	if owner, ok := r.aliases[alias]; ok && owner != rec.Code {
		if prev := r.records[owner]; prev != nil {
			prev.Aliases = slices.DeleteFunc(prev.Aliases, func(a string) bool { return a == alias })
		}
	}
	r.aliases[alias] = rec.Code
	if !rec.HasAlias(alias) {
		rec.Aliases = append(rec.Aliases, alias)
		sort.Strings(rec.Aliases)
	}
}
