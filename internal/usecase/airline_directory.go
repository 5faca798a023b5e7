package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	"github.com/jshah-ind/travelbot/internal/domain/repository"
	"github.com/jshah-ind/travelbot/pkg/logger"
	"github.com/jshah-ind/travelbot/pkg/metrics"
	"github.com/jshah-ind/travelbot/pkg/utils"

	"github.com/facebookgo/clock"
	"golang.org/x/sync/singleflight"
)

// ErrInvalidAirlineCode is returned by Learn for a blank code
var ErrInvalidAirlineCode = errors.New("invalid airline code")

// Match kinds reported to metrics
const (
	matchExact = "exact"
	matchFuzzy = "fuzzy"
	matchMiss  = "miss"
)

// AirlineDirectory resolves noisy airline mentions to canonical records.
// Reads are served from an in-memory index; writes go through the
// repository's atomic upsert and are then applied to the index.
type AirlineDirectory struct {
	repo      repository.AirlineRepository
	logger    logger.Logger
	metrics   *metrics.Metrics
	clock     clock.Clock
	threshold float64

	mu      sync.RWMutex
	byCode  map[string]*entity.AirlineRecord
	aliases map[string]string
	ready   bool

	refreshGroup singleflight.Group
}

// DirectoryOption configures an AirlineDirectory
type DirectoryOption func(*AirlineDirectory)

// WithMatchThreshold overrides utils.DefaultMatchThreshold
func WithMatchThreshold(t float64) DirectoryOption {
	return func(d *AirlineDirectory) {
		if t > 0 && t <= 1 {
			d.threshold = t
		}
	}
}

// WithDirectoryClock sets the clock used for first/last seen timestamps
func WithDirectoryClock(c clock.Clock) DirectoryOption {
	return func(d *AirlineDirectory) { d.clock = c }
}

// WithDirectoryMetrics enables prometheus reporting
func WithDirectoryMetrics(m *metrics.Metrics) DirectoryOption {
	return func(d *AirlineDirectory) { d.metrics = m }
}

// NewAirlineDirectory creates an empty directory. Call Seed or Refresh
// before serving lookups.
func NewAirlineDirectory(repo repository.AirlineRepository, log logger.Logger, opts ...DirectoryOption) *AirlineDirectory {
	d := &AirlineDirectory{
		repo:      repo,
		logger:    log.With("component", "airline_directory"),
		clock:     clock.New(),
		threshold: utils.DefaultMatchThreshold,
		byCode:    make(map[string]*entity.AirlineRecord),
		aliases:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Ready reports whether the index has been loaded at least once
func (d *AirlineDirectory) Ready() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.ready
}

// Seed loads the static catalog into the repository and refreshes the index.
// Existing records keep their counters.
func (d *AirlineDirectory) Seed(ctx context.Context, catalog []entity.AirlineSeed) error {
	now := d.clock.Now()
	for _, s := range catalog {
		seed := entity.AirlineSeed{
			Code:        strings.ToUpper(strings.TrimSpace(s.Code)),
			DisplayName: s.DisplayName,
			Aliases:     normalizeAliases(append([]string{s.DisplayName}, s.Aliases...)),
		}
		if err := d.repo.Seed(ctx, seed, now); err != nil {
			return fmt.Errorf("failed to seed airline directory: %w", err)
		}
	}
	d.logger.Info("Seeded airline catalog", "count", len(catalog))
	return d.Refresh(ctx)
}

// Refresh reloads the index from the repository. Concurrent callers share
// a single reload.
func (d *AirlineDirectory) Refresh(ctx context.Context) error {
	_, err, shared := d.refreshGroup.Do("refresh", func() (interface{}, error) {
		records, err := d.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		d.rebuild(records)
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to refresh airline directory: %w", err)
	}
	d.logger.Debug("Refreshed airline directory", "shared", shared)
	return nil
}

// rebuild swaps in the repository snapshot. Records that a Learn applied
// after the snapshot was read (higher usage_count, or not listed at all)
// are kept, together with the aliases they own.
func (d *AirlineDirectory) rebuild(records []*entity.AirlineRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()

	byCode := make(map[string]*entity.AirlineRecord, len(records))
	for _, rec := range records {
		byCode[rec.Code] = rec.Clone()
	}
	var newer []*entity.AirlineRecord
	for code, cur := range d.byCode {
		if listed, ok := byCode[code]; !ok || cur.UsageCount > listed.UsageCount {
			byCode[code] = cur.Clone()
			newer = append(newer, byCode[code])
		}
	}

	aliases := make(map[string]string)
	for code, rec := range byCode {
		for _, a := range rec.Aliases {
			aliases[a] = code
		}
	}
	for _, rec := range newer {
		for _, a := range rec.Aliases {
			if owner, ok := aliases[a]; ok && owner != rec.Code {
				prev := byCode[owner].Clone()
				prev.Aliases = removeString(prev.Aliases, a)
				byCode[owner] = prev
			}
			aliases[a] = rec.Code
		}
	}

	d.byCode = byCode
	d.aliases = aliases
	d.ready = true

	if d.metrics != nil {
		d.metrics.DirectorySize.Set(float64(len(byCode)))
	}
}

// Lookup resolves mention to a record. Exact alias, code or display name
// matches win; otherwise the most similar display name or alias is
// accepted when its Jaro-Winkler score reaches the threshold. Ties go to
// the higher usage count, then the smaller code.
func (d *AirlineDirectory) Lookup(mention string) (*entity.AirlineRecord, bool) {
	key := utils.NormalizeMention(mention)
	if key == "" {
		return nil, false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if code, ok := d.aliases[key]; ok {
		if rec := d.byCode[code]; rec != nil {
			d.observeLookup(matchExact)
			return rec.Clone(), true
		}
	}

	var exact *entity.AirlineRecord
	for _, rec := range d.byCode {
		if utils.NormalizeMention(rec.Code) == key || utils.NormalizeMention(rec.DisplayName) == key {
			if exact == nil || preferRecord(rec, exact) {
				exact = rec
			}
		}
	}
	if exact != nil {
		d.observeLookup(matchExact)
		return exact.Clone(), true
	}

	var (
		best      *entity.AirlineRecord
		bestScore float64
	)
	for _, rec := range d.byCode {
		score, ok := d.bestScore(key, rec)
		if !ok {
			continue
		}
		if best == nil || score > bestScore || (score == bestScore && preferRecord(rec, best)) {
			best, bestScore = rec, score
		}
	}
	if best == nil {
		d.observeLookup(matchMiss)
		return nil, false
	}

	d.observeLookup(matchFuzzy)
	d.logger.Debug("Fuzzy airline match", "mention", mention, "code", best.Code, "score", bestScore)
	return best.Clone(), true
}

func (d *AirlineDirectory) bestScore(key string, rec *entity.AirlineRecord) (float64, bool) {
	var (
		top     float64
		matched bool
	)
	candidates := append([]string{utils.NormalizeMention(rec.DisplayName)}, rec.Aliases...)
	for _, c := range candidates {
		if score, ok := utils.Matches(key, c, d.threshold); ok && score > top {
			top, matched = score, true
		}
	}
	return top, matched
}

// preferRecord orders equally scored candidates: higher usage first, then
// lexicographically smaller code.
func preferRecord(a, b *entity.AirlineRecord) bool {
	if a.UsageCount != b.UsageCount {
		return a.UsageCount > b.UsageCount
	}
	return a.Code < b.Code
}

// Learn upserts the airline and attaches rawMention's normalized form as an
// alias. usage_count and last_seen are always bumped.
func (d *AirlineDirectory) Learn(ctx context.Context, code, displayName, rawMention string) (*entity.AirlineRecord, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrInvalidAirlineCode
	}

	rec, err := d.repo.Upsert(ctx, repository.AirlineObservation{
		Code:        code,
		DisplayName: strings.TrimSpace(displayName),
		Alias:       utils.NormalizeMention(rawMention),
		SeenAt:      d.clock.Now(),
	})
	if err != nil {
		if d.metrics != nil {
			d.metrics.ErrorsCount.WithLabelValues("airline_learn").Inc()
		}
		return nil, fmt.Errorf("failed to learn airline %s: %w", code, err)
	}

	d.apply(rec)
	if d.metrics != nil {
		d.metrics.DirectoryLearns.Inc()
	}
	d.logger.Debug("Learned airline", "code", rec.Code, "mention", rawMention, "usage_count", rec.UsageCount)
	return rec.Clone(), nil
}

// apply merges a freshly persisted record into the index. Out-of-order
// results from concurrent learns never move usage_count backwards.
func (d *AirlineDirectory) apply(rec *entity.AirlineRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if cur, ok := d.byCode[rec.Code]; ok && cur.UsageCount > rec.UsageCount {
		return
	}

	for _, a := range rec.Aliases {
		if owner, ok := d.aliases[a]; ok && owner != rec.Code {
			if prev := d.byCode[owner]; prev != nil {
				moved := prev.Clone()
				moved.Aliases = removeString(moved.Aliases, a)
				d.byCode[owner] = moved
			}
		}
		d.aliases[a] = rec.Code
	}
	d.byCode[rec.Code] = rec.Clone()
	d.ready = true

	if d.metrics != nil {
		d.metrics.DirectorySize.Set(float64(len(d.byCode)))
	}
}

// Records returns a snapshot of every record ordered by code
func (d *AirlineDirectory) Records() []*entity.AirlineRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*entity.AirlineRecord, 0, len(d.byCode))
	for _, rec := range d.byCode {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (d *AirlineDirectory) observeLookup(kind string) {
	if d.metrics != nil {
		d.metrics.DirectoryLookups.WithLabelValues(kind).Inc()
	}
}

func normalizeAliases(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		a := utils.NormalizeMention(r)
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}

func removeString(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
