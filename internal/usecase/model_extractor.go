package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	"github.com/jshah-ind/travelbot/pkg/logger"

	"github.com/facebookgo/clock"
)

const (
	defaultModelTimeout = 8 * time.Second
	maxDateHorizon      = 730 * 24 * time.Hour
)

var (
	// ErrModelTimeout marks a model call that exceeded its budget
	ErrModelTimeout = errors.New("model call timed out")
	// ErrUnparseableResponse marks a model answer that does not fit the schema
	ErrUnparseableResponse = errors.New("unparseable model response")

	fenceRegex       = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
	airlineCodeRegex = regexp.MustCompile(`^[A-Z0-9]{2}$`)
)

// Completer is one language-understanding service
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ModelExtractor delegates extraction to a Completer and maps the JSON
// answer onto ExtractedFilters. It never retries.
type ModelExtractor struct {
	name      string
	completer Completer
	timeout   time.Duration
	directory AirlineResolver
	learner   AirlineLearner
	airports  *AirportCatalog
	clock     clock.Clock
	location  *time.Location
	logger    logger.Logger
}

// ModelOption configures a ModelExtractor
type ModelOption func(*ModelExtractor)

// WithModelTimeout bounds every Complete call
func WithModelTimeout(d time.Duration) ModelOption {
	return func(m *ModelExtractor) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithAirlineDirectory resolves airline mentions and learns new carriers
// reported with a code.
func WithAirlineDirectory(resolver AirlineResolver, learner AirlineLearner) ModelOption {
	return func(m *ModelExtractor) {
		m.directory = resolver
		m.learner = learner
	}
}

// WithAirportCatalog maps city names in answers to airport codes
func WithAirportCatalog(c *AirportCatalog) ModelOption {
	return func(m *ModelExtractor) { m.airports = c }
}

// WithModelClock sets the clock used for relative dates
func WithModelClock(c clock.Clock, loc *time.Location) ModelOption {
	return func(m *ModelExtractor) {
		m.clock = c
		if loc != nil {
			m.location = loc
		}
	}
}

// NewModelExtractor creates a model-backed extractor named name
func NewModelExtractor(name string, completer Completer, log logger.Logger, opts ...ModelOption) *ModelExtractor {
	m := &ModelExtractor{
		name:      name,
		completer: completer,
		timeout:   defaultModelTimeout,
		clock:     clock.New(),
		location:  time.UTC,
		logger:    log.With("component", "model_extractor", "strategy", name),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *ModelExtractor) Name() string {
	return m.name
}

// Extract runs one bounded model call. The call context is detached from
// the caller so abandoning the request does not cut the call short; only
// the strategy timeout does.
func (m *ModelExtractor) Extract(ctx context.Context, text string) (*entity.ExtractedFilters, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancel()

	now := m.clock.Now().In(m.location)
	raw, err := m.completer.Complete(callCtx, buildSystemPrompt(now), text)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w: %w", m.name, ErrStrategyUnavailable, ErrModelTimeout)
		}
		return nil, fmt.Errorf("%s: %w: %v", m.name, ErrStrategyUnavailable, err)
	}

	var resp modelResponse
	if err := decodeModelJSON(raw, &resp); err != nil {
		m.logger.Warn("Discarding model response", "error", err, "response", raw)
		return nil, fmt.Errorf("%s: %w: %w", m.name, ErrStrategyUnavailable, err)
	}

	filters, err := m.toFilters(callCtx, &resp, text, now)
	if err != nil {
		m.logger.Warn("Model response outside schema", "error", err, "response", raw)
		return nil, fmt.Errorf("%s: %w: %w", m.name, ErrStrategyUnavailable, err)
	}
	return filters, nil
}

type modelResponse struct {
	Origin        *string       `json:"origin"`
	Destination   *string       `json:"destination"`
	DepartureDate *string       `json:"departure_date"`
	ReturnDate    *string       `json:"return_date"`
	Passengers    *int          `json:"passengers"`
	CabinClass    *string       `json:"cabin_class"`
	Filters       *modelFilters `json:"filters"`
	Error         string        `json:"error"`
}

type modelFilters struct {
	DirectOnly       *bool          `json:"direct_only"`
	SpecificAirlines []modelAirline `json:"specific_airlines"`
}

// modelAirline accepts either "Air India" or {"code":"AI","name":"Air India"}
type modelAirline struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (a *modelAirline) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		a.Name = name
		return nil
	}
	type plain modelAirline
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = modelAirline(p)
	return nil
}

func decodeModelJSON(raw string, out *modelResponse) error {
	content := strings.TrimSpace(raw)
	if m := fenceRegex.FindStringSubmatch(content); m != nil {
		content = m[1]
	}
	if start, end := strings.Index(content, "{"), strings.LastIndex(content, "}"); start >= 0 && end > start {
		content = content[start : end+1]
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
	}
	return nil
}

func (m *ModelExtractor) toFilters(ctx context.Context, resp *modelResponse, text string, now time.Time) (*entity.ExtractedFilters, error) {
	f := &entity.ExtractedFilters{}

	if code, ok := m.place(resp.Origin); ok {
		f.Origin = entity.Set(code)
	}
	if code, ok := m.place(resp.Destination); ok {
		f.Destination = entity.Set(code)
	}

	if resp.Passengers != nil && *resp.Passengers >= 1 {
		f.PassengerCount = entity.Set(*resp.Passengers)
	}

	if resp.CabinClass != nil {
		switch v := strings.TrimSpace(*resp.CabinClass); {
		case v == "":
		case strings.EqualFold(v, "any"):
			f.CabinClass = entity.Cleared[entity.CabinClass]()
		default:
			cabin, err := entity.ParseCabinClass(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
			}
			f.CabinClass = entity.Set(cabin)
		}
	}

	if err := m.applyDates(resp, text, now, f); err != nil {
		return nil, err
	}

	if resp.Filters != nil {
		if resp.Filters.DirectOnly != nil {
			f.DirectOnly = entity.Set(*resp.Filters.DirectOnly)
		}
		m.applyAirlines(ctx, resp.Filters.SpecificAirlines, f)
	}
	return f, nil
}

// place normalizes an origin or destination answer to an airport code
// when one is known, otherwise keeps the name as given.
func (m *ModelExtractor) place(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	s := strings.TrimSpace(*v)
	switch strings.ToLower(s) {
	case "", "null", "none", "unknown", "any", "n/a":
		return "", false
	}
	if len(s) == 3 && strings.ToUpper(s) == s {
		return s, true
	}
	if m.airports != nil {
		if code, ok := m.airports.ResolveCity(s); ok {
			return code, true
		}
		if len(s) == 3 && m.airports.IsAirportCode(s) {
			return strings.ToUpper(s), true
		}
	}
	return s, true
}

// applyDates prefers the deterministic reading of relative phrases
// ("tomorrow", "next month") over the model's arithmetic and drops model
// dates in the past or more than two years ahead.
func (m *ModelExtractor) applyDates(resp *modelResponse, text string, now time.Time, f *entity.ExtractedFilters) error {
	hints := findTravelDates(strings.ToLower(text), now)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	pick := func(raw *string, hint *time.Time, field string) (entity.Field[entity.Date], error) {
		if hint != nil {
			return entity.Set(entity.NewDate(*hint)), nil
		}
		if raw == nil || strings.TrimSpace(*raw) == "" {
			return entity.Field[entity.Date]{}, nil
		}
		d, err := entity.ParseDate(*raw)
		if err != nil {
			return entity.Field[entity.Date]{}, fmt.Errorf("%w: %s: %v", ErrUnparseableResponse, field, err)
		}
		t, _ := time.ParseInLocation(entity.DateLayout, string(d), now.Location())
		if t.Before(today) || t.Sub(today) > maxDateHorizon {
			m.logger.Info("Dropping implausible model date", "field", field, "date", d)
			return entity.Field[entity.Date]{}, nil
		}
		return entity.Set(d), nil
	}

	var err error
	if f.DepartureDate, err = pick(resp.DepartureDate, hints.departure, "departure_date"); err != nil {
		return err
	}
	if f.ReturnDate, err = pick(resp.ReturnDate, hints.ret, "return_date"); err != nil {
		return err
	}
	return nil
}

// applyAirlines keeps only mentions the directory can resolve. An unknown
// carrier reported with a well-formed code is learned first.
func (m *ModelExtractor) applyAirlines(ctx context.Context, mentions []modelAirline, f *entity.ExtractedFilters) {
	for _, a := range mentions {
		name, code := strings.TrimSpace(a.Name), strings.ToUpper(strings.TrimSpace(a.Code))
		if strings.EqualFold(name, "any") || strings.EqualFold(code, "any") {
			f.SpecificAirlines = entity.Cleared[[]entity.AirlineRef]()
			return
		}
		if m.directory == nil {
			continue
		}

		mention := name
		if mention == "" {
			mention = code
		}
		if rec, ok := m.directory.Lookup(mention); ok {
			f.AddAirline(rec.Ref())
			continue
		}
		if m.learner != nil && name != "" && airlineCodeRegex.MatchString(code) {
			rec, err := m.learner.Learn(ctx, code, name, name)
			if err != nil {
				m.logger.Warn("Failed to learn airline from model", "code", code, "error", err)
				continue
			}
			f.AddAirline(rec.Ref())
			continue
		}
		m.logger.Debug("Unresolved airline mention excluded", "mention", mention)
	}
}

func buildSystemPrompt(now time.Time) string {
	today := now.Format(entity.DateLayout)
	return `You are a flight search assistant. Extract flight search parameters from the user's query.
Handle spelling mistakes: "tommorow", "tomorow", "tomarow" mean tomorrow; "deli", "dehli" mean Delhi; "mumbay", "bombay" mean Mumbai; "bangalor", "banglore" mean Bangalore; "chenai", "channai" mean Chennai; "cochin" means Kochi.

Return ONLY a JSON object. Include a field ONLY if the query mentions it; never fill defaults.
{
  "origin": "IATA airport code",
  "destination": "IATA airport code",
  "departure_date": "YYYY-MM-DD",
  "return_date": "YYYY-MM-DD",
  "passengers": 1,
  "cabin_class": "ECONOMY | BUSINESS | FIRST | ANY",
  "filters": {
    "direct_only": true,
    "specific_airlines": [{"code": "AI", "name": "Air India"}]
  }
}

Airport codes: Delhi=DEL, Mumbai=BOM, Bangalore=BLR, Chennai=MAA, Kolkata=CCU, Hyderabad=HYD, Pune=PNQ, Ahmedabad=AMD, Kochi=COK, Goa=GOI, Jaipur=JAI, Lucknow=LKO.
Today is ` + today + `. "next week" is 7 days from today. "next month" is the 15th of next month.
"business", "premium" mean BUSINESS; "first class" means FIRST; "economy", "coach" mean ECONOMY.
Use "ANY" for cabin_class when the user says any class, and [{"name": "any"}] for specific_airlines when the user says any airline.`
}
