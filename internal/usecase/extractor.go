package usecase

import (
	"context"
	"errors"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
)

// Strategy names used in configuration and analytics
const (
	StrategyOpenAI           = "openai"
	StrategyGemini           = "gemini"
	StrategyKeywordDirectory = "keyword_directory"
	StrategyKeyword          = "keyword"
	StrategyNone             = "none"
)

var (
	// ErrStrategyUnavailable marks a strategy that could not produce a
	// result this time (timeout, transport error, unparseable response).
	ErrStrategyUnavailable = errors.New("extraction strategy unavailable")
	// ErrDirectoryUnavailable is returned by the directory-assisted keyword
	// extractor before the airline directory has been loaded.
	ErrDirectoryUnavailable = errors.New("airline directory not loaded")
)

// Extractor turns free text into filters. A nil result, an empty result
// and an error all mean "no result" to the orchestrator.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, text string) (*entity.ExtractedFilters, error)
}

// AirlineResolver is the lookup side of the airline directory
type AirlineResolver interface {
	Lookup(mention string) (*entity.AirlineRecord, bool)
	Ready() bool
}

// AirlineLearner is the learning side of the airline directory
type AirlineLearner interface {
	Learn(ctx context.Context, code, displayName, rawMention string) (*entity.AirlineRecord, error)
}
