package router

import (
	"fmt"
	"strings"

	"github.com/jshah-ind/travelbot/internal/usecase"
	"github.com/jshah-ind/travelbot/pkg/logger"
)

var knownStrategies = map[string]bool{
	usecase.StrategyOpenAI:           true,
	usecase.StrategyGemini:           true,
	usecase.StrategyKeywordDirectory: true,
	usecase.StrategyKeyword:          true,
}

// StrategyRouter holds the configured extractors and orders them into the
// fallback chain
type StrategyRouter struct {
	extractors map[string]usecase.Extractor
	logger     logger.Logger
}

// NewStrategyRouter creates a new strategy router
func NewStrategyRouter(logger logger.Logger) *StrategyRouter {
	return &StrategyRouter{
		extractors: make(map[string]usecase.Extractor),
		logger:     logger,
	}
}

// Register makes an extractor available under its Name
func (r *StrategyRouter) Register(e usecase.Extractor) {
	r.extractors[e.Name()] = e
	r.logger.Info("Registered extraction strategy", "strategy", e.Name())
}

// Chain returns the registered extractors in the order given by names.
// A known strategy that was not registered (a model without an API key)
// is skipped; an unknown name is a configuration error.
func (r *StrategyRouter) Chain(names []string) ([]usecase.Extractor, error) {
	chain := make([]usecase.Extractor, 0, len(names))
	used := make(map[string]bool, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || used[name] {
			continue
		}
		e, ok := r.extractors[name]
		if !ok {
			if !knownStrategies[name] {
				return nil, fmt.Errorf("unknown extraction strategy %q", raw)
			}
			r.logger.Warn("Extraction strategy not configured, skipping", "strategy", name)
			continue
		}
		used[name] = true
		chain = append(chain, e)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("extraction chain is empty")
	}
	return chain, nil
}
