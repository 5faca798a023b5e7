package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jshah-ind/travelbot/pkg/logger"
)

// CarrierObservation is an airline seen in a flight-inventory response
type CarrierObservation struct {
	Code string
	Name string
}

// InventoryLearner feeds carriers observed in inventory responses back
// into the airline directory
type InventoryLearner struct {
	learner AirlineLearner
	logger  logger.Logger
}

// NewInventoryLearner creates a learner over the directory
func NewInventoryLearner(learner AirlineLearner, log logger.Logger) *InventoryLearner {
	return &InventoryLearner{
		learner: learner,
		logger:  log.With("component", "inventory_learner"),
	}
}

// LearnFromOffers learns each distinct (code, name) once per call and
// returns how many were learned. Individual failures are logged; an error
// is returned only when every observation failed.
func (l *InventoryLearner) LearnFromOffers(ctx context.Context, observations []CarrierObservation) (int, error) {
	seen := make(map[string]struct{}, len(observations))
	var (
		learned int
		errs    []error
	)
	for _, obs := range observations {
		code := strings.ToUpper(strings.TrimSpace(obs.Code))
		if code == "" {
			continue
		}
		key := code + "|" + strings.ToLower(strings.TrimSpace(obs.Name))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if _, err := l.learner.Learn(ctx, code, obs.Name, obs.Name); err != nil {
			l.logger.Warn("Failed to learn carrier from inventory", "code", code, "name", obs.Name, "error", err)
			errs = append(errs, err)
			continue
		}
		learned++
	}

	if learned == 0 && len(errs) > 0 {
		return 0, fmt.Errorf("failed to learn any carrier: %w", errors.Join(errs...))
	}
	l.logger.Debug("Learned carriers from inventory", "learned", learned, "failed", len(errs))
	return learned, nil
}
