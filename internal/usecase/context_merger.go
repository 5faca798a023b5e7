package usecase

import "github.com/jshah-ind/travelbot/internal/domain/entity"

// TurnKind classifies a follow-up relative to the stored context
type TurnKind string

const (
	TurnEmpty       TurnKind = "empty"
	TurnNewSearch   TurnKind = "new_search"
	TurnRouteChange TurnKind = "route_change"
	TurnDateChange  TurnKind = "date_change"
	TurnRefinement  TurnKind = "refinement"
)

// MergeResult is the merged filter set and how the turn was read
type MergeResult struct {
	Filters entity.ExtractedFilters
	Turn    TurnKind
}

// ContextMerger combines a new partial extraction with the prior turn.
//
// Per field: a set value wins; a cleared value removes the field; an
// absent value inherits the prior one. A route change therefore keeps the
// prior dates, cabin and airlines, and a refinement keeps the prior route
// and dates, unless the new turn overrides them.
type ContextMerger struct{}

// NewContextMerger creates a merger
func NewContextMerger() *ContextMerger {
	return &ContextMerger{}
}

// Merge combines prior (may be nil) with next (may be nil)
func (m *ContextMerger) Merge(prior, next *entity.ExtractedFilters) MergeResult {
	if prior == nil {
		prior = &entity.ExtractedFilters{}
	}
	if next == nil {
		next = &entity.ExtractedFilters{}
	}

	merged := entity.ExtractedFilters{
		Origin:           mergeField(prior.Origin, next.Origin),
		Destination:      mergeField(prior.Destination, next.Destination),
		DepartureDate:    mergeField(prior.DepartureDate, next.DepartureDate),
		ReturnDate:       mergeField(prior.ReturnDate, next.ReturnDate),
		PassengerCount:   mergeField(prior.PassengerCount, next.PassengerCount),
		CabinClass:       mergeField(prior.CabinClass, next.CabinClass),
		SpecificAirlines: mergeField(prior.SpecificAirlines, next.SpecificAirlines),
		DirectOnly:       mergeField(prior.DirectOnly, next.DirectOnly),
	}
	return MergeResult{Filters: merged, Turn: classifyTurn(prior, next)}
}

func mergeField[T any](prior, next entity.Field[T]) entity.Field[T] {
	switch next.State() {
	case entity.FieldSet:
		return next
	case entity.FieldCleared:
		return entity.Field[T]{}
	}
	if prior.IsSet() {
		return prior
	}
	return entity.Field[T]{}
}

func classifyTurn(prior, next *entity.ExtractedFilters) TurnKind {
	switch {
	case next.IsEmpty():
		return TurnEmpty
	case prior.IsEmpty():
		return TurnNewSearch
	case routeChanged(prior.Origin, next.Origin) || routeChanged(prior.Destination, next.Destination):
		return TurnRouteChange
	case next.HasDates() && !next.HasRoute():
		return TurnDateChange
	}
	return TurnRefinement
}

func routeChanged(prior, next entity.Field[string]) bool {
	if !next.IsSet() {
		return false
	}
	p, ok := prior.Value()
	n, _ := next.Value()
	return !ok || p != n
}
