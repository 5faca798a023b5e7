package entity

import "time"

// AttemptOutcome classifies one strategy invocation
type AttemptOutcome string

const (
	OutcomeSuccess     AttemptOutcome = "success"
	OutcomeEmpty       AttemptOutcome = "empty"
	OutcomeTimeout     AttemptOutcome = "timeout"
	OutcomeError       AttemptOutcome = "error"
	OutcomeParseError  AttemptOutcome = "parse_error"
	OutcomeUnavailable AttemptOutcome = "unavailable"
	OutcomePanic       AttemptOutcome = "panic"
)

// ExtractionAttempt is the analytics record of one strategy run
type ExtractionAttempt struct {
	ID           string         `bson:"_id" json:"id"`
	ResolutionID string         `bson:"resolutionId" json:"resolution_id"`
	Strategy     string         `bson:"strategy" json:"strategy"`
	Position     int            `bson:"position" json:"position"`
	Outcome      AttemptOutcome `bson:"outcome" json:"outcome"`
	LatencyMs    int64          `bson:"latencyMs" json:"latency_ms"`
	QueryText    string         `bson:"queryText" json:"query_text"`
	AirlineCodes []string       `bson:"airlineCodes,omitempty" json:"airline_codes,omitempty"`
	Error        string         `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt    time.Time      `bson:"createdAt" json:"created_at"`
}

// StrategyStats aggregates attempts for one strategy
type StrategyStats struct {
	Strategy     string  `bson:"_id" json:"strategy"`
	Attempts     int64   `bson:"attempts" json:"attempts"`
	Successes    int64   `bson:"successes" json:"successes"`
	AvgLatencyMs float64 `bson:"avgLatencyMs" json:"avg_latency_ms"`
}
