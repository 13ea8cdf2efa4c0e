package dto

import "time"

// Stage names where a symbol failed inside a run.
type Stage string

const (
	StageFetchPrice   Stage = "fetch_price"
	StageFetchRatios  Stage = "fetch_ratios"
	StageClassify     Stage = "classify"
	StagePersist      Stage = "persist"
	StageNotScheduled Stage = "not_scheduled"
)

// SymbolResult is the outcome for one symbol that reached classification.
type SymbolResult struct {
	Symbol           string            `json:"symbol"`
	Signal           Signal            `json:"signal"`
	TechnicalSignal  Direction         `json:"technical_signal"`
	Cross            CrossState        `json:"cross"`
	Snapshot         IndicatorSnapshot `json:"snapshot"`
	Enrichment       string            `json:"enrichment"`
	Warnings         []string          `json:"warnings,omitempty"`
	Persisted        bool              `json:"persisted"`
	RecommendationID string            `json:"recommendation_id,omitempty"`
}

// SymbolFailure records why a symbol produced no result.
type SymbolFailure struct {
	Symbol string `json:"symbol"`
	Stage  Stage  `json:"stage"`
	Reason string `json:"reason"`
}

// PersistedRecommendation links a symbol to the record written for it.
type PersistedRecommendation struct {
	Symbol           string `json:"symbol"`
	RecommendationID string `json:"recommendation_id"`
}

// RunReport is everything one pipeline run computed, persisted and failed.
type RunReport struct {
	RunID      string                    `json:"run_id"`
	StartedAt  time.Time                 `json:"started_at"`
	FinishedAt time.Time                 `json:"finished_at"`
	Results    []SymbolResult            `json:"results"`
	Persisted  []PersistedRecommendation `json:"persisted"`
	Failures   []SymbolFailure           `json:"failures"`
}

// RunRequest triggers a run. An empty Symbols list means the configured watch-list; an
// empty RunID is assigned by the pipeline.
type RunRequest struct {
	RunID   string   `json:"run_id,omitempty"`
	Symbols []string `json:"symbols,omitempty"`
	Source  string   `json:"source,omitempty"`
	// Refresh drops cached snapshots before evaluating: the requested symbols, or the
	// whole cache for a watch-list run.
	Refresh bool `json:"refresh,omitempty"`
}

// WatchlistCandidate is a symbol offered by the watch-list source with its rating.
type WatchlistCandidate struct {
	Symbol string  `json:"symbol"`
	Rating float64 `json:"rating"`
}
