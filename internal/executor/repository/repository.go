package repository

import (
	"context"
	"time"

	"golang-stock-signal/internal/entity"
	"golang-stock-signal/internal/executor/dto"
)

// PriceRepository fetches daily OHLCV bars from the upstream price provider.
type PriceRepository interface {
	GetDailySeries(ctx context.Context, symbol string, lookbackDays int) ([]dto.PricePoint, error)
}

// FundamentalRepository fetches the latest fundamental ratios of a symbol.
type FundamentalRepository interface {
	GetRatios(ctx context.Context, symbol string) (dto.RatioParseResult, error)
}

// WatchlistRepository returns the candidate symbols of a run.
type WatchlistRepository interface {
	GetCandidates(ctx context.Context, limit int) ([]dto.WatchlistCandidate, error)
}

// NarrativeRepository asks the AI model for an advisory assessment.
type NarrativeRepository interface {
	Assess(ctx context.Context, symbol string, tech dto.TechnicalContext, fund dto.FundamentalContext) (*dto.NarrativeAssessment, error)
}

// NewsRepository returns recent headlines mentioning a symbol.
type NewsRepository interface {
	GetHeadlines(ctx context.Context, symbol string, limit int) ([]string, error)
}

// SnapshotCache holds per-symbol indicator snapshots for a bounded time.
type SnapshotCache interface {
	Get(ctx context.Context, symbol string) (*dto.IndicatorSnapshot, bool, error)
	Set(ctx context.Context, snapshot dto.IndicatorSnapshot, ttl time.Duration) error
	Invalidate(ctx context.Context, symbol string) error
	Flush(ctx context.Context) error
}

// RecommendationRepository is the create-and-read store of recommendations.
type RecommendationRepository interface {
	Create(ctx context.Context, rec *entity.Recommendation) error
	FindByID(ctx context.Context, id string) (*entity.Recommendation, error)
	List(ctx context.Context, filter RecommendationFilter) ([]entity.Recommendation, error)
}

// RecommendationFilter narrows List. Zero values mean no filter.
type RecommendationFilter struct {
	Symbol string
	RunID  string
	Limit  int
}

// EventPublisher emits domain events to downstream consumers.
type EventPublisher interface {
	PublishRecommendationCreated(ctx context.Context, rec *entity.Recommendation) error
	Close() error
}
