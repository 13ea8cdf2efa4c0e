package service

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"golang-stock-signal/internal/entity"
	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/internal/executor/repository"
)

var seriesStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// trendPoints builds n consistent daily bars whose close moves by step each day.
func trendPoints(n int, start, step float64) []dto.PricePoint {
	points := make([]dto.PricePoint, n)
	for i := 0; i < n; i++ {
		c := start + step*float64(i)
		o := c - step
		points[i] = dto.PricePoint{
			Date:   seriesStart.AddDate(0, 0, i),
			Open:   o,
			High:   math.Max(o, c) + 50,
			Low:    math.Min(o, c) - 50,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return points
}

func trendSeries(symbol string, n int, start, step float64) *dto.PriceSeries {
	series, _ := dto.NewPriceSeries(symbol, trendPoints(n, start, step))
	return series
}

type fakePrices struct {
	points map[string][]dto.PricePoint
	errs   map[string]error
	delay  time.Duration
}

func (f *fakePrices) GetDailySeries(ctx context.Context, symbol string, _ int) ([]dto.PricePoint, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	return f.points[symbol], nil
}

type fakeRatios struct {
	ratios dto.FundamentalRatios
	errs   map[string]error
}

func (f *fakeRatios) GetRatios(_ context.Context, symbol string) (dto.RatioParseResult, error) {
	if err, ok := f.errs[symbol]; ok {
		return dto.RatioParseResult{}, err
	}
	return dto.RatioParseResult{Ratios: f.ratios}, nil
}

type fakeWatchlist struct {
	candidates []dto.WatchlistCandidate
	err        error
	gotLimit   int
}

func (f *fakeWatchlist) GetCandidates(_ context.Context, limit int) ([]dto.WatchlistCandidate, error) {
	f.gotLimit = limit
	return f.candidates, f.err
}

type MockRecommendationRepository struct {
	mock.Mock
}

func (m *MockRecommendationRepository) Create(ctx context.Context, rec *entity.Recommendation) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRecommendationRepository) FindByID(ctx context.Context, id string) (*entity.Recommendation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Recommendation), args.Error(1)
}

func (m *MockRecommendationRepository) List(ctx context.Context, filter repository.RecommendationFilter) ([]entity.Recommendation, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Recommendation), args.Error(1)
}

type MockEnrichmentAdapter struct {
	mock.Mock
}

func (m *MockEnrichmentAdapter) Enrich(ctx context.Context, symbol string, tech dto.TechnicalContext, fund dto.FundamentalContext) dto.Enrichment {
	args := m.Called(ctx, symbol, tech, fund)
	return args.Get(0).(dto.Enrichment)
}

type memoryRuns struct {
	mu   sync.Mutex
	runs map[string]entity.PipelineRun
}

func newMemoryRuns() *memoryRuns {
	return &memoryRuns{runs: make(map[string]entity.PipelineRun)}
}

func (r *memoryRuns) Create(_ context.Context, run *entity.PipelineRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = *run
	return nil
}

func (r *memoryRuns) FindByID(_ context.Context, id string) (*entity.PipelineRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	run, ok := r.runs[id]
	if !ok {
		return nil, dto.ErrNotFound
	}
	return &run, nil
}

func (r *memoryRuns) Update(ctx context.Context, run *entity.PipelineRun) error {
	return r.Create(ctx, run)
}
