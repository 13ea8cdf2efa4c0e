package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/internal/executor/repository"
	"golang-stock-signal/pkg/logger"
	"golang-stock-signal/pkg/metrics"
)

// EnrichmentOptions bounds the narrative calls.
type EnrichmentOptions struct {
	Timeout       time.Duration
	DispatchDelay time.Duration
	MaxConcurrent int
	MaxHeadlines  int
}

// EnrichmentAdapter asks for a narrative assessment and never fails: every error is folded
// into the returned Enrichment so the caller can fall back to the plain classification.
type EnrichmentAdapter interface {
	Enrich(ctx context.Context, symbol string, tech dto.TechnicalContext, fund dto.FundamentalContext) dto.Enrichment
}

type enrichmentAdapter struct {
	narrative repository.NarrativeRepository
	news      repository.NewsRepository
	opts      EnrichmentOptions
	sem       chan struct{}
	limiter   *rate.Limiter
	metrics   *metrics.Pipeline
	log       *logger.Logger
}

// NewEnrichmentAdapter wraps a narrative repository with a timeout, a concurrency cap and
// a minimum delay between dispatches. news may be nil.
func NewEnrichmentAdapter(
	narrative repository.NarrativeRepository,
	news repository.NewsRepository,
	opts EnrichmentOptions,
	m *metrics.Pipeline,
	log *logger.Logger,
) EnrichmentAdapter {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if opts.DispatchDelay > 0 {
		limit = rate.Every(opts.DispatchDelay)
	}
	return &enrichmentAdapter{
		narrative: narrative,
		news:      news,
		opts:      opts,
		sem:       make(chan struct{}, opts.MaxConcurrent),
		limiter:   rate.NewLimiter(limit, 1),
		metrics:   m,
		log:       log,
	}
}

func (a *enrichmentAdapter) Enrich(ctx context.Context, symbol string, tech dto.TechnicalContext, fund dto.FundamentalContext) (result dto.Enrichment) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result = dto.Enrichment{Err: &dto.EnrichmentError{Symbol: symbol, Err: fmt.Errorf("panic: %v", r)}}
		}
		a.metrics.ObserveEnrichment(result.Status(), time.Since(start))
		if result.Err != nil {
			a.log.WarnContext(ctx, "Enrichment failed, falling back to plain classification",
				logger.StringField("symbol", symbol), logger.ErrorField(result.Err))
		}
	}()

	if a.narrative == nil {
		return dto.Enrichment{Skipped: "narrative provider not configured"}
	}

	select {
	case a.sem <- struct{}{}:
		defer func() { <-a.sem }()
	case <-ctx.Done():
		return dto.Enrichment{Err: a.classify(symbol, ctx.Err())}
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return dto.Enrichment{Err: a.classify(symbol, err)}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	if a.news != nil && a.opts.MaxHeadlines > 0 && len(fund.Headlines) == 0 {
		headlines, err := a.news.GetHeadlines(callCtx, symbol, a.opts.MaxHeadlines)
		if err != nil {
			a.log.DebugContext(ctx, "Headlines unavailable", logger.StringField("symbol", symbol), logger.ErrorField(err))
		} else {
			fund.Headlines = headlines
		}
	}

	assessment, err := a.narrative.Assess(callCtx, symbol, tech, fund)
	if err != nil {
		return dto.Enrichment{Err: a.classify(symbol, err)}
	}
	if assessment == nil {
		return dto.Enrichment{Err: &dto.EnrichmentError{Symbol: symbol, Err: errors.New("empty assessment")}}
	}

	a.log.InfoContext(ctx, "Enrichment completed",
		logger.StringField("symbol", symbol),
		logger.StringField("outlook", assessment.Outlook),
		logger.DurationField("latency", time.Since(start)),
	)
	return dto.Enrichment{Assessment: assessment}
}

func (a *enrichmentAdapter) classify(symbol string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &dto.EnrichmentTimeoutError{Symbol: symbol, Timeout: a.opts.Timeout}
	}
	return &dto.EnrichmentError{Symbol: symbol, Err: err}
}
