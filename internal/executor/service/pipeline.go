package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"golang-stock-signal/internal/entity"
	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/internal/executor/repository"
	"golang-stock-signal/pkg/logger"
	"golang-stock-signal/pkg/metrics"
	"golang-stock-signal/pkg/telegram"
	"golang-stock-signal/pkg/utils"
)

const (
	CapPolicyInputOrder = "input_order"
	CapPolicyRating     = "rating"

	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

// PipelineOptions is the run policy.
type PipelineOptions struct {
	MaxSymbolsPerRun   int
	CapPolicy          string
	Workers            int
	RunTimeout         time.Duration
	UnitTimeout        time.Duration
	ConfirmationPolicy string
	CallsPerSymbol     int
	LookbackDays       int
	MinCombinedScore   float64
	EnrichmentEnabled  bool
	NotifyTelegram     bool
}

// PipelineDependencies are the collaborators of a run. Runs, Enricher, Notifier and
// Publisher are optional.
type PipelineDependencies struct {
	Prices          repository.PriceRepository
	Ratios          repository.FundamentalRepository
	Watchlist       repository.WatchlistRepository
	Recommendations repository.RecommendationRepository
	Runs            repository.PipelineRunRepository
	Snapshots       SnapshotService
	Classifier      Classifier
	Detector        GoldenCrossDetector
	Enricher        EnrichmentAdapter
	Notifier        telegram.Notifier
	Publisher       repository.EventPublisher
	Metrics         *metrics.Pipeline
}

// Pipeline turns a watch-list into classified signals and persisted recommendations.
type Pipeline interface {
	// Run processes one batch. It returns the report even when it also returns an error;
	// the error is only set when no symbol could be processed at all.
	Run(ctx context.Context, req dto.RunRequest) (*dto.RunReport, error)
	// Evaluate classifies one symbol without enrichment and without persisting.
	Evaluate(ctx context.Context, symbol string) (*dto.SymbolResult, error)
	// ScanCrosses reports the golden cross state of the given symbols, or of the capped
	// watch-list when none are given.
	ScanCrosses(ctx context.Context, symbols []string) ([]CrossCandidate, error)
}

type pipeline struct {
	opts PipelineOptions
	deps PipelineDependencies
	log  *logger.Logger
	now  func() time.Time
}

func NewPipeline(opts PipelineOptions, deps PipelineDependencies, log *logger.Logger) Pipeline {
	if opts.MaxSymbolsPerRun <= 0 {
		opts.MaxSymbolsPerRun = 30
	}
	if opts.Workers <= 0 {
		opts.Workers = 3
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 10 * time.Minute
	}
	if opts.UnitTimeout <= 0 {
		opts.UnitTimeout = 90 * time.Second
	}
	if opts.CallsPerSymbol <= 0 {
		opts.CallsPerSymbol = 3
	}
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 120
	}
	if opts.MinCombinedScore <= 0 {
		opts.MinCombinedScore = 70
	}
	if opts.ConfirmationPolicy != ConfirmationTechnical {
		opts.ConfirmationPolicy = ConfirmationDual
	}
	if deps.Detector != nil {
		opts.LookbackDays = deps.Detector.Horizon().LookbackDays(opts.LookbackDays)
	}
	return &pipeline{opts: opts, deps: deps, log: log, now: utils.TimeNowICT}
}

// runState is shared by the units of one run.
type runState struct {
	id        string
	mu        sync.Mutex
	persisted map[string]struct{}
}

// claim reports whether symbol may be persisted in this run. Only the first claim wins.
func (s *runState) claim(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.persisted[symbol]; ok {
		return false
	}
	s.persisted[symbol] = struct{}{}
	return true
}

// release undoes a claim whose write failed.
func (s *runState) release(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.persisted, symbol)
}

type unitOutcome struct {
	result   *dto.SymbolResult
	failures []dto.SymbolFailure
	persist  *dto.PersistedRecommendation
	err      error
}

func (p *pipeline) Run(ctx context.Context, req dto.RunRequest) (*dto.RunReport, error) {
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logger.WithRunID(ctx, runID)
	start := time.Now()

	report := &dto.RunReport{
		RunID:     runID,
		StartedAt: p.now(),
		Results:   []dto.SymbolResult{},
		Persisted: []dto.PersistedRecommendation{},
		Failures:  []dto.SymbolFailure{},
	}

	run := &entity.PipelineRun{
		ID:        runID,
		Trigger:   triggerOf(req),
		Status:    entity.RunStatusRunning,
		StartedAt: report.StartedAt,
	}
	if p.deps.Runs != nil {
		if err := p.deps.Runs.Create(ctx, run); err != nil {
			p.log.WarnContext(ctx, "Failed to record pipeline run", logger.ErrorField(err))
		}
	}

	p.log.InfoContext(ctx, "Pipeline run started", logger.StringField("trigger", run.Trigger))

	candidates, err := p.candidates(ctx, req)
	if err != nil {
		p.log.ErrorContext(ctx, "Failed to fetch candidates", logger.ErrorField(err))
		p.finish(ctx, run, report, start, err)
		return report, err
	}

	scheduled, excess := p.applyCap(candidates)
	run.Candidates = len(candidates)
	if req.Refresh {
		p.refreshSnapshots(ctx, req, scheduled)
	}
	for _, c := range excess {
		report.Failures = append(report.Failures, dto.SymbolFailure{
			Symbol: c.Symbol,
			Stage:  dto.StageNotScheduled,
			Reason: fmt.Sprintf("cap of %d symbols per run reached", p.opts.MaxSymbolsPerRun),
		})
	}

	state := &runState{id: runID, persisted: make(map[string]struct{})}
	for _, o := range p.process(ctx, state, scheduled) {
		if o.result != nil {
			report.Results = append(report.Results, *o.result)
		}
		if o.persist != nil {
			report.Persisted = append(report.Persisted, *o.persist)
		}
		report.Failures = append(report.Failures, o.failures...)
	}

	p.finish(ctx, run, report, start, nil)
	return report, nil
}

// process runs the units on a bounded worker pool. The run timeout stops dispatching;
// dispatched units keep running on a context detached from it with their own timeout.
// Outcomes keep the input order.
func (p *pipeline) process(ctx context.Context, state *runState, candidates []dto.WatchlistCandidate) []unitOutcome {
	outcomes := make([]unitOutcome, len(candidates))
	if len(candidates) == 0 {
		return outcomes
	}

	runCtx, cancel := context.WithTimeout(ctx, p.opts.RunTimeout)
	defer cancel()
	unitParent := context.WithoutCancel(ctx)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				unitCtx, unitCancel := context.WithTimeout(unitParent, p.opts.UnitTimeout)
				outcomes[i] = p.safeUnit(unitCtx, state, candidates[i].Symbol)
				unitCancel()
			}
		}()
	}

	next := 0
dispatch:
	for next < len(candidates) {
		if runCtx.Err() != nil {
			break
		}
		select {
		case jobs <- next:
			next++
		case <-runCtx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if next < len(candidates) {
		p.log.WarnContext(ctx, "Run timeout reached, remaining symbols not scheduled",
			logger.IntField("remaining", len(candidates)-next))
	}
	for i := next; i < len(candidates); i++ {
		outcomes[i] = unitOutcome{failures: []dto.SymbolFailure{{
			Symbol: candidates[i].Symbol,
			Stage:  dto.StageNotScheduled,
			Reason: "run timeout reached before dispatch",
		}}}
	}
	return outcomes
}

func (p *pipeline) safeUnit(ctx context.Context, state *runState, symbol string) (out unitOutcome) {
	defer func() {
		if r := recover(); r != nil {
			p.log.ErrorContext(ctx, "Recovered from panic while processing symbol",
				logger.StringField("symbol", symbol), logger.Field("panic", r))
			out = unitOutcome{failures: []dto.SymbolFailure{{
				Symbol: symbol,
				Stage:  dto.StageClassify,
				Reason: fmt.Sprintf("panic: %v", r),
			}}}
		}
	}()
	return p.unit(ctx, state, symbol, true)
}

func (p *pipeline) Evaluate(ctx context.Context, symbol string) (*dto.SymbolResult, error) {
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return nil, errors.New("symbol is required")
	}
	out := p.unit(ctx, nil, symbol, false)
	if len(out.failures) > 0 {
		f := out.failures[0]
		if out.err != nil {
			return out.result, fmt.Errorf("%s: %w", f.Stage, out.err)
		}
		return out.result, fmt.Errorf("%s: %s", f.Stage, f.Reason)
	}
	return out.result, nil
}

// unit is one symbol: fetch, validate, detect, classify and, when persist is set, enrich,
// gate and persist.
func (p *pipeline) unit(ctx context.Context, state *runState, symbol string, persist bool) unitOutcome {
	fail := func(stage dto.Stage, err error) unitOutcome {
		p.deps.Metrics.IncFailure(string(stage))
		p.log.WarnContext(ctx, "Symbol failed",
			logger.StringField("symbol", symbol),
			logger.StringField("stage", string(stage)),
			logger.ErrorField(err),
		)
		return unitOutcome{failures: []dto.SymbolFailure{{Symbol: symbol, Stage: stage, Reason: err.Error()}}, err: err}
	}
	calls := 0

	calls++
	points, err := p.deps.Prices.GetDailySeries(ctx, symbol, p.opts.LookbackDays)
	p.deps.Metrics.IncUpstream("price", err)
	if err != nil {
		return fail(dto.StageFetchPrice, asUpstream("price", symbol, err))
	}

	var warnings []string
	series, validation := dto.NewPriceSeries(symbol, points)
	if n := len(validation.Rejected); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d price points rejected", n))
	}
	if err := validation.Warning(); err != nil {
		warnings = append(warnings, err.Error())
		p.log.WarnContext(ctx, "Latest price point rejected", logger.StringField("symbol", symbol), logger.ErrorField(err))
	}

	cross, err := p.deps.Detector.Evaluate(series)
	if err != nil {
		return fail(dto.StageClassify, err)
	}

	calls++
	parsed, err := p.deps.Ratios.GetRatios(ctx, symbol)
	p.deps.Metrics.IncUpstream("ratios", err)
	if err != nil {
		return fail(dto.StageFetchRatios, asUpstream("ratios", symbol, err))
	}
	if len(parsed.Malformed) > 0 {
		warnings = append(warnings, "malformed ratios: "+strings.Join(parsed.Malformed, ", "))
	}

	snap, err := p.deps.Snapshots.Get(ctx, series)
	if err != nil {
		return fail(dto.StageClassify, err)
	}

	signal := p.deps.Classifier.Classify(snap, parsed.Ratios)
	technical := signal.Direction
	signal = ApplyCrossBonus(signal, cross)
	if !cross.Above && signal.Direction == dto.DirectionBuy {
		signal = signal.WithDirection(dto.DirectionWatch,
			fmt.Sprintf("MA%d not above MA%d, no golden cross", cross.FastPeriod, cross.SlowPeriod))
	}

	result := &dto.SymbolResult{
		Symbol:          symbol,
		Signal:          signal,
		TechnicalSignal: technical,
		Cross:           cross,
		Snapshot:        snap,
		Enrichment:      dto.Enrichment{}.Status(),
		Warnings:        warnings,
	}
	if !persist || signal.Direction != dto.DirectionBuy {
		return unitOutcome{result: result}
	}

	var enrichment dto.Enrichment
	switch {
	case !p.opts.EnrichmentEnabled || p.deps.Enricher == nil:
		enrichment = dto.Enrichment{Skipped: "enrichment disabled"}
		p.deps.Metrics.ObserveEnrichment(enrichment.Status(), 0)
	case calls >= p.opts.CallsPerSymbol:
		enrichment = dto.Enrichment{Skipped: "call budget exhausted"}
		p.deps.Metrics.ObserveEnrichment(enrichment.Status(), 0)
	default:
		calls++
		fundScore, fundAvailable, _ := ScoreFundamentals(parsed.Ratios)
		enrichment = p.deps.Enricher.Enrich(ctx, symbol,
			dto.TechnicalContext{Signal: signal, Snapshot: snap, Cross: cross},
			dto.FundamentalContext{Ratios: parsed.Ratios, Score: fundScore, Available: fundAvailable},
		)
	}
	result.Enrichment = enrichment.Status()

	var conf Confirmation
	if p.opts.ConfirmationPolicy == ConfirmationTechnical {
		conf = ConfirmTechnical(signal, snap, enrichment)
	} else {
		conf = ConfirmBuy(signal, snap, enrichment, p.opts.MinCombinedScore)
	}
	result.Signal = conf.Signal
	if !conf.Confirmed {
		return unitOutcome{result: result}
	}

	if state == nil || !state.claim(symbol) {
		result.Warnings = append(result.Warnings, "already persisted in this run")
		return unitOutcome{result: result}
	}

	rec := buildRecommendation(state.id, conf, snap, parsed.Ratios, enrichment.Assessment)
	if err := p.deps.Recommendations.Create(ctx, rec); err != nil {
		state.release(symbol)
		out := fail(dto.StagePersist, &dto.PersistenceError{Symbol: symbol, Err: err})
		out.result = result
		return out
	}

	p.deps.Metrics.IncPersisted()
	result.Persisted = true
	result.RecommendationID = rec.ID.String()
	p.log.InfoContext(ctx, "Recommendation persisted",
		logger.StringField("symbol", symbol),
		logger.StringField("recommendation_id", result.RecommendationID),
		logger.IntField("confidence", rec.Confidence),
		logger.Float64Field("target_price", rec.TargetPrice),
		logger.Float64Field("stop_loss", rec.StopLoss),
	)
	p.announce(ctx, rec)

	return unitOutcome{
		result:  result,
		persist: &dto.PersistedRecommendation{Symbol: symbol, RecommendationID: result.RecommendationID},
	}
}

// refreshSnapshots drops cached snapshots so the run recomputes them. A failure only
// costs a stale cache hit, so it is logged.
func (p *pipeline) refreshSnapshots(ctx context.Context, req dto.RunRequest, scheduled []dto.WatchlistCandidate) {
	if len(req.Symbols) == 0 {
		if err := p.deps.Snapshots.Flush(ctx); err != nil {
			p.log.WarnContext(ctx, "Failed to flush snapshot cache", logger.ErrorField(err))
		}
		return
	}
	for _, c := range scheduled {
		if err := p.deps.Snapshots.Invalidate(ctx, c.Symbol); err != nil {
			p.log.WarnContext(ctx, "Failed to invalidate snapshot",
				logger.StringField("symbol", c.Symbol), logger.ErrorField(err))
		}
	}
}

func (p *pipeline) ScanCrosses(ctx context.Context, symbols []string) ([]CrossCandidate, error) {
	candidates, err := p.candidates(ctx, dto.RunRequest{Symbols: symbols})
	if err != nil {
		return nil, err
	}
	scheduled, _ := p.applyCap(candidates)

	batch := make([]*dto.PriceSeries, 0, len(scheduled))
	var failed []CrossCandidate
	for _, c := range scheduled {
		points, err := p.deps.Prices.GetDailySeries(ctx, c.Symbol, p.opts.LookbackDays)
		p.deps.Metrics.IncUpstream("price", err)
		if err != nil {
			failed = append(failed, CrossCandidate{Symbol: c.Symbol, Err: asUpstream("price", c.Symbol, err)})
			continue
		}
		series, _ := dto.NewPriceSeries(c.Symbol, points)
		batch = append(batch, series)
	}
	return append(p.deps.Detector.Scan(batch), failed...), nil
}

// announce sends the notification and the event. Both are best effort.
func (p *pipeline) announce(ctx context.Context, rec *entity.Recommendation) {
	if p.opts.NotifyTelegram && p.deps.Notifier != nil {
		if err := p.deps.Notifier.SendMessage(telegram.FormatRecommendationMessage(rec)); err != nil {
			p.log.WarnContext(ctx, "Failed to send recommendation notification",
				logger.StringField("symbol", rec.Symbol), logger.ErrorField(err))
		}
	}
	if p.deps.Publisher != nil {
		if err := p.deps.Publisher.PublishRecommendationCreated(ctx, rec); err != nil {
			p.log.WarnContext(ctx, "Failed to publish recommendation event",
				logger.StringField("symbol", rec.Symbol), logger.ErrorField(err))
		}
	}
}

func buildRecommendation(runID string, conf Confirmation, snap dto.IndicatorSnapshot, ratios dto.FundamentalRatios, narrative *dto.NarrativeAssessment) *entity.Recommendation {
	_, _, fundReasons := ScoreFundamentals(ratios)
	rec := &entity.Recommendation{
		ID:                  uuid.New(),
		RunID:               runID,
		Symbol:              conf.Signal.Symbol,
		RecommendedPrice:    RoundToTick(snap.Close),
		TargetPrice:         conf.TargetPrice,
		StopLoss:            conf.StopLoss,
		Confidence:          conf.Signal.Confidence,
		TechnicalScore:      conf.Signal.TechnicalScore,
		FundamentalScore:    conf.Signal.FundamentalScore,
		TechnicalAnalysis:   datatypes.JSONSlice[string](conf.Signal.Reasons),
		FundamentalAnalysis: datatypes.JSONSlice[string](fundReasons),
		Risks:               datatypes.JSONSlice[string]{},
		Opportunities:       datatypes.JSONSlice[string]{},
	}
	if narrative != nil {
		if len(narrative.TechnicalAnalysis) > 0 {
			rec.TechnicalAnalysis = datatypes.JSONSlice[string](narrative.TechnicalAnalysis)
		}
		if len(narrative.FundamentalAnalysis) > 0 {
			rec.FundamentalAnalysis = datatypes.JSONSlice[string](narrative.FundamentalAnalysis)
		}
		if narrative.Risks != nil {
			rec.Risks = datatypes.JSONSlice[string](narrative.Risks)
		}
		if narrative.Opportunities != nil {
			rec.Opportunities = datatypes.JSONSlice[string](narrative.Opportunities)
		}
		rec.Narrative = narrative.Summary
	}
	return rec
}

// candidates returns the deduplicated candidate list, explicit symbols first.
func (p *pipeline) candidates(ctx context.Context, req dto.RunRequest) ([]dto.WatchlistCandidate, error) {
	var raw []dto.WatchlistCandidate
	if len(req.Symbols) > 0 {
		for _, s := range req.Symbols {
			raw = append(raw, dto.WatchlistCandidate{Symbol: s})
		}
	} else {
		limit := p.opts.MaxSymbolsPerRun
		if p.opts.CapPolicy == CapPolicyRating {
			limit *= 2
		}
		list, err := p.deps.Watchlist.GetCandidates(ctx, limit)
		p.deps.Metrics.IncUpstream("watchlist", err)
		if err != nil {
			return nil, &dto.UpstreamFetchError{Source: "watchlist", Err: err}
		}
		raw = list
	}
	return dedupe(raw), nil
}

// applyCap splits the candidates into the scheduled prefix and the excess.
func (p *pipeline) applyCap(candidates []dto.WatchlistCandidate) (scheduled, excess []dto.WatchlistCandidate) {
	ordered := candidates
	if p.opts.CapPolicy == CapPolicyRating {
		ordered = make([]dto.WatchlistCandidate, len(candidates))
		copy(ordered, candidates)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Rating > ordered[j].Rating
		})
	}
	if len(ordered) <= p.opts.MaxSymbolsPerRun {
		return ordered, nil
	}
	return ordered[:p.opts.MaxSymbolsPerRun], ordered[p.opts.MaxSymbolsPerRun:]
}

func (p *pipeline) finish(ctx context.Context, run *entity.PipelineRun, report *dto.RunReport, start time.Time, runErr error) {
	report.FinishedAt = p.now()

	status := entity.RunStatusCompleted
	switch {
	case runErr != nil:
		status = entity.RunStatusFailed
		run.ErrorMessage = sql.NullString{String: runErr.Error(), Valid: true}
	case len(report.Results) == 0 && len(report.Failures) > 0:
		status = entity.RunStatusFailed
	case len(report.Failures) > 0:
		status = entity.RunStatusPartial
	}

	for _, r := range report.Results {
		p.deps.Metrics.IncSignal(string(r.Signal.Direction))
	}
	p.deps.Metrics.ObserveRun(string(status), time.Since(start))

	run.Status = status
	run.Classified = len(report.Results)
	run.PersistedCount = len(report.Persisted)
	run.FailedCount = len(report.Failures)
	run.CompletedAt = sql.NullTime{Time: report.FinishedAt, Valid: true}
	if body, err := json.Marshal(report); err == nil {
		run.Report = datatypes.JSON(body)
	} else {
		p.log.WarnContext(ctx, "Failed to encode run report", logger.ErrorField(err))
	}
	if p.deps.Runs != nil {
		if err := p.deps.Runs.Update(ctx, run); err != nil {
			p.log.WarnContext(ctx, "Failed to update pipeline run", logger.ErrorField(err))
		}
	}

	if p.opts.NotifyTelegram && p.deps.Notifier != nil {
		if err := p.deps.Notifier.SendMessage(telegram.FormatRunSummaryMessage(report)); err != nil {
			p.log.WarnContext(ctx, "Failed to send run summary", logger.ErrorField(err))
		}
	}

	p.log.InfoContext(ctx, "Pipeline run finished",
		logger.StringField("status", string(status)),
		logger.IntField("classified", run.Classified),
		logger.IntField("persisted", run.PersistedCount),
		logger.IntField("failed", run.FailedCount),
		logger.DurationField("duration", time.Since(start)),
	)
}

func dedupe(candidates []dto.WatchlistCandidate) []dto.WatchlistCandidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]dto.WatchlistCandidate, 0, len(candidates))
	for _, c := range candidates {
		c.Symbol = normalizeSymbol(c.Symbol)
		if c.Symbol == "" {
			continue
		}
		if _, ok := seen[c.Symbol]; ok {
			continue
		}
		seen[c.Symbol] = struct{}{}
		out = append(out, c)
	}
	return out
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func asUpstream(source, symbol string, err error) error {
	var upstream *dto.UpstreamFetchError
	if errors.As(err, &upstream) {
		return err
	}
	return &dto.UpstreamFetchError{Source: source, Symbol: symbol, Err: err}
}

func triggerOf(req dto.RunRequest) string {
	if req.Source != "" {
		return req.Source
	}
	if len(req.Symbols) > 0 {
		return TriggerManual
	}
	return TriggerScheduled
}
