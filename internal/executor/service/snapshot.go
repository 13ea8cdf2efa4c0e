package service

import (
	"context"
	"time"

	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/internal/executor/repository"
	"golang-stock-signal/pkg/indicator"
	"golang-stock-signal/pkg/logger"
)

const (
	// MinClassifyPoints covers SMA30 and Bollinger(20).
	MinClassifyPoints = 30

	fastPeriod      = 10
	slowPeriod      = 30
	bollingerPeriod = 20
	bollingerK      = 2.0
	volumePeriod    = 20
)

// BuildSnapshot derives the indicator state of the last bar. Indicators run on adjusted
// closes; pivots use the raw high, low and close of the previous session.
func BuildSnapshot(series *dto.PriceSeries) (dto.IndicatorSnapshot, error) {
	n := series.Len()
	if n < MinClassifyPoints {
		symbol := ""
		if series != nil {
			symbol = series.Symbol
		}
		return dto.IndicatorSnapshot{}, &dto.DataInsufficientError{Symbol: symbol, Have: n, Need: MinClassifyPoints}
	}

	closes := series.Closes()
	last, _ := series.Last()
	bands := indicator.BollingerBands(closes, bollingerPeriod, bollingerK)

	snap := dto.IndicatorSnapshot{
		Symbol:          series.Symbol,
		AsOf:            last.Date,
		Close:           closes[n-1],
		PrevClose:       closes[n-2],
		MA10:            indicator.Last(indicator.SMA(closes, fastPeriod)),
		MA30:            indicator.Last(indicator.SMA(closes, slowPeriod)),
		BollingerUpper:  indicator.Last(bands.Upper),
		BollingerMiddle: indicator.Last(bands.Middle),
		BollingerLower:  indicator.Last(bands.Lower),
		Momentum5d:      definedOr(indicator.Momentum(closes, 5), 0),
		Momentum10d:     definedOr(indicator.Momentum(closes, 10), 0),
		VolumeRatio:     definedOr(indicator.VolumeRatio(series.Volumes(), volumePeriod), 0),
	}

	if pivots, ok := indicator.PreviousPeriodPivots(series.Highs(), series.Lows(), series.RawCloses()); ok {
		snap.Pivots = &pivots
		snap.PivotSupport = pivots.NearestSupport(snap.Close)
		snap.PivotResistance = pivots.NearestResistance(snap.Close)
	}
	return snap, nil
}

func definedOr(v, fallback float64) float64 {
	if indicator.IsDefined(v) {
		return v
	}
	return fallback
}

// SnapshotService serves snapshots through the cache. A cached entry is reused only when
// it was computed for the same last bar.
type SnapshotService interface {
	Get(ctx context.Context, series *dto.PriceSeries) (dto.IndicatorSnapshot, error)
	Invalidate(ctx context.Context, symbol string) error
	Flush(ctx context.Context) error
}

type snapshotService struct {
	cache repository.SnapshotCache
	ttl   time.Duration
	log   *logger.Logger
}

func NewSnapshotService(cache repository.SnapshotCache, ttl time.Duration, log *logger.Logger) SnapshotService {
	return &snapshotService{cache: cache, ttl: ttl, log: log}
}

func (s *snapshotService) Get(ctx context.Context, series *dto.PriceSeries) (dto.IndicatorSnapshot, error) {
	last, ok := series.Last()
	if ok && s.cache != nil {
		cached, hit, err := s.cache.Get(ctx, series.Symbol)
		if err != nil {
			s.log.WarnContext(ctx, "Snapshot cache read failed", logger.StringField("symbol", series.Symbol), logger.ErrorField(err))
		}
		if hit && cached.AsOf.Equal(last.Date) {
			return *cached, nil
		}
	}

	snap, err := BuildSnapshot(series)
	if err != nil {
		return dto.IndicatorSnapshot{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snap, s.ttl); err != nil {
			s.log.WarnContext(ctx, "Snapshot cache write failed", logger.StringField("symbol", series.Symbol), logger.ErrorField(err))
		}
	}
	return snap, nil
}

func (s *snapshotService) Invalidate(ctx context.Context, symbol string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, symbol)
}

func (s *snapshotService) Flush(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Flush(ctx)
}
