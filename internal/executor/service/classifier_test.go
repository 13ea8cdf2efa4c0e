package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-signal/internal/executor/dto"
)

func TestClassifySeries_RisingTrendWithCheapValuation(t *testing.T) {
	series := trendSeries("FPT", 35, 20_000, 100)
	ratios := dto.FundamentalRatios{dto.RatioPE: 8, dto.RatioROE: 18}

	signal, snap, err := NewClassifier(MAScoringBinary).ClassifySeries(series, ratios)
	require.NoError(t, err)

	assert.Greater(t, snap.MA10, snap.MA30)
	assert.Equal(t, dto.DirectionBuy, signal.Direction)
	assert.GreaterOrEqual(t, signal.Confidence, 60)
	assert.GreaterOrEqual(t, signal.NetScore, 30)
	assert.Equal(t, 90, signal.NetScore)
	assert.Equal(t, 95.0, signal.TechnicalScore)
	assert.InDelta(t, 90.0, signal.FundamentalScore, 1e-9)
	assert.True(t, signal.FundamentalAvailable)
	assert.Equal(t, snap.AsOf, signal.ComputedAt)
	assert.NotEmpty(t, signal.Reasons)
}

func TestClassifySeries_FallingTrendIsSell(t *testing.T) {
	series := trendSeries("HPG", 35, 30_000, -100)

	signal, _, err := NewClassifier(MAScoringBinary).ClassifySeries(series, nil)
	require.NoError(t, err)

	assert.Equal(t, dto.DirectionSell, signal.Direction)
	assert.Equal(t, -90, signal.NetScore)
	assert.Equal(t, 90, signal.Confidence)
	assert.Equal(t, 5.0, signal.TechnicalScore)
	assert.Equal(t, 50.0, signal.FundamentalScore)
	assert.False(t, signal.FundamentalAvailable)
}

func TestClassifySeries_InsufficientData(t *testing.T) {
	series := trendSeries("VNM", 10, 20_000, 100)

	signal, _, err := NewClassifier(MAScoringBinary).ClassifySeries(series, dto.FundamentalRatios{dto.RatioPE: 8})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dto.ErrInsufficientData))

	var insufficient *dto.DataInsufficientError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 10, insufficient.Have)
	assert.Equal(t, MinClassifyPoints, insufficient.Need)
	assert.Empty(t, signal.Direction, "insufficient data must not be reported as HOLD")
}

func TestClassifySeries_Idempotent(t *testing.T) {
	series := trendSeries("MWG", 40, 45_000, 150)
	ratios := dto.FundamentalRatios{dto.RatioPE: 14, dto.RatioPB: 2.1, dto.RatioROE: 0.16, dto.RatioROA: 6}
	c := NewClassifier(MAScoringBinary)

	first, _, err := c.ClassifySeries(series, ratios)
	require.NoError(t, err)
	second, _, err := c.ClassifySeries(series, ratios)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestClassify_Deadband(t *testing.T) {
	snap := dto.IndicatorSnapshot{
		Symbol:         "SSI",
		AsOf:           time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Close:          99,
		PrevClose:      99,
		MA10:           101,
		MA30:           100,
		BollingerUpper: 110,
		BollingerLower: 90,
		Momentum5d:     -1,
		Momentum10d:    -1,
	}

	// +30 MA, -25 lower half of the band, -10 and -15 momentum.
	signal := NewClassifier(MAScoringBinary).Classify(snap, nil)
	assert.Equal(t, -20, signal.NetScore)
	assert.Equal(t, dto.DirectionSell, signal.Direction)

	snap.Momentum10d = 1
	signal = NewClassifier(MAScoringBinary).Classify(snap, nil)
	assert.Equal(t, 10, signal.NetScore)
	assert.Equal(t, dto.DirectionHold, signal.Direction)
	assert.Equal(t, 10, signal.Confidence)
	assert.Equal(t, 55.0, signal.TechnicalScore)
}

func TestClassify_MonotonicInBullishInputs(t *testing.T) {
	base := dto.IndicatorSnapshot{
		Symbol:         "ACB",
		Close:          95,
		PrevClose:      96,
		MA10:           98,
		MA30:           100,
		BollingerUpper: 110,
		BollingerLower: 90,
		Momentum5d:     -2,
		Momentum10d:    -3,
		VolumeRatio:    1.6,
	}
	c := NewClassifier(MAScoringBinary)
	prev := c.Classify(base, nil).NetScore

	steps := []func(s *dto.IndicatorSnapshot){
		func(s *dto.IndicatorSnapshot) { s.MA10 = 101 },
		func(s *dto.IndicatorSnapshot) { s.Momentum5d = 0 },
		func(s *dto.IndicatorSnapshot) { s.Momentum5d = 3 },
		func(s *dto.IndicatorSnapshot) { s.Momentum10d = 4 },
		func(s *dto.IndicatorSnapshot) { s.PrevClose = 95 },
		func(s *dto.IndicatorSnapshot) { s.PrevClose = 94 },
	}
	snap := base
	for i, step := range steps {
		step(&snap)
		net := c.Classify(snap, nil).NetScore
		assert.GreaterOrEqual(t, net, prev, "step %d decreased the net score", i)
		prev = net
	}
}

func TestClassify_ScaledMAScoring(t *testing.T) {
	snap := dto.IndicatorSnapshot{Symbol: "VCB", Close: 100, PrevClose: 100, MA10: 101, MA30: 100}

	binary := NewClassifier(MAScoringBinary).Classify(snap, nil)
	scaled := NewClassifier(MAScoringScaled).Classify(snap, nil)

	assert.Equal(t, 30, binary.NetScore)
	// 1% gap is a fifth of the 5% full-credit gap.
	assert.Equal(t, 6, scaled.NetScore)

	snap.MA10 = 110
	assert.Equal(t, 30, NewClassifier(MAScoringScaled).Classify(snap, nil).NetScore)
}

func TestClassify_VolumeNeedsDirection(t *testing.T) {
	snap := dto.IndicatorSnapshot{Close: 100, PrevClose: 100, VolumeRatio: 2}
	assert.Equal(t, 0, NewClassifier("").Classify(snap, nil).NetScore)

	snap.PrevClose = 99
	assert.Equal(t, 20, NewClassifier("").Classify(snap, nil).NetScore)

	snap.VolumeRatio = 1.2
	assert.Equal(t, 10, NewClassifier("").Classify(snap, nil).NetScore)
}

func TestScoreFundamentals(t *testing.T) {
	tests := []struct {
		name      string
		ratios    dto.FundamentalRatios
		score     float64
		available bool
	}{
		{"none", nil, 50, false},
		{"pe only", dto.FundamentalRatios{dto.RatioPE: 12}, 75, true},
		{"loss making", dto.FundamentalRatios{dto.RatioPE: -3}, 0, true},
		{"roe as fraction", dto.FundamentalRatios{dto.RatioROE: 0.18}, 80, true},
		{"roe as percent", dto.FundamentalRatios{dto.RatioROE: 18}, 80, true},
		{"all", dto.FundamentalRatios{dto.RatioPE: 8, dto.RatioPB: 1.2, dto.RatioROE: 22, dto.RatioROA: 5}, 85, true},
		{"eps ignored", dto.FundamentalRatios{dto.RatioEPS: 4000}, 50, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, available, reasons := ScoreFundamentals(tt.ratios)
			assert.InDelta(t, tt.score, score, 1e-9)
			assert.Equal(t, tt.available, available)
			assert.NotEmpty(t, reasons)
		})
	}
}
