package service

import (
	"fmt"
	"math"

	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/pkg/indicator"
)

// Technical weights. They sum to 100; volume takes its full weight at 1.5x the 20-day
// average and half of it at 1.0x.
const (
	weightMA          = 30.0
	weightBollinger   = 25.0
	weightVolume      = 20.0
	weightMomentum5d  = 10.0
	weightMomentum10d = 15.0

	// netScore inside ±deadband is HOLD.
	deadband = 15

	// MA gap that earns the full MA weight in scaled mode.
	maScaledFullGap = 0.05

	fundamentalNeutral = 50.0
)

const (
	MAScoringBinary = "binary"
	MAScoringScaled = "scaled"
)

// Fundamental weights over present ratios.
var fundamentalWeights = map[string]float64{
	dto.RatioPE:  30,
	dto.RatioPB:  20,
	dto.RatioROE: 30,
	dto.RatioROA: 20,
}

var fundamentalOrder = []string{dto.RatioPE, dto.RatioPB, dto.RatioROE, dto.RatioROA}

// Classifier turns an indicator snapshot and fundamental ratios into a Signal. It never
// writes anywhere.
type Classifier interface {
	Classify(snapshot dto.IndicatorSnapshot, ratios dto.FundamentalRatios) dto.Signal
	ClassifySeries(series *dto.PriceSeries, ratios dto.FundamentalRatios) (dto.Signal, dto.IndicatorSnapshot, error)
}

type classifier struct {
	maScoring string
}

// NewClassifier creates a classifier. maScoring is "binary" (default) or "scaled".
func NewClassifier(maScoring string) Classifier {
	if maScoring != MAScoringScaled {
		maScoring = MAScoringBinary
	}
	return &classifier{maScoring: maScoring}
}

func (c *classifier) ClassifySeries(series *dto.PriceSeries, ratios dto.FundamentalRatios) (dto.Signal, dto.IndicatorSnapshot, error) {
	snap, err := BuildSnapshot(series)
	if err != nil {
		return dto.Signal{}, dto.IndicatorSnapshot{}, err
	}
	return c.Classify(snap, ratios), snap, nil
}

func (c *classifier) Classify(snap dto.IndicatorSnapshot, ratios dto.FundamentalRatios) dto.Signal {
	net, techReasons := c.technical(snap)
	fundScore, fundAvailable, fundReasons := ScoreFundamentals(ratios)

	direction := dto.DirectionHold
	switch {
	case net > deadband:
		direction = dto.DirectionBuy
	case net < -deadband:
		direction = dto.DirectionSell
	}

	confidence := net
	if confidence < 0 {
		confidence = -confidence
	}
	if confidence > 100 {
		confidence = 100
	}

	reasons := make([]string, 0, len(techReasons)+len(fundReasons))
	reasons = append(reasons, techReasons...)
	reasons = append(reasons, fundReasons...)

	return dto.Signal{
		Symbol:               snap.Symbol,
		Direction:            direction,
		Confidence:           confidence,
		Reasons:              reasons,
		NetScore:             net,
		TechnicalScore:       float64(net+100) / 2,
		FundamentalScore:     fundScore,
		FundamentalAvailable: fundAvailable,
		ComputedAt:           snap.AsOf,
	}
}

// technical accumulates bullish and bearish weight in separate buckets and returns the
// rounded difference.
func (c *classifier) technical(snap dto.IndicatorSnapshot) (int, []string) {
	var bullish, bearish float64
	var reasons []string

	if indicator.IsDefined(snap.MA10) && indicator.IsDefined(snap.MA30) && snap.MA30 > 0 {
		w := weightMA
		if c.maScoring == MAScoringScaled {
			w = weightMA * math.Min(math.Abs(snap.MA10-snap.MA30)/snap.MA30/maScaledFullGap, 1)
		}
		if snap.MA10 > snap.MA30 {
			bullish += w
			reasons = append(reasons, fmt.Sprintf("MA10 %.0f above MA30 %.0f (+%.0f)", snap.MA10, snap.MA30, w))
		} else {
			bearish += w
			reasons = append(reasons, fmt.Sprintf("MA10 %.0f not above MA30 %.0f (-%.0f)", snap.MA10, snap.MA30, w))
		}
	}

	pb := indicator.PercentB(snap.Close, snap.BollingerUpper, snap.BollingerLower)
	if indicator.IsDefined(pb) {
		switch {
		case pb < 0:
			bullish += weightBollinger
			reasons = append(reasons, fmt.Sprintf("price below lower Bollinger band, oversold (%%B %.2f, +%.0f)", pb, weightBollinger))
		case pb > 1:
			bearish += weightBollinger
			reasons = append(reasons, fmt.Sprintf("price above upper Bollinger band, overbought (%%B %.2f, -%.0f)", pb, weightBollinger))
		case pb >= 0.5:
			bullish += weightBollinger
			reasons = append(reasons, fmt.Sprintf("price in upper half of Bollinger band (%%B %.2f, +%.0f)", pb, weightBollinger))
		default:
			bearish += weightBollinger
			reasons = append(reasons, fmt.Sprintf("price in lower half of Bollinger band (%%B %.2f, -%.0f)", pb, weightBollinger))
		}
	}

	if w := volumeWeight(snap.VolumeRatio); w > 0 {
		switch {
		case snap.Close > snap.PrevClose:
			bullish += w
			reasons = append(reasons, fmt.Sprintf("volume %.1fx 20-day average on an up day (+%.0f)", snap.VolumeRatio, w))
		case snap.Close < snap.PrevClose:
			bearish += w
			reasons = append(reasons, fmt.Sprintf("volume %.1fx 20-day average on a down day (-%.0f)", snap.VolumeRatio, w))
		}
	}

	addMomentum := func(label string, v, w float64) {
		switch {
		case v > 0:
			bullish += w
			reasons = append(reasons, fmt.Sprintf("%s momentum %+.2f%% (+%.0f)", label, v, w))
		case v < 0:
			bearish += w
			reasons = append(reasons, fmt.Sprintf("%s momentum %+.2f%% (-%.0f)", label, v, w))
		}
	}
	addMomentum("5-day", snap.Momentum5d, weightMomentum5d)
	addMomentum("10-day", snap.Momentum10d, weightMomentum10d)

	return int(math.Round(bullish - bearish)), reasons
}

func volumeWeight(ratio float64) float64 {
	switch {
	case ratio >= 1.5:
		return weightVolume
	case ratio >= 1.0:
		return weightVolume / 2
	default:
		return 0
	}
}

// ScoreFundamentals maps each present ratio to a 0..1 bullishness band and returns the
// weighted average scaled to 0..100. Absent ratios are skipped; with none present the
// score is a neutral 50 and available is false.
func ScoreFundamentals(ratios dto.FundamentalRatios) (score float64, available bool, reasons []string) {
	var weighted, totalWeight float64
	for _, code := range fundamentalOrder {
		v, ok := ratios.Get(code)
		if !ok || !indicator.IsDefined(v) {
			continue
		}
		band, label := fundamentalBand(code, v)
		w := fundamentalWeights[code]
		weighted += band * w
		totalWeight += w
		reasons = append(reasons, label)
	}

	if totalWeight == 0 {
		return fundamentalNeutral, false, []string{"no fundamental ratios available, fundamental score neutral"}
	}
	score = weighted / totalWeight * 100
	return score, true, reasons
}

func fundamentalBand(code string, v float64) (float64, string) {
	switch code {
	case dto.RatioPE:
		band := 0.0
		switch {
		case v <= 0:
			return 0, fmt.Sprintf("P/E %.1f, loss-making", v)
		case v < 10:
			band = 1
		case v < 15:
			band = 0.75
		case v < 20:
			band = 0.5
		case v < 30:
			band = 0.25
		}
		return band, fmt.Sprintf("P/E %.1f (%s)", v, bandLabel(band))
	case dto.RatioPB:
		band := 0.0
		switch {
		case v <= 0:
			return 0, fmt.Sprintf("P/B %.2f, negative book value", v)
		case v < 1:
			band = 1
		case v < 1.5:
			band = 0.75
		case v < 2.5:
			band = 0.5
		case v < 4:
			band = 0.25
		}
		return band, fmt.Sprintf("P/B %.2f (%s)", v, bandLabel(band))
	case dto.RatioROE:
		v = asPercent(v)
		band := 0.0
		switch {
		case v >= 20:
			band = 1
		case v >= 15:
			band = 0.8
		case v >= 10:
			band = 0.5
		case v >= 5:
			band = 0.25
		}
		return band, fmt.Sprintf("ROE %.1f%% (%s)", v, bandLabel(band))
	case dto.RatioROA:
		v = asPercent(v)
		band := 0.0
		switch {
		case v >= 10:
			band = 1
		case v >= 7:
			band = 0.75
		case v >= 4:
			band = 0.5
		case v >= 1:
			band = 0.25
		}
		return band, fmt.Sprintf("ROA %.1f%% (%s)", v, bandLabel(band))
	}
	return 0, code
}

// Providers report ROE/ROA either as a fraction (0.18) or a percentage (18).
func asPercent(v float64) float64 {
	if math.Abs(v) < 1 {
		return v * 100
	}
	return v
}

func bandLabel(band float64) string {
	switch {
	case band >= 0.75:
		return "favourable"
	case band >= 0.5:
		return "fair"
	case band > 0:
		return "weak"
	default:
		return "unfavourable"
	}
}
