package service

import (
	"fmt"

	"golang-stock-signal/internal/executor/dto"
)

const (
	ConfirmationDual      = "dual"
	ConfirmationTechnical = "technical"

	// Stop loss used when neither the narrative nor the pivots give one.
	defaultStopLossRatio = 0.93
)

// Confirmation is the gate verdict for a technical BUY.
type Confirmation struct {
	Signal      dto.Signal
	Confirmed   bool
	TargetPrice float64
	StopLoss    float64
	Failed      []string
}

// ConfirmBuy applies the dual-confirmation gate. Every condition must hold: technical BUY,
// an enrichment, a bullish narrative, a combined score of at least minCombined and a
// derivable target. Otherwise the signal is downgraded to WATCH and each failed condition
// becomes a reason. Non-BUY signals are returned unchanged and unconfirmed.
func ConfirmBuy(signal dto.Signal, snap dto.IndicatorSnapshot, enrichment dto.Enrichment, minCombined float64) Confirmation {
	if signal.Direction != dto.DirectionBuy {
		return Confirmation{Signal: signal}
	}

	var failed []string
	if !enrichment.Available() {
		reason := "no narrative assessment"
		switch {
		case enrichment.Err != nil:
			reason = fmt.Sprintf("no narrative assessment: %v", enrichment.Err)
		case enrichment.Skipped != "":
			reason = fmt.Sprintf("no narrative assessment: %s", enrichment.Skipped)
		}
		failed = append(failed, reason)
	} else if !enrichment.Assessment.Bullish() {
		failed = append(failed, fmt.Sprintf("narrative not bullish (outlook %q, recommendation %q)",
			enrichment.Assessment.Outlook, enrichment.Assessment.Recommendation))
	}

	if combined := signal.CombinedScore(); combined < minCombined {
		failed = append(failed, fmt.Sprintf("combined score %.1f below %.0f", combined, minCombined))
	}

	target, ok := DeriveTargetPrice(snap, enrichment.Assessment)
	if !ok {
		failed = append(failed, "no target price above current price")
	}

	return verdict(signal, snap, enrichment.Assessment, target, failed)
}

// ConfirmTechnical is the relaxed policy: a technical BUY is kept as long as a target
// can be derived. The narrative, when present, only annotates the recommendation.
func ConfirmTechnical(signal dto.Signal, snap dto.IndicatorSnapshot, enrichment dto.Enrichment) Confirmation {
	if signal.Direction != dto.DirectionBuy {
		return Confirmation{Signal: signal}
	}

	var failed []string
	target, ok := DeriveTargetPrice(snap, enrichment.Assessment)
	if !ok {
		failed = append(failed, "no target price above current price")
	}
	return verdict(signal, snap, enrichment.Assessment, target, failed)
}

func verdict(signal dto.Signal, snap dto.IndicatorSnapshot, narrative *dto.NarrativeAssessment, target float64, failed []string) Confirmation {
	if len(failed) > 0 {
		return Confirmation{
			Signal: signal.WithDirection(dto.DirectionWatch, prefixed("BUY not confirmed: ", failed)...),
			Failed: failed,
		}
	}
	return Confirmation{
		Signal:      signal,
		Confirmed:   true,
		TargetPrice: target,
		StopLoss:    DeriveStopLoss(snap, narrative),
	}
}

// DeriveTargetPrice prefers the narrative target when it is above the current price, then
// the first Woodie resistance above it.
func DeriveTargetPrice(snap dto.IndicatorSnapshot, narrative *dto.NarrativeAssessment) (float64, bool) {
	if snap.Close <= 0 {
		return 0, false
	}
	if narrative != nil && narrative.TargetPrice > snap.Close {
		return RoundUpToTick(narrative.TargetPrice), true
	}
	if snap.Pivots != nil {
		for _, level := range []float64{snap.Pivots.R1, snap.Pivots.R2} {
			if level > snap.Close {
				return RoundUpToTick(level), true
			}
		}
	}
	return 0, false
}

// DeriveStopLoss prefers the narrative stop loss below the price, then the nearest pivot
// support, then a fixed 7% below the price.
func DeriveStopLoss(snap dto.IndicatorSnapshot, narrative *dto.NarrativeAssessment) float64 {
	switch {
	case narrative != nil && narrative.StopLoss > 0 && narrative.StopLoss < snap.Close:
		return RoundDownToTick(narrative.StopLoss)
	case snap.PivotSupport > 0 && snap.PivotSupport < snap.Close:
		return RoundDownToTick(snap.PivotSupport)
	default:
		return RoundDownToTick(snap.Close * defaultStopLossRatio)
	}
}

func prefixed(prefix string, items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = prefix + item
	}
	return out
}
