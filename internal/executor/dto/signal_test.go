package dto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignal_WithDirectionDoesNotAlias(t *testing.T) {
	base := Signal{Direction: DirectionBuy, Reasons: make([]string, 1, 4)}
	base.Reasons[0] = "MA10 above MA30"

	a := base.WithDirection(DirectionWatch, "not confirmed")
	b := base.WithDirection(DirectionHold, "other")

	assert.Equal(t, []string{"MA10 above MA30", "not confirmed"}, a.Reasons)
	assert.Equal(t, []string{"MA10 above MA30", "other"}, b.Reasons)
	assert.Equal(t, DirectionBuy, base.Direction)
}

func TestSignal_WithConfidenceClamps(t *testing.T) {
	assert.Equal(t, 100, Signal{}.WithConfidence(115).Confidence)
	assert.Equal(t, 0, Signal{}.WithConfidence(-3).Confidence)
	assert.Equal(t, 62.5, Signal{TechnicalScore: 75, FundamentalScore: 50}.CombinedScore())
}

func TestEnrichment_Status(t *testing.T) {
	assert.Equal(t, "not_attempted", Enrichment{}.Status())
	assert.Equal(t, "skipped", Enrichment{Skipped: "disabled"}.Status())
	assert.Equal(t, "failed", Enrichment{Err: errors.New("x")}.Status())
	assert.Equal(t, "ok", Enrichment{Assessment: &NarrativeAssessment{}}.Status())
}

func TestNarrativeAssessment_Bullish(t *testing.T) {
	assert.True(t, (&NarrativeAssessment{Outlook: "Bullish"}).Bullish())
	assert.True(t, (&NarrativeAssessment{Outlook: "neutral", Recommendation: "buy"}).Bullish())
	assert.False(t, (&NarrativeAssessment{Outlook: "bearish", Recommendation: "HOLD"}).Bullish())
	var none *NarrativeAssessment
	assert.False(t, none.Bullish())
}

func TestErrors(t *testing.T) {
	insufficient := &DataInsufficientError{Symbol: "FPT", Have: 12, Need: 30}
	assert.True(t, errors.Is(insufficient, ErrInsufficientData))
	assert.EqualError(t, insufficient, "insufficient data for FPT: have 12 points, need 30")

	cause := errors.New("503")
	upstream := &UpstreamFetchError{Source: "price", Symbol: "FPT", Err: cause}
	assert.ErrorIs(t, upstream, cause)
	assert.EqualError(t, &UpstreamFetchError{Source: "watchlist", Err: cause}, "fetch watchlist: 503")
}
