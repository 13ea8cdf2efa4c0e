package telegram

import (
	"testing"
	"time"

	"golang-stock-signal/internal/entity"
	"golang-stock-signal/internal/executor/dto"

	"github.com/stretchr/testify/assert"
)

func TestFormatRecommendationMessage(t *testing.T) {
	rec := &entity.Recommendation{
		Symbol:            "FPT",
		RecommendedPrice:  120000,
		TargetPrice:       132000,
		StopLoss:          114000,
		Confidence:        85,
		TechnicalScore:    90,
		FundamentalScore:  80,
		TechnicalAnalysis: []string{"MA10 above MA30"},
		Risks:             []string{"market-wide sell-off"},
		CreatedAt:         time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC),
	}

	msg := FormatRecommendationMessage(rec)

	assert.Contains(t, msg, "*FPT*")
	assert.Contains(t, msg, "120,000 ₫")
	assert.Contains(t, msg, "132,000 ₫ (+10.0%)")
	assert.Contains(t, msg, "114,000 ₫ (-5.0%)")
	assert.Contains(t, msg, "Risk/Reward: 2.00")
	assert.Contains(t, msg, "MA10 above MA30")
	assert.Contains(t, msg, "market-wide sell-off")
	assert.NotContains(t, msg, "Opportunities")
}

func TestFormatRunSummaryMessage(t *testing.T) {
	start := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	report := &dto.RunReport{
		RunID:      "run-1",
		StartedAt:  start,
		FinishedAt: start.Add(95 * time.Second),
		Results:    make([]dto.SymbolResult, 4),
		Persisted:  []dto.PersistedRecommendation{{Symbol: "VNM", RecommendationID: "x"}},
		Failures:   []dto.SymbolFailure{{Symbol: "HPG", Stage: dto.StageFetchPrice}},
	}

	msg := FormatRunSummaryMessage(report)
	assert.Contains(t, msg, "run-1")
	assert.Contains(t, msg, "1m35s")
	assert.Contains(t, msg, "4 classified, 💾 1 persisted, ❌ 1 failed")
	assert.Contains(t, msg, "• VNM")
}

func TestFormatRecommendationMessage_EscapesMarkdown(t *testing.T) {
	rec := &entity.Recommendation{
		Symbol:            "E1VFVN30",
		RecommendedPrice:  20000,
		TargetPrice:       22000,
		StopLoss:          19000,
		TechnicalAnalysis: []string{"MA10_above *strong*"},
		Risks:             []string{"see [filing]"},
		CreatedAt:         time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC),
	}

	msg := FormatRecommendationMessage(rec)

	assert.Contains(t, msg, `• MA10\_above \*strong\*`)
	assert.Contains(t, msg, `• see \[filing]`)
	assert.NotContains(t, msg, "MA10_above")
}

func TestFormatErrorAlertMessage_EscapesMarkdown(t *testing.T) {
	msg := FormatErrorAlertMessage(time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
		"Pipeline run retry exceeded", "dial tcp: lookup redis_host", "run_id=abc")

	assert.Contains(t, msg, `lookup redis\_host`)
	assert.Contains(t, msg, `run\_id=abc`)
}
