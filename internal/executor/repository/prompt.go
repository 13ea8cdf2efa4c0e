package repository

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang-stock-signal/internal/executor/dto"
)

// BuildAssessmentPrompt renders the narrative request for one symbol. The numeric
// classification is given as context only; the model cannot override it.
func BuildAssessmentPrompt(symbol string, tech dto.TechnicalContext, fund dto.FundamentalContext) string {
	var techBuilder strings.Builder
	snap := tech.Snapshot
	techBuilder.WriteString(fmt.Sprintf("- Last close (%s): %.0f VND, previous close %.0f\n", snap.AsOf.Format("2006-01-02"), snap.Close, snap.PrevClose))
	techBuilder.WriteString(fmt.Sprintf("- MA10: %.0f, MA30: %.0f\n", snap.MA10, snap.MA30))
	techBuilder.WriteString(fmt.Sprintf("- Bollinger(20,2): upper %.0f, middle %.0f, lower %.0f\n", snap.BollingerUpper, snap.BollingerMiddle, snap.BollingerLower))
	if snap.Pivots != nil {
		techBuilder.WriteString(fmt.Sprintf("- Woodie pivots: P %.0f, R1 %.0f, R2 %.0f, S1 %.0f, S2 %.0f\n", snap.Pivots.Pivot, snap.Pivots.R1, snap.Pivots.R2, snap.Pivots.S1, snap.Pivots.S2))
	}
	techBuilder.WriteString(fmt.Sprintf("- Momentum: 5d %.2f%%, 10d %.2f%%; volume vs 20d average %.2fx\n", snap.Momentum5d, snap.Momentum10d, snap.VolumeRatio))
	if tech.Cross.Above {
		techBuilder.WriteString(fmt.Sprintf("- MA%d above MA%d", tech.Cross.FastPeriod, tech.Cross.SlowPeriod))
		if tech.Cross.CrossVisible {
			techBuilder.WriteString(fmt.Sprintf(", crossed %d trading days ago", tech.Cross.DaysSinceCross))
		}
		techBuilder.WriteString("\n")
	}
	techBuilder.WriteString(fmt.Sprintf("- Engine signal: %s, confidence %d, technical score %.0f/100\n", tech.Signal.Direction, tech.Signal.Confidence, tech.Signal.TechnicalScore))
	for _, reason := range tech.Signal.Reasons {
		techBuilder.WriteString(fmt.Sprintf("  * %s\n", reason))
	}

	var fundBuilder strings.Builder
	if !fund.Available {
		fundBuilder.WriteString("- No fundamental ratios available\n")
	} else {
		codes := make([]string, 0, len(fund.Ratios))
		for code := range fund.Ratios {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			v := fund.Ratios[code]
			if math.IsNaN(v) {
				continue
			}
			fundBuilder.WriteString(fmt.Sprintf("- %s: %.2f\n", code, v))
		}
		fundBuilder.WriteString(fmt.Sprintf("- Fundamental score: %.0f/100\n", fund.Score))
	}

	newsBlock := "- No recent headlines\n"
	if len(fund.Headlines) > 0 {
		var nb strings.Builder
		for i, h := range fund.Headlines {
			nb.WriteString(fmt.Sprintf("%d. %s\n", i+1, h))
		}
		newsBlock = nb.String()
	}

	promptTemplate := `You are an equity analyst covering the Vietnamese stock market (HOSE, HNX, UPCoM).
Assess %s for a swing trade of 2 to 8 weeks using only the data below.

Technical data:
%s
Fundamental data:
%s
Recent headlines:
%s
Rules:
- Prices are in VND. target_price must be above the last close and stop_loss below it, or 0 when you cannot justify one.
- Keep every list item to one sentence.
- Answer with JSON only, no markdown, using this structure:

{
  "outlook": "bullish | neutral | bearish",
  "recommendation": "BUY | HOLD | SELL",
  "confidence": <integer 0-100>,
  "target_price": <number>,
  "stop_loss": <number>,
  "summary": "<one paragraph>",
  "technical_analysis": ["<string>"],
  "fundamental_analysis": ["<string>"],
  "risks": ["<string>"],
  "opportunities": ["<string>"]
}`

	return fmt.Sprintf(promptTemplate, symbol, techBuilder.String(), fundBuilder.String(), newsBlock)
}
