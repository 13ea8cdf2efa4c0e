package dto

import "strings"

// NarrativeAssessment is the advisory output of the AI narrative call.
type NarrativeAssessment struct {
	Outlook             string   `json:"outlook"`
	Recommendation      string   `json:"recommendation"`
	Confidence          int      `json:"confidence"`
	TargetPrice         float64  `json:"target_price"`
	StopLoss            float64  `json:"stop_loss"`
	Summary             string   `json:"summary"`
	TechnicalAnalysis   []string `json:"technical_analysis"`
	FundamentalAnalysis []string `json:"fundamental_analysis"`
	Risks               []string `json:"risks"`
	Opportunities       []string `json:"opportunities"`
}

// Bullish reports whether the narrative agrees with a bullish direction.
func (n *NarrativeAssessment) Bullish() bool {
	if n == nil {
		return false
	}
	return strings.EqualFold(n.Outlook, "bullish") || strings.EqualFold(n.Recommendation, string(DirectionBuy))
}

// Enrichment is the optional result of the narrative step: an assessment, or the error
// that explains its absence. The zero value means enrichment was not attempted.
type Enrichment struct {
	Assessment *NarrativeAssessment
	Err        error
	Skipped    string
}

// Available reports whether an assessment is present.
func (e Enrichment) Available() bool {
	return e.Assessment != nil
}

// Status is a short label for reports.
func (e Enrichment) Status() string {
	switch {
	case e.Assessment != nil:
		return "ok"
	case e.Err != nil:
		return "failed"
	case e.Skipped != "":
		return "skipped"
	default:
		return "not_attempted"
	}
}

// TechnicalContext is what the narrative prompt is told about the chart.
type TechnicalContext struct {
	Signal   Signal            `json:"signal"`
	Snapshot IndicatorSnapshot `json:"snapshot"`
	Cross    CrossState        `json:"cross"`
}

// FundamentalContext is what the narrative prompt is told about the company.
type FundamentalContext struct {
	Ratios    FundamentalRatios `json:"ratios"`
	Score     float64           `json:"score"`
	Available bool              `json:"available"`
	Headlines []string          `json:"headlines,omitempty"`
}
