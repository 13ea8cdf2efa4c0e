package dto

import (
	"time"

	"golang-stock-signal/pkg/indicator"
)

// Direction is the discrete outcome of a classification.
type Direction string

const (
	DirectionBuy   Direction = "BUY"
	DirectionHold  Direction = "HOLD"
	DirectionWatch Direction = "WATCH"
	DirectionSell  Direction = "SELL"
)

// IndicatorSnapshot is the derived indicator state of one symbol at AsOf.
// It is cached with a TTL and never stored as a source of truth.
type IndicatorSnapshot struct {
	Symbol          string                 `json:"symbol"`
	AsOf            time.Time              `json:"as_of"`
	Close           float64                `json:"close"`
	PrevClose       float64                `json:"prev_close"`
	MA10            float64                `json:"ma10"`
	MA30            float64                `json:"ma30"`
	BollingerUpper  float64                `json:"bollinger_upper"`
	BollingerMiddle float64                `json:"bollinger_middle"`
	BollingerLower  float64                `json:"bollinger_lower"`
	PivotSupport    float64                `json:"pivot_support"`
	PivotResistance float64                `json:"pivot_resistance"`
	Pivots          *indicator.PivotPoints `json:"pivots,omitempty"`
	Momentum5d      float64                `json:"momentum_5d"`
	Momentum10d     float64                `json:"momentum_10d"`
	VolumeRatio     float64                `json:"volume_ratio"`
}

// Signal is an immutable classification result. Derive new values with the With* methods.
type Signal struct {
	Symbol               string    `json:"symbol"`
	Direction            Direction `json:"direction"`
	Confidence           int       `json:"confidence"`
	Reasons              []string  `json:"reasons"`
	NetScore             int       `json:"net_score"`
	TechnicalScore       float64   `json:"technical_score"`
	FundamentalScore     float64   `json:"fundamental_score"`
	FundamentalAvailable bool      `json:"fundamental_available"`
	ComputedAt           time.Time `json:"computed_at"`
}

// WithDirection returns a copy carrying the new direction and the extra reasons appended.
func (s Signal) WithDirection(d Direction, reasons ...string) Signal {
	out := s
	out.Direction = d
	out.Reasons = appendReasons(s.Reasons, reasons...)
	return out
}

// WithConfidence returns a copy with confidence clamped to 0..100.
func (s Signal) WithConfidence(confidence int, reasons ...string) Signal {
	out := s
	out.Confidence = clampConfidence(confidence)
	out.Reasons = appendReasons(s.Reasons, reasons...)
	return out
}

// CombinedScore is the average of the technical and fundamental scores.
func (s Signal) CombinedScore() float64 {
	return (s.TechnicalScore + s.FundamentalScore) / 2
}

func appendReasons(base []string, extra ...string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

func clampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// CrossState is the golden-cross view of one symbol for one horizon.
type CrossState struct {
	Horizon        string  `json:"horizon"`
	FastPeriod     int     `json:"fast_period"`
	SlowPeriod     int     `json:"slow_period"`
	FastMA         float64 `json:"fast_ma"`
	SlowMA         float64 `json:"slow_ma"`
	Above          bool    `json:"above"`
	CrossVisible   bool    `json:"cross_visible"`
	DaysSinceCross int     `json:"days_since_cross"`
	Bonus          int     `json:"bonus"`
}
