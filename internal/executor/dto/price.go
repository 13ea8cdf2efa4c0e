package dto

import (
	"math"
	"sort"
	"time"
)

// PriceTolerance is the OHLC consistency tolerance in currency units.
const PriceTolerance = 0.01

// PricePoint is one daily OHLCV bar.
type PricePoint struct {
	Date          time.Time `json:"date"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	AdjustedClose float64   `json:"adjusted_close,omitempty"`
	Volume        float64   `json:"volume"`
}

// AdjClose returns the adjusted close, falling back to the raw close when absent.
func (p PricePoint) AdjClose() float64 {
	if p.AdjustedClose > 0 {
		return p.AdjustedClose
	}
	return p.Close
}

// IsValidOHLC reports whether the bar is internally consistent: all prices positive,
// high ≥ max(open, close) − ε and low ≤ min(open, close) + ε.
func IsValidOHLC(open, high, low, close float64) bool {
	if !(open > 0 && high > 0 && low > 0 && close > 0) {
		return false
	}
	return high >= math.Max(open, close)-PriceTolerance && low <= math.Min(open, close)+PriceTolerance
}

// PriceSeries is an ascending, date-unique sequence of valid bars for one symbol.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// SeriesValidation reports what NewPriceSeries dropped.
type SeriesValidation struct {
	Rejected    []ValidationError
	StaleLatest bool
}

// Warning returns ErrStaleCurrentPrice when the latest raw point was rejected and the
// displayed price moved because of it.
func (v SeriesValidation) Warning() error {
	if v.StaleLatest {
		return ErrStaleCurrentPrice
	}
	return nil
}

// NewPriceSeries sorts points by date and drops invalid bars and later duplicates of a
// date. Points are never clamped.
func NewPriceSeries(symbol string, points []PricePoint) (*PriceSeries, SeriesValidation) {
	var validation SeriesValidation

	sorted := make([]PricePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	seen := make(map[string]struct{}, len(sorted))
	valid := make([]PricePoint, 0, len(sorted))
	lastKept := -1
	for i, p := range sorted {
		key := p.Date.Format("2006-01-02")
		if _, dup := seen[key]; dup {
			validation.Rejected = append(validation.Rejected, ValidationError{Symbol: symbol, Date: p.Date, Reason: "duplicate date"})
			continue
		}
		if !IsValidOHLC(p.Open, p.High, p.Low, p.Close) {
			validation.Rejected = append(validation.Rejected, ValidationError{Symbol: symbol, Date: p.Date, Reason: "inconsistent OHLC"})
			continue
		}
		seen[key] = struct{}{}
		valid = append(valid, p)
		lastKept = i
	}

	if len(sorted) > 0 && lastKept != len(sorted)-1 {
		raw := sorted[len(sorted)-1].Close
		if len(valid) == 0 || math.Abs(raw-valid[len(valid)-1].Close) > PriceTolerance {
			validation.StaleLatest = true
		}
	}

	return &PriceSeries{Symbol: symbol, Points: valid}, validation
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// Closes returns adjusted closes, oldest first.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.AdjClose()
	}
	return out
}

func (s *PriceSeries) Highs() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.High
	}
	return out
}

func (s *PriceSeries) Lows() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Low
	}
	return out
}

func (s *PriceSeries) RawCloses() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

func (s *PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Volume
	}
	return out
}

// Last returns the most recent bar. ok is false for an empty series.
func (s *PriceSeries) Last() (PricePoint, bool) {
	if s.Len() == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}
