package service

import (
	"fmt"
	"strings"

	"golang-stock-signal/internal/executor/dto"
	"golang-stock-signal/pkg/indicator"
)

// Horizon is a fast/slow moving-average pair.
type Horizon struct {
	Name string
	Fast int
	Slow int
}

var (
	HorizonShort = Horizon{Name: "short", Fast: 10, Slow: 30}
	HorizonLong  = Horizon{Name: "long", Fast: 50, Slow: 200}
)

// HorizonByName resolves "short" or "long".
func HorizonByName(name string) (Horizon, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", HorizonShort.Name:
		return HorizonShort, nil
	case HorizonLong.Name:
		return HorizonLong, nil
	default:
		return Horizon{}, fmt.Errorf("unknown horizon %q", name)
	}
}

// holidayMarginDays covers the exchange holidays of a year, Tet included.
const holidayMarginDays = 30

// LookbackDays is the calendar-day window to fetch so the slow average is defined over
// every recency tier. That takes Slow+maxTier+1 trading bars, five per calendar week.
func (h Horizon) LookbackDays(configured int) int {
	bars := h.Slow + crossBonusTiers[len(crossBonusTiers)-1].maxDays + 1
	need := bars*7/5 + holidayMarginDays
	if configured > need {
		return configured
	}
	return need
}

// Recency bonus tiers, by days since the cross.
var crossBonusTiers = []struct {
	maxDays int
	bonus   int
}{
	{maxDays: 7, bonus: 15},
	{maxDays: 30, bonus: 10},
	{maxDays: 60, bonus: 5},
}

// CrossBonus returns the confidence bonus for a cross days bars ago.
func CrossBonus(days int) int {
	if days < 0 {
		return 0
	}
	for _, tier := range crossBonusTiers {
		if days <= tier.maxDays {
			return tier.bonus
		}
	}
	return 0
}

// GoldenCrossDetector reports whether the fast average is above the slow one and how
// fresh the cross is.
type GoldenCrossDetector interface {
	Horizon() Horizon
	Evaluate(series *dto.PriceSeries) (dto.CrossState, error)
	Scan(batch []*dto.PriceSeries) []CrossCandidate
}

// CrossCandidate is one Scan entry. Err is set when the series was too short.
type CrossCandidate struct {
	Symbol string
	State  dto.CrossState
	Err    error
}

type goldenCrossDetector struct {
	horizon Horizon
}

func NewGoldenCrossDetector(h Horizon) GoldenCrossDetector {
	return &goldenCrossDetector{horizon: h}
}

func (d *goldenCrossDetector) Horizon() Horizon {
	return d.horizon
}

func (d *goldenCrossDetector) Evaluate(series *dto.PriceSeries) (dto.CrossState, error) {
	if n := series.Len(); n < d.horizon.Slow {
		symbol := ""
		if series != nil {
			symbol = series.Symbol
		}
		return dto.CrossState{}, &dto.DataInsufficientError{Symbol: symbol, Have: n, Need: d.horizon.Slow}
	}

	closes := series.Closes()
	fast := indicator.SMA(closes, d.horizon.Fast)
	slow := indicator.SMA(closes, d.horizon.Slow)

	state := dto.CrossState{
		Horizon:        d.horizon.Name,
		FastPeriod:     d.horizon.Fast,
		SlowPeriod:     d.horizon.Slow,
		FastMA:         indicator.Last(fast),
		SlowMA:         indicator.Last(slow),
		DaysSinceCross: -1,
	}
	state.Above = state.FastMA > state.SlowMA

	if age, ok := indicator.CrossAge(fast, slow); ok {
		state.CrossVisible = true
		state.DaysSinceCross = age
		state.Bonus = CrossBonus(age)
	}
	return state, nil
}

// Scan evaluates every series of the batch. Short series are kept with their error so the
// caller can report them.
func (d *goldenCrossDetector) Scan(batch []*dto.PriceSeries) []CrossCandidate {
	out := make([]CrossCandidate, 0, len(batch))
	for _, series := range batch {
		if series == nil {
			continue
		}
		state, err := d.Evaluate(series)
		out = append(out, CrossCandidate{Symbol: series.Symbol, State: state, Err: err})
	}
	return out
}

// ApplyCrossBonus raises the confidence of a signal whose fast average is above the slow
// one. It never changes the direction.
func ApplyCrossBonus(signal dto.Signal, state dto.CrossState) dto.Signal {
	if !state.Above || state.Bonus == 0 {
		return signal
	}
	return signal.WithConfidence(signal.Confidence+state.Bonus,
		fmt.Sprintf("MA%d crossed above MA%d %d days ago (+%d confidence)",
			state.FastPeriod, state.SlowPeriod, state.DaysSinceCross, state.Bonus))
}
