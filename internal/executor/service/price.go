package service

import (
	"github.com/shopspring/decimal"
)

// HOSE price steps in VND.
var tickSizes = []struct {
	below decimal.Decimal
	tick  decimal.Decimal
}{
	{below: decimal.NewFromInt(10_000), tick: decimal.NewFromInt(10)},
	{below: decimal.NewFromInt(50_000), tick: decimal.NewFromInt(50)},
}

var defaultTick = decimal.NewFromInt(100)

func tickFor(p decimal.Decimal) decimal.Decimal {
	for _, t := range tickSizes {
		if p.LessThan(t.below) {
			return t.tick
		}
	}
	return defaultTick
}

// RoundToTick rounds a price to the nearest valid step.
func RoundToTick(price float64) float64 {
	if price <= 0 {
		return 0
	}
	p := decimal.NewFromFloat(price)
	tick := tickFor(p)
	return p.Div(tick).Round(0).Mul(tick).InexactFloat64()
}

// RoundUpToTick rounds a price up to the next valid step. Used for targets so a rounded
// target never falls to or below the entry.
func RoundUpToTick(price float64) float64 {
	if price <= 0 {
		return 0
	}
	p := decimal.NewFromFloat(price)
	tick := tickFor(p)
	return p.Div(tick).Ceil().Mul(tick).InexactFloat64()
}

// RoundDownToTick rounds a price down to the previous valid step. Used for stop losses.
func RoundDownToTick(price float64) float64 {
	if price <= 0 {
		return 0
	}
	p := decimal.NewFromFloat(price)
	tick := tickFor(p)
	return p.Div(tick).Floor().Mul(tick).InexactFloat64()
}
