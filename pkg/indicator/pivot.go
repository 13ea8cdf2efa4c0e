package indicator

// PivotPoints are Woodie pivot levels for the next period.
type PivotPoints struct {
	Pivot float64 `json:"pivot"`
	R1    float64 `json:"r1"`
	R2    float64 `json:"r2"`
	R3    float64 `json:"r3"`
	S1    float64 `json:"s1"`
	S2    float64 `json:"s2"`
	S3    float64 `json:"s3"`
}

// WoodiePivotPoints derives the levels from the previous completed period only.
// The close is weighted twice: P = (H + L + 2C) / 4.
func WoodiePivotPoints(prevHigh, prevLow, prevClose float64) PivotPoints {
	p := (prevHigh + prevLow + 2*prevClose) / 4
	rng := prevHigh - prevLow

	return PivotPoints{
		Pivot: p,
		R1:    2*p - prevLow,
		S1:    2*p - prevHigh,
		R2:    p + rng,
		S2:    p - rng,
		R3:    prevHigh + 2*(p-prevLow),
		S3:    prevLow - 2*(prevHigh-p),
	}
}

// PreviousPeriodPivots computes Woodie pivots from the bar before the last one, the last
// bar being the current (possibly partial) period. Returns false with fewer than 2 bars.
func PreviousPeriodPivots(highs, lows, closes []float64) (PivotPoints, bool) {
	n := len(closes)
	if n < 2 || len(highs) != n || len(lows) != n {
		return PivotPoints{}, false
	}
	return WoodiePivotPoints(highs[n-2], lows[n-2], closes[n-2]), true
}

// NearestSupport returns the highest support level strictly below price, or 0.
func (p PivotPoints) NearestSupport(price float64) float64 {
	for _, level := range []float64{p.S1, p.S2, p.S3} {
		if level > 0 && level < price {
			return level
		}
	}
	return 0
}

// NearestResistance returns the lowest resistance level strictly above price, or 0.
func (p PivotPoints) NearestResistance(price float64) float64 {
	for _, level := range []float64{p.R1, p.R2, p.R3} {
		if level > price {
			return level
		}
	}
	return 0
}
