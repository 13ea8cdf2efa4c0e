package indicator

import (
	"math"

	"github.com/markcheno/go-talib"
)

// Bands holds the three Bollinger series.
type Bands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// BollingerBands computes SMA(period) ± k population standard deviations over the same
// trailing window. Leading positions follow the SMA NaN policy.
func BollingerBands(values []float64, period int, k float64) Bands {
	if period <= 0 || len(values) < period {
		return Bands{
			Upper:  nanSlice(len(values)),
			Middle: nanSlice(len(values)),
			Lower:  nanSlice(len(values)),
		}
	}

	upper, middle, lower := talib.BBands(values, period, k, k, talib.SMA)
	fillLeadingNaN(upper, period-1)
	fillLeadingNaN(middle, period-1)
	fillLeadingNaN(lower, period-1)

	return Bands{Upper: upper, Middle: middle, Lower: lower}
}

// PercentB locates price inside the band: 0 at the lower band, 1 at the upper band.
// Returns NaN when the band is undefined or has zero width.
func PercentB(price, upper, lower float64) float64 {
	width := upper - lower
	if !IsDefined(upper) || !IsDefined(lower) || width == 0 {
		return math.NaN()
	}
	return (price - lower) / width
}
