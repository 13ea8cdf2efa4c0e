// Package indicator holds the pure technical-indicator math used by the signal engine.
// Every function allocates its own output and leaves its input untouched. Positions
// without enough history are NaN.
package indicator

import (
	"math"

	"github.com/markcheno/go-talib"
)

// SMA returns the simple moving average of values over period. The output has the same
// length as values; the first period-1 entries are NaN.
func SMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nanSlice(len(values))
	}

	out := talib.Sma(values, period)
	fillLeadingNaN(out, period-1)
	return out
}

// Last returns the final element of values, or NaN when values is empty.
func Last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

// IsDefined reports whether v carries a real value.
func IsDefined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func fillLeadingNaN(values []float64, n int) {
	for i := 0; i < n && i < len(values); i++ {
		values[i] = math.NaN()
	}
}
