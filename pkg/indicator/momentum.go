package indicator

import "math"

// Momentum is the percentage change between the last value and the value days bars earlier.
func Momentum(values []float64, days int) float64 {
	n := len(values)
	if days <= 0 || n < days+1 {
		return math.NaN()
	}
	base := values[n-days-1]
	if base == 0 {
		return math.NaN()
	}
	return (values[n-1] - base) / base * 100
}

// VolumeRatio compares the last volume with the mean of the period volumes before it.
func VolumeRatio(volumes []float64, period int) float64 {
	n := len(volumes)
	if period <= 0 || n < period+1 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range volumes[n-period-1 : n-1] {
		sum += v
	}
	avg := sum / float64(period)
	if avg == 0 {
		return math.NaN()
	}
	return volumes[n-1] / avg
}
