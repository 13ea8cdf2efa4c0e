package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populationStdDev(values []float64) float64 {
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	sum := 0.0
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(len(values)))
}

func TestBollingerBands(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9, 3, 6}

	bands := BollingerBands(values, 5, 2)
	require.Len(t, bands.Middle, len(values))

	for i := 0; i < 4; i++ {
		assert.True(t, math.IsNaN(bands.Upper[i]))
		assert.True(t, math.IsNaN(bands.Middle[i]))
		assert.True(t, math.IsNaN(bands.Lower[i]))
	}

	sma := SMA(values, 5)
	for i := 4; i < len(values); i++ {
		sd := populationStdDev(values[i-4 : i+1])
		assert.InDelta(t, sma[i], bands.Middle[i], 1e-9)
		assert.InDelta(t, sma[i]+2*sd, bands.Upper[i], 1e-6)
		assert.InDelta(t, sma[i]-2*sd, bands.Lower[i], 1e-6)
	}
}

func TestBollingerBandsShortSeries(t *testing.T) {
	bands := BollingerBands([]float64{1, 2, 3}, 20, 2)
	for i := 0; i < 3; i++ {
		assert.True(t, math.IsNaN(bands.Upper[i]))
		assert.True(t, math.IsNaN(bands.Middle[i]))
		assert.True(t, math.IsNaN(bands.Lower[i]))
	}
}

func TestPercentB(t *testing.T) {
	assert.InDelta(t, 0.5, PercentB(15, 20, 10), 1e-9)
	assert.InDelta(t, 1.5, PercentB(25, 20, 10), 1e-9)
	assert.True(t, math.IsNaN(PercentB(10, 10, 10)))
	assert.True(t, math.IsNaN(PercentB(10, math.NaN(), 5)))
}
