package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-stock-signal/internal/executor/dto"
)

func TestCrossBonus(t *testing.T) {
	tests := []struct {
		days  int
		bonus int
	}{
		{-1, 0}, {0, 15}, {7, 15}, {8, 10}, {30, 10}, {31, 5}, {60, 5}, {61, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.bonus, CrossBonus(tt.days), "days=%d", tt.days)
	}
}

func TestHorizonByName(t *testing.T) {
	h, err := HorizonByName("LONG")
	require.NoError(t, err)
	assert.Equal(t, HorizonLong, h)

	h, err = HorizonByName("")
	require.NoError(t, err)
	assert.Equal(t, HorizonShort, h)

	_, err = HorizonByName("weekly")
	assert.Error(t, err)

	assert.Equal(t, 157, HorizonShort.LookbackDays(120))
	assert.Equal(t, 395, HorizonLong.LookbackDays(120))
	assert.Equal(t, 500, HorizonLong.LookbackDays(500))
}

func TestGoldenCrossDetector_RecentCross(t *testing.T) {
	// 40 falling bars then 10 strongly rising bars: MA10 crosses MA30 three bars ago.
	points := append(trendPoints(40, 30_000, -50), trendPoints(10, 28_100, 400)...)
	for i := range points {
		points[i].Date = seriesStart.AddDate(0, 0, i)
	}
	series, validation := dto.NewPriceSeries("VHM", points)
	require.Empty(t, validation.Rejected)

	state, err := NewGoldenCrossDetector(HorizonShort).Evaluate(series)
	require.NoError(t, err)

	assert.True(t, state.Above)
	assert.True(t, state.CrossVisible)
	assert.Equal(t, 3, state.DaysSinceCross)
	assert.Equal(t, CrossBonus(state.DaysSinceCross), state.Bonus)
	assert.Equal(t, 15, state.Bonus)
}

// weekdayBars lays closes on the weekdays of the fetch window ending at end, minus the
// given number of holidays taken out of the middle of the window.
func weekdayBars(t *testing.T, end time.Time, lookbackDays, holidays int) []time.Time {
	t.Helper()
	var dates []time.Time
	for d := end.AddDate(0, 0, -lookbackDays+1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		dates = append(dates, d)
	}
	mid := len(dates) / 2
	return append(dates[:mid], dates[mid+holidays:]...)
}

func TestGoldenCrossDetector_LongHorizonCrossInsideLookback(t *testing.T) {
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	dates := weekdayBars(t, end, HorizonLong.LookbackDays(120), 12)
	require.GreaterOrEqual(t, len(dates), HorizonLong.Slow+61)

	// Slow decline, then a jump that lifts MA50 over MA200 45 bars before the last bar.
	crossAt := len(dates) - 46
	points := make([]dto.PricePoint, len(dates))
	for i, d := range dates {
		c := 60_000 - 10*float64(i)
		if i >= crossAt {
			c = 150_000
		}
		points[i] = dto.PricePoint{Date: d, Open: c, High: c + 50, Low: c - 50, Close: c, Volume: 1_000_000}
	}
	series, validation := dto.NewPriceSeries("VCB", points)
	require.Empty(t, validation.Rejected)

	state, err := NewGoldenCrossDetector(HorizonLong).Evaluate(series)
	require.NoError(t, err)

	assert.True(t, state.Above)
	assert.True(t, state.CrossVisible)
	assert.Equal(t, 45, state.DaysSinceCross)
	assert.Equal(t, 5, state.Bonus)
}

func TestGoldenCrossDetector_AboveWithoutVisibleCross(t *testing.T) {
	state, err := NewGoldenCrossDetector(HorizonShort).Evaluate(trendSeries("FPT", 35, 20_000, 100))
	require.NoError(t, err)

	assert.True(t, state.Above)
	assert.False(t, state.CrossVisible)
	assert.Equal(t, -1, state.DaysSinceCross)
	assert.Zero(t, state.Bonus)
}

func TestGoldenCrossDetector_Below(t *testing.T) {
	state, err := NewGoldenCrossDetector(HorizonShort).Evaluate(trendSeries("HPG", 35, 30_000, -100))
	require.NoError(t, err)

	assert.False(t, state.Above)
	assert.Zero(t, state.Bonus)
	assert.Less(t, state.FastMA, state.SlowMA)
}

func TestGoldenCrossDetector_Scan(t *testing.T) {
	batch := []*dto.PriceSeries{
		trendSeries("FPT", 60, 20_000, 100),
		trendSeries("MWG", 60, 45_000, -100),
		nil,
	}

	out := NewGoldenCrossDetector(HorizonLong).Scan(batch)

	require.Len(t, out, 2)
	for _, c := range out {
		assert.ErrorIs(t, c.Err, dto.ErrInsufficientData, c.Symbol)
	}

	out = NewGoldenCrossDetector(HorizonShort).Scan(batch)
	require.Len(t, out, 2)
	assert.True(t, out[0].State.Above)
	assert.False(t, out[1].State.Above)
}

func TestApplyCrossBonus(t *testing.T) {
	signal := dto.Signal{Symbol: "FPT", Direction: dto.DirectionBuy, Confidence: 90}

	bumped := ApplyCrossBonus(signal, dto.CrossState{Above: true, Bonus: 15, DaysSinceCross: 3, FastPeriod: 10, SlowPeriod: 30})
	assert.Equal(t, 100, bumped.Confidence)
	assert.Equal(t, dto.DirectionBuy, bumped.Direction)
	assert.Len(t, bumped.Reasons, 1)
	assert.Equal(t, 90, signal.Confidence)

	same := ApplyCrossBonus(signal, dto.CrossState{Above: false, Bonus: 15})
	assert.Equal(t, signal, same)
}
