package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMA(t *testing.T) {
	s := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 4.0, SMA(s, 3), 1e-9)
	assert.InDelta(t, 3.0, SMA(s, 5), 1e-9)
	assert.True(t, math.IsNaN(SMA(s, 6)))
}

func TestSMASeriesAlignsWithSMA(t *testing.T) {
	s := []float64{2, 4, 6, 8, 10, 12}
	series := SMASeries(s, 3)
	assert.True(t, math.IsNaN(series[0]))
	assert.True(t, math.IsNaN(series[1]))
	assert.InDelta(t, 4.0, series[2], 1e-9)
	assert.InDelta(t, SMA(s, 3), series[len(series)-1], 1e-9)
}

func TestRSIExtremes(t *testing.T) {
	up := make([]float64, 30)
	down := make([]float64, 30)
	for i := range up {
		up[i] = 100 + float64(i)
		down[i] = 100 - float64(i)
	}
	assert.InDelta(t, 100.0, RSI(up, 14), 1e-9)
	assert.InDelta(t, 0.0, RSI(down, 14), 1e-9)
	assert.True(t, math.IsNaN(RSI(up[:10], 14)))
}

func TestRSIFlatSeriesIsNeutralHigh(t *testing.T) {
	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 50
	}
	// no losses at all -> RSI convention returns 100
	assert.InDelta(t, 100.0, RSI(flat, 14), 1e-9)
}

func TestRollingStdPopulation(t *testing.T) {
	s := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	// classic population-stddev example: sigma = 2
	assert.InDelta(t, 2.0, RollingStd(s, 8), 1e-9)
}

func TestZScoreFlatWindowIsZero(t *testing.T) {
	s := []float64{3, 3, 3, 3, 3}
	z := ZScoreLast(s, 5)
	assert.InDelta(t, 0.0, z, 1e-6)
}

func TestBollingerBandsBracketMean(t *testing.T) {
	s := make([]float64, 25)
	for i := range s {
		s[i] = 100 + float64(i%5)
	}
	up, lo := Bollinger(s, 20, 2)
	mid := SMA(s, 20)
	assert.Greater(t, up, mid)
	assert.Less(t, lo, mid)
}

func TestPctChange(t *testing.T) {
	rets := PctChange([]float64{100, 110, 99})
	assert.Len(t, rets, 2)
	assert.InDelta(t, 0.10, rets[0], 1e-9)
	assert.InDelta(t, -0.10, rets[1], 1e-9)
}

func TestRealizedVolatilityAnnualizes(t *testing.T) {
	rets := []float64{0.01, -0.01, 0.01, -0.01, 0.01, -0.01}
	vol := RealizedVolatility(rets, 6, 252)
	assert.InDelta(t, 0.01*math.Sqrt(252), vol, 1e-9)
}

func TestMACDHistConvergesToZeroOnFlat(t *testing.T) {
	flat := make([]float64, 120)
	for i := range flat {
		flat[i] = 42
	}
	hist := MACDHistSeries(flat, 12, 26, 9)
	assert.InDelta(t, 0.0, hist[len(hist)-1], 1e-9)
}
