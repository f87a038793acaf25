package score

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurvesStayBoundedAfterClip(t *testing.T) {
	inputs := []float64{-1e9, -100, -2, -0.5, 0, 0.3, 1, 5, 12, 25, 37, 100, 1e9}
	curves := map[string]func(float64) float64{
		"pe":     PE,
		"pb":     PB,
		"roe":    ROE,
		"de":     DebtEquity,
		"fcf":    FCFYield,
		"margin": Margin,
		"rsi":    RSI,
		"pctb":   PercentB,
	}
	for name, fn := range curves {
		for _, x := range inputs {
			got := Clip(fn(x))
			assert.GreaterOrEqual(t, got, -1.0, "%s(%v)", name, x)
			assert.LessOrEqual(t, got, 1.0, "%s(%v)", name, x)
		}
	}
}

func TestNonFiniteScoresZero(t *testing.T) {
	for _, x := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.Zero(t, PE(x))
		assert.Zero(t, PB(x))
		assert.Zero(t, ROE(x))
		assert.Zero(t, DebtEquity(x))
		assert.Zero(t, FCFYield(x))
		assert.Zero(t, Growth(x, -20, 20))
		assert.Zero(t, Margin(x))
		assert.Zero(t, RSI(x))
		assert.Zero(t, PercentB(x))
	}
}

func TestPEAnchors(t *testing.T) {
	assert.Equal(t, 1.0, PE(10))
	assert.Equal(t, 1.0, PE(5))
	assert.Equal(t, -1.0, PE(40))
	assert.Equal(t, -1.0, PE(80))
	assert.InDelta(t, 0.5, PE(15), 1e-9)
	assert.InDelta(t, 0.0, PE(20), 1e-9)
}

// The 20-30 segment of the P/E curve dips below -1 before clipping; the
// clipped value is what analyzers publish.
func TestPEOvershootIsClipped(t *testing.T) {
	raw := PE(28)
	assert.Less(t, raw, -1.0)
	assert.Equal(t, -1.0, Clip(raw))
}

func TestROEHandlesFractionInput(t *testing.T) {
	// 0.18 means 18% when reported as a fraction.
	assert.InDelta(t, ROE(18), ROE(0.18), 1e-9)
	assert.Equal(t, 1.0, ROE(25))
	assert.Equal(t, -1.0, ROE(-3))
}

func TestRSIRemapAnchors(t *testing.T) {
	assert.Equal(t, -1.0, RSI(25))
	assert.Equal(t, -1.0, RSI(30))
	assert.InDelta(t, 0.0, RSI(50), 1e-9)
	assert.Equal(t, 1.0, RSI(70))
	assert.InDelta(t, 0.5, RSI(60), 1e-9)
	assert.InDelta(t, -0.5, RSI(40), 1e-9)
}

func TestGrowthAnchors(t *testing.T) {
	assert.Equal(t, -1.0, Growth(-25, -20, 20))
	assert.Equal(t, 1.0, Growth(30, -20, 20))
	assert.InDelta(t, 0.0, Growth(0, -20, 20), 1e-9)
	// fraction form: 0.12 == 12%
	assert.InDelta(t, Growth(12, -20, 20), Growth(0.12, -20, 20), 1e-9)
}

func TestPercentB(t *testing.T) {
	assert.InDelta(t, -1.0, PercentB(0), 1e-9)
	assert.InDelta(t, 0.0, PercentB(0.5), 1e-9)
	assert.InDelta(t, 1.0, PercentB(1), 1e-9)
	// outside the band still clips
	assert.Equal(t, 1.0, PercentB(1.4))
}
