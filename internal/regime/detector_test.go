package regime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EquitySignal/internal/domain/models"
)

func indexBars(closes []float64) []models.PriceBar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = models.PriceBar{Time: start.AddDate(0, 0, i), Close: c, Volume: 1e6}
	}
	return bars
}

func geometricCloses(n int, start, dailyReturn float64) []float64 {
	out := make([]float64, n)
	price := start
	for i := range out {
		out[i] = price
		price *= 1 + dailyReturn
	}
	return out
}

func TestDetectNoIndexData(t *testing.T) {
	d := NewDetector(nil)
	info := d.Detect(nil)
	assert.Equal(t, models.RegimeUnknown, info.Regime)
	assert.Equal(t, "no index data", info.Details["reason"])

	info = d.Detect(&models.MarketSnapshot{})
	assert.Equal(t, models.RegimeUnknown, info.Regime)
}

func TestDetectInsufficientHistory(t *testing.T) {
	d := NewDetector(nil)
	info := d.Detect(&models.MarketSnapshot{
		IndexPrices: indexBars(geometricCloses(59, 1000, 0.001)),
	})
	assert.Equal(t, models.RegimeUnknown, info.Regime)
	assert.Contains(t, info.Details["reason"], "insufficient index history")
}

func TestDetectHighVolatility(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 1000
		} else {
			closes[i] = 1050
		}
	}
	d := NewDetector(nil)
	info := d.Detect(&models.MarketSnapshot{IndexPrices: indexBars(closes)})
	assert.Equal(t, models.RegimeHighVolatility, info.Regime)
	vol, ok := info.Details["vol_20_annualized"].(float64)
	require.True(t, ok)
	assert.Greater(t, vol, 0.25)
}

func TestDetectBullish(t *testing.T) {
	d := NewDetector(nil)
	info := d.Detect(&models.MarketSnapshot{
		IndexPrices: indexBars(geometricCloses(120, 1000, 0.001)),
	})
	assert.Equal(t, models.RegimeBullish, info.Regime)
	assert.Equal(t, true, info.Details["sma20_gt_sma50"])
}

func TestDetectBearishDefault(t *testing.T) {
	d := NewDetector(nil)
	info := d.Detect(&models.MarketSnapshot{
		IndexPrices: indexBars(geometricCloses(120, 1000, -0.001)),
	})
	assert.Equal(t, models.RegimeBearish, info.Regime)
}

func TestCustomVolThreshold(t *testing.T) {
	// with the threshold raised the choppy series is no longer High Volatility
	closes := make([]float64, 80)
	for i := range closes {
		if i%2 == 0 {
			closes[i] = 1000
		} else {
			closes[i] = 1050
		}
	}
	d := NewDetectorWithConfig(nil, DetectorConfig{VolThreshold: 2.0, MinBars: 60})
	info := d.Detect(&models.MarketSnapshot{IndexPrices: indexBars(closes)})
	assert.NotEqual(t, models.RegimeHighVolatility, info.Regime)
}
