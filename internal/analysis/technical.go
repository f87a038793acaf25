package analysis

import (
	"context"
	"fmt"
	"math"

	"EquitySignal/internal/analysis/indicators"
	"EquitySignal/internal/analysis/score"
	"EquitySignal/internal/domain/models"
	domsvc "EquitySignal/internal/domain/service"
	applogger "EquitySignal/pkg/logger"
)

const minTechnicalBars = 20

// Component weights for the technical composite.
var technicalWeights = map[string]float64{
	"RSI":       0.2,
	"MACD":      0.3,
	"Bollinger": 0.2,
	"MAs":       0.3,
}

// TechnicalAnalyzer blends RSI, MACD momentum, Bollinger position and
// moving-average structure into one directional signal, with a volume
// confirmation boost.
type TechnicalAnalyzer struct {
	logger *applogger.Logger
}

func NewTechnicalAnalyzer(l *applogger.Logger) *TechnicalAnalyzer {
	return &TechnicalAnalyzer{logger: l}
}

func (a *TechnicalAnalyzer) Name() string { return "TechnicalAgent" }

func (a *TechnicalAnalyzer) Analyze(_ context.Context, snap *models.MarketSnapshot) models.AnalysisResult {
	if snap == nil {
		return Neutral("no market data")
	}
	if len(snap.Prices) == 0 {
		return Neutral("no price data available")
	}
	if len(snap.Prices) < minTechnicalBars {
		return Neutral(fmt.Sprintf("insufficient data points (%d < %d)", len(snap.Prices), minTechnicalBars))
	}
	return guard(a.logger, a.Name(), func() models.AnalysisResult {
		return a.compute(snap)
	})
}

func (a *TechnicalAnalyzer) compute(snap *models.MarketSnapshot) models.AnalysisResult {
	closes := models.Closes(snap.Prices)
	volumes := models.Volumes(snap.Prices)
	price := closes[len(closes)-1]

	rsi := indicators.RSI(closes, 14)
	if math.IsNaN(rsi) {
		rsi = 50 // neutral default
	}
	rsiScore := score.RSI(rsi)

	// MACD histogram standardized against its own 50-bar history, squashed
	// through tanh so extreme momentum saturates instead of dominating.
	hist := indicators.MACDHistSeries(closes, 12, 26, 9)
	macdZ := indicators.ZScoreLast(hist, 50)
	macdScore := 0.0
	if !math.IsNaN(macdZ) && !math.IsInf(macdZ, 0) {
		macdScore = math.Tanh(macdZ / 2)
	}

	bbScore := 0.0
	bbUpper, bbLower := indicators.Bollinger(closes, 20, 2)
	if !math.IsNaN(bbUpper) && !math.IsNaN(bbLower) && bbUpper-bbLower > 0 {
		pctB := (price - bbLower) / (bbUpper - bbLower)
		bbScore = 2*pctB - 1
	}

	sma20 := indicators.SMA(closes, 20)
	sma50 := sma20
	if len(closes) >= 50 {
		sma50 = indicators.SMA(closes, 50)
	}
	sma200 := sma50
	if len(closes) >= 200 {
		sma200 = indicators.SMA(closes, 200)
	}
	stackScore := 0.0
	if !math.IsNaN(sma20) && !math.IsNaN(sma50) && !math.IsNaN(sma200) {
		stackScore = (score.Sign(sma20-sma50) + score.Sign(sma50-sma200) + score.Sign(price-sma20)) / 3
	}

	// Volume confirmation: above 1.2x the 20-bar average adds up to +0.15
	// in the direction of the base signal.
	volBoost := 0.0
	if volAvg := indicators.RollingMean(volumes, 20); !math.IsNaN(volAvg) && volAvg > 0 {
		ratio := volumes[len(volumes)-1] / volAvg
		volBoost = math.Min(0.15, math.Max(0, (ratio-1.2)*0.25))
	}

	components := map[string]float64{
		"RSI":       rsiScore,
		"MACD":      macdScore,
		"Bollinger": bbScore,
		"MAs":       stackScore,
	}
	base := 0.0
	for name, v := range components {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		base += v * technicalWeights[name]
	}
	signal := score.Clip(base + score.Sign(base)*volBoost)

	// Confidence: fraction of components that agree in sign with the final
	// signal at meaningful magnitude.
	align := 0
	if signal != 0 {
		for _, v := range components {
			if score.Sign(v) == score.Sign(signal) && math.Abs(v) >= 0.35 {
				align++
			}
		}
	}
	confidence := score.ClipTo(0.4+0.6*float64(align)/float64(len(components)), 0, 1)

	label := LabelNeutral
	switch {
	case signal > 0.15:
		label = "Bullish"
	case signal < -0.15:
		label = "Bearish"
	}

	rationale := fmt.Sprintf(
		"RSI(14)=%.1f -> %+.2f; MACD hist z -> %+.2f -> %+.2f; BB pos -> %+.2f; MA stack -> %+.2f; Vol boost -> %+.2f",
		rsi, rsiScore, nanToZero(macdZ), macdScore, bbScore, stackScore, volBoost)

	return models.AnalysisResult{
		Signal:     signal,
		Confidence: confidence,
		Label:      label,
		Rationale:  rationale,
	}
}

func nanToZero(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

var _ domsvc.Analyzer = (*TechnicalAnalyzer)(nil)
