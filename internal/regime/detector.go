// Package regime classifies market conditions from benchmark index history.
// The detector is state-free: every call classifies the snapshot it is given
// and nothing is cached between calls.
package regime

import (
	"fmt"
	"math"

	"EquitySignal/internal/analysis/indicators"
	"EquitySignal/internal/domain/models"
	domsvc "EquitySignal/internal/domain/service"
	applogger "EquitySignal/pkg/logger"
)

// DetectorConfig holds configuration for the regime detector.
type DetectorConfig struct {
	VolThreshold float64 `yaml:"vol_threshold"` // annualized, default 0.25
	MinBars      int     `yaml:"min_bars"`      // default 60
}

// DefaultDetectorConfig returns the standard thresholds.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{VolThreshold: 0.25, MinBars: 60}
}

// Detector classifies regimes using realized volatility and moving-average
// trend rules. First match wins:
//  1. 20-day annualized volatility >= threshold -> High Volatility
//  2. SMA20 > SMA50 with positive 5-day SMA20 slope -> Bullish
//  3. otherwise -> Bearish
//
// Malformed or short index history classifies as Unknown; Detect never fails.
type Detector struct {
	config DetectorConfig
	logger *applogger.Logger
}

func NewDetector(l *applogger.Logger) *Detector {
	return NewDetectorWithConfig(l, DefaultDetectorConfig())
}

func NewDetectorWithConfig(l *applogger.Logger, cfg DetectorConfig) *Detector {
	if cfg.VolThreshold <= 0 {
		cfg.VolThreshold = 0.25
	}
	if cfg.MinBars <= 0 {
		cfg.MinBars = 60
	}
	return &Detector{config: cfg, logger: l}
}

func unknown(reason string) models.RegimeInfo {
	return models.RegimeInfo{
		Regime:  models.RegimeUnknown,
		Details: map[string]interface{}{"reason": reason},
	}
}

func (d *Detector) Detect(snap *models.MarketSnapshot) (info models.RegimeInfo) {
	defer func() {
		if r := recover(); r != nil {
			if d.logger != nil {
				d.logger.Error("regime detection panic", applogger.Any("panic", r))
			}
			info = unknown(fmt.Sprintf("detection error: %v", r))
		}
	}()

	if snap == nil || len(snap.IndexPrices) == 0 {
		return unknown("no index data")
	}
	closes := models.Closes(snap.IndexPrices)
	if len(closes) < d.config.MinBars {
		return unknown(fmt.Sprintf("insufficient index history (%d < %d)", len(closes), d.config.MinBars))
	}

	returns := indicators.PctChange(closes)
	vol20 := indicators.RealizedVolatility(returns, 20, 252)
	if math.IsNaN(vol20) {
		return unknown("index returns not computable")
	}

	sma20Series := indicators.SMASeries(closes, 20)
	sma20 := sma20Series[len(sma20Series)-1]
	sma50 := indicators.SMA(closes, 50)

	slope := 0.0
	if len(sma20Series) >= 5 {
		base := sma20Series[len(sma20Series)-5]
		if !math.IsNaN(base) {
			slope = (sma20 - base) / (math.Abs(base) + 1e-9)
		}
	}

	regime := models.RegimeBearish
	switch {
	case vol20 >= d.config.VolThreshold:
		regime = models.RegimeHighVolatility
	case sma20 > sma50 && slope > 0:
		regime = models.RegimeBullish
	}

	if d.logger != nil {
		d.logger.Debug("regime detected",
			applogger.String("regime", regime),
			applogger.Any("vol_20_annualized", vol20),
			applogger.Any("sma20_slope5", slope))
	}

	return models.RegimeInfo{
		Regime: regime,
		Details: map[string]interface{}{
			"vol_20_annualized": round4(vol20),
			"sma20_gt_sma50":    sma20 > sma50,
			"sma20_slope5":      round4(slope),
		},
	}
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

var _ domsvc.RegimeDetector = (*Detector)(nil)
