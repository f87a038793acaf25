package models

import "time"

// PriceBar represents a single OHLCV record.
type PriceBar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// NewsItem is one news article attached to a snapshot.
type NewsItem struct {
	Headline string    `json:"headline"`
	Summary  string    `json:"summary"`
	Date     time.Time `json:"date"`
	Source   string    `json:"source"`
}

// MarketSnapshot is a point-in-time view of everything the analyzers need.
// It is supplied whole to each analyzer and never mutated by the engine.
type MarketSnapshot struct {
	Symbol string    `json:"symbol"`
	AsOf   time.Time `json:"as_of"`

	// Prices holds the equity's OHLCV history, oldest first.
	Prices []PriceBar `json:"prices"`

	// Fundamentals maps ratio names (pe, pb, roe, debt_to_equity, fcf_yield,
	// revenue_yoy, earnings_yoy, ebitda_margin) to values. A missing key means
	// the field was unavailable upstream.
	Fundamentals map[string]float64 `json:"fundamentals"`

	News []NewsItem `json:"news"`

	// IndexPrices is the benchmark index history used for regime detection.
	IndexPrices []PriceBar `json:"index_prices"`
}

// Closes extracts the close series from bars.
func Closes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volume series from bars.
func Volumes(bars []PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}
	return out
}
