package models

import "time"

// AnalysisResult is the output contract shared by every analyzer.
type AnalysisResult struct {
	Signal     float64 `json:"signal"`     // [-1, +1]
	Confidence float64 `json:"confidence"` // [0, 1]
	Label      string  `json:"label"`
	Rationale  string  `json:"rationale"`
}

// Market regime classifications.
const (
	RegimeHighVolatility = "High Volatility"
	RegimeBullish        = "Bullish"
	RegimeBearish        = "Bearish"
	RegimeUnknown        = "Unknown"
)

// RegimeInfo carries the regime classification plus its diagnostics.
type RegimeInfo struct {
	Regime  string                 `json:"regime"`
	Details map[string]interface{} `json:"details"`
}

// Decision action values.
const (
	ActionBuy  = "BUY"
	ActionSell = "SELL"
	ActionHold = "HOLD"
)

// Decision is the aggregated output of one engine invocation.
type Decision struct {
	Symbol            string                    `json:"symbol"`
	Timestamp         time.Time                 `json:"timestamp"`
	Decision          string                    `json:"decision"`
	FinalScore        float64                   `json:"final_score"`
	OverallConfidence float64                   `json:"overall_confidence"`
	Regime            string                    `json:"regime"`
	Weights           map[string]float64        `json:"weights"` // sums to 1 over present agents
	Agents            map[string]AnalysisResult `json:"agents"`
	Explanation       string                    `json:"explanation"`
}
