package coordinator

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EquitySignal/internal/domain/models"
	domsvc "EquitySignal/internal/domain/service"
)

type stubAnalyzer struct {
	name     string
	res      models.AnalysisResult
	panicMsg string
}

func (s stubAnalyzer) Name() string { return s.name }

func (s stubAnalyzer) Analyze(_ context.Context, _ *models.MarketSnapshot) models.AnalysisResult {
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.res
}

var _ domsvc.Analyzer = stubAnalyzer{}

func uniformAgents(signal, confidence float64) []domsvc.Analyzer {
	return []domsvc.Analyzer{
		stubAnalyzer{name: "TechnicalAgent", res: models.AnalysisResult{Signal: signal, Confidence: confidence, Label: "x"}},
		stubAnalyzer{name: "FundamentalAgent", res: models.AnalysisResult{Signal: signal, Confidence: confidence, Label: "x"}},
		stubAnalyzer{name: "SentimentAgent", res: models.AnalysisResult{Signal: signal, Confidence: confidence, Label: "x"}},
	}
}

func snap() *models.MarketSnapshot { return &models.MarketSnapshot{Symbol: "ACME"} }

func TestBaseWeightsSumToOne(t *testing.T) {
	names := []string{"TechnicalAgent", "FundamentalAgent", "SentimentAgent"}
	for _, regime := range []string{models.RegimeHighVolatility, models.RegimeBullish, models.RegimeBearish, models.RegimeUnknown} {
		w := baseWeights(regime, names)
		sum := 0.0
		for _, v := range w {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "regime %s", regime)
	}
}

func TestBaseWeightsUnknownAgentFallback(t *testing.T) {
	w := baseWeights(models.RegimeBullish, []string{"TechnicalAgent", "MysteryAgent"})
	// 0.4 and 0.1 before renormalization
	assert.InDelta(t, 0.8, w["TechnicalAgent"], 1e-9)
	assert.InDelta(t, 0.2, w["MysteryAgent"], 1e-9)
}

func TestBearishRegimeFavorsFundamentals(t *testing.T) {
	names := []string{"TechnicalAgent", "FundamentalAgent", "SentimentAgent"}
	w := baseWeights(models.RegimeBearish, names)
	assert.Greater(t, w["FundamentalAgent"], w["TechnicalAgent"])
}

func TestHighVolRegimeFavorsTechnicals(t *testing.T) {
	names := []string{"TechnicalAgent", "FundamentalAgent", "SentimentAgent"}
	w := baseWeights(models.RegimeHighVolatility, names)
	assert.Greater(t, w["TechnicalAgent"], w["FundamentalAgent"])
}

func TestCrossVerifyDampensOutlier(t *testing.T) {
	in := map[string]models.AnalysisResult{
		"TechnicalAgent":   {Signal: 0.8, Confidence: 0.9},
		"FundamentalAgent": {Signal: 0.6, Confidence: 0.8},
		"SentimentAgent":   {Signal: -0.7, Confidence: 0.8},
	}
	out := crossVerify(in)
	assert.InDelta(t, 0.4, out["SentimentAgent"].Confidence, 1e-9)
	// signal is never altered, only confidence
	assert.Equal(t, -0.7, out["SentimentAgent"].Signal)
	assert.Equal(t, 0.9, out["TechnicalAgent"].Confidence)
	assert.Equal(t, 0.8, out["FundamentalAgent"].Confidence)
}

func TestCrossVerifySkipsMixedMarket(t *testing.T) {
	in := map[string]models.AnalysisResult{
		"TechnicalAgent":   {Signal: 0.7, Confidence: 0.9},
		"FundamentalAgent": {Signal: -0.7, Confidence: 0.9},
	}
	out := crossVerify(in)
	assert.Equal(t, in["TechnicalAgent"], out["TechnicalAgent"])
	assert.Equal(t, in["FundamentalAgent"], out["FundamentalAgent"])
}

func TestCrossVerifyIgnoresWeakDissent(t *testing.T) {
	in := map[string]models.AnalysisResult{
		"TechnicalAgent":   {Signal: 0.8, Confidence: 0.9},
		"FundamentalAgent": {Signal: 0.6, Confidence: 0.8},
		"SentimentAgent":   {Signal: -0.3, Confidence: 0.8},
	}
	out := crossVerify(in)
	assert.Equal(t, 0.8, out["SentimentAgent"].Confidence)
}

func TestDecisionWeightsSumToOne(t *testing.T) {
	e := NewEngine(nil, []domsvc.Analyzer{
		stubAnalyzer{name: "TechnicalAgent", res: models.AnalysisResult{Signal: 0.4, Confidence: 0.9}},
		stubAnalyzer{name: "FundamentalAgent", res: models.AnalysisResult{Signal: 0.1, Confidence: 0.2}},
		stubAnalyzer{name: "SentimentAgent", res: models.AnalysisResult{Signal: -0.1, Confidence: 0.5}},
	})
	d := e.Decide(context.Background(), snap(), models.RegimeInfo{Regime: models.RegimeBullish})
	sum := 0.0
	for _, w := range d.Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	for name, w := range d.Weights {
		assert.Greater(t, w, 0.0, "weight for %s", name)
	}
}

func TestDecideBuyThresholdInclusive(t *testing.T) {
	// a single agent normalizes to weight exactly 1, so the final score
	// equals the signal and the inclusive cutoffs can be probed precisely
	cases := []struct {
		signal float64
		want   string
	}{
		{0.6, models.ActionBuy},
		{0.50, models.ActionBuy},
		{0.49, models.ActionHold},
		{0.1, models.ActionHold},
		{-0.29, models.ActionHold},
		{-0.30, models.ActionSell},
		{-0.5, models.ActionSell},
	}
	for _, tc := range cases {
		e := NewEngine(nil, []domsvc.Analyzer{
			stubAnalyzer{name: "TechnicalAgent", res: models.AnalysisResult{Signal: tc.signal, Confidence: 0.8}},
		})
		d := e.Decide(context.Background(), snap(), models.RegimeInfo{Regime: models.RegimeBullish})
		assert.Equal(t, tc.want, d.Decision, "signal %v", tc.signal)
		assert.InDelta(t, tc.signal, d.FinalScore, 1e-4)
	}
}

func TestDecideAgentPanicIsolated(t *testing.T) {
	e := NewEngine(nil, []domsvc.Analyzer{
		stubAnalyzer{name: "TechnicalAgent", res: models.AnalysisResult{Signal: 0.8, Confidence: 0.9, Rationale: "strong trend"}},
		stubAnalyzer{name: "FundamentalAgent", panicMsg: "index out of range"},
		stubAnalyzer{name: "SentimentAgent", res: models.AnalysisResult{Signal: 0.7, Confidence: 0.8, Rationale: "upbeat coverage"}},
	})
	d := e.Decide(context.Background(), snap(), models.RegimeInfo{Regime: models.RegimeBullish})

	require.Len(t, d.Agents, 3)
	failed := d.Agents["FundamentalAgent"]
	assert.Equal(t, "Error", failed.Label)
	assert.Zero(t, failed.Signal)
	assert.Zero(t, failed.Confidence)
	assert.Contains(t, failed.Rationale, "index out of range")

	// decision remains structurally complete
	assert.Len(t, d.Weights, 3)
	assert.NotEmpty(t, d.Explanation)
	assert.Equal(t, "ACME", d.Symbol)
	assert.Greater(t, d.FinalScore, 0.0)
}

func TestDecideOverallConfidenceUsesDampenedValues(t *testing.T) {
	e := NewEngine(nil, []domsvc.Analyzer{
		stubAnalyzer{name: "TechnicalAgent", res: models.AnalysisResult{Signal: 0.8, Confidence: 0.9}},
		stubAnalyzer{name: "FundamentalAgent", res: models.AnalysisResult{Signal: 0.6, Confidence: 0.9}},
		stubAnalyzer{name: "SentimentAgent", res: models.AnalysisResult{Signal: -0.7, Confidence: 0.9}},
	})
	d := e.Decide(context.Background(), snap(), models.RegimeInfo{Regime: models.RegimeBullish})
	// sentiment opposes the majority at high magnitude, so its confidence
	// halves to 0.45 before averaging: (0.9+0.9+0.45)/3 = 0.75
	assert.InDelta(t, 0.75, d.OverallConfidence, 1e-4)
	assert.InDelta(t, 0.45, d.Agents["SentimentAgent"].Confidence, 1e-9)
}

func TestExplanationNamesRegimeAndConflicts(t *testing.T) {
	e := NewEngine(nil, []domsvc.Analyzer{
		stubAnalyzer{name: "TechnicalAgent", res: models.AnalysisResult{Signal: 0.9, Confidence: 0.9, Rationale: "momentum strong"}},
		stubAnalyzer{name: "FundamentalAgent", res: models.AnalysisResult{Signal: 0.8, Confidence: 0.9, Rationale: "valuation supportive"}},
		stubAnalyzer{name: "SentimentAgent", res: models.AnalysisResult{Signal: -0.4, Confidence: 0.5, Rationale: "press negative"}},
	})
	d := e.Decide(context.Background(), snap(), models.RegimeInfo{Regime: models.RegimeHighVolatility})
	assert.Contains(t, d.Explanation, "Regime: High Volatility.")
	assert.Contains(t, d.Explanation, "Conflicting signals from: SentimentAgent")
	assert.Contains(t, d.Explanation, "TechnicalAgent: momentum strong")
	assert.Contains(t, d.Explanation, "SentimentAgent: press negative")
}

func TestWeightFloorKeepsZeroConfidenceAgentPresent(t *testing.T) {
	e := NewEngine(nil, []domsvc.Analyzer{
		stubAnalyzer{name: "TechnicalAgent", res: models.AnalysisResult{Signal: 0.5, Confidence: 1.0}},
		stubAnalyzer{name: "FundamentalAgent", res: models.AnalysisResult{Signal: 0.5, Confidence: 1.0}},
		stubAnalyzer{name: "SentimentAgent", res: models.AnalysisResult{Signal: 0.0, Confidence: 0.0}},
	})
	d := e.Decide(context.Background(), snap(), models.RegimeInfo{Regime: models.RegimeBullish})
	assert.Greater(t, d.Weights["SentimentAgent"], 0.0)
	// zero confidence gets no boost: 0.2 against 0.4*(1+0.5) = 0.6 for the
	// others, so sentiment lands near 0.2/1.4 after renormalization
	assert.InDelta(t, 0.2/1.4, d.Weights["SentimentAgent"], 1e-4)
	assert.Less(t, d.Weights["SentimentAgent"], d.Weights["TechnicalAgent"])
}

func TestWeightFloorBindsForDilutedAgent(t *testing.T) {
	// With a fourth, unrecognized agent the renormalized base weights are
	// 0.4/1.1, 0.4/1.1, 0.2/1.1 and 0.1/1.1; zero confidence gives no
	// boost, so the macro agent sits at ~0.0909, below the 0.1 floor, and
	// gets lifted to exactly minWeight before the final renormalization.
	e := NewEngine(nil, []domsvc.Analyzer{
		stubAnalyzer{name: "TechnicalAgent", res: models.AnalysisResult{Signal: 0.5, Confidence: 0.0}},
		stubAnalyzer{name: "FundamentalAgent", res: models.AnalysisResult{Signal: 0.5, Confidence: 0.0}},
		stubAnalyzer{name: "SentimentAgent", res: models.AnalysisResult{Signal: 0.5, Confidence: 0.0}},
		stubAnalyzer{name: "MacroAgent", res: models.AnalysisResult{Signal: 0.5, Confidence: 0.0}},
	})
	d := e.Decide(context.Background(), snap(), models.RegimeInfo{Regime: models.RegimeBullish})

	// floored sum: 0.4/1.1 + 0.4/1.1 + 0.2/1.1 + 0.1
	total := 1.0/1.1 + 0.1
	assert.InDelta(t, 0.1/total, d.Weights["MacroAgent"], 1e-9)
	assert.InDelta(t, (0.4/1.1)/total, d.Weights["TechnicalAgent"], 1e-9)
	// without the floor the macro weight would renormalize back to 0.0909
	assert.Greater(t, d.Weights["MacroAgent"], 0.1/1.1)
}

func TestDecideUnknownRegimeStillDecides(t *testing.T) {
	e := NewEngine(nil, uniformAgents(0.2, 0.6))
	d := e.Decide(context.Background(), snap(), models.RegimeInfo{Regime: models.RegimeUnknown})
	assert.Equal(t, models.ActionHold, d.Decision)
	assert.Equal(t, models.RegimeUnknown, d.Regime)
	assert.False(t, math.IsNaN(d.FinalScore))
}
