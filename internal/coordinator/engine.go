// Package coordinator combines independent analyzer signals into one
// explainable BUY/SELL/HOLD decision using regime-aware, confidence-adjusted
// weights. The engine is deterministic and stateless per call; concurrent
// Decide invocations for different snapshots are safe.
package coordinator

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"EquitySignal/internal/analysis/score"
	"EquitySignal/internal/domain/models"
	domsvc "EquitySignal/internal/domain/service"
	applogger "EquitySignal/pkg/logger"
)

const (
	defaultAlpha     = 0.5
	defaultMinWeight = 0.1

	// Asymmetric decision thresholds: SELL triggers closer to neutral than
	// BUY, deliberately cautious on the downside.
	defaultBuyThreshold  = 0.50
	defaultSellThreshold = -0.30

	// Signals with |mean| below this are treated as genuinely mixed and
	// skip outlier dampening.
	mixedMarketBand = 0.05

	// An agent opposing the majority at this magnitude or more has its
	// confidence halved.
	outlierMagnitude = 0.6
)

// Option configures the engine.
type Option func(*Engine)

// WithAlpha sets the confidence boost factor.
func WithAlpha(alpha float64) Option {
	return func(e *Engine) { e.alpha = alpha }
}

// WithMinWeight sets the per-agent weight floor.
func WithMinWeight(w float64) Option {
	return func(e *Engine) { e.minWeight = w }
}

// WithThresholds sets the BUY/SELL score cutoffs (both inclusive).
func WithThresholds(buy, sell float64) Option {
	return func(e *Engine) {
		e.buyThreshold = buy
		e.sellThreshold = sell
	}
}

// Engine coordinates a fixed set of analyzers.
type Engine struct {
	agents        []domsvc.Analyzer
	alpha         float64
	minWeight     float64
	buyThreshold  float64
	sellThreshold float64
	logger        *applogger.Logger
}

// NewEngine builds a coordination engine over the given analyzers.
func NewEngine(l *applogger.Logger, agents []domsvc.Analyzer, opts ...Option) *Engine {
	e := &Engine{
		agents:        agents,
		alpha:         defaultAlpha,
		minWeight:     defaultMinWeight,
		buyThreshold:  defaultBuyThreshold,
		sellThreshold: defaultSellThreshold,
		logger:        l,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide runs every analyzer concurrently, cross-verifies their outputs and
// aggregates them into a structurally complete Decision. It never fails: a
// crashing analyzer contributes a zero-confidence "Error" entry and the
// remaining agents carry the decision.
func (e *Engine) Decide(ctx context.Context, snap *models.MarketSnapshot, regimeInfo models.RegimeInfo) models.Decision {
	results := e.fanOut(ctx, snap)

	results = crossVerify(results)

	names := make([]string, 0, len(results))
	for _, agent := range e.agents {
		if _, ok := results[agent.Name()]; ok {
			names = append(names, agent.Name())
		}
	}

	base := baseWeights(regimeInfo.Regime, names)

	// Confidence adjustment with a floor so no agent is silenced entirely.
	adjusted := make(map[string]float64, len(base))
	for name, bw := range base {
		conf := results[name].Confidence
		adjusted[name] = math.Max(e.minWeight, bw*(1+e.alpha*conf))
	}
	weights := normalize(adjusted)

	finalScore := 0.0
	for name, res := range results {
		finalScore += weights[name] * res.Signal
	}

	action := models.ActionHold
	switch {
	case finalScore >= e.buyThreshold:
		action = models.ActionBuy
	case finalScore <= e.sellThreshold:
		action = models.ActionSell
	}

	overall := 0.0
	if len(results) > 0 {
		for _, res := range results {
			overall += res.Confidence
		}
		overall /= float64(len(results))
	}

	symbol := ""
	if snap != nil {
		symbol = snap.Symbol
	}
	d := models.Decision{
		Symbol:            symbol,
		Timestamp:         time.Now().UTC(),
		Decision:          action,
		FinalScore:        round4(finalScore),
		OverallConfidence: round4(overall),
		Regime:            regimeInfo.Regime,
		Weights:           weights,
		Agents:            results,
		Explanation:       e.explain(names, results, weights, regimeInfo.Regime, finalScore),
	}

	if e.logger != nil {
		e.logger.Info("decision",
			applogger.String("symbol", symbol),
			applogger.String("decision", action),
			applogger.String("regime", regimeInfo.Regime),
			applogger.Any("final_score", d.FinalScore),
			applogger.Any("overall_confidence", d.OverallConfidence))
	}
	return d
}

// fanOut runs one goroutine per analyzer and joins before returning. A panic
// inside an analyzer is isolated to its own slot.
func (e *Engine) fanOut(ctx context.Context, snap *models.MarketSnapshot) map[string]models.AnalysisResult {
	type item struct {
		name string
		res  models.AnalysisResult
	}
	ch := make(chan item, len(e.agents))
	var wg sync.WaitGroup
	for _, agent := range e.agents {
		wg.Add(1)
		go func(a domsvc.Analyzer) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					if e.logger != nil {
						e.logger.Warn("agent failed", applogger.String("agent", a.Name()), applogger.Any("panic", r))
					}
					ch <- item{a.Name(), models.AnalysisResult{
						Signal:     0,
						Confidence: 0,
						Label:      "Error",
						Rationale:  fmt.Sprintf("agent failure: %v", r),
					}}
				}
			}()
			ch <- item{a.Name(), a.Analyze(ctx, snap)}
		}(agent)
	}
	go func() { wg.Wait(); close(ch) }()

	results := make(map[string]models.AnalysisResult, len(e.agents))
	for it := range ch {
		results[it.name] = it.res
	}
	return results
}

// crossVerify dampens the confidence (never the signal) of agents that
// strongly oppose the majority direction, so one contrarian high-magnitude
// agent cannot dominate downstream weighting via its confidence boost. When
// the mean signal sits inside the mixed band the market is genuinely split
// and results pass through untouched.
func crossVerify(results map[string]models.AnalysisResult) map[string]models.AnalysisResult {
	if len(results) == 0 {
		return results
	}
	mean := 0.0
	for _, res := range results {
		mean += res.Signal
	}
	mean /= float64(len(results))
	if math.Abs(mean) < mixedMarketBand {
		return results
	}

	majority := score.Sign(mean)
	adjusted := make(map[string]models.AnalysisResult, len(results))
	for name, res := range results {
		if math.Abs(res.Signal) >= outlierMagnitude && score.Sign(res.Signal) != majority {
			res.Confidence = score.ClipTo(res.Confidence*0.5, 0, 1)
		}
		adjusted[name] = res
	}
	return adjusted
}

// explain builds the human-readable decision narrative: regime, the two
// dominant weighted contributions, conflicting agents, then each agent's own
// rationale.
func (e *Engine) explain(names []string, results map[string]models.AnalysisResult, weights map[string]float64, regime string, finalScore float64) string {
	type contribution struct {
		name  string
		value float64
	}
	contribs := make([]contribution, 0, len(results))
	for name, res := range results {
		contribs = append(contribs, contribution{name, weights[name] * res.Signal})
	}
	sort.Slice(contribs, func(i, j int) bool {
		if math.Abs(contribs[i].value) != math.Abs(contribs[j].value) {
			return math.Abs(contribs[i].value) > math.Abs(contribs[j].value)
		}
		return contribs[i].name < contribs[j].name
	})
	if len(contribs) > 2 {
		contribs = contribs[:2]
	}

	parts := []string{fmt.Sprintf("Regime: %s.", regime)}
	dominant := make([]string, 0, len(contribs))
	for _, c := range contribs {
		dominant = append(dominant, fmt.Sprintf("%s %+.2f (w=%.2f)", c.name, c.value, weights[c.name]))
	}
	parts = append(parts, "Dominant contributions: "+strings.Join(dominant, ", ")+".")

	conflicting := make([]string, 0)
	for _, name := range names {
		res := results[name]
		if score.Sign(res.Signal) != score.Sign(finalScore) && math.Abs(res.Signal) > 0.2 {
			conflicting = append(conflicting, name)
		}
	}
	if len(conflicting) > 0 {
		parts = append(parts, "Conflicting signals from: "+strings.Join(conflicting, ", ")+".")
	}

	for _, name := range names {
		if r := results[name].Rationale; r != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", name, r))
		}
	}
	return strings.Join(parts, " ")
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
