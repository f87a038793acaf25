package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"EquitySignal/internal/analysis/score"
	"EquitySignal/internal/domain/models"
	domsvc "EquitySignal/internal/domain/service"
	applogger "EquitySignal/pkg/logger"
)

// fundamentalFields enumerates the ratios the analyzer understands, in the
// order they appear in rationales.
var fundamentalFields = []struct {
	key   string
	label string
	fn    func(float64) float64
}{
	{"pe", "P/E", score.PE},
	{"pb", "P/B", score.PB},
	{"roe", "ROE", score.ROE},
	{"debt_to_equity", "D/E", score.DebtEquity},
	{"fcf_yield", "FCF Yield", score.FCFYield},
	{"revenue_yoy", "Revenue YoY", func(g float64) float64 { return score.Growth(g, -20, 20) }},
	{"earnings_yoy", "Earnings YoY", func(g float64) float64 { return score.Growth(g, -30, 20) }},
	{"ebitda_margin", "EBITDA Margin", score.Margin},
}

// FundamentalAnalyzer scores valuation, profitability, leverage and growth
// ratios and averages the available component scores.
type FundamentalAnalyzer struct {
	logger *applogger.Logger
}

func NewFundamentalAnalyzer(l *applogger.Logger) *FundamentalAnalyzer {
	return &FundamentalAnalyzer{logger: l}
}

func (a *FundamentalAnalyzer) Name() string { return "FundamentalAgent" }

func (a *FundamentalAnalyzer) Analyze(_ context.Context, snap *models.MarketSnapshot) models.AnalysisResult {
	if snap == nil {
		return Neutral("no market data")
	}
	if len(snap.Fundamentals) == 0 {
		return Neutral("no fundamentals available")
	}
	return guard(a.logger, a.Name(), func() models.AnalysisResult {
		return a.compute(snap.Fundamentals)
	})
}

type scoredField struct {
	label string
	value float64
}

func (a *FundamentalAnalyzer) compute(fundamentals map[string]float64) models.AnalysisResult {
	parts := make([]scoredField, 0, len(fundamentalFields))
	for _, f := range fundamentalFields {
		raw, ok := fundamentals[f.key]
		if !ok || math.IsNaN(raw) || math.IsInf(raw, 0) {
			continue
		}
		parts = append(parts, scoredField{label: f.label, value: score.Clip(f.fn(raw))})
	}
	if len(parts) == 0 {
		return Neutral("no usable fundamental fields; returning neutral")
	}

	signal := 0.0
	for _, p := range parts {
		signal += p.value
	}
	signal /= float64(len(parts))

	// Confidence: coverage plus consistency (lower dispersion reads stronger).
	coverage := float64(len(parts)) / float64(len(fundamentalFields))
	variance := 0.0
	for _, p := range parts {
		d := p.value - signal
		variance += d * d
	}
	variance /= float64(len(parts))
	dispersion := math.Min(1, variance)
	confidence := score.ClipTo(0.3+0.5*coverage+0.2*(1-dispersion), 0, 1)

	label := LabelNeutral
	switch {
	case signal > 0.15:
		label = "Attractive"
	case signal < -0.15:
		label = "Weak"
	}

	sorted := make([]scoredField, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].value < sorted[j].value })
	rationale := fmt.Sprintf("Drivers -> %s; Headwinds -> %s. Coverage=%.0f%%.",
		formatFields(topTail(sorted, 2)), formatFields(sorted[:minInt(2, len(sorted))]), coverage*100)

	return models.AnalysisResult{
		Signal:     signal,
		Confidence: confidence,
		Label:      label,
		Rationale:  rationale,
	}
}

func topTail(sorted []scoredField, n int) []scoredField {
	if len(sorted) < n {
		n = len(sorted)
	}
	return sorted[len(sorted)-n:]
}

func formatFields(fs []scoredField) string {
	strs := make([]string, 0, len(fs))
	for _, f := range fs {
		strs = append(strs, fmt.Sprintf("%s %+.2f", f.label, f.value))
	}
	return strings.Join(strs, ", ")
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

var _ domsvc.Analyzer = (*FundamentalAnalyzer)(nil)
