package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"

	"EquitySignal/internal/analysis/score"
	"EquitySignal/internal/domain/models"
	domsvc "EquitySignal/internal/domain/service"
	applogger "EquitySignal/pkg/logger"
)

// SentimentAnalyzer scores news flow with the VADER lexicon and aggregates
// the per-item compound scores.
type SentimentAnalyzer struct {
	logger *applogger.Logger
}

func NewSentimentAnalyzer(l *applogger.Logger) *SentimentAnalyzer {
	return &SentimentAnalyzer{logger: l}
}

func (a *SentimentAnalyzer) Name() string { return "SentimentAgent" }

func (a *SentimentAnalyzer) Analyze(_ context.Context, snap *models.MarketSnapshot) models.AnalysisResult {
	if snap == nil {
		return Neutral("no market data")
	}
	if len(snap.News) == 0 {
		return Neutral("no news available")
	}
	return guard(a.logger, a.Name(), func() models.AnalysisResult {
		return a.compute(snap.News)
	})
}

func (a *SentimentAnalyzer) compute(news []models.NewsItem) models.AnalysisResult {
	scores := make([]float64, 0, len(news))
	posCount, negCount := 0, 0
	for _, item := range news {
		text := strings.TrimSpace(item.Headline + ". " + item.Summary)
		if text == "." || text == "" {
			continue
		}
		parsed := sentitext.Parse(text, lexicon.DefaultLexicon)
		compound := sentitext.PolarityScore(parsed).Compound // already in [-1,1]
		scores = append(scores, compound)
		switch {
		case compound >= 0.2:
			posCount++
		case compound <= -0.2:
			negCount++
		}
	}

	if len(scores) == 0 {
		return models.AnalysisResult{
			Signal:     0,
			Confidence: 0.1,
			Label:      LabelNeutral,
			Rationale:  "insufficient textual content for sentiment scoring",
		}
	}

	n := len(scores)
	avg := 0.0
	for _, s := range scores {
		avg += s
	}
	avg /= float64(n)
	variance := 0.0
	for _, s := range scores {
		d := s - avg
		variance += d * d
	}
	std := math.Sqrt(variance / float64(n))

	// Confidence: more items and tighter agreement read stronger. Volume
	// saturates at 20 headlines.
	volumeFactor := math.Min(1, float64(n)/20)
	agreement := 1 - math.Min(1, std)
	confidence := score.ClipTo(0.2+0.5*volumeFactor+0.3*agreement, 0, 1)

	label := LabelNeutral
	switch {
	case avg > 0.15:
		label = "Positive"
	case avg < -0.15:
		label = "Negative"
	}

	rationale := fmt.Sprintf("Sentiment avg=%+.2f, n=%d, agreement=%.2f; Pos=%d, Neg=%d.",
		avg, n, agreement, posCount, negCount)

	return models.AnalysisResult{
		Signal:     score.Clip(avg),
		Confidence: confidence,
		Label:      label,
		Rationale:  rationale,
	}
}

var _ domsvc.Analyzer = (*SentimentAnalyzer)(nil)
