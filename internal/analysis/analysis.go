// Package analysis implements the three heuristic analyzers (technical,
// fundamental, sentiment). All of them share one contract: missing or
// insufficient input degrades to a neutral result with an explanatory
// rationale, and an unexpected failure mid-computation is caught and
// degraded the same way. Analyzers never return errors.
package analysis

import (
	"fmt"

	"EquitySignal/internal/domain/models"
	applogger "EquitySignal/pkg/logger"
)

const (
	LabelNeutral = "Neutral"
)

// Neutral builds the degraded result every analyzer falls back to.
func Neutral(reason string) models.AnalysisResult {
	return models.AnalysisResult{
		Signal:     0,
		Confidence: 0,
		Label:      LabelNeutral,
		Rationale:  reason,
	}
}

// guard runs compute and converts a panic into the neutral contract.
func guard(l *applogger.Logger, agent string, compute func() models.AnalysisResult) (res models.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			if l != nil {
				l.Error("analyzer panic", applogger.String("agent", agent), applogger.Any("panic", r))
			}
			res = Neutral(fmt.Sprintf("analysis error: %v", r))
		}
	}()
	return compute()
}
