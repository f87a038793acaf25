package service

import (
	"context"

	"EquitySignal/internal/domain/models"
)

// Analyzer produces a signal/confidence/label/rationale tuple from a snapshot.
// Implementations must degrade to a neutral result on missing or bad input
// rather than returning an error; a decision must never fail because one
// analyzer could not do its job.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, snap *models.MarketSnapshot) models.AnalysisResult
}

// RegimeDetector classifies market conditions from the snapshot's index history.
type RegimeDetector interface {
	Detect(snap *models.MarketSnapshot) models.RegimeInfo
}

// SnapshotProvider assembles a point-in-time market snapshot for a symbol.
// n bounds the number of price bars requested.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, symbol string, n int) (*models.MarketSnapshot, error)
}
