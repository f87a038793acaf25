package repository

import (
	"context"

	"EquitySignal/internal/domain/models"
)

// DecisionStore persists decisions for audit.
type DecisionStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, d *models.Decision) error
	StoreBatch(ctx context.Context, ds []*models.Decision) error
	Health(ctx context.Context) error
	Close() error
}

// DecisionPublisher emits decisions to downstream consumers.
type DecisionPublisher interface {
	Publish(ctx context.Context, d *models.Decision) error
	Close() error
}

// Metrics records operational metrics for the decision pipeline.
type Metrics interface {
	RecordDecision(symbol, action string)
	RecordDegradation(agent, kind string)
	RecordFinalScore(symbol string, score float64)
	RecordLatency(op string, seconds float64)
}
