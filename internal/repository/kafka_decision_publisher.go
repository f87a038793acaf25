package repository

import (
	"context"
	"fmt"

	"EquitySignal/internal/domain/models"
	domrepo "EquitySignal/internal/domain/repository"
	pkgkafka "EquitySignal/pkg/kafka"
	applogger "EquitySignal/pkg/logger"
)

// KafkaDecisionPublisher emits decisions to a Kafka topic, keyed by symbol so
// per-symbol ordering is preserved across partitions.
type KafkaDecisionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	l        *applogger.Logger
}

func NewKafkaDecisionPublisher(producer *pkgkafka.Producer, topic string) *KafkaDecisionPublisher {
	if topic == "" {
		topic = "equitysignal.decisions"
	}
	return &KafkaDecisionPublisher{producer: producer, topic: topic}
}

// SetLogger injects a structured logger.
func (p *KafkaDecisionPublisher) SetLogger(l *applogger.Logger) { p.l = l }

func (p *KafkaDecisionPublisher) Publish(ctx context.Context, d *models.Decision) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(d.Symbol), d); err != nil {
		return fmt.Errorf("publish decision %s: %w", d.Symbol, err)
	}
	if p.l != nil {
		p.l.Debug("decision published",
			applogger.String("topic", p.topic),
			applogger.String("symbol", d.Symbol),
			applogger.String("decision", d.Decision),
		)
	}
	return nil
}

func (p *KafkaDecisionPublisher) Close() error {
	return p.producer.Close()
}

var _ domrepo.DecisionPublisher = (*KafkaDecisionPublisher)(nil)
