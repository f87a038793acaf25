package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"EquitySignal/internal/domain/models"
	domrepo "EquitySignal/internal/domain/repository"
	pkgch "EquitySignal/pkg/clickhouse"
	applogger "EquitySignal/pkg/logger"
)

// CHDecisionStore implements DecisionStore backed by ClickHouse.
type CHDecisionStore struct {
	client *pkgch.Client
	db     *sql.DB
	l      *applogger.Logger
}

func NewCHDecisionStore(ch *pkgch.Client) *CHDecisionStore {
	return &CHDecisionStore{client: ch, db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHDecisionStore) SetLogger(l *applogger.Logger) { s.l = l }

var decisionSchema = []string{
	`CREATE DATABASE IF NOT EXISTS equitysignal`,
	`CREATE TABLE IF NOT EXISTS equitysignal.decisions (
        ts DateTime64(3, 'UTC'),
        symbol LowCardinality(String),
        decision LowCardinality(String),
        final_score Float64,
        overall_confidence Float64,
        regime LowCardinality(String),
        weights String,
        agents String,
        explanation String
    ) ENGINE = MergeTree()
    PARTITION BY toYYYYMM(ts)
    ORDER BY (symbol, ts)`,
}

// Init ensures the audit schema exists.
func (s *CHDecisionStore) Init(ctx context.Context) error {
	if err := s.client.InitSchema(ctx, decisionSchema); err != nil {
		return fmt.Errorf("init decision schema: %w", err)
	}
	return nil
}

const insertDecisionQuery = `
        INSERT INTO equitysignal.decisions
            (ts, symbol, decision, final_score, overall_confidence, regime, weights, agents, explanation)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

func (s *CHDecisionStore) Store(ctx context.Context, d *models.Decision) error {
	return s.StoreBatch(ctx, []*models.Decision{d})
}

func (s *CHDecisionStore) StoreBatch(ctx context.Context, ds []*models.Decision) error {
	if len(ds) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin decision batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertDecisionQuery)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare decision insert: %w", err)
	}
	defer stmt.Close()

	for _, d := range ds {
		weights, err := json.Marshal(d.Weights)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("marshal weights: %w", err)
		}
		agents, err := json.Marshal(d.Agents)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("marshal agents: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			d.Timestamp, d.Symbol, d.Decision, d.FinalScore, d.OverallConfidence,
			d.Regime, string(weights), string(agents), d.Explanation,
		); err != nil {
			_ = tx.Rollback()
			if s.l != nil {
				s.l.Error("clickhouse decision insert error",
					applogger.String("symbol", d.Symbol),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("insert decision %s: %w", d.Symbol, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit decision batch: %w", err)
	}

	if s.l != nil {
		s.l.Debug("clickhouse decisions stored",
			applogger.Int("rows", len(ds)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

// Recent returns the latest decisions for a symbol, newest first.
func (s *CHDecisionStore) Recent(ctx context.Context, symbol string, limit int) ([]models.Decision, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
        SELECT ts, symbol, decision, final_score, overall_confidence, regime, weights, agents, explanation
        FROM equitysignal.decisions
        WHERE symbol = ?
        ORDER BY ts DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	out := make([]models.Decision, 0, limit)
	for rows.Next() {
		var d models.Decision
		var weights, agents string
		if err := rows.Scan(&d.Timestamp, &d.Symbol, &d.Decision, &d.FinalScore,
			&d.OverallConfidence, &d.Regime, &weights, &agents, &d.Explanation); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		if err := json.Unmarshal([]byte(weights), &d.Weights); err != nil {
			return nil, fmt.Errorf("parse weights: %w", err)
		}
		if err := json.Unmarshal([]byte(agents), &d.Agents); err != nil {
			return nil, fmt.Errorf("parse agents: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHDecisionStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *CHDecisionStore) Close() error {
	return s.client.Close()
}

var _ domrepo.DecisionStore = (*CHDecisionStore)(nil)
