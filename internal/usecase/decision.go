package usecase

import (
	"context"
	"fmt"
	"time"

	"EquitySignal/internal/coordinator"
	"EquitySignal/internal/domain/models"
	domrepo "EquitySignal/internal/domain/repository"
	domsvc "EquitySignal/internal/domain/service"
	"EquitySignal/pkg/cache"
	applogger "EquitySignal/pkg/logger"
)

const (
	defaultBars      = 250
	defaultTimeout   = 10 * time.Second
	decisionCacheTTL = 5 * time.Minute
)

// DecisionUseCase drives the full pipeline: fetch a market snapshot, detect
// the regime, run the coordination engine, then fan the result out to the
// audit store, the decisions topic and the cache. Side effects are best
// effort: a failing store or broker never fails the decision itself.
type DecisionUseCase struct {
	provider  domsvc.SnapshotProvider
	detector  domsvc.RegimeDetector
	engine    *coordinator.Engine
	cache     cache.Service
	store     domrepo.DecisionStore
	publisher domrepo.DecisionPublisher
	metrics   domrepo.Metrics
	logger    *applogger.Logger
	timeout   time.Duration
	cacheTTL  time.Duration
}

func NewDecisionUseCase(
	provider domsvc.SnapshotProvider,
	detector domsvc.RegimeDetector,
	engine *coordinator.Engine,
	cacheSvc cache.Service,
	store domrepo.DecisionStore,
	publisher domrepo.DecisionPublisher,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
) *DecisionUseCase {
	return &DecisionUseCase{
		provider:  provider,
		detector:  detector,
		engine:    engine,
		cache:     cacheSvc,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		timeout:   defaultTimeout,
		cacheTTL:  decisionCacheTTL,
	}
}

type DecideParams struct {
	Symbol string
	N      int
	Fresh  bool
}

func decisionCacheKey(symbol string) string {
	return cache.GenerateKey("decision", symbol)
}

// Decide produces a BUY/SELL/HOLD decision for one symbol. Only snapshot
// retrieval can fail; everything downstream degrades instead of erroring.
func (uc *DecisionUseCase) Decide(ctx context.Context, p DecideParams) (*models.Decision, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.N <= 0 {
		p.N = defaultBars
	}

	// Overall timeout
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	if !p.Fresh && uc.cache != nil {
		var cached models.Decision
		if err := uc.cache.Get(ctx, decisionCacheKey(p.Symbol), &cached); err == nil && cached.Symbol == p.Symbol {
			return &cached, nil
		}
	}

	started := time.Now()
	snap, err := uc.provider.Snapshot(ctx, p.Symbol, p.N)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot for %s: %w", p.Symbol, err)
	}

	regimeInfo := uc.detector.Detect(snap)
	decision := uc.engine.Decide(ctx, snap, regimeInfo)

	if uc.metrics != nil {
		uc.metrics.RecordDecision(decision.Symbol, decision.Decision)
		uc.metrics.RecordFinalScore(decision.Symbol, decision.FinalScore)
		uc.metrics.RecordLatency("decide", time.Since(started).Seconds())
		for name, res := range decision.Agents {
			switch {
			case res.Label == "Error":
				uc.metrics.RecordDegradation(name, "panic")
			case res.Label == "Neutral" && res.Confidence == 0:
				// data-absence degradation: the analyzer returned its
				// neutral fallback instead of crashing
				uc.metrics.RecordDegradation(name, "no_data")
			}
		}
	}

	uc.persist(ctx, &decision)

	return &decision, nil
}

// Regime classifies the current market regime without producing a decision.
func (uc *DecisionUseCase) Regime(ctx context.Context, symbol string, n int) (*models.RegimeInfo, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if n <= 0 {
		n = defaultBars
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	snap, err := uc.provider.Snapshot(ctx, symbol, n)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot for %s: %w", symbol, err)
	}
	info := uc.detector.Detect(snap)
	return &info, nil
}

// persist writes the decision to the audit store, the decisions topic and the
// cache. Each sink fails independently and only logs.
func (uc *DecisionUseCase) persist(ctx context.Context, d *models.Decision) {
	if uc.store != nil {
		if err := uc.store.Store(ctx, d); err != nil {
			uc.warn("store decision", d.Symbol, err)
		}
	}
	if uc.publisher != nil {
		if err := uc.publisher.Publish(ctx, d); err != nil {
			uc.warn("publish decision", d.Symbol, err)
		}
	}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, decisionCacheKey(d.Symbol), d, uc.cacheTTL); err != nil {
			uc.warn("cache decision", d.Symbol, err)
		}
	}
}

func (uc *DecisionUseCase) warn(op, symbol string, err error) {
	if uc.logger == nil {
		return
	}
	uc.logger.Warn(op+" failed",
		applogger.String("symbol", symbol),
		applogger.Error(err))
}
