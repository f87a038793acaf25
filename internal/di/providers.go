package di

import (
	"context"
	"fmt"
	"time"

	"EquitySignal/internal/analysis"
	"EquitySignal/internal/coordinator"
	domrepo "EquitySignal/internal/domain/repository"
	domsvc "EquitySignal/internal/domain/service"
	"EquitySignal/internal/handler/api"
	internalrepo "EquitySignal/internal/repository"
	"EquitySignal/internal/regime"
	"EquitySignal/internal/services/marketdata"
	"EquitySignal/internal/usecase"
	"EquitySignal/pkg/cache"
	pkgch "EquitySignal/pkg/clickhouse"
	"EquitySignal/pkg/config"
	xhttp "EquitySignal/pkg/http"
	pkgkafka "EquitySignal/pkg/kafka"
	"EquitySignal/pkg/logger"
	"EquitySignal/pkg/metrics"
	"EquitySignal/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	lvl := cfg.Logger.Level
	if lvl == "" {
		lvl = "info"
	}
	format := cfg.Logger.Format
	if format == "" {
		format = "json"
	}
	output := cfg.Logger.Output
	if output == "" {
		output = "stdout"
	}
	l, err := logger.New(&logger.Config{Level: lvl, Format: format, Output: output})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideCache creates the decision cache: redis when enabled, otherwise an
// in-process fallback.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	c, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideClickHouseClient creates a ClickHouse client when the audit store is
// enabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideDecisionStore creates the ClickHouse audit store and ensures its
// schema.
func ProvideDecisionStore(chClient *pkgch.Client, l *logger.Logger) (domrepo.DecisionStore, error) {
	if chClient == nil {
		return nil, nil
	}
	store := internalrepo.NewCHDecisionStore(chClient)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = chClient.Close()
		return nil, err
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer when publishing is enabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideDecisionPublisher creates the Kafka decision publisher.
func ProvideDecisionPublisher(producer *pkgkafka.Producer, cfg *config.Config, l *logger.Logger) domrepo.DecisionPublisher {
	if producer == nil {
		return nil
	}
	pub := internalrepo.NewKafkaDecisionPublisher(producer, cfg.Kafka.Topic)
	pub.SetLogger(l)
	return pub
}

// ProvideSnapshotProvider selects the configured market data source.
func ProvideSnapshotProvider(cfg *config.Config) (domsvc.SnapshotProvider, error) {
	switch cfg.MarketData.Provider {
	case "fixture":
		return marketdata.NewFixtureProvider(cfg.MarketData.FixtureDir), nil
	case "http":
		return marketdata.NewHTTPProvider(marketdata.HTTPConfig{
			BaseURL:     cfg.MarketData.BaseURL,
			APIKey:      cfg.MarketData.APIKey,
			IndexSymbol: cfg.MarketData.IndexSymbol,
			Timeout:     cfg.MarketData.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown marketdata provider: %s", cfg.MarketData.Provider)
	}
}

// ProvideRegimeDetector creates the regime detector from config thresholds.
func ProvideRegimeDetector(cfg *config.Config, l *logger.Logger) domsvc.RegimeDetector {
	dc := regime.DefaultDetectorConfig()
	if cfg.Regime.VolThreshold > 0 {
		dc.VolThreshold = cfg.Regime.VolThreshold
	}
	if cfg.Regime.MinBars > 0 {
		dc.MinBars = cfg.Regime.MinBars
	}
	return regime.NewDetectorWithConfig(l, dc)
}

// ProvideAnalyzers creates the fixed analyzer set.
func ProvideAnalyzers(l *logger.Logger) []domsvc.Analyzer {
	return []domsvc.Analyzer{
		analysis.NewTechnicalAnalyzer(l),
		analysis.NewFundamentalAnalyzer(l),
		analysis.NewSentimentAnalyzer(l),
	}
}

// ProvideEngine creates the coordination engine.
func ProvideEngine(l *logger.Logger, agents []domsvc.Analyzer, cfg *config.Config) *coordinator.Engine {
	opts := make([]coordinator.Option, 0, 3)
	if cfg.Engine.Alpha > 0 {
		opts = append(opts, coordinator.WithAlpha(cfg.Engine.Alpha))
	}
	if cfg.Engine.MinWeight > 0 {
		opts = append(opts, coordinator.WithMinWeight(cfg.Engine.MinWeight))
	}
	if cfg.Engine.BuyThreshold > 0 && cfg.Engine.SellThreshold < 0 {
		opts = append(opts, coordinator.WithThresholds(cfg.Engine.BuyThreshold, cfg.Engine.SellThreshold))
	}
	return coordinator.NewEngine(l, agents, opts...)
}

// ProvideDecisionUseCase assembles the decision pipeline.
func ProvideDecisionUseCase(
	provider domsvc.SnapshotProvider,
	detector domsvc.RegimeDetector,
	engine *coordinator.Engine,
	cacheSvc cache.Service,
	store domrepo.DecisionStore,
	publisher domrepo.DecisionPublisher,
	m domrepo.Metrics,
	l *logger.Logger,
) *usecase.DecisionUseCase {
	return usecase.NewDecisionUseCase(provider, detector, engine, cacheSvc, store, publisher, m, l)
}

// ProvideHTTPHandler creates the API handler.
func ProvideHTTPHandler(l *logger.Logger, uc *usecase.DecisionUseCase) xhttp.Handler {
	return api.NewDecisionEchoHandler(l, uc)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	handler xhttp.Handler,
	store domrepo.DecisionStore,
	publisher domrepo.DecisionPublisher,
	cacheSvc cache.Service,
) *server.App {
	app := server.New(cfg, l, handler, store, publisher)
	if closer, ok := cacheSvc.(interface{ Close() error }); ok {
		app.SetCacheCloser(closer.Close)
	}
	return app
}
