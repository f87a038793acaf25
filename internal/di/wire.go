//go:build wireinject
// +build wireinject

package di

import (
	"EquitySignal/pkg/config"
	"EquitySignal/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideDecisionStore,
		ProvideDecisionPublisher,

		// Domain services
		ProvideSnapshotProvider,
		ProvideRegimeDetector,
		ProvideAnalyzers,
		ProvideEngine,

		// Use cases and transport
		ProvideDecisionUseCase,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
