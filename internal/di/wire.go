//go:build wireinject
// +build wireinject

package di

import (
	"NiftyDash/pkg/config"
	"NiftyDash/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideLinksCache,
		ProvideKafkaProducer,
		ProvideClickHouseClient,

		// Gateway, state and sinks
		ProvideGateway,
		ProvideStore,
		ProvideForecastSink,

		// Use cases
		ProvideForecastRecorder,
		ProvideForecastPipeline,
		ProvideOrchestrator,

		// HTTP
		ProvideDashboardHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
