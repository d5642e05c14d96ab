//go:build wireinject
// +build wireinject

package di

import (
	"RSIScan/internal/usecase"
	"RSIScan/pkg/config"
	"RSIScan/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Observability
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCacheStore,
		ProvideBinanceClient,
		ProvideKlineSource,
		ProvideSymbolRanker,

		// Use cases
		ProvideSymbolResolver,
		ProvideRSIScanner,
		ProvideCacheGate,
		usecase.NewRSIService,

		// HTTP
		ProvideHTTPHandler,
		ProvideRateLimiter,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
