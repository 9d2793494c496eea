//go:build wireinject
// +build wireinject

package di

import (
	"QuantKit/pkg/config"
	"QuantKit/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideRegistry,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,
		ProvideKafkaReader,

		// Repositories
		ProvideBarStore,

		// Use cases
		ProvideSeriesUseCase,
		ProvideTicksUseCase,
		ProvideSyntheticUseCase,
		ProvideSignificanceUseCase,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
