//go:build wireinject
// +build wireinject

package di

import (
	"Heliox/pkg/config"
	"Heliox/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Persistence and infrastructure clients
		ProvideStores,
		ProvideRunStore,
		ProvideEventStore,
		ProvideClickHouseClient,
		ProvideCache,
		ProvidePublisher,

		// Use cases
		ProvideRegistry,
		ProvideLedger,
		ProvidePhases,
		ProvideOrchestrator,

		// HTTP surface and application server
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
