//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"giftd/internal"
	"giftd/internal/controllers"
	"giftd/internal/delivery"
	"giftd/internal/providers"
	"giftd/internal/services"
	"giftd/internal/storage"
	"giftd/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewCacheProvider,
		providers.NewMetricsProvider,

		storage.NewZstdCompressor,
		storage.NewStore,
		wire.Bind(new(services.StoreInterface), new(*storage.Store)),
		delivery.NewDefaultChain,
		wire.Bind(new(delivery.Sender), new(*delivery.Chain)),
		services.NewLedgerService,
		wire.Bind(new(providers.LedgerStats), new(services.LedgerServiceInterface)),
		storage.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
