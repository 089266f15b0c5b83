//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"vihub/internal"
	"vihub/internal/controllers"
	"vihub/internal/directory"
	"vihub/internal/providers"
	"vihub/internal/services"
	"vihub/internal/storage"
	"vihub/internal/structures"
)

var coreSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.NewLogProvider,
	providers.NewMetricsProvider,

	storage.NewZstdCompressor,
	storage.NewFileManager,
	wire.Bind(new(services.PersisterInterface), new(*storage.FileManager)),
	services.NewPatientService,

	directory.NewHTTPTransport,
	directory.NewClient,
	services.NewRatePacer,
	services.NewReconciliationService,
	storage.NewScheduler,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		coreSet,
		providers.NewInstrumentedCacheProvider,
		controllers.NewPatientController,
		controllers.NewReconciliationController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

func InitSyncJob(cfg *structures.CliFlags) (*internal.SyncJob, error) {

	wire.Build(
		coreSet,
		internal.NewSyncJob,
	)

	return nil, nil
}
