package fx

import (
	"database/sql"

	"cedh-tracker/internal/analytics"
	"cedh-tracker/internal/api"
	"cedh-tracker/internal/config"
	"cedh-tracker/internal/database"
	"cedh-tracker/internal/db"
	"cedh-tracker/internal/logger"
	"cedh-tracker/internal/repository"
	"cedh-tracker/internal/server"
	"cedh-tracker/internal/service"

	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewUserRepository),
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewDeckRepository),
	fx.Provide(repository.NewGameRepository),
	fx.Provide(
		fx.Annotate(repository.NewAnalyticsStore, fx.As(new(analytics.Store))),
	),
	// analytics
	fx.Provide(analytics.NewAggregator),
	// api client
	fx.Provide(api.NewMoxfieldClient),
	// svc
	fx.Provide(service.NewUserService),
	fx.Provide(service.NewGameService),
	fx.Provide(service.NewAnalyticsService),
	fx.Provide(service.NewDeckService),
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewResourceService),
	fx.Provide(service.NewTransferService),
	// server
	fx.Provide(server.NewTrackerServer),
)
