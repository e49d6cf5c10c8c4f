//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/seoulfit/seoulfit-api/internal/bootstrap"
	"github.com/seoulfit/seoulfit-api/internal/domain/auth"
	"github.com/seoulfit/seoulfit-api/internal/domain/citydata"
	"github.com/seoulfit/seoulfit-api/internal/domain/facility"
	"github.com/seoulfit/seoulfit-api/internal/domain/history"
	"github.com/seoulfit/seoulfit-api/internal/domain/location"
	"github.com/seoulfit/seoulfit-api/internal/domain/preference"
	"github.com/seoulfit/seoulfit-api/internal/domain/search"
	"github.com/seoulfit/seoulfit-api/internal/domain/trigger"
	"github.com/seoulfit/seoulfit-api/internal/infra/config"
	httpiface "github.com/seoulfit/seoulfit-api/internal/interface/http"
	"github.com/seoulfit/seoulfit-api/pkg/logger"
)

var infraSet = wire.NewSet(
	providePostgresPool,
	provideValkeyClient,
	provideSQLiteStore,
	provideHistoryStore,
	providePreferenceStore,
	provideSearchSource,
	provideFacilitySources,
	provideCityDataClient,
	provideCityDataCache,
	provideAuthRepository,
	provideInbox,
	provideTriggerQueue,
)

var domainSet = wire.NewSet(
	provideSearchConfig,
	provideFacilityConfig,
	provideLocationConfig,
	provideTriggerConfig,
	provideCityDataConfig,
	provideAuthConfig,
	search.NewService,
	history.NewService,
	facility.NewService,
	preference.NewService,
	citydata.NewService,
	auth.NewService,
	provideTriggerService,
	trigger.NewPublisher,
	provideTracker,
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		infraSet,
		domainSet,
		wire.Bind(new(httpiface.LocationTracker), new(*location.Tracker)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
