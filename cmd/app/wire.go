//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/aqi-health/internal/bootstrap"
	"github.com/yanqian/aqi-health/internal/domain/airquality"
	"github.com/yanqian/aqi-health/internal/domain/healthrisk"
	"github.com/yanqian/aqi-health/internal/infra/config"
	httpiface "github.com/yanqian/aqi-health/internal/interface/http"
	"github.com/yanqian/aqi-health/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAirQualityConfig,
		provideHealthConfig,
		provideOpenMeteoClient,
		provideSeriesStore,
		provideFetcher,
		provideRankingStore,
		provideSnapshotArchive,
		provideAssessmentRepository,
		provideChatClient,
		provideScheduler,
		airquality.NewService,
		airquality.NewRefreshJob,
		healthrisk.NewService,
		wire.Bind(new(httpiface.RankingPublisher), new(*airquality.RefreshJob)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
