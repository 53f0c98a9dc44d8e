package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/aqi-health/internal/domain/airquality"
	"github.com/yanqian/aqi-health/internal/domain/healthrisk"
	"github.com/yanqian/aqi-health/internal/infra/assessmentrepo"
	"github.com/yanqian/aqi-health/internal/infra/config"
	"github.com/yanqian/aqi-health/internal/infra/llm/chatgpt"
	"github.com/yanqian/aqi-health/internal/infra/openmeteo"
	"github.com/yanqian/aqi-health/internal/infra/scheduler"
	"github.com/yanqian/aqi-health/internal/infra/seriescache"
	"github.com/yanqian/aqi-health/internal/infra/snapshot"
)

func provideAirQualityConfig(cfg *config.Config) airquality.Config {
	locations := make([]airquality.Location, 0, len(cfg.AirQuality.Locations))
	for _, loc := range cfg.AirQuality.Locations {
		locations = append(locations, airquality.Location{
			Name:      loc.Name,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
		})
	}
	return airquality.Config{
		ForecastDays:   cfg.AirQuality.ForecastDays,
		MaxDays:        cfg.AirQuality.MaxDays,
		FetchTimeout:   cfg.AirQuality.FetchTimeout,
		MaxConcurrency: cfg.AirQuality.MaxConcurrency,
		RankingLimit:   cfg.AirQuality.RankingLimit,
		Locations:      locations,
		SourceURL:      cfg.AirQuality.APIBaseURL,
	}
}

func provideHealthConfig(cfg *config.Config) healthrisk.Config {
	return healthrisk.Config{
		Model:        cfg.LLM.Model,
		Temperature:  cfg.LLM.Temperature,
		Prompt:       cfg.Health.Prompt,
		HistoryLimit: cfg.Health.HistoryLimit,
		MaxHistory:   cfg.Health.MaxHistory,
	}
}

func provideOpenMeteoClient(cfg *config.Config) *openmeteo.Client {
	return openmeteo.NewClient(cfg.AirQuality.APIBaseURL, cfg.AirQuality.FetchTimeout)
}

func provideSeriesStore(cfg *config.Config, logger *slog.Logger) seriescache.Store {
	if cfg.Redis.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return seriescache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return seriescache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("valkey series cache enabled", "addr", cfg.Redis.Addr)
			return seriescache.NewValkeyStore(client, cfg.Redis.Prefix)
		}
	}
	return seriescache.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	if strings.Contains(cfg.Redis.Addr, "://") {
		return valkey.ParseURL(cfg.Redis.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{cfg.Redis.Addr}}, nil
}

func provideFetcher(cfg *config.Config, client *openmeteo.Client, store seriescache.Store, logger *slog.Logger) airquality.Fetcher {
	if cfg.AirQuality.CacheTTL <= 0 {
		logger.Info("series cache disabled")
		return client
	}
	return seriescache.NewCachingFetcher(client, store, cfg.AirQuality.CacheTTL, logger)
}

func provideRankingStore(store seriescache.Store) airquality.RankingStore {
	return seriescache.NewRankingStore(store)
}

func provideAssessmentRepository(cfg *config.Config, logger *slog.Logger) healthrisk.Repository {
	fallback := assessmentrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory assessment repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory assessment repository", "error", err)
		return fallback
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory assessment repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory assessment repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("postgres assessment repository enabled")
	return assessmentrepo.NewPostgresRepository(pool)
}

// provideChatClient returns a nil interface when insights are off so the
// service falls back to rule based insights.
func provideChatClient(cfg *config.Config, logger *slog.Logger) healthrisk.ChatClient {
	if !cfg.Health.InsightsEnabled {
		return nil
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	if err != nil {
		logger.Warn("llm insights disabled", "error", err)
		return nil
	}
	return client
}

func provideSnapshotArchive(cfg *config.Config, logger *slog.Logger) airquality.SnapshotArchive {
	if !cfg.Storage.Enabled {
		return nil
	}
	storage, err := snapshot.NewMinioStorage(
		cfg.Storage.Endpoint,
		cfg.Storage.AccessKey,
		cfg.Storage.SecretKey,
		cfg.Storage.Bucket,
		cfg.Storage.Region,
		logger,
	)
	if err != nil {
		logger.Error("snapshot storage unavailable, archiving disabled", "error", err)
		return nil
	}
	logger.Info("ranking snapshots enabled", "bucket", cfg.Storage.Bucket)
	return snapshot.NewArchive(storage, cfg.Storage.Prefix)
}

func provideScheduler(cfg *config.Config, logger *slog.Logger) *scheduler.CronScheduler {
	return scheduler.NewCronScheduler(cfg.AirQuality.RefreshTimeout, logger)
}
