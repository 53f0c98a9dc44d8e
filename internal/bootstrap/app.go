package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/aqi-health/internal/domain/airquality"
	"github.com/yanqian/aqi-health/internal/infra/config"
	"github.com/yanqian/aqi-health/internal/infra/scheduler"
)

const rankingRefreshJob = "ranking-refresh"

// App encapsulates the HTTP server and background refresh lifecycle.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *http.Server
	scheduler *scheduler.CronScheduler
	refresh   *airquality.RefreshJob
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, sched *scheduler.CronScheduler, refresh *airquality.RefreshJob) *App {
	return &App{
		cfg:       cfg,
		logger:    logger.With("component", "bootstrap"),
		server:    server,
		scheduler: sched,
		refresh:   refresh,
	}
}

// Run starts the HTTP server and the ranking refresh, then blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	if err := a.startRefresh(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		return a.shutdown()
	case err := <-errCh:
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.scheduler.Stop(stopCtx)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) startRefresh(ctx context.Context) error {
	spec := a.cfg.AirQuality.RefreshSpec
	if spec != "" {
		if err := a.scheduler.Schedule(rankingRefreshJob, spec, a.refresh.Run); err != nil {
			return err
		}
	}
	a.scheduler.Start()

	if a.cfg.AirQuality.RefreshOnStart {
		go func() {
			if err := a.scheduler.RunNow(ctx, rankingRefreshJob, a.refresh.Run); err != nil {
				a.logger.Warn("initial ranking refresh failed", "error", err)
			}
		}()
	}
	return nil
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.scheduler.Stop(shutdownCtx)
	return a.server.Shutdown(shutdownCtx)
}
