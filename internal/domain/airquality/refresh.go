package airquality

import (
	"context"
	"fmt"
	"log/slog"
)

// RankingStore keeps the most recent ranking of the configured locations.
type RankingStore interface {
	SaveRanking(ctx context.Context, ranking Ranking) error
	LatestRanking(ctx context.Context) (Ranking, bool, error)
}

// SnapshotArchive persists point-in-time copies of a ranking.
type SnapshotArchive interface {
	Archive(ctx context.Context, ranking Ranking) (string, error)
}

// RefreshJob recomputes the configured ranking and publishes it.
type RefreshJob struct {
	svc     Service
	store   RankingStore
	archive SnapshotArchive
	cfg     Config
	logger  *slog.Logger
}

// NewRefreshJob builds the scheduled ranking refresh. archive may be nil.
func NewRefreshJob(cfg Config, svc Service, store RankingStore, archive SnapshotArchive, logger *slog.Logger) *RefreshJob {
	return &RefreshJob{
		svc:     svc,
		store:   store,
		archive: archive,
		cfg:     cfg,
		logger:  logger.With("component", "airquality.refresh"),
	}
}

// Run executes one refresh. The stored ranking is only replaced when at least one
// location succeeded.
func (j *RefreshJob) Run(ctx context.Context) error {
	if len(j.cfg.Locations) == 0 {
		j.logger.Info("ranking refresh skipped, no locations configured")
		return nil
	}
	ranking := j.svc.RankLocations(ctx, j.cfg.Locations)
	if len(ranking.Best) == 0 {
		return fmt.Errorf("ranking refresh: all %d locations failed", ranking.Stats.Requested)
	}
	if err := j.store.SaveRanking(ctx, ranking); err != nil {
		return fmt.Errorf("save ranking: %w", err)
	}
	if j.archive != nil {
		key, err := j.archive.Archive(ctx, ranking)
		if err != nil {
			// the cached ranking is already live; archiving is best effort
			j.logger.Warn("ranking snapshot archive failed", "error", err)
		} else {
			j.logger.Info("ranking snapshot archived", "key", key)
		}
	}
	j.logger.Info("ranking refreshed", "locations", len(ranking.Best), "failed", ranking.Stats.Failed)
	return nil
}

// Latest returns the last published ranking trimmed to limit.
func (j *RefreshJob) Latest(ctx context.Context, limit int) (Ranking, bool, error) {
	ranking, ok, err := j.store.LatestRanking(ctx)
	if err != nil || !ok {
		return Ranking{}, ok, err
	}
	if limit <= 0 {
		limit = j.cfg.RankingLimit
	}
	return ranking.Trim(limit), true, nil
}
