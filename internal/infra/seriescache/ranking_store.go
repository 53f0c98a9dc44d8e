package seriescache

import (
	"context"
	"encoding/json"

	"github.com/yanqian/aqi-health/internal/domain/airquality"
)

const latestRankingKey = "ranking:latest"

// RankingStore keeps the latest published ranking in Store without expiry.
type RankingStore struct {
	store Store
}

// NewRankingStore constructs the ranking store.
func NewRankingStore(store Store) *RankingStore {
	return &RankingStore{store: store}
}

func (r *RankingStore) SaveRanking(ctx context.Context, ranking airquality.Ranking) error {
	payload, err := json.Marshal(ranking)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, latestRankingKey, payload, 0)
}

func (r *RankingStore) LatestRanking(ctx context.Context) (airquality.Ranking, bool, error) {
	payload, ok, err := r.store.Get(ctx, latestRankingKey)
	if err != nil || !ok {
		return airquality.Ranking{}, false, err
	}
	var ranking airquality.Ranking
	if err := json.Unmarshal(payload, &ranking); err != nil {
		return airquality.Ranking{}, false, err
	}
	return ranking, true, nil
}

var _ airquality.RankingStore = (*RankingStore)(nil)
