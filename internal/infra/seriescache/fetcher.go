package seriescache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/yanqian/aqi-health/internal/domain/airquality"
)

// CachingFetcher serves hourly series from Store and falls through to next on a miss.
type CachingFetcher struct {
	next   airquality.Fetcher
	store  Store
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

// NewCachingFetcher wraps next with a read-through cache.
func NewCachingFetcher(next airquality.Fetcher, store Store, ttl time.Duration, logger *slog.Logger) *CachingFetcher {
	return &CachingFetcher{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger.With("component", "seriescache.fetcher"),
		now:    time.Now,
	}
}

type cachedSeries struct {
	Series        airquality.HourlySeries `json:"series"`
	Timezone      string                  `json:"timezone"`
	OffsetSeconds int                     `json:"offsetSeconds"`
	Source        string                  `json:"source"`
}

// Fetch implements airquality.Fetcher. Cache failures never fail the fetch.
func (f *CachingFetcher) Fetch(ctx context.Context, loc airquality.Location, days int) (airquality.SeriesResult, error) {
	key := seriesKey(loc, days)
	if payload, ok, err := f.store.Get(ctx, key); err != nil {
		f.logger.Warn("series cache read failed", "key", key, "error", err)
	} else if ok {
		res, err := decodeSeries(payload)
		switch {
		case err != nil:
			f.logger.Warn("series cache entry corrupt", "key", key)
		case !f.startsToday(res):
			f.logger.Debug("series cache entry from a previous local day", "key", key)
		default:
			return res, nil
		}
	}

	res, err := f.next.Fetch(ctx, loc, days)
	if err != nil {
		return airquality.SeriesResult{}, err
	}
	if payload, err := encodeSeries(res); err == nil {
		if err := f.store.Set(ctx, key, payload, f.ttl); err != nil {
			f.logger.Warn("series cache write failed", "key", key, "error", err)
		}
	}
	return res, nil
}

// startsToday reports whether the cached series still begins on the location's
// current calendar day. Day windows are anchored at hour zero.
func (f *CachingFetcher) startsToday(res airquality.SeriesResult) bool {
	if len(res.Series) == 0 || res.Timezone == nil {
		return true
	}
	y1, m1, d1 := res.Series[0].Time.In(res.Timezone).Date()
	y2, m2, d2 := f.now().In(res.Timezone).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func seriesKey(loc airquality.Location, days int) string {
	return fmt.Sprintf("series:%.4f:%.4f:%d", loc.Latitude, loc.Longitude, days)
}

func encodeSeries(res airquality.SeriesResult) ([]byte, error) {
	wire := cachedSeries{Series: res.Series, Source: res.Source}
	if res.Timezone != nil {
		wire.Timezone = res.Timezone.String()
		if len(res.Series) > 0 {
			_, wire.OffsetSeconds = res.Series[0].Time.In(res.Timezone).Zone()
		}
	}
	return json.Marshal(wire)
}

func decodeSeries(payload []byte) (airquality.SeriesResult, error) {
	var wire cachedSeries
	if err := json.Unmarshal(payload, &wire); err != nil {
		return airquality.SeriesResult{}, err
	}
	res := airquality.SeriesResult{Series: wire.Series, Source: wire.Source}
	if wire.Timezone != "" {
		if loc, err := time.LoadLocation(wire.Timezone); err == nil {
			res.Timezone = loc
		} else {
			res.Timezone = time.FixedZone(wire.Timezone, wire.OffsetSeconds)
		}
	}
	return res, nil
}

var _ airquality.Fetcher = (*CachingFetcher)(nil)
