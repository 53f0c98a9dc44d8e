package airquality

import (
	"errors"
	"sort"
	"time"
)

var errNoPM25 = errors.New("series has no pm2.5 readings")

// sampleFor reduces one location's series to its ranked sample using the first day.
func sampleFor(loc Location, series HourlySeries, now time.Time) (CityAQISample, error) {
	daily := AggregateDaily(series, 1, now)
	if len(daily) == 0 {
		return CityAQISample{}, errNoPM25
	}
	day := daily[0]
	return CityAQISample{
		Name:      loc.Name,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		AQI:       day.AQI,
		PM25:      day.PM25,
		Category:  day.Category,
	}, nil
}

// RankSamples sorts samples by AQI ascending. Worst is the exact reverse of Best,
// so ties keep one consistent total order across both views.
func RankSamples(samples []CityAQISample) (best, worst []CityAQISample) {
	best = make([]CityAQISample, len(samples))
	copy(best, samples)
	sort.SliceStable(best, func(i, j int) bool {
		return best[i].AQI < best[j].AQI
	})
	worst = make([]CityAQISample, len(best))
	for i, sample := range best {
		worst[len(best)-1-i] = sample
	}
	return best, worst
}

// Trim keeps the first limit entries of both views. A non-positive limit keeps all.
func (r Ranking) Trim(limit int) Ranking {
	if limit <= 0 {
		return r
	}
	if len(r.Best) > limit {
		r.Best = r.Best[:limit]
	}
	if len(r.Worst) > limit {
		r.Worst = r.Worst[:limit]
	}
	return r
}
