package airquality

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/aqi-health/pkg/errors"
)

func TestRankLocationsDropsFailures(t *testing.T) {
	fetcher := &stubFetcher{
		series: map[string]HourlySeries{
			"Makati": constantSeries(24, 40),
			"Pasig":  constantSeries(24, 8),
		},
		errs: map[string]error{"Navotas": errors.New("upstream timeout")},
	}
	svc := newTestService(fetcher, Config{})

	ranking := svc.RankLocations(context.Background(), []Location{
		{Name: "Makati", Latitude: 14.5547, Longitude: 121.0244},
		{Name: "Navotas", Latitude: 14.6691, Longitude: 120.9469},
		{Name: "Pasig", Latitude: 14.5764, Longitude: 121.0851},
	})

	require.Len(t, ranking.Best, 2)
	require.Equal(t, "Pasig", ranking.Best[0].Name)
	require.Equal(t, "Makati", ranking.Best[1].Name)
	require.Equal(t, []CityAQISample{ranking.Best[1], ranking.Best[0]}, ranking.Worst)
	require.Equal(t, 3, ranking.Stats.Requested)
	require.Equal(t, 2, ranking.Stats.Succeeded)
	require.Equal(t, 1, ranking.Stats.Failed)
	require.Equal(t, 3, fetcher.callCount())
}

func TestRankLocationsDropsSeriesWithoutPM25(t *testing.T) {
	fetcher := &stubFetcher{series: map[string]HourlySeries{
		"Empty": make(HourlySeries, 24),
		"Ok":    constantSeries(24, 12),
	}}
	svc := newTestService(fetcher, Config{})

	ranking := svc.RankLocations(context.Background(), []Location{{Name: "Empty"}, {Name: "Ok"}})
	require.Len(t, ranking.Best, 1)
	require.Equal(t, "Ok", ranking.Best[0].Name)
	require.Equal(t, 50, ranking.Best[0].AQI)
}

func TestRankLocationsAllFail(t *testing.T) {
	fetcher := &stubFetcher{errs: map[string]error{"A": errors.New("boom"), "B": errors.New("boom")}}
	svc := newTestService(fetcher, Config{})

	ranking := svc.RankLocations(context.Background(), []Location{{Name: "A"}, {Name: "B"}})
	require.Empty(t, ranking.Best)
	require.Empty(t, ranking.Worst)
	require.Equal(t, 2, ranking.Stats.Failed)
}

func TestRankLocationsAppliesFetchTimeout(t *testing.T) {
	fetcher := &stubFetcher{
		series: map[string]HourlySeries{"Fast": constantSeries(24, 5)},
		block:  map[string]bool{"Slow": true},
	}
	svc := newTestService(fetcher, Config{FetchTimeout: 20 * time.Millisecond})

	ranking := svc.RankLocations(context.Background(), []Location{{Name: "Slow"}, {Name: "Fast"}})
	require.Len(t, ranking.Best, 1)
	require.Equal(t, "Fast", ranking.Best[0].Name)
}

func TestRankUsesConfiguredLocationsAndLimit(t *testing.T) {
	fetcher := &stubFetcher{series: map[string]HourlySeries{
		"A": constantSeries(24, 5),
		"B": constantSeries(24, 20),
		"C": constantSeries(24, 60),
	}}
	svc := newTestService(fetcher, Config{
		Locations:    []Location{{Name: "A"}, {Name: "B"}, {Name: "C"}},
		RankingLimit: 2,
	})

	ranking, err := svc.Rank(context.Background(), RankRequest{})
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B"}, names(ranking.Best))
	require.Equal(t, []string{"C", "B"}, names(ranking.Worst))

	ranking, err = svc.Rank(context.Background(), RankRequest{Limit: 1})
	require.NoError(t, err)
	require.Equal(t, []string{"A"}, names(ranking.Best))
	require.Equal(t, []string{"C"}, names(ranking.Worst))
}

func TestRankRejectsInvalidLocations(t *testing.T) {
	svc := newTestService(&stubFetcher{}, Config{})

	_, err := svc.Rank(context.Background(), RankRequest{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Rank(context.Background(), RankRequest{Locations: []Location{{Name: "X", Latitude: 91}}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Rank(context.Background(), RankRequest{Locations: []Location{{Name: " "}}})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestForecastBuildsDailySummaries(t *testing.T) {
	manila := time.FixedZone("Asia/Manila", 8*60*60)
	series := constantSeries(120, 10)
	series[0].PM10 = ptr(22)
	series[0].Ozone = ptr(61)
	fetcher := &stubFetcher{
		series:   map[string]HourlySeries{"": series},
		timezone: manila,
		source:   "https://air-quality-api.open-meteo.com/v1/air-quality",
	}
	svc := newTestService(fetcher, Config{ForecastDays: 5})
	svc.now = func() time.Time { return time.Date(2024, 7, 1, 18, 0, 0, 0, time.UTC) }

	resp, err := svc.Forecast(context.Background(), ForecastRequest{Latitude: 14.5995, Longitude: 120.9842})
	require.NoError(t, err)
	require.Equal(t, "Asia/Manila", resp.Timezone)
	require.Equal(t, ToAQI(10), resp.Current.AQI)
	require.Equal(t, 22.0, resp.Current.PM10)
	require.Equal(t, 61.0, resp.Current.Ozone)
	require.Zero(t, resp.Current.CarbonMonoxide)
	require.Len(t, resp.Daily, 5)
	require.Equal(t, "2024-07-02", resp.Daily[0].Date)
	require.Len(t, resp.Hourly, 5)
	require.Equal(t, "2024-07-02", resp.Hourly[0].Date)
	require.Len(t, resp.Hourly[0].Hours, 24)
	require.Equal(t, ToAQI(10), *resp.Hourly[0].Hours[0].AQI)
	require.Equal(t, 61.0, *resp.Hourly[0].Hours[0].Ozone)
	require.Equal(t, fetcher.source, resp.Source)
	require.Equal(t, 5, fetcher.lastDays)
}

func TestForecastValidation(t *testing.T) {
	svc := newTestService(&stubFetcher{}, Config{ForecastDays: 5, MaxDays: 7})

	_, err := svc.Forecast(context.Background(), ForecastRequest{Latitude: 100})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Forecast(context.Background(), ForecastRequest{Days: 8})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestForecastUpstreamFailure(t *testing.T) {
	svc := newTestService(&stubFetcher{errs: map[string]error{"": errors.New("503")}}, Config{})
	_, err := svc.Forecast(context.Background(), ForecastRequest{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeAirQualityData))

	svc = newTestService(&stubFetcher{series: map[string]HourlySeries{"": {}}}, Config{})
	_, err = svc.Forecast(context.Background(), ForecastRequest{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeAirQualityData))
}

func TestConvert(t *testing.T) {
	svc := newTestService(&stubFetcher{}, Config{})

	resp, err := svc.Convert(35.4, nil)
	require.NoError(t, err)
	require.Equal(t, 100, resp.AQI)
	require.Equal(t, LevelModerate, resp.Category.Level)
	require.Nil(t, resp.PM10AQI)

	pm10 := 155.0
	resp, err = svc.Convert(12.0, &pm10)
	require.NoError(t, err)
	require.Equal(t, 50, resp.AQI)
	require.NotNil(t, resp.PM10AQI)
	require.Equal(t, 101, *resp.PM10AQI)
	require.Equal(t, LevelUnhealthySensitive, resp.PM10Cat.Level)

	_, err = svc.Convert(-1, nil)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func newTestService(fetcher Fetcher, cfg Config) *service {
	return NewService(cfg, fetcher, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
}

func constantSeries(hours int, pm25 float64) HourlySeries {
	return hourlySeries(hours, func(int) *float64 { return ptr(pm25) })
}

func names(samples []CityAQISample) []string {
	out := make([]string, 0, len(samples))
	for _, s := range samples {
		out = append(out, s.Name)
	}
	return out
}

type stubFetcher struct {
	mu       sync.Mutex
	series   map[string]HourlySeries
	errs     map[string]error
	block    map[string]bool
	timezone *time.Location
	source   string
	calls    int
	lastDays int
}

func (s *stubFetcher) Fetch(ctx context.Context, loc Location, days int) (SeriesResult, error) {
	s.mu.Lock()
	s.calls++
	s.lastDays = days
	s.mu.Unlock()

	if s.block[loc.Name] {
		<-ctx.Done()
		return SeriesResult{}, ctx.Err()
	}
	if err := s.errs[loc.Name]; err != nil {
		return SeriesResult{}, err
	}
	return SeriesResult{Series: s.series[loc.Name], Timezone: s.timezone, Source: s.source}, nil
}

func (s *stubFetcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
