package airquality

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/yanqian/aqi-health/pkg/errors"
	"github.com/yanqian/aqi-health/pkg/metrics"
)

// Service exposes AQI conversion, forecast aggregation and location ranking.
type Service interface {
	Convert(pm25 float64, pm10 *float64) (ConvertResponse, error)
	Forecast(ctx context.Context, req ForecastRequest) (ForecastResponse, error)
	Rank(ctx context.Context, req RankRequest) (Ranking, error)
	RankLocations(ctx context.Context, locations []Location) Ranking
}

// Fetcher loads an hourly pollutant series for one location.
type Fetcher interface {
	Fetch(ctx context.Context, loc Location, days int) (SeriesResult, error)
}

type service struct {
	cfg     Config
	fetcher Fetcher
	logger  *slog.Logger
	now     func() time.Time
}

// NewService wires up the air quality domain.
func NewService(cfg Config, fetcher Fetcher, logger *slog.Logger) Service {
	if cfg.ForecastDays <= 0 {
		cfg.ForecastDays = 5
	}
	if cfg.MaxDays < cfg.ForecastDays {
		cfg.MaxDays = cfg.ForecastDays
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 8
	}
	return &service{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger.With("component", "airquality.service"),
		now:     time.Now,
	}
}

func (s *service) Convert(pm25 float64, pm10 *float64) (ConvertResponse, error) {
	if !isConcentration(pm25) {
		return ConvertResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "pm25 must be a non-negative number", nil)
	}
	aqi := ToAQI(pm25)
	resp := ConvertResponse{PM25: pm25, AQI: aqi, Category: Classify(aqi)}
	if pm10 != nil {
		if !isConcentration(*pm10) {
			return ConvertResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "pm10 must be a non-negative number", nil)
		}
		value := *pm10
		idx := ToAQIPM10(value)
		cat := Classify(idx)
		resp.PM10, resp.PM10AQI, resp.PM10Cat = &value, &idx, &cat
	}
	return resp, nil
}

func (s *service) Forecast(ctx context.Context, req ForecastRequest) (ForecastResponse, error) {
	loc := Location{Latitude: req.Latitude, Longitude: req.Longitude}
	if err := validateCoordinates(loc); err != nil {
		return ForecastResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	days := req.Days
	if days <= 0 {
		days = s.cfg.ForecastDays
	}
	if days > s.cfg.MaxDays {
		return ForecastResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("days must be between 1 and %d", s.cfg.MaxDays), nil)
	}

	result, err := s.fetcher.Fetch(ctx, loc, days)
	if err != nil {
		return ForecastResponse{}, apperrors.Wrap(apperrors.CodeAirQualityData, "failed to fetch air quality data", err)
	}
	if len(result.Series) == 0 {
		return ForecastResponse{}, apperrors.Wrap(apperrors.CodeAirQualityData, "no hourly readings available for the location", nil)
	}
	s.logger.Info("air quality series fetched", "lat", loc.Latitude, "lon", loc.Longitude, "hours", len(result.Series))

	tz := result.Timezone
	if tz == nil {
		tz = time.Local
	}
	start := s.now().In(tz)
	return ForecastResponse{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Timezone:  tz.String(),
		Current:   currentConditions(result.Series[0]),
		Daily:     AggregateDaily(result.Series, days, start),
		Hourly:    HourlyBreakdown(result.Series, days, start),
		Source:    firstNonEmpty(result.Source, s.cfg.SourceURL),
	}, nil
}

func (s *service) Rank(ctx context.Context, req RankRequest) (Ranking, error) {
	locations := req.Locations
	if len(locations) == 0 {
		locations = s.cfg.Locations
	}
	if len(locations) == 0 {
		return Ranking{}, apperrors.Wrap(apperrors.CodeInvalidInput, "no locations to rank", nil)
	}
	for i := range locations {
		if strings.TrimSpace(locations[i].Name) == "" {
			return Ranking{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("locations[%d].name cannot be empty", i), nil)
		}
		if err := validateCoordinates(locations[i]); err != nil {
			return Ranking{}, apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("locations[%d]: %v", i, err), nil)
		}
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.RankingLimit
	}
	return s.RankLocations(ctx, locations).Trim(limit), nil
}

// RankLocations runs one fetch pipeline per location in parallel. Failed pipelines are
// dropped from the result; they never cancel their siblings.
func (s *service) RankLocations(ctx context.Context, locations []Location) Ranking {
	started := s.now()
	results := make([]*CityAQISample, len(locations))

	var g errgroup.Group
	g.SetLimit(s.cfg.MaxConcurrency)
	for i, loc := range locations {
		g.Go(func() error {
			sample, err := s.samplePipeline(ctx, loc)
			if err != nil {
				s.logger.Warn("location dropped from ranking", "location", loc.Name, "error", err)
				return nil
			}
			results[i] = &sample
			return nil
		})
	}
	_ = g.Wait()

	samples := make([]CityAQISample, 0, len(results))
	for _, r := range results {
		if r != nil {
			samples = append(samples, *r)
		}
	}
	best, worst := RankSamples(samples)
	stats := metrics.FetchStats{
		Requested: len(locations),
		Succeeded: len(samples),
		Failed:    len(locations) - len(samples),
		ElapsedMs: s.now().Sub(started).Milliseconds(),
	}
	s.logger.Info("ranking computed", "requested", stats.Requested, "succeeded", stats.Succeeded, "failed", stats.Failed)
	return Ranking{Best: best, Worst: worst, GeneratedAt: started.UTC(), Stats: stats}
}

func (s *service) samplePipeline(ctx context.Context, loc Location) (CityAQISample, error) {
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}
	result, err := s.fetcher.Fetch(ctx, loc, 1)
	if err != nil {
		return CityAQISample{}, err
	}
	now := s.now()
	if result.Timezone != nil {
		now = now.In(result.Timezone)
	}
	return sampleFor(loc, result.Series, now)
}

func currentConditions(r PollutantReading) CurrentConditions {
	pm25 := valueOrZero(r.PM25)
	aqi := ToAQI(pm25)
	return CurrentConditions{
		AQI:             aqi,
		Category:        Classify(aqi),
		PM25:            pm25,
		PM10:            valueOrZero(r.PM10),
		CarbonMonoxide:  valueOrZero(r.CarbonMonoxide),
		NitrogenDioxide: valueOrZero(r.NitrogenDioxide),
		SulphurDioxide:  valueOrZero(r.SulphurDioxide),
		Ozone:           valueOrZero(r.Ozone),
	}
}

func validateCoordinates(loc Location) error {
	if !isFinite(loc.Latitude) || loc.Latitude < -90 || loc.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range", loc.Latitude)
	}
	if !isFinite(loc.Longitude) || loc.Longitude < -180 || loc.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range", loc.Longitude)
	}
	return nil
}

func isConcentration(v float64) bool {
	return isFinite(v) && v >= 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
