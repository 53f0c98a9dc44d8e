package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/aqi-health/internal/domain/airquality"
)

const (
	defaultBaseURL  = "https://air-quality-api.open-meteo.com/v1/air-quality"
	hourlyVariables = "pm10,pm2_5,carbon_monoxide,nitrogen_dioxide,sulphur_dioxide,ozone"
	hourLayout      = "2006-01-02T15:04"
)

// Client fetches hourly pollutant forecasts from the Open-Meteo air quality API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds an API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch retrieves the hourly series for loc covering days calendar days.
func (c *Client) Fetch(ctx context.Context, loc airquality.Location, days int) (airquality.SeriesResult, error) {
	if days <= 0 {
		days = 1
	}
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', -1, 64))
	query.Set("hourly", hourlyVariables)
	query.Set("forecast_days", strconv.Itoa(days))
	query.Set("timezone", "auto")
	endpoint := c.baseURL + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return airquality.SeriesResult{}, fmt.Errorf("build air quality request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return airquality.SeriesResult{}, fmt.Errorf("air quality request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return airquality.SeriesResult{}, fmt.Errorf("air quality request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return airquality.SeriesResult{}, fmt.Errorf("decode air quality response: %w", err)
	}
	if raw.Error {
		return airquality.SeriesResult{}, fmt.Errorf("air quality api error: %s", raw.Reason)
	}

	tz := resolveLocation(raw.Timezone, raw.UTCOffsetSeconds)
	series, err := normalizeHourly(raw.Hourly, tz)
	if err != nil {
		return airquality.SeriesResult{}, err
	}
	return airquality.SeriesResult{
		Series:   series,
		Timezone: tz,
		Source:   c.baseURL,
	}, nil
}

type apiResponse struct {
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	Timezone         string     `json:"timezone"`
	UTCOffsetSeconds int        `json:"utc_offset_seconds"`
	Hourly           hourlyData `json:"hourly"`
	Error            bool       `json:"error"`
	Reason           string     `json:"reason"`
}

type hourlyData struct {
	Time            []string   `json:"time"`
	PM10            []*float64 `json:"pm10"`
	PM25            []*float64 `json:"pm2_5"`
	CarbonMonoxide  []*float64 `json:"carbon_monoxide"`
	NitrogenDioxide []*float64 `json:"nitrogen_dioxide"`
	SulphurDioxide  []*float64 `json:"sulphur_dioxide"`
	Ozone           []*float64 `json:"ozone"`
}

var errMalformedHourly = errors.New("hourly payload is malformed")

func normalizeHourly(h hourlyData, tz *time.Location) (airquality.HourlySeries, error) {
	if len(h.Time) == 0 {
		return nil, fmt.Errorf("%w: no timestamps", errMalformedHourly)
	}
	if len(h.PM25) != len(h.Time) {
		return nil, fmt.Errorf("%w: %d pm2_5 values for %d hours", errMalformedHourly, len(h.PM25), len(h.Time))
	}
	series := make(airquality.HourlySeries, 0, len(h.Time))
	for i, stamp := range h.Time {
		ts, err := time.ParseInLocation(hourLayout, stamp, tz)
		if err != nil {
			return nil, fmt.Errorf("%w: bad timestamp %q", errMalformedHourly, stamp)
		}
		series = append(series, airquality.PollutantReading{
			Time:            ts,
			PM25:            at(h.PM25, i),
			PM10:            at(h.PM10, i),
			CarbonMonoxide:  at(h.CarbonMonoxide, i),
			NitrogenDioxide: at(h.NitrogenDioxide, i),
			SulphurDioxide:  at(h.SulphurDioxide, i),
			Ozone:           at(h.Ozone, i),
		})
	}
	return series, nil
}

// at returns nil for missing or negative values.
func at(values []*float64, i int) *float64 {
	if i >= len(values) || values[i] == nil || *values[i] < 0 {
		return nil
	}
	v := *values[i]
	return &v
}

func resolveLocation(name string, offsetSeconds int) *time.Location {
	if name = strings.TrimSpace(name); name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
		return time.FixedZone(name, offsetSeconds)
	}
	return time.FixedZone("UTC", offsetSeconds)
}

var _ airquality.Fetcher = (*Client)(nil)
