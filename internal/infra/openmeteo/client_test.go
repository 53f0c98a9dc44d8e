package openmeteo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/aqi-health/internal/domain/airquality"
)

func TestClientFetch(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"latitude": 14.6,
			"longitude": 121.0,
			"timezone": "Etc/GMT-8",
			"utc_offset_seconds": 28800,
			"hourly": {
				"time": ["2024-07-01T00:00", "2024-07-01T01:00", "2024-07-01T02:00"],
				"pm2_5": [10.5, null, 12.0],
				"pm10": [20.1, 21.0, -1],
				"carbon_monoxide": [150, 160, 170],
				"nitrogen_dioxide": [5, 6, 7],
				"sulphur_dioxide": [1, 2, 3],
				"ozone": [40, 41]
			}
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	res, err := client.Fetch(context.Background(), airquality.Location{Name: "Manila", Latitude: 14.5995, Longitude: 120.9842}, 5)
	require.NoError(t, err)

	require.Equal(t, []string{"14.5995"}, gotQuery["latitude"])
	require.Equal(t, []string{"120.9842"}, gotQuery["longitude"])
	require.Equal(t, []string{"5"}, gotQuery["forecast_days"])
	require.Equal(t, []string{"auto"}, gotQuery["timezone"])
	require.Equal(t, []string{hourlyVariables}, gotQuery["hourly"])

	require.Len(t, res.Series, 3)
	require.Equal(t, 10.5, *res.Series[0].PM25)
	require.Nil(t, res.Series[1].PM25)
	require.Nil(t, res.Series[2].PM10)
	require.Nil(t, res.Series[2].Ozone)
	require.Equal(t, srv.URL, res.Source)

	_, offset := res.Series[0].Time.Zone()
	require.Equal(t, 8*60*60, offset)
	require.Equal(t, 0, res.Series[0].Time.Hour())
}

func TestClientFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Latitude must be in range of -90 to 90°."}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Fetch(context.Background(), airquality.Location{Latitude: 99}, 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=400")
}

func TestNormalizeHourlyRejectsMismatchedLengths(t *testing.T) {
	v := 1.0
	_, err := normalizeHourly(hourlyData{Time: []string{"2024-07-01T00:00", "2024-07-01T01:00"}, PM25: []*float64{&v}}, time.UTC)
	require.ErrorIs(t, err, errMalformedHourly)

	_, err = normalizeHourly(hourlyData{}, time.UTC)
	require.ErrorIs(t, err, errMalformedHourly)

	_, err = normalizeHourly(hourlyData{Time: []string{"yesterday"}, PM25: []*float64{&v}}, time.UTC)
	require.ErrorIs(t, err, errMalformedHourly)
}

func TestResolveLocationFallsBackToOffset(t *testing.T) {
	loc := resolveLocation("Not/AZone", 3600)
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	require.Equal(t, 3600, offset)
	require.Equal(t, "Not/AZone", loc.String())
}
