package airquality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func hourlySeries(hours int, value func(i int) *float64) HourlySeries {
	base := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	out := make(HourlySeries, hours)
	for i := range out {
		out[i] = PollutantReading{Time: base.Add(time.Duration(i) * time.Hour), PM25: value(i)}
	}
	return out
}

func ptr(v float64) *float64 { return &v }

func TestAggregateDailyFiveDays(t *testing.T) {
	series := hourlySeries(120, func(i int) *float64 { return ptr(float64(i/24) * 10) })
	start := time.Date(2024, 7, 30, 9, 0, 0, 0, time.UTC)

	daily := AggregateDaily(series, 5, start)
	require.Len(t, daily, 5)
	require.Equal(t, []string{"2024-07-30", "2024-07-31", "2024-08-01", "2024-08-02", "2024-08-03"},
		[]string{daily[0].Date, daily[1].Date, daily[2].Date, daily[3].Date, daily[4].Date})
	for i := 1; i < len(daily); i++ {
		require.Greater(t, daily[i].Date, daily[i-1].Date)
	}
	require.Equal(t, 0, daily[0].AQI)
	require.InDelta(t, 20.0, daily[2].PM25, 1e-9)
	require.Equal(t, ToAQI(20), daily[2].AQI)
	require.Equal(t, Classify(daily[2].AQI), daily[2].Category)
}

func TestAggregateDailySkipsEmptyDay(t *testing.T) {
	series := hourlySeries(72, func(i int) *float64 {
		if i >= 24 && i < 48 {
			return nil
		}
		return ptr(8)
	})
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	daily := AggregateDaily(series, 3, start)
	require.Len(t, daily, 2)
	require.Equal(t, "2024-07-01", daily[0].Date)
	require.Equal(t, "2024-07-03", daily[1].Date)
}

func TestAggregateDailyIgnoresNullHours(t *testing.T) {
	series := hourlySeries(24, func(i int) *float64 {
		if i%2 == 0 {
			return nil
		}
		return ptr(30)
	})
	daily := AggregateDaily(series, 1, time.Now())
	require.Len(t, daily, 1)
	require.InDelta(t, 30.0, daily[0].PM25, 1e-9)
}

func TestAggregateDailyShortSeries(t *testing.T) {
	series := hourlySeries(30, func(int) *float64 { return ptr(5) })
	daily := AggregateDaily(series, 5, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, daily, 2)
}

func TestAggregateDailyNonPositiveDays(t *testing.T) {
	series := hourlySeries(24, func(int) *float64 { return ptr(5) })
	require.Empty(t, AggregateDaily(series, 0, time.Now()))
	require.Empty(t, AggregateDaily(series, -1, time.Now()))
	require.Empty(t, AggregateDaily(nil, 3, time.Now()))
}

func TestAggregateDailyUsesStartLocation(t *testing.T) {
	manila := time.FixedZone("Asia/Manila", 8*60*60)
	// 2024-07-01 20:00 UTC is already 2024-07-02 in Manila.
	start := time.Date(2024, 7, 1, 20, 0, 0, 0, time.UTC).In(manila)
	series := hourlySeries(24, func(int) *float64 { return ptr(5) })

	daily := AggregateDaily(series, 1, start)
	require.Len(t, daily, 1)
	require.Equal(t, "2024-07-02", daily[0].Date)
}

func TestAggregateDailyIsDeterministic(t *testing.T) {
	series := hourlySeries(48, func(i int) *float64 { return ptr(float64(i)) })
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	require.Equal(t, AggregateDaily(series, 2, start), AggregateDaily(series, 2, start))
}

func TestHourlyBreakdownGroupsHoursPerDay(t *testing.T) {
	series := hourlySeries(30, func(i int) *float64 {
		if i == 3 {
			return nil
		}
		return ptr(35.5)
	})
	series[0].PM10 = ptr(60)
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	days := HourlyBreakdown(series, 3, start)
	require.Len(t, days, 2)
	require.Equal(t, "2024-07-01", days[0].Date)
	require.Equal(t, "2024-07-02", days[1].Date)
	require.Len(t, days[0].Hours, 24)
	require.Len(t, days[1].Hours, 6)

	first := days[0].Hours[0]
	require.Equal(t, series[0].Time, first.Time)
	require.Equal(t, 101, *first.AQI)
	require.Equal(t, LevelUnhealthySensitive, first.Category.Level)
	require.Equal(t, 60.0, *first.PM10)

	missing := days[0].Hours[3]
	require.Nil(t, missing.AQI)
	require.Nil(t, missing.Category)
	require.Nil(t, missing.PM25)
}

func TestHourlyBreakdownNonPositiveDays(t *testing.T) {
	require.Empty(t, HourlyBreakdown(hourlySeries(24, func(int) *float64 { return ptr(1) }), 0, time.Now()))
}
