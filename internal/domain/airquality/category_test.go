package airquality

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyBands(t *testing.T) {
	cases := map[int]Level{
		-10: LevelGood,
		0:   LevelGood,
		50:  LevelGood,
		51:  LevelModerate,
		100: LevelModerate,
		101: LevelUnhealthySensitive,
		150: LevelUnhealthySensitive,
		151: LevelUnhealthy,
		200: LevelUnhealthy,
		201: LevelVeryUnhealthy,
		300: LevelVeryUnhealthy,
		301: LevelHazardous,
		500: LevelHazardous,
		999: LevelHazardous,
	}
	for aqi, want := range cases {
		require.Equal(t, want, Classify(aqi).Level, "aqi %d", aqi)
	}
}

func TestClassifyIsTotalAndOrdered(t *testing.T) {
	prev := LevelGood
	for aqi := 0; aqi <= MaxAQI; aqi++ {
		cat := Classify(aqi)
		require.NotEmpty(t, cat.Label)
		require.NotEmpty(t, cat.Color)
		require.GreaterOrEqual(t, int(cat.Level), int(prev))
		prev = cat.Level
	}
}

func TestLevelString(t *testing.T) {
	require.Equal(t, "Good", LevelGood.String())
	require.Equal(t, "Unhealthy for Sensitive Groups", LevelUnhealthySensitive.String())
	require.Equal(t, "Hazardous", LevelHazardous.String())
}
