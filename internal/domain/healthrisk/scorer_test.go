package healthrisk

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func aqi(v float64) *float64 { return &v }

func age(v int) *int { return &v }

func TestScoreRiskHazardousAirAlone(t *testing.T) {
	res, err := ScoreRisk(AssessmentInput{AQI: aqi(500)})
	require.NoError(t, err)
	require.Equal(t, RiskVeryHigh, res.RiskLevel)
	require.Equal(t, 40, res.Breakdown.Environmental)
	require.Greater(t, res.Breakdown.Environmental, res.Breakdown.Age+res.Breakdown.HealthConditions+res.Breakdown.Lifestyle)
	require.Equal(t, res.Breakdown.Total(), res.RiskScore)
}

func TestScoreRiskCleanAirAlone(t *testing.T) {
	res, err := ScoreRisk(AssessmentInput{AQI: aqi(0)})
	require.NoError(t, err)
	require.Equal(t, RiskLow, res.RiskLevel)
	require.Equal(t, RiskBreakdown{Environmental: 5, Age: 5, HealthConditions: 0, Lifestyle: 1}, res.Breakdown)
	require.Equal(t, 11, res.RiskScore)
	require.NotEmpty(t, res.Recommendations)
}

func TestScoreRiskEverythingTrue(t *testing.T) {
	res, err := ScoreRisk(AssessmentInput{
		AQI:                  aqi(450),
		Age:                  age(70),
		Gender:               "female",
		IsPregnant:           true,
		IsSmoker:             true,
		HasAsthma:            true,
		HasHeartDisease:      true,
		HasRespiratoryIssues: true,
		OutdoorExposure:      "high",
	})
	require.NoError(t, err)
	require.Equal(t, 25, res.Breakdown.HealthConditions)
	require.Equal(t, 15, res.Breakdown.Lifestyle)
	require.Equal(t, 20, res.Breakdown.Age)
	require.Equal(t, 100, res.RiskScore)
	require.Equal(t, res.Breakdown.Total(), res.RiskScore)
	require.Equal(t, RiskVeryHigh, res.RiskLevel)
}

func TestScoreRiskPregnancyRequiresFemale(t *testing.T) {
	res, err := ScoreRisk(AssessmentInput{AQI: aqi(20), Gender: "male", IsPregnant: true})
	require.NoError(t, err)
	require.Zero(t, res.Breakdown.HealthConditions)

	res, err = ScoreRisk(AssessmentInput{AQI: aqi(20), Gender: "Female", IsPregnant: true})
	require.NoError(t, err)
	require.Equal(t, 8, res.Breakdown.HealthConditions)
}

func TestScoreRiskAgeBands(t *testing.T) {
	cases := []struct {
		age  *int
		want int
	}{
		{nil, 5},
		{age(-1), 5},
		{age(121), 5},
		{age(3), 18},
		{age(9), 15},
		{age(15), 8},
		{age(30), 5},
		{age(50), 10},
		{age(80), 20},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ageScore(tc.age))
	}
	require.Greater(t, ageScore(age(10)), ageScore(age(40)))
	require.Greater(t, ageScore(age(66)), ageScore(age(64)))
}

func TestScoreRiskExposureTiers(t *testing.T) {
	low, _ := ScoreRisk(AssessmentInput{AQI: aqi(10), OutdoorExposure: "low"})
	moderate, _ := ScoreRisk(AssessmentInput{AQI: aqi(10), OutdoorExposure: "moderate"})
	high, _ := ScoreRisk(AssessmentInput{AQI: aqi(10), OutdoorExposure: "HIGH"})
	unknown, _ := ScoreRisk(AssessmentInput{AQI: aqi(10), OutdoorExposure: "sometimes"})
	require.Equal(t, 1, low.Breakdown.Lifestyle)
	require.Equal(t, 4, moderate.Breakdown.Lifestyle)
	require.Equal(t, 7, high.Breakdown.Lifestyle)
	require.Equal(t, 1, unknown.Breakdown.Lifestyle)
}

func TestScoreRiskEnvironmentalMonotonic(t *testing.T) {
	prev := 0
	for v := 0; v <= 600; v++ {
		res, err := ScoreRisk(AssessmentInput{AQI: aqi(float64(v))})
		require.NoError(t, err)
		require.GreaterOrEqual(t, res.Breakdown.Environmental, prev)
		require.LessOrEqual(t, res.Breakdown.Environmental, maxEnvironmental)
		require.Equal(t, res.Breakdown.Total(), res.RiskScore)
		prev = res.Breakdown.Environmental
	}
}

func TestScoreRiskInvalidAQI(t *testing.T) {
	for _, in := range []*float64{nil, aqi(-1), aqi(math.NaN()), aqi(math.Inf(1)), aqi(math.Inf(-1))} {
		_, err := ScoreRisk(AssessmentInput{AQI: in})
		var invalid *InvalidInputError
		require.True(t, errors.As(err, &invalid))
		require.Equal(t, "aqi", invalid.Field)
	}
}

func TestScoreRiskClampsAQI(t *testing.T) {
	over, err := ScoreRisk(AssessmentInput{AQI: aqi(900)})
	require.NoError(t, err)
	ceiling, err := ScoreRisk(AssessmentInput{AQI: aqi(500)})
	require.NoError(t, err)
	require.Equal(t, ceiling, over)
}

func TestScoreRiskLevelThresholds(t *testing.T) {
	require.Equal(t, RiskLow, levelFor(25))
	require.Equal(t, RiskModerate, levelFor(26))
	require.Equal(t, RiskModerate, levelFor(50))
	require.Equal(t, RiskHigh, levelFor(51))
	require.Equal(t, RiskHigh, levelFor(75))
	require.Equal(t, RiskVeryHigh, levelFor(76))
}

func TestRecommendationsOrderedByDominantFactor(t *testing.T) {
	res, err := ScoreRisk(AssessmentInput{
		AQI:       aqi(20),
		Age:       age(30),
		HasAsthma: true,
		IsSmoker:  true,
	})
	require.NoError(t, err)
	require.Equal(t, RiskModerate, res.RiskLevel)
	// lifestyle 9/15 outranks health conditions 8/25 and the good-air factor.
	require.Equal(t, []string{
		"Reduce prolonged outdoor activities.",
		"Consider wearing masks during outdoor exercise.",
		"Consider quitting smoking to reduce additional respiratory risks.",
		"Keep your inhaler readily available and follow your asthma action plan.",
	}, res.Recommendations)
}

func TestScoreRiskIsDeterministic(t *testing.T) {
	in := AssessmentInput{AQI: aqi(180), Age: age(8), HasHeartDisease: true, OutdoorExposure: "moderate"}
	a, err := ScoreRisk(in)
	require.NoError(t, err)
	b, err := ScoreRisk(in)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestAssessmentResultJSONFieldNames(t *testing.T) {
	res := AssessmentResult{
		RiskScore:       42,
		RiskLevel:       RiskModerate,
		Breakdown:       RiskBreakdown{Environmental: 20, Age: 10, HealthConditions: 8, Lifestyle: 4},
		Recommendations: []string{"Limit outdoor activity"},
	}
	payload, err := json.Marshal(res)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"riskScore": 42,
		"riskLevel": "moderate",
		"breakdown": {"environmental": 20, "age": 10, "healthConditions": 8, "lifestyle": 4},
		"recommendations": ["Limit outdoor activity"]
	}`, string(payload))
}
