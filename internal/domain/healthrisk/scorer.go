package healthrisk

import (
	"math"
	"strings"

	"github.com/yanqian/aqi-health/internal/domain/airquality"
)

// Factor ceilings. They sum to 100.
const (
	maxEnvironmental    = 40
	maxAge              = 20
	maxHealthConditions = 25
	maxLifestyle        = 15
	maxScore            = 100
)

// environmentalByLevel assigns one sub-score per index tier.
var environmentalByLevel = map[airquality.Level]int{
	airquality.LevelGood:               5,
	airquality.LevelModerate:           10,
	airquality.LevelUnhealthySensitive: 20,
	airquality.LevelUnhealthy:          30,
	airquality.LevelVeryUnhealthy:      35,
	airquality.LevelHazardous:          40,
}

// ScoreRisk combines the index and personal attributes into a composite risk.
//
// Level thresholds on the 0..100 score: <=25 low, <=50 moderate, <=75 high, else
// very_high. The level is then raised to at least high for Very Unhealthy air and
// very_high for Hazardous air, and to moderate for Unhealthy air, so that the
// environment alone can drive the tier regardless of missing personal data.
func ScoreRisk(input AssessmentInput) (AssessmentResult, error) {
	aqi, err := validAQI(input.AQI)
	if err != nil {
		return AssessmentResult{}, err
	}
	category := airquality.Classify(aqi)

	breakdown := RiskBreakdown{
		Environmental:    environmentalScore(category),
		Age:              ageScore(input.Age),
		HealthConditions: healthConditionsScore(input),
		Lifestyle:        lifestyleScore(input),
	}
	score := breakdown.Total()
	if score > maxScore {
		score = maxScore
	}
	level := floorForAir(levelFor(score), category.Level)

	return AssessmentResult{
		RiskScore:       score,
		RiskLevel:       level,
		Breakdown:       breakdown,
		Recommendations: recommend(level, category, breakdown, input),
	}, nil
}

func validAQI(v *float64) (int, error) {
	if v == nil {
		return 0, &InvalidInputError{Field: "aqi", Reason: "is required"}
	}
	aqi := *v
	if math.IsNaN(aqi) || math.IsInf(aqi, 0) {
		return 0, &InvalidInputError{Field: "aqi", Reason: "must be a finite number"}
	}
	if aqi < 0 {
		return 0, &InvalidInputError{Field: "aqi", Reason: "must not be negative"}
	}
	if aqi > airquality.MaxAQI {
		aqi = airquality.MaxAQI
	}
	return int(math.Round(aqi)), nil
}

func environmentalScore(category airquality.Category) int {
	return environmentalByLevel[category.Level]
}

func ageScore(age *int) int {
	if age == nil || *age < 0 || *age > 120 {
		return 5
	}
	switch a := *age; {
	case a <= 5:
		return 18
	case a <= 11:
		return 15
	case a <= 17:
		return 8
	case a <= 44:
		return 5
	case a <= 64:
		return 10
	default:
		return 20
	}
}

func isPregnant(input AssessmentInput) bool {
	return input.IsPregnant && strings.EqualFold(strings.TrimSpace(input.Gender), GenderFemale)
}

func healthConditionsScore(input AssessmentInput) int {
	score := 0
	if input.HasAsthma {
		score += 8
	}
	if input.HasHeartDisease {
		score += 10
	}
	if input.HasRespiratoryIssues {
		score += 7
	}
	if isPregnant(input) {
		score += 8
	}
	return min(score, maxHealthConditions)
}

func normalizeExposure(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case ExposureHigh:
		return ExposureHigh
	case ExposureModerate:
		return ExposureModerate
	default:
		return ExposureLow
	}
}

func lifestyleScore(input AssessmentInput) int {
	score := 0
	if input.IsSmoker {
		score += 8
	}
	switch normalizeExposure(input.OutdoorExposure) {
	case ExposureHigh:
		score += 7
	case ExposureModerate:
		score += 4
	default:
		score++
	}
	return min(score, maxLifestyle)
}

func levelFor(score int) RiskLevel {
	switch {
	case score <= 25:
		return RiskLow
	case score <= 50:
		return RiskModerate
	case score <= 75:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

var levelRank = map[RiskLevel]int{RiskLow: 0, RiskModerate: 1, RiskHigh: 2, RiskVeryHigh: 3}

func floorForAir(level RiskLevel, air airquality.Level) RiskLevel {
	var floor RiskLevel
	switch {
	case air >= airquality.LevelHazardous:
		floor = RiskVeryHigh
	case air == airquality.LevelVeryUnhealthy:
		floor = RiskHigh
	case air == airquality.LevelUnhealthy:
		floor = RiskModerate
	default:
		return level
	}
	if levelRank[floor] > levelRank[level] {
		return floor
	}
	return level
}
