package healthrisk

import (
	"sort"

	"github.com/yanqian/aqi-health/internal/domain/airquality"
)

var levelAdvice = map[RiskLevel][]string{
	RiskVeryHigh: {
		"Avoid all outdoor activities. Stay indoors with air purifiers running.",
		"Seek immediate medical attention if experiencing breathing difficulties.",
	},
	RiskHigh: {
		"Limit outdoor activities to essential tasks only.",
		"Wear N95 masks when going outside.",
	},
	RiskModerate: {
		"Reduce prolonged outdoor activities.",
		"Consider wearing masks during outdoor exercise.",
	},
	RiskLow: {
		"Normal outdoor activities are generally safe.",
	},
}

var airAdvice = map[airquality.Level]string{
	airquality.LevelModerate:           "Unusually sensitive people should watch for coughing or shortness of breath outdoors.",
	airquality.LevelUnhealthySensitive: "Air quality is unhealthy for sensitive groups; take breaks indoors during outdoor activity.",
	airquality.LevelUnhealthy:          "Keep windows closed and run an air purifier indoors when possible.",
	airquality.LevelVeryUnhealthy:      "Keep windows closed, run an air purifier and postpone outdoor exercise.",
	airquality.LevelHazardous:          "Air quality is hazardous; remain indoors and follow local health advisories.",
}

type factor struct {
	share  float64
	advice []string
}

// recommend orders advice from most to least urgent: the tier advice first, then one
// group per factor, the factor carrying the largest share of its ceiling first.
func recommend(level RiskLevel, air airquality.Category, b RiskBreakdown, input AssessmentInput) []string {
	out := append([]string(nil), levelAdvice[level]...)

	// Slice order breaks ties between equal shares.
	factors := []factor{
		{share: ratio(b.Environmental, maxEnvironmental), advice: environmentalAdvice(air)},
		{share: ratio(b.HealthConditions, maxHealthConditions), advice: conditionAdvice(input)},
		{share: ratio(b.Age, maxAge), advice: ageAdvice(input.Age)},
		{share: ratio(b.Lifestyle, maxLifestyle), advice: lifestyleAdvice(input)},
	}
	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].share > factors[j].share
	})
	for _, f := range factors {
		out = append(out, f.advice...)
	}
	return out
}

func ratio(v, ceiling int) float64 {
	return float64(v) / float64(ceiling)
}

func environmentalAdvice(air airquality.Category) []string {
	if msg, ok := airAdvice[air.Level]; ok {
		return []string{msg}
	}
	return nil
}

func conditionAdvice(input AssessmentInput) []string {
	var out []string
	if input.HasAsthma {
		out = append(out, "Keep your inhaler readily available and follow your asthma action plan.")
	}
	if input.HasHeartDisease {
		out = append(out, "Monitor your symptoms closely and contact your doctor if you experience chest pain or unusual fatigue.")
	}
	if input.HasRespiratoryIssues {
		out = append(out, "Keep prescribed respiratory medication on hand and avoid areas with heavy traffic.")
	}
	if isPregnant(input) {
		out = append(out, "Consult with your healthcare provider about air quality precautions during pregnancy.")
	}
	return out
}

func ageAdvice(age *int) []string {
	if age == nil || *age < 0 || *age > 120 {
		return nil
	}
	switch {
	case *age >= 65:
		return []string{"Seniors should be extra cautious during poor air quality days."}
	case *age <= 11:
		return []string{"Children should limit outdoor play during poor air quality periods."}
	default:
		return nil
	}
}

func lifestyleAdvice(input AssessmentInput) []string {
	var out []string
	if input.IsSmoker {
		out = append(out, "Consider quitting smoking to reduce additional respiratory risks.")
	}
	switch normalizeExposure(input.OutdoorExposure) {
	case ExposureHigh:
		out = append(out, "Plan outdoor work for hours with better air quality and wear a well-fitted mask.")
	case ExposureModerate:
		out = append(out, "Check the forecast before spending extended time outdoors.")
	}
	return out
}
