package healthrisk

import (
	"fmt"

	"github.com/yanqian/aqi-health/internal/domain/airquality"
)

// ruleBasedInsights explains the breakdown without a language model.
func ruleBasedInsights(a Assessment) []string {
	r := a.Result
	b := r.Breakdown
	out := []string{
		fmt.Sprintf("Your overall risk score is %d out of 100 (%s).", r.RiskScore, r.RiskLevel),
	}

	dominant, share := "air quality", ratio(b.Environmental, maxEnvironmental)
	for _, f := range []struct {
		name  string
		share float64
	}{
		{"existing health conditions", ratio(b.HealthConditions, maxHealthConditions)},
		{"age", ratio(b.Age, maxAge)},
		{"lifestyle and outdoor exposure", ratio(b.Lifestyle, maxLifestyle)},
	} {
		if f.share > share {
			dominant, share = f.name, f.share
		}
	}
	out = append(out, fmt.Sprintf("The largest contributor relative to its weight is %s.", dominant))

	if a.PM25 != nil {
		aqi := airquality.ToAQI(*a.PM25)
		out = append(out, fmt.Sprintf("PM2.5 at %.1f µg/m³ corresponds to an AQI of %d (%s).", *a.PM25, aqi, airquality.Classify(aqi).Label))
	}
	if a.PM10 != nil {
		aqi := airquality.ToAQIPM10(*a.PM10)
		out = append(out, fmt.Sprintf("PM10 at %.1f µg/m³ corresponds to an AQI of %d (%s).", *a.PM10, aqi, airquality.Classify(aqi).Label))
	}
	return out
}
