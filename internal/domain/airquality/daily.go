package airquality

import "time"

const (
	hoursPerDay = 24
	dateLayout  = "2006-01-02"
)

// AggregateDaily averages the PM2.5 component of series per 24 hour window.
// Days without a single reading are skipped; aggregation stops once the series runs out.
// Dates are start's calendar day plus d, evaluated in start's location.
func AggregateDaily(series HourlySeries, days int, start time.Time) []DailyAQI {
	if days <= 0 {
		return []DailyAQI{}
	}
	out := make([]DailyAQI, 0, days)
	year, month, day := start.Date()
	for d := 0; d < days; d++ {
		from := d * hoursPerDay
		if from >= len(series) {
			break
		}
		to := min(from+hoursPerDay, len(series))

		mean, ok := meanPM25(series[from:to])
		if !ok {
			continue
		}
		aqi := ToAQI(mean)
		out = append(out, DailyAQI{
			Date:     time.Date(year, month, day+d, 0, 0, 0, 0, start.Location()).Format(dateLayout),
			AQI:      aqi,
			PM25:     mean,
			Category: Classify(aqi),
		})
	}
	return out
}

func meanPM25(window HourlySeries) (float64, bool) {
	var (
		sum   float64
		count int
	)
	for _, reading := range window {
		if reading.PM25 == nil {
			continue
		}
		sum += *reading.PM25
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// HourlyBreakdown splits series into the same 24 hour windows as AggregateDaily and
// converts every hour on its own. Days are kept even when they hold no PM2.5 reading.
func HourlyBreakdown(series HourlySeries, days int, start time.Time) []HourlyDay {
	if days <= 0 {
		return []HourlyDay{}
	}
	out := make([]HourlyDay, 0, days)
	year, month, day := start.Date()
	for d := 0; d < days; d++ {
		from := d * hoursPerDay
		if from >= len(series) {
			break
		}
		to := min(from+hoursPerDay, len(series))
		hours := make([]HourlyAQI, 0, to-from)
		for _, reading := range series[from:to] {
			hours = append(hours, hourlyAQI(reading))
		}
		out = append(out, HourlyDay{
			Date:  time.Date(year, month, day+d, 0, 0, 0, 0, start.Location()).Format(dateLayout),
			Hours: hours,
		})
	}
	return out
}

func hourlyAQI(r PollutantReading) HourlyAQI {
	h := HourlyAQI{
		Time:            r.Time,
		PM25:            r.PM25,
		PM10:            r.PM10,
		CarbonMonoxide:  r.CarbonMonoxide,
		NitrogenDioxide: r.NitrogenDioxide,
		SulphurDioxide:  r.SulphurDioxide,
		Ozone:           r.Ozone,
	}
	if r.PM25 != nil {
		aqi := ToAQI(*r.PM25)
		cat := Classify(aqi)
		h.AQI, h.Category = &aqi, &cat
	}
	return h
}
