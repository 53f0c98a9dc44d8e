package airquality

import (
	"time"

	"github.com/yanqian/aqi-health/pkg/metrics"
)

// PollutantReading is one hourly sample. A nil pointer means the upstream had no reading.
type PollutantReading struct {
	Time            time.Time `json:"time"`
	PM25            *float64  `json:"pm2_5"`
	PM10            *float64  `json:"pm10"`
	CarbonMonoxide  *float64  `json:"carbon_monoxide"`
	NitrogenDioxide *float64  `json:"nitrogen_dioxide"`
	SulphurDioxide  *float64  `json:"sulphur_dioxide"`
	Ozone           *float64  `json:"ozone"`
}

// HourlySeries is ordered by hour; index 0 is the current hour.
type HourlySeries []PollutantReading

// DailyAQI summarizes one calendar day of PM2.5 readings.
type DailyAQI struct {
	Date     string   `json:"date"`
	AQI      int      `json:"aqi"`
	PM25     float64  `json:"pm25"`
	Category Category `json:"category"`
}

// HourlyAQI is one hour of a forecast day. AQI and Category are nil when the hour
// has no PM2.5 reading.
type HourlyAQI struct {
	Time            time.Time `json:"time"`
	AQI             *int      `json:"aqi"`
	Category        *Category `json:"category,omitempty"`
	PM25            *float64  `json:"pm25"`
	PM10            *float64  `json:"pm10"`
	CarbonMonoxide  *float64  `json:"carbonMonoxide"`
	NitrogenDioxide *float64  `json:"nitrogenDioxide"`
	SulphurDioxide  *float64  `json:"sulphurDioxide"`
	Ozone           *float64  `json:"ozone"`
}

// HourlyDay groups the hours of one forecast day.
type HourlyDay struct {
	Date  string      `json:"date"`
	Hours []HourlyAQI `json:"hours"`
}

// Location identifies a place to query.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CityAQISample is one ranked location.
type CityAQISample struct {
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	AQI       int      `json:"aqi"`
	PM25      float64  `json:"pm25"`
	Category  Category `json:"category"`
}

// Ranking holds the ascending (best) and descending (worst) views of one refresh.
type Ranking struct {
	Best        []CityAQISample    `json:"best"`
	Worst       []CityAQISample    `json:"worst"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Stats       metrics.FetchStats `json:"stats"`
}

// CurrentConditions are the pollutant values of hour zero.
type CurrentConditions struct {
	AQI             int      `json:"aqi"`
	Category        Category `json:"category"`
	PM25            float64  `json:"pm25"`
	PM10            float64  `json:"pm10"`
	CarbonMonoxide  float64  `json:"carbonMonoxide"`
	NitrogenDioxide float64  `json:"nitrogenDioxide"`
	SulphurDioxide  float64  `json:"sulphurDioxide"`
	Ozone           float64  `json:"ozone"`
}

// ForecastRequest selects the coordinates and number of days to aggregate.
type ForecastRequest struct {
	Latitude  float64 `form:"lat" json:"latitude"`
	Longitude float64 `form:"lon" json:"longitude"`
	Days      int     `form:"days" json:"days"`
}

// ForecastResponse is returned to API consumers.
type ForecastResponse struct {
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Timezone  string            `json:"timezone"`
	Current   CurrentConditions `json:"current"`
	Daily     []DailyAQI        `json:"daily"`
	Hourly    []HourlyDay       `json:"hourly"`
	Source    string            `json:"source"`
}

// RankRequest ranks the given locations, or the configured defaults when empty.
type RankRequest struct {
	Locations []Location `json:"locations"`
	Limit     int        `json:"limit"`
}

// ConvertResponse carries the index for a raw concentration.
type ConvertResponse struct {
	PM25     float64   `json:"pm25"`
	AQI      int       `json:"aqi"`
	Category Category  `json:"category"`
	PM10     *float64  `json:"pm10,omitempty"`
	PM10AQI  *int      `json:"pm10Aqi,omitempty"`
	PM10Cat  *Category `json:"pm10Category,omitempty"`
}

// SeriesResult is what a Fetcher returns for one location.
type SeriesResult struct {
	Series   HourlySeries
	Timezone *time.Location
	Source   string
}

// Config wires runtime knobs for the air quality domain.
type Config struct {
	ForecastDays   int
	MaxDays        int
	FetchTimeout   time.Duration
	MaxConcurrency int
	RankingLimit   int
	Locations      []Location
	SourceURL      string
}
