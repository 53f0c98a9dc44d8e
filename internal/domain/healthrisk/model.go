package healthrisk

import "time"

// RiskLevel is the coarse tier of a composite score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// Outdoor exposure tiers.
const (
	ExposureLow      = "low"
	ExposureModerate = "moderate"
	ExposureHigh     = "high"
)

const GenderFemale = "female"

// Insight provenance.
const (
	GeneratedByLLM       = "llm"
	GeneratedByRuleBased = "rule_based"
)

// AssessmentInput carries the environmental index plus optional personal attributes.
// Only AQI is required; every other field falls back to its lowest-risk default.
type AssessmentInput struct {
	AQI                  *float64 `json:"aqi"`
	Age                  *int     `json:"age,omitempty"`
	Gender               string   `json:"gender,omitempty"`
	IsPregnant           bool     `json:"isPregnant,omitempty"`
	IsSmoker             bool     `json:"isSmoker,omitempty"`
	HasAsthma            bool     `json:"hasAsthma,omitempty"`
	HasHeartDisease      bool     `json:"hasHeartDisease,omitempty"`
	HasRespiratoryIssues bool     `json:"hasRespiratoryIssues,omitempty"`
	OutdoorExposure      string   `json:"outdoorExposure,omitempty"`
	Location             string   `json:"location,omitempty"`
}

// RiskBreakdown holds the four factor sub-scores. They always sum to the risk score.
type RiskBreakdown struct {
	Environmental    int `json:"environmental"`
	Age              int `json:"age"`
	HealthConditions int `json:"healthConditions"`
	Lifestyle        int `json:"lifestyle"`
}

// Total sums the sub-scores.
func (b RiskBreakdown) Total() int {
	return b.Environmental + b.Age + b.HealthConditions + b.Lifestyle
}

// AssessmentResult is the stable output shape of the scorer.
type AssessmentResult struct {
	RiskScore       int           `json:"riskScore"`
	RiskLevel       RiskLevel     `json:"riskLevel"`
	Breakdown       RiskBreakdown `json:"breakdown"`
	Recommendations []string      `json:"recommendations"`
}

// AssessRequest is the payload accepted by Service.Assess.
type AssessRequest struct {
	Subject string `json:"subject"`
	AssessmentInput
	PM25 *float64 `json:"pm25,omitempty"`
	PM10 *float64 `json:"pm10,omitempty"`
}

// Assessment is one persisted scoring run.
type Assessment struct {
	ID          string           `json:"id"`
	Subject     string           `json:"subject,omitempty"`
	Location    string           `json:"location,omitempty"`
	Input       AssessmentInput  `json:"input"`
	Result      AssessmentResult `json:"result"`
	PM25        *float64         `json:"pm25,omitempty"`
	PM10        *float64         `json:"pm10,omitempty"`
	AIInsights  []string         `json:"aiInsights"`
	GeneratedBy string           `json:"generatedBy"`
	AssessedAt  time.Time        `json:"assessedAt"`
}

// Config wires runtime knobs for the health risk domain.
type Config struct {
	Model        string
	Temperature  float32
	Prompt       string
	HistoryLimit int
	MaxHistory   int
}
