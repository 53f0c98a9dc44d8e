package airquality

// Level orders the six index tiers from cleanest to worst.
type Level int

const (
	LevelGood Level = iota
	LevelModerate
	LevelUnhealthySensitive
	LevelUnhealthy
	LevelVeryUnhealthy
	LevelHazardous
)

// Category is the display classification of an index value.
type Category struct {
	Level       Level  `json:"level"`
	Label       string `json:"label"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type tier struct {
	upper    int
	category Category
}

var tiers = []tier{
	{50, Category{LevelGood, "Good", "#00E676", "Air quality is satisfactory and poses little or no risk."}},
	{100, Category{LevelModerate, "Moderate", "#FFC107", "Acceptable; unusually sensitive people may be affected."}},
	{150, Category{LevelUnhealthySensitive, "Unhealthy for Sensitive Groups", "#FF9800", "Sensitive groups may experience health effects."}},
	{200, Category{LevelUnhealthy, "Unhealthy", "#F44336", "Everyone may begin to experience health effects."}},
	{300, Category{LevelVeryUnhealthy, "Very Unhealthy", "#9C27B0", "Health alert: everyone may experience more serious effects."}},
}

var hazardous = Category{LevelHazardous, "Hazardous", "#B71C1C", "Health warning of emergency conditions."}

// Classify maps an index value onto its tier. Upper bounds are inclusive.
func Classify(aqi int) Category {
	for _, t := range tiers {
		if aqi <= t.upper {
			return t.category
		}
	}
	return hazardous
}

// String returns the tier label.
func (l Level) String() string {
	if l >= LevelHazardous {
		return hazardous.Label
	}
	if l < LevelGood {
		return tiers[0].category.Label
	}
	return tiers[l].category.Label
}
