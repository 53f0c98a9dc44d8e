package airquality

import "math"

// MaxAQI is the saturating ceiling of the index.
const MaxAQI = 500

type breakpoint struct {
	cLo, cHi float64
	iLo, iHi int
}

// US EPA PM2.5 table (µg/m³, 24h).
var pm25Breakpoints = []breakpoint{
	{0.0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 500.4, 301, 500},
}

// US EPA PM10 table (µg/m³, 24h).
var pm10Breakpoints = []breakpoint{
	{0, 54, 0, 50},
	{55, 154, 51, 100},
	{155, 254, 101, 150},
	{255, 354, 151, 200},
	{355, 424, 201, 300},
	{425, 504, 301, 400},
	{505, 604, 401, 500},
}

// ToAQI converts a PM2.5 concentration into the 0..500 index.
// Negative and NaN inputs yield 0; anything above the table yields MaxAQI.
func ToAQI(concentration float64) int {
	return interpolate(concentration, pm25Breakpoints)
}

// ToAQIPM10 converts a PM10 concentration into the 0..500 index.
func ToAQIPM10(concentration float64) int {
	return interpolate(concentration, pm10Breakpoints)
}

// interpolate picks the first range whose upper bound covers c. Values that fall in
// the gap between two ranges use the upper range and round to its lower index.
func interpolate(c float64, table []breakpoint) int {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	for _, bp := range table {
		if c > bp.cHi {
			continue
		}
		slope := float64(bp.iHi-bp.iLo) / (bp.cHi - bp.cLo)
		return int(math.Round(slope*(c-bp.cLo) + float64(bp.iLo)))
	}
	return MaxAQI
}
