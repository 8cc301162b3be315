package normalize

import "math"

// EPA PM2.5 breakpoints (24-hour average). Each row maps a concentration band
// to an AQI band; interpolation inside a band is linear.
var pm25Breakpoints = []struct {
	cLow, cHigh float64
	iLow, iHigh float64
}{
	{0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 350.4, 301, 400},
	{350.5, 500.4, 401, 500},
}

// AQIFromPM25 computes the EPA air-quality index from a raw PM2.5
// concentration in µg/m³. Values above 500.4 clamp to 500, negative or NaN
// readings yield 0 (missing data is not an error).
func AQIFromPM25(pm25 float64) int {
	if math.IsNaN(pm25) || pm25 < 0 {
		return 0
	}
	for _, bp := range pm25Breakpoints {
		if pm25 >= bp.cLow && pm25 <= bp.cHigh {
			aqi := (bp.iHigh-bp.iLow)/(bp.cHigh-bp.cLow)*(pm25-bp.cLow) + bp.iLow
			return int(math.Round(aqi))
		}
	}
	if pm25 > 500.4 {
		return 500
	}
	// Between breakpoint rows (e.g. 12.05): fall into the next band's floor.
	for _, bp := range pm25Breakpoints {
		if pm25 < bp.cLow {
			return int(bp.iLow)
		}
	}
	return 0
}

// AQICategory returns the EPA descriptor for a 0-500 index value.
func AQICategory(aqi int) string {
	switch {
	case aqi >= 301:
		return "Hazardous"
	case aqi >= 201:
		return "Very Unhealthy"
	case aqi >= 151:
		return "Unhealthy"
	case aqi >= 101:
		return "Unhealthy for Sensitive Groups"
	case aqi >= 51:
		return "Moderate"
	default:
		return "Good"
	}
}

// UVCategory labels a UV index the way the alert copy does.
func UVCategory(uv float64) string {
	switch {
	case uv >= 11:
		return "Extreme"
	case uv >= 8:
		return "Very High"
	default:
		return "High"
	}
}
