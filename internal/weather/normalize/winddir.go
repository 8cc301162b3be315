// Package normalize holds the shared, provider-agnostic conversion helpers
// used by the adapters: compass discretization, EPA air-quality index
// derivation, moon-phase naming and canonical icon references.
package normalize

import "math"

var compassLabels = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// WindDirection discretizes compass degrees into one of the 16 standard
// labels. 0 and 359 both map to "N".
func WindDirection(degrees float64) string {
	idx := int(math.Round(degrees/22.5)) % 16
	if idx < 0 {
		idx += 16
	}
	return compassLabels[idx]
}
