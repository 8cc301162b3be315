package normalize

// MoonUnavailable is the explicit sentinel for "no moon data". It must never
// be substituted with 0, which is a valid new-moon illumination.
const MoonUnavailable = -1

// MoonPhaseName maps a moon-phase fraction in [0,1] to its common name.
// 0 is a new moon, 0.5 a full moon.
func MoonPhaseName(phase float64) string {
	switch {
	case phase == 0:
		return "New Moon"
	case phase < 0.25:
		return "Waxing Crescent"
	case phase == 0.25:
		return "First Quarter"
	case phase < 0.5:
		return "Waxing Gibbous"
	case phase == 0.5:
		return "Full Moon"
	case phase < 0.75:
		return "Waning Gibbous"
	case phase == 0.75:
		return "Last Quarter"
	default:
		return "Waning Crescent"
	}
}
