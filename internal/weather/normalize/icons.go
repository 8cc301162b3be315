package normalize

import "fmt"

// The canonical icon space is the WeatherAPI CDN code set: every adapter maps
// its native condition codes into these numeric codes so consumers never see
// a provider-specific icon reference.

// IconClear is the fallback code; unmapped conditions resolve here instead of
// failing the snapshot.
const IconClear = "113"

// Icon renders a canonical day icon reference for a code.
func Icon(code string) string {
	if code == "" {
		code = IconClear
	}
	return fmt.Sprintf("https://cdn.weatherapi.com/weather/64x64/day/%s.png", code)
}

// IconNight renders the night variant.
func IconNight(code string) string {
	if code == "" {
		code = IconClear
	}
	return fmt.Sprintf("https://cdn.weatherapi.com/weather/64x64/night/%s.png", code)
}
