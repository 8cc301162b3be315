package search

import (
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"

	"github.com/weatherwell/weathercore/internal/weather"
)

// ReverseGeocoder turns coordinates back into place names using the Google
// Geocoding API. Providers like Open-Meteo and QWeather cannot resolve names
// themselves and report "lat°, lon°" instead; when a Google key is set, those
// labels are replaced here.
type ReverseGeocoder struct {
	enabled bool
}

func NewReverseGeocoder(googleAPIKey string) *ReverseGeocoder {
	if googleAPIKey == "" {
		return &ReverseGeocoder{}
	}
	geocoder.ApiKey = googleAPIKey
	return &ReverseGeocoder{enabled: true}
}

func (g *ReverseGeocoder) Enabled() bool { return g.enabled }

// Lookup resolves coordinates to a named location.
func (g *ReverseGeocoder) Lookup(lat, lon float64) (weather.Location, error) {
	if !g.enabled {
		return weather.Location{}, fmt.Errorf("reverse geocoding is not configured")
	}

	addresses, err := geocoder.GeocodingReverse(geocoder.Location{
		Latitude:  lat,
		Longitude: lon,
	})
	if err != nil {
		return weather.Location{}, fmt.Errorf("reverse geocode %f,%f: %w", lat, lon, err)
	}
	if len(addresses) == 0 {
		return weather.Location{}, fmt.Errorf("no address for %f,%f", lat, lon)
	}

	addr := addresses[0]
	name := addr.City
	if name == "" {
		name = addr.County
	}
	if name == "" {
		name = addr.FormattedAddress
	}
	return weather.Location{
		Name:    name,
		Country: addr.Country,
		Region:  addr.State,
		Lat:     lat,
		Lon:     lon,
	}, nil
}

// Rename replaces a coordinate-style location name ("48.85°, 2.35°") when a
// reverse lookup succeeds; the input is returned unchanged otherwise.
func (g *ReverseGeocoder) Rename(loc weather.Location) weather.Location {
	if !g.enabled || !strings.Contains(loc.Name, "°") {
		return loc
	}
	resolved, err := g.Lookup(loc.Lat, loc.Lon)
	if err != nil {
		return loc
	}
	resolved.Lat = loc.Lat
	resolved.Lon = loc.Lon
	return resolved
}
