package weather

import (
	"context"
	"errors"
	"fmt"

	"github.com/sony/gobreaker"
)

// Provider identifiers. The resolver and the HTTP API select adapters by
// these keys.
const (
	ProviderWeatherAPI     = "weatherapi"
	ProviderOpenWeatherMap = "openweathermap"
	ProviderVisualCrossing = "visualcrossing"
	ProviderOpenMeteo      = "openmeteo"
	ProviderQWeather       = "qweather"
	ProviderMeteostat      = "meteostat"
)

// Provider abstracts one upstream weather data source. Implementations are
// stateless per call and hold only a configured API key; the resolver
// constructs a fresh adapter for every request.
type Provider interface {
	// FetchSnapshot returns current conditions plus hourly/daily forecast for
	// the coordinates. days is the requested forecast horizon; adapters clamp
	// it to whatever their upstream supports.
	FetchSnapshot(ctx context.Context, lat, lon float64, days int) (Snapshot, error)

	// FetchHistorical returns a snapshot for a past date (YYYY-MM-DD).
	FetchHistorical(ctx context.Context, lat, lon float64, date string) (Snapshot, error)

	// SearchLocations maps a free-text query to candidate locations. Adapters
	// without a search endpoint return an empty slice, not an error.
	SearchLocations(ctx context.Context, query string) ([]Location, error)

	// IsConfigured reports whether the adapter has a usable credential.
	IsConfigured() bool

	// SourceLabel identifies the provider in human-readable form. Historical
	// sources must say so (e.g. "Meteostat (Historical)").
	SourceLabel() string
}

// Credentials carries per-provider API keys, supplied by the external settings
// collaborator at call time. An empty key means "use the adapter's built-in
// default key", not "unconfigured".
type Credentials struct {
	WeatherAPIKey     string
	OpenWeatherMapKey string
	VisualCrossingKey string
	QWeatherKey       string
	MeteostatKey      string
}

// Key returns the credential for a provider id, empty when none applies.
func (c Credentials) Key(id string) string {
	switch id {
	case ProviderWeatherAPI:
		return c.WeatherAPIKey
	case ProviderOpenWeatherMap:
		return c.OpenWeatherMapKey
	case ProviderVisualCrossing:
		return c.VisualCrossingKey
	case ProviderQWeather:
		return c.QWeatherKey
	case ProviderMeteostat:
		return c.MeteostatKey
	}
	return ""
}

// Builder constructs a provider adapter for one request. The circuit breaker
// is long-lived and shared across calls; the adapter itself is not.
type Builder func(apiKey string, cb *gobreaker.CircuitBreaker) Provider

var (
	// ErrUnknownProvider is returned for a provider id with no registered builder.
	ErrUnknownProvider = errors.New("unknown weather provider")

	// ErrNoProviderConfigured means not a single adapter had a usable credential.
	ErrNoProviderConfigured = errors.New("no weather provider is configured")

	// ErrAllProvidersUnavailable is the aggregate failure after the two-tier
	// fallback is exhausted.
	ErrAllProvidersUnavailable = errors.New("all weather providers are unavailable")
)

// ProviderError is a typed fetch failure from a single adapter. It wraps the
// transport, status or decode error; the snapshot is never partially
// populated on this path.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
