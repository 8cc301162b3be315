package providers

import (
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/weatherwell/weathercore/internal/weather"
)

// Registry returns the builder set for all six adapters, keyed by provider
// id. The resolver constructs adapters per request from these builders; the
// shared HTTP client bounds every outbound call with its timeout.
func Registry(client *http.Client) map[string]weather.Builder {
	return map[string]weather.Builder{
		weather.ProviderWeatherAPI: func(key string, cb *gobreaker.CircuitBreaker) weather.Provider {
			return NewWeatherAPI(client, key, cb)
		},
		weather.ProviderOpenWeatherMap: func(key string, cb *gobreaker.CircuitBreaker) weather.Provider {
			return NewOpenWeatherMap(client, key, cb)
		},
		weather.ProviderVisualCrossing: func(key string, cb *gobreaker.CircuitBreaker) weather.Provider {
			return NewVisualCrossing(client, key, cb)
		},
		weather.ProviderOpenMeteo: func(_ string, cb *gobreaker.CircuitBreaker) weather.Provider {
			return NewOpenMeteo(client, cb)
		},
		weather.ProviderQWeather: func(key string, cb *gobreaker.CircuitBreaker) weather.Provider {
			return NewQWeather(client, key, cb)
		},
		weather.ProviderMeteostat: func(key string, cb *gobreaker.CircuitBreaker) weather.Provider {
			return NewMeteostat(client, key, cb)
		},
	}
}
