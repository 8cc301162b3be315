package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/weatherwell/weathercore/internal/alerts"
	"github.com/weatherwell/weathercore/internal/weather"
)

type AppConfig struct {
	// Per-provider API keys. Empty means the adapter's built-in default key.
	WeatherAPIKey     string
	OpenWeatherMapKey string
	VisualCrossingKey string
	QWeatherKey       string
	MeteostatKey      string

	// GoogleAPIKey enables reverse geocoding of coordinate-only locations.
	GoogleAPIKey string

	// PreferredProvider is tried first by the resolver; empty uses the chain.
	PreferredProvider string

	// AlertInterval controls how often the alert evaluator runs.
	AlertInterval time.Duration

	// Alerts holds the thresholds and category switches for each cycle.
	Alerts alerts.Config

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.OpenWeatherMapKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.VisualCrossingKey = os.Getenv("VISUALCROSSING_API_KEY")
	cfg.QWeatherKey = os.Getenv("QWEATHER_API_KEY")
	cfg.MeteostatKey = os.Getenv("METEOSTAT_API_KEY")
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")

	cfg.PreferredProvider = os.Getenv("PREFERRED_PROVIDER")
	if cfg.PreferredProvider != "" {
		if !knownProvider(cfg.PreferredProvider) {
			return nil, fmt.Errorf("unknown PREFERRED_PROVIDER: %q", cfg.PreferredProvider)
		}
	}

	// Evaluation cadence: default 60 minutes.
	intervalStr := getenvDefault("ALERT_INTERVAL", "60m")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid ALERT_INTERVAL: %w", err)
	}
	cfg.AlertInterval = interval

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.Alerts = loadAlerts()
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// Credentials builds the per-request credential set the resolver expects.
func (c *AppConfig) Credentials() weather.Credentials {
	return weather.Credentials{
		WeatherAPIKey:     c.WeatherAPIKey,
		OpenWeatherMapKey: c.OpenWeatherMapKey,
		VisualCrossingKey: c.VisualCrossingKey,
		QWeatherKey:       c.QWeatherKey,
		MeteostatKey:      c.MeteostatKey,
	}
}

func loadAlerts() alerts.Config {
	a := alerts.DefaultConfig()
	a.RainThreshold = getenvFloat("ALERT_RAIN_THRESHOLD", a.RainThreshold)
	a.WindThreshold = getenvFloat("ALERT_WIND_THRESHOLD", a.WindThreshold)
	a.UVThreshold = getenvFloat("ALERT_UV_THRESHOLD", a.UVThreshold)
	a.HighTempThreshold = getenvFloat("ALERT_TEMP_HIGH", a.HighTempThreshold)
	a.LowTempThreshold = getenvFloat("ALERT_TEMP_LOW", a.LowTempThreshold)
	a.EnableUmbrella = getenvBool("ALERT_ENABLE_UMBRELLA", a.EnableUmbrella)
	a.EnableWind = getenvBool("ALERT_ENABLE_WIND", a.EnableWind)
	a.EnableUV = getenvBool("ALERT_ENABLE_UV", a.EnableUV)
	a.EnableTemperature = getenvBool("ALERT_ENABLE_TEMPERATURE", a.EnableTemperature)
	a.EnableAQI = getenvBool("ALERT_ENABLE_AQI", a.EnableAQI)
	a.EnableSevere = getenvBool("ALERT_ENABLE_SEVERE", a.EnableSevere)
	a.EnableDailySummary = getenvBool("ALERT_ENABLE_DAILY_SUMMARY", a.EnableDailySummary)
	return a
}

func knownProvider(id string) bool {
	switch id {
	case weather.ProviderWeatherAPI, weather.ProviderOpenWeatherMap,
		weather.ProviderVisualCrossing, weather.ProviderOpenMeteo,
		weather.ProviderQWeather, weather.ProviderMeteostat:
		return true
	}
	return false
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
