package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/weatherwell/weathercore/internal/weather"
	"github.com/weatherwell/weathercore/internal/weather/normalize"
)

// weatherAPIDemoKey is the adapter's built-in default; a caller-supplied key
// switches the source label to the "(Custom)" variant.
const weatherAPIDemoKey = "725bd54f9a1b458884f85421252509"

// WeatherAPI adapts api.weatherapi.com. Its icon references are already in
// the canonical space, so they pass through unmapped. Air quality arrives as
// raw pollutant concentrations only; the AQI is derived from PM2.5 via the
// EPA breakpoint table.
type WeatherAPI struct {
	apiKey  string
	baseURL string
	httpCfg httpConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPI(client *http.Client, apiKey string, cb *gobreaker.CircuitBreaker) *WeatherAPI {
	if apiKey == "" {
		apiKey = weatherAPIDemoKey
	}
	return &WeatherAPI{
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		httpCfg: defaultHTTPConfig(client),
		circuit: cb,
	}
}

func (p *WeatherAPI) IsConfigured() bool {
	return len(p.apiKey) > 10
}

func (p *WeatherAPI) SourceLabel() string {
	if p.apiKey == weatherAPIDemoKey {
		return "WeatherAPI"
	}
	return "WeatherAPI (Custom)"
}

type weatherAPICondition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
}

type weatherAPIAirQuality struct {
	CO   float64 `json:"co"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	SO2  float64 `json:"so2"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
}

type weatherAPIAstro struct {
	Sunrise          string     `json:"sunrise"`
	Sunset           string     `json:"sunset"`
	MoonPhase        string     `json:"moon_phase"`
	MoonIllumination flexNumber `json:"moon_illumination"`
}

type weatherAPIHour struct {
	Time         string              `json:"time"`
	TempC        float64             `json:"temp_c"`
	Condition    weatherAPICondition `json:"condition"`
	Humidity     float64             `json:"humidity"`
	WindKph      float64             `json:"wind_kph"`
	ChanceOfRain float64             `json:"chance_of_rain"`
	PrecipMm     float64             `json:"precip_mm"`
	UV           float64             `json:"uv"`
	PressureMb   float64             `json:"pressure_mb"`
	VisKm        float64             `json:"vis_km"`
}

type weatherAPIDay struct {
	Date string `json:"date"`
	Day  struct {
		MaxTempC     float64             `json:"maxtemp_c"`
		MinTempC     float64             `json:"mintemp_c"`
		AvgTempC     float64             `json:"avgtemp_c"`
		Condition    weatherAPICondition `json:"condition"`
		AvgHumidity  float64             `json:"avghumidity"`
		MaxWindKph   float64             `json:"maxwind_kph"`
		AvgVisKm     float64             `json:"avgvis_km"`
		UV           float64             `json:"uv"`
		ChanceOfRain float64             `json:"daily_chance_of_rain"`
		TotalPrecip  float64             `json:"totalprecip_mm"`
	} `json:"day"`
	Astro weatherAPIAstro  `json:"astro"`
	Hour  []weatherAPIHour `json:"hour"`
}

type weatherAPIResponse struct {
	Location struct {
		Name    string  `json:"name"`
		Country string  `json:"country"`
		Region  string  `json:"region"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	} `json:"location"`
	Current struct {
		TempC      float64               `json:"temp_c"`
		Condition  weatherAPICondition   `json:"condition"`
		Humidity   float64               `json:"humidity"`
		WindKph    float64               `json:"wind_kph"`
		WindDir    string                `json:"wind_dir"`
		PressureMb float64               `json:"pressure_mb"`
		UV         float64               `json:"uv"`
		VisKm      float64               `json:"vis_km"`
		FeelsLikeC float64               `json:"feelslike_c"`
		AirQuality *weatherAPIAirQuality `json:"air_quality"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []weatherAPIDay `json:"forecastday"`
	} `json:"forecast"`
}

func (p *WeatherAPI) get(ctx context.Context, endpoint string, params url.Values, v interface{}) error {
	params.Set("key", p.apiKey)
	return fetchJSON(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, params.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}, v)
}

func (p *WeatherAPI) FetchSnapshot(ctx context.Context, lat, lon float64, days int) (weather.Snapshot, error) {
	if days > 10 {
		days = 10
	}
	if days < 1 {
		days = 1
	}

	params := url.Values{}
	params.Set("q", fmt.Sprintf("%f,%f", lat, lon))
	params.Set("days", fmt.Sprintf("%d", days))
	params.Set("aqi", "yes")
	params.Set("alerts", "yes")

	var payload weatherAPIResponse
	if err := p.get(ctx, "forecast.json", params, &payload); err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderWeatherAPI, "forecast", err)
	}
	if len(payload.Forecast.ForecastDay) == 0 {
		return weather.Snapshot{}, provErr(weather.ProviderWeatherAPI, "forecast", fmt.Errorf("empty forecast"))
	}

	snap := p.baseSnapshot(&payload)

	for _, day := range payload.Forecast.ForecastDay {
		astro := day.Astro
		snap.Daily = append(snap.Daily, weather.DailyEntry{
			Date:                day.Date,
			MaxTemp:             day.Day.MaxTempC,
			MinTemp:             day.Day.MinTempC,
			Condition:           day.Day.Condition.Text,
			Icon:                day.Day.Condition.Icon,
			Humidity:            day.Day.AvgHumidity,
			WindSpeed:           day.Day.MaxWindKph,
			UVIndex:             day.Day.UV,
			PrecipitationChance: day.Day.ChanceOfRain,
			PrecipitationMm:     day.Day.TotalPrecip,
			Astronomy: &weather.Astronomy{
				Sunrise:          astro.Sunrise,
				Sunset:           astro.Sunset,
				MoonPhase:        astro.MoonPhase,
				MoonIllumination: float64(astro.MoonIllumination) / 100,
			},
		})
	}

	// Hourly: flatten all forecast days, keep the first 24 entries.
	for _, day := range payload.Forecast.ForecastDay {
		for _, hour := range day.Hour {
			if len(snap.Hourly) >= 24 {
				break
			}
			snap.Hourly = append(snap.Hourly, weather.HourlyEntry{
				Time:                hour.Time,
				Temperature:         hour.TempC,
				Condition:           hour.Condition.Text,
				Icon:                hour.Condition.Icon,
				Humidity:            hour.Humidity,
				WindSpeed:           hour.WindKph,
				PrecipitationChance: hour.ChanceOfRain,
				PrecipitationMm:     hour.PrecipMm,
				UVIndex:             hour.UV,
				Pressure:            orFloat(hour.PressureMb, 1013),
				Visibility:          orFloat(hour.VisKm, 10),
			})
		}
	}

	today := payload.Forecast.ForecastDay[0].Astro
	snap.Astronomy = weather.Astronomy{
		Sunrise:          today.Sunrise,
		Sunset:           today.Sunset,
		MoonPhase:        today.MoonPhase,
		MoonIllumination: float64(today.MoonIllumination) / 100,
	}

	return snap, nil
}

func (p *WeatherAPI) FetchHistorical(ctx context.Context, lat, lon float64, date string) (weather.Snapshot, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%f,%f", lat, lon))
	params.Set("dt", date)

	var payload weatherAPIResponse
	if err := p.get(ctx, "history.json", params, &payload); err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderWeatherAPI, "history", err)
	}
	if len(payload.Forecast.ForecastDay) == 0 {
		return weather.Snapshot{}, provErr(weather.ProviderWeatherAPI, "history", fmt.Errorf("no data for date %s", date))
	}

	snap := p.baseSnapshot(&payload)
	day := payload.Forecast.ForecastDay[0]

	// Historical responses describe a whole past day; current becomes the
	// day's aggregates. Pressure is not part of the payload, so it defaults.
	snap.Current = weather.Current{
		Temperature: day.Day.AvgTempC,
		Condition:   day.Day.Condition.Text,
		Icon:        day.Day.Condition.Icon,
		Humidity:    day.Day.AvgHumidity,
		WindSpeed:   day.Day.MaxWindKph,
		Pressure:    1013,
		UVIndex:     day.Day.UV,
		Visibility:  day.Day.AvgVisKm,
		FeelsLike:   day.Day.AvgTempC,
	}
	snap.Astronomy = weather.Astronomy{
		Sunrise:          day.Astro.Sunrise,
		Sunset:           day.Astro.Sunset,
		MoonPhase:        day.Astro.MoonPhase,
		MoonIllumination: float64(day.Astro.MoonIllumination) / 100,
	}

	return snap, nil
}

func (p *WeatherAPI) SearchLocations(ctx context.Context, query string) ([]weather.Location, error) {
	params := url.Values{}
	params.Set("q", query)

	var payload []struct {
		Name    string  `json:"name"`
		Country string  `json:"country"`
		Region  string  `json:"region"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := p.get(ctx, "search.json", params, &payload); err != nil {
		return nil, provErr(weather.ProviderWeatherAPI, "search", err)
	}

	locs := make([]weather.Location, 0, len(payload))
	for _, l := range payload {
		locs = append(locs, weather.Location{
			Name:    l.Name,
			Country: l.Country,
			Region:  l.Region,
			Lat:     l.Lat,
			Lon:     l.Lon,
		})
	}
	return locs, nil
}

// baseSnapshot maps the shared location/current/air-quality sections.
func (p *WeatherAPI) baseSnapshot(payload *weatherAPIResponse) weather.Snapshot {
	snap := weather.Snapshot{
		Location: weather.Location{
			Name:    payload.Location.Name,
			Country: payload.Location.Country,
			Region:  payload.Location.Region,
			Lat:     payload.Location.Lat,
			Lon:     payload.Location.Lon,
		},
		Current: weather.Current{
			Temperature:   payload.Current.TempC,
			Condition:     payload.Current.Condition.Text,
			Icon:          payload.Current.Condition.Icon,
			Humidity:      payload.Current.Humidity,
			WindSpeed:     payload.Current.WindKph,
			WindDirection: payload.Current.WindDir,
			Pressure:      payload.Current.PressureMb,
			UVIndex:       payload.Current.UV,
			Visibility:    payload.Current.VisKm,
			FeelsLike:     payload.Current.FeelsLikeC,
		},
	}

	if aq := payload.Current.AirQuality; aq != nil {
		snap.AirQuality = &weather.AirQuality{
			AQI:  normalize.AQIFromPM25(aq.PM25),
			CO:   aq.CO,
			NO2:  aq.NO2,
			O3:   aq.O3,
			SO2:  aq.SO2,
			PM25: aq.PM25,
			PM10: aq.PM10,
		}
	}
	return snap
}

// orFloat substitutes def for a zero reading where zero means "absent".
func orFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
