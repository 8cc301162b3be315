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

// OpenMeteo adapts api.open-meteo.com. No API key, always configured. The
// forecast endpoint returns column-oriented arrays keyed by WMO weather codes;
// there is no reverse geocoding, so the location name is the coordinate pair.
type OpenMeteo struct {
	baseURL string
	geoURL  string
	httpCfg httpConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteo(client *http.Client, cb *gobreaker.CircuitBreaker) *OpenMeteo {
	return &OpenMeteo{
		baseURL: "https://api.open-meteo.com/v1",
		geoURL:  "https://geocoding-api.open-meteo.com/v1",
		httpCfg: defaultHTTPConfig(client),
		circuit: cb,
	}
}

func (p *OpenMeteo) IsConfigured() bool  { return true }
func (p *OpenMeteo) SourceLabel() string { return "Open-Meteo" }

var wmoConditions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

var wmoIcons = map[int]string{
	0:  "113",
	1:  "116",
	2:  "116",
	3:  "119",
	45: "248",
	48: "248",
	51: "263",
	53: "266",
	55: "266",
	61: "293",
	63: "296",
	65: "308",
	71: "326",
	73: "332",
	75: "338",
	77: "332",
	80: "353",
	81: "356",
	82: "359",
	85: "368",
	86: "371",
	95: "386",
	96: "389",
	99: "392",
}

func wmoCondition(code int) string {
	if c, ok := wmoConditions[code]; ok {
		return c
	}
	return "Unknown"
}

func wmoIcon(code int) string {
	if c, ok := wmoIcons[code]; ok {
		return normalize.Icon(c)
	}
	return normalize.Icon(normalize.IconClear)
}

type openMeteoResponse struct {
	Current struct {
		Temperature         float64 `json:"temperature_2m"`
		Humidity            float64 `json:"relative_humidity_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		WeatherCode         int     `json:"weather_code"`
		PressureMsl         float64 `json:"pressure_msl"`
		WindSpeed           float64 `json:"wind_speed_10m"`
		WindDirection       float64 `json:"wind_direction_10m"`
	} `json:"current"`
	Hourly struct {
		Time                     []string  `json:"time"`
		Temperature              []float64 `json:"temperature_2m"`
		Humidity                 []float64 `json:"relative_humidity_2m"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
		Precipitation            []float64 `json:"precipitation"`
		WeatherCode              []int     `json:"weather_code"`
		PressureMsl              []float64 `json:"pressure_msl"`
		WindSpeed                []float64 `json:"wind_speed_10m"`
		UVIndex                  []float64 `json:"uv_index"`
		Visibility               []float64 `json:"visibility"`
	} `json:"hourly"`
	Daily struct {
		Time                        []string  `json:"time"`
		WeatherCode                 []int     `json:"weather_code"`
		TemperatureMax              []float64 `json:"temperature_2m_max"`
		TemperatureMin              []float64 `json:"temperature_2m_min"`
		Sunrise                     []string  `json:"sunrise"`
		Sunset                      []string  `json:"sunset"`
		UVIndexMax                  []float64 `json:"uv_index_max"`
		PrecipitationSum            []float64 `json:"precipitation_sum"`
		PrecipitationProbabilityMax []float64 `json:"precipitation_probability_max"`
		WindSpeedMax                []float64 `json:"wind_speed_10m_max"`
	} `json:"daily"`
}

func (p *OpenMeteo) get(ctx context.Context, base, endpoint string, params url.Values, v interface{}) error {
	return fetchJSON(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		u := fmt.Sprintf("%s/%s?%s", base, endpoint, params.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}, v)
}

func (p *OpenMeteo) FetchSnapshot(ctx context.Context, lat, lon float64, days int) (weather.Snapshot, error) {
	if days > 16 {
		days = 16
	}
	if days < 1 {
		days = 1
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", lat))
	params.Set("longitude", fmt.Sprintf("%f", lon))
	params.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,precipitation,weather_code,cloud_cover,pressure_msl,surface_pressure,wind_speed_10m,wind_direction_10m")
	params.Set("hourly", "temperature_2m,relative_humidity_2m,precipitation_probability,precipitation,weather_code,pressure_msl,wind_speed_10m,wind_direction_10m,uv_index,visibility")
	params.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,sunrise,sunset,uv_index_max,precipitation_sum,precipitation_probability_max,wind_speed_10m_max")
	params.Set("timezone", "auto")
	params.Set("forecast_days", fmt.Sprintf("%d", days))

	var payload openMeteoResponse
	if err := p.get(ctx, p.baseURL, "forecast", params, &payload); err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderOpenMeteo, "forecast", err)
	}
	return p.transform(payload, lat, lon), nil
}

func (p *OpenMeteo) FetchHistorical(ctx context.Context, lat, lon float64, date string) (weather.Snapshot, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", lat))
	params.Set("longitude", fmt.Sprintf("%f", lon))
	params.Set("start_date", date)
	params.Set("end_date", date)
	params.Set("hourly", "temperature_2m,relative_humidity_2m,precipitation,weather_code,pressure_msl,wind_speed_10m,wind_direction_10m")
	params.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,sunrise,sunset")
	params.Set("timezone", "auto")

	var payload openMeteoResponse
	if err := p.get(ctx, p.baseURL, "forecast", params, &payload); err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderOpenMeteo, "history", err)
	}
	return p.transform(payload, lat, lon), nil
}

func (p *OpenMeteo) transform(payload openMeteoResponse, lat, lon float64) weather.Snapshot {
	cur := payload.Current

	snap := weather.Snapshot{
		Location: weather.Location{
			Name: fmt.Sprintf("%.2f°, %.2f°", lat, lon),
			Lat:  lat,
			Lon:  lon,
		},
		Current: weather.Current{
			Temperature:   cur.Temperature,
			Condition:     wmoCondition(cur.WeatherCode),
			Icon:          wmoIcon(cur.WeatherCode),
			Humidity:      cur.Humidity,
			WindSpeed:     cur.WindSpeed,
			WindDirection: normalize.WindDirection(cur.WindDirection),
			Pressure:      orFloat(cur.PressureMsl, 1013),
			Visibility:    10,
			FeelsLike:     cur.ApparentTemperature,
		},
		Astronomy: weather.Astronomy{
			MoonIllumination: normalize.MoonUnavailable,
		},
	}
	if snap.Current.FeelsLike == 0 {
		snap.Current.FeelsLike = cur.Temperature
	}

	h := payload.Hourly
	for i := range h.Time {
		if i >= 24 {
			break
		}
		snap.Hourly = append(snap.Hourly, weather.HourlyEntry{
			Time:                h.Time[i],
			Temperature:         at(h.Temperature, i),
			Condition:           wmoCondition(atInt(h.WeatherCode, i)),
			Icon:                wmoIcon(atInt(h.WeatherCode, i)),
			Humidity:            at(h.Humidity, i),
			WindSpeed:           at(h.WindSpeed, i),
			PrecipitationChance: at(h.PrecipitationProbability, i),
			PrecipitationMm:     at(h.Precipitation, i),
			UVIndex:             at(h.UVIndex, i),
			Pressure:            defAt(h.PressureMsl, i, 1013),
			Visibility:          defAt(h.Visibility, i, 10000) / 1000,
		})
	}

	d := payload.Daily
	for i := range d.Time {
		snap.Daily = append(snap.Daily, weather.DailyEntry{
			Date:                d.Time[i],
			MaxTemp:             at(d.TemperatureMax, i),
			MinTemp:             at(d.TemperatureMin, i),
			Condition:           wmoCondition(atInt(d.WeatherCode, i)),
			Icon:                wmoIcon(atInt(d.WeatherCode, i)),
			WindSpeed:           at(d.WindSpeedMax, i),
			PrecipitationChance: at(d.PrecipitationProbabilityMax, i),
			PrecipitationMm:     at(d.PrecipitationSum, i),
			UVIndex:             at(d.UVIndexMax, i),
			Astronomy: &weather.Astronomy{
				Sunrise:          normalize.ClockFromISO(atStr(d.Sunrise, i)),
				Sunset:           normalize.ClockFromISO(atStr(d.Sunset, i)),
				MoonIllumination: normalize.MoonUnavailable,
			},
		})
	}
	if len(d.Sunrise) > 0 {
		snap.Astronomy.Sunrise = normalize.ClockFromISO(d.Sunrise[0])
	}
	if len(d.Sunset) > 0 {
		snap.Astronomy.Sunset = normalize.ClockFromISO(d.Sunset[0])
	}

	return snap
}

func (p *OpenMeteo) SearchLocations(ctx context.Context, query string) ([]weather.Location, error) {
	params := url.Values{}
	params.Set("name", query)
	params.Set("count", "10")
	params.Set("language", "en")
	params.Set("format", "json")

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Admin1    string  `json:"admin1"`
			Country   string  `json:"country"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := p.get(ctx, p.geoURL, "search", params, &payload); err != nil {
		return nil, provErr(weather.ProviderOpenMeteo, "search", err)
	}

	locs := make([]weather.Location, 0, len(payload.Results))
	for _, r := range payload.Results {
		locs = append(locs, weather.Location{
			Name:    r.Name,
			Country: r.Country,
			Region:  r.Admin1,
			Lat:     r.Latitude,
			Lon:     r.Longitude,
		})
	}
	return locs, nil
}

// at and friends guard Open-Meteo's column arrays, whose lengths can differ
// when the API omits a field.
func at(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

func defAt(vals []float64, i int, def float64) float64 {
	if i < len(vals) && vals[i] != 0 {
		return vals[i]
	}
	return def
}

func atInt(vals []int, i int) int {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}

func atStr(vals []string, i int) string {
	if i < len(vals) {
		return vals[i]
	}
	return ""
}
