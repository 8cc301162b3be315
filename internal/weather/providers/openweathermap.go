package providers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/weatherwell/weathercore/internal/weather"
	"github.com/weatherwell/weathercore/internal/weather/normalize"
)

const openWeatherMapDemoKey = "2f16c38d61c17ac94d944a5a66ca0e96"

// OpenWeatherMap adapts api.openweathermap.org. Wind arrives in m/s and
// visibility in meters, both converted to the canonical units. Its air
// pollution endpoint reports a 1-5 categorical index, which is discarded in
// favor of an EPA AQI derived from the PM2.5 component.
type OpenWeatherMap struct {
	apiKey  string
	baseURL string
	geoURL  string
	httpCfg httpConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherMap(client *http.Client, apiKey string, cb *gobreaker.CircuitBreaker) *OpenWeatherMap {
	if apiKey == "" {
		apiKey = openWeatherMapDemoKey
	}
	return &OpenWeatherMap{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		geoURL:  "https://api.openweathermap.org/geo/1.0",
		httpCfg: defaultHTTPConfig(client),
		circuit: cb,
	}
}

func (p *OpenWeatherMap) IsConfigured() bool { return p.apiKey != "" }

func (p *OpenWeatherMap) SourceLabel() string {
	if p.apiKey == openWeatherMapDemoKey {
		return "OpenWeatherMap"
	}
	return "OpenWeatherMap (Custom)"
}

// owmIconCodes maps OpenWeatherMap icon codes (without the d/n suffix) into
// the canonical icon space.
var owmIconCodes = map[string]string{
	"01": "113", // clear sky
	"02": "116", // few clouds
	"03": "119", // scattered clouds
	"04": "122", // broken clouds
	"09": "353", // shower rain
	"10": "296", // rain
	"11": "389", // thunderstorm
	"13": "332", // snow
	"50": "248", // mist
}

func owmIcon(code string) string {
	night := strings.HasSuffix(code, "n")
	base := strings.TrimRight(code, "dn")
	mapped, ok := owmIconCodes[base]
	if !ok {
		mapped = normalize.IconClear
	}
	if night {
		return normalize.IconNight(mapped)
	}
	return normalize.Icon(mapped)
}

type owmWeatherItem struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmForecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Weather []owmWeatherItem `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Pop  float64 `json:"pop"`
	Rain struct {
		ThreeH float64 `json:"3h"`
	} `json:"rain"`
	Snow struct {
		ThreeH float64 `json:"3h"`
	} `json:"snow"`
}

func (it owmForecastItem) condition() (string, string) {
	if len(it.Weather) == 0 {
		return "", normalize.Icon(normalize.IconClear)
	}
	return it.Weather[0].Description, owmIcon(it.Weather[0].Icon)
}

func (it owmForecastItem) precipMm() float64 {
	if it.Rain.ThreeH > 0 {
		return it.Rain.ThreeH
	}
	return it.Snow.ThreeH
}

func (p *OpenWeatherMap) get(ctx context.Context, base, endpoint string, params url.Values, v interface{}) error {
	params.Set("appid", p.apiKey)
	return fetchJSON(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		u := fmt.Sprintf("%s/%s?%s", base, endpoint, params.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}, v)
}

func (p *OpenWeatherMap) FetchSnapshot(ctx context.Context, lat, lon float64, days int) (weather.Snapshot, error) {
	if days <= 1 {
		return p.fetchCurrent(ctx, lat, lon)
	}
	return p.fetchForecast(ctx, lat, lon, days)
}

// fetchCurrent combines the current-weather and air-pollution endpoints. Air
// quality is best effort; its absence never fails the snapshot.
func (p *OpenWeatherMap) fetchCurrent(ctx context.Context, lat, lon float64) (weather.Snapshot, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))
	params.Set("units", "metric")

	var payload struct {
		Name string `json:"name"`
		Sys  struct {
			Country string `json:"country"`
			Sunrise int64  `json:"sunrise"`
			Sunset  int64  `json:"sunset"`
		} `json:"sys"`
		Coord struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  float64 `json:"humidity"`
			Pressure  float64 `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
		} `json:"wind"`
		Visibility float64          `json:"visibility"`
		Weather    []owmWeatherItem `json:"weather"`
	}
	if err := p.get(ctx, p.baseURL, "weather", params, &payload); err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderOpenWeatherMap, "current", err)
	}

	condition, icon := "", normalize.Icon(normalize.IconClear)
	if len(payload.Weather) > 0 {
		condition = payload.Weather[0].Description
		icon = owmIcon(payload.Weather[0].Icon)
	}

	visibility := payload.Visibility
	if visibility == 0 {
		visibility = 10000
	}

	snap := weather.Snapshot{
		Location: weather.Location{
			Name:    payload.Name,
			Country: payload.Sys.Country,
			Region:  payload.Sys.Country,
			Lat:     payload.Coord.Lat,
			Lon:     payload.Coord.Lon,
		},
		Current: weather.Current{
			Temperature:   payload.Main.Temp,
			Condition:     condition,
			Icon:          icon,
			Humidity:      payload.Main.Humidity,
			WindSpeed:     payload.Wind.Speed * 3.6,
			WindDirection: normalize.WindDirection(payload.Wind.Deg),
			Pressure:      payload.Main.Pressure,
			Visibility:    visibility / 1000,
			FeelsLike:     payload.Main.FeelsLike,
		},
		Astronomy: weather.Astronomy{
			Sunrise:          normalize.ClockFromTime(time.Unix(payload.Sys.Sunrise, 0)),
			Sunset:           normalize.ClockFromTime(time.Unix(payload.Sys.Sunset, 0)),
			MoonIllumination: normalize.MoonUnavailable,
		},
	}

	snap.AirQuality = p.fetchAirQuality(ctx, lat, lon)
	return snap, nil
}

func (p *OpenWeatherMap) fetchAirQuality(ctx context.Context, lat, lon float64) *weather.AirQuality {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))

	var payload struct {
		List []struct {
			Components struct {
				CO   float64 `json:"co"`
				NO2  float64 `json:"no2"`
				O3   float64 `json:"o3"`
				SO2  float64 `json:"so2"`
				PM25 float64 `json:"pm2_5"`
				PM10 float64 `json:"pm10"`
			} `json:"components"`
		} `json:"list"`
	}
	if err := p.get(ctx, p.baseURL, "air_pollution", params, &payload); err != nil || len(payload.List) == 0 {
		return nil
	}

	c := payload.List[0].Components
	return &weather.AirQuality{
		AQI:  normalize.AQIFromPM25(c.PM25),
		CO:   c.CO,
		NO2:  c.NO2,
		O3:   c.O3,
		SO2:  c.SO2,
		PM25: c.PM25,
		PM10: c.PM10,
	}
}

func (p *OpenWeatherMap) fetchForecast(ctx context.Context, lat, lon float64, days int) (weather.Snapshot, error) {
	cnt := days * 8 // 8 forecasts per day at 3-hour intervals
	if cnt > 40 {
		cnt = 40
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))
	params.Set("units", "metric")
	params.Set("cnt", fmt.Sprintf("%d", cnt))

	var payload struct {
		List []owmForecastItem `json:"list"`
		City struct {
			Name    string `json:"name"`
			Country string `json:"country"`
			Coord   struct {
				Lat float64 `json:"lat"`
				Lon float64 `json:"lon"`
			} `json:"coord"`
			Sunrise int64 `json:"sunrise"`
			Sunset  int64 `json:"sunset"`
		} `json:"city"`
	}
	if err := p.get(ctx, p.baseURL, "forecast", params, &payload); err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderOpenWeatherMap, "forecast", err)
	}
	if len(payload.List) == 0 {
		return weather.Snapshot{}, provErr(weather.ProviderOpenWeatherMap, "forecast", fmt.Errorf("empty forecast list"))
	}

	first := payload.List[0]
	condition, icon := first.condition()

	snap := weather.Snapshot{
		Location: weather.Location{
			Name:    payload.City.Name,
			Country: payload.City.Country,
			Region:  payload.City.Country,
			Lat:     payload.City.Coord.Lat,
			Lon:     payload.City.Coord.Lon,
		},
		Current: weather.Current{
			Temperature:   first.Main.Temp,
			Condition:     condition,
			Icon:          icon,
			Humidity:      first.Main.Humidity,
			WindSpeed:     first.Wind.Speed * 3.6,
			WindDirection: normalize.WindDirection(first.Wind.Deg),
			Pressure:      first.Main.Pressure,
			Visibility:    10,
			FeelsLike:     first.Main.FeelsLike,
		},
		Astronomy: weather.Astronomy{
			Sunrise:          normalize.ClockFromTime(time.Unix(payload.City.Sunrise, 0)),
			Sunset:           normalize.ClockFromTime(time.Unix(payload.City.Sunset, 0)),
			MoonIllumination: normalize.MoonUnavailable,
		},
	}

	// Hourly entries are the raw 3-hour steps, first 24.
	for i, item := range payload.List {
		if i >= 24 {
			break
		}
		cond, ic := item.condition()
		snap.Hourly = append(snap.Hourly, weather.HourlyEntry{
			Time:                time.Unix(item.Dt, 0).UTC().Format(time.RFC3339),
			Temperature:         item.Main.Temp,
			Condition:           cond,
			Icon:                ic,
			Humidity:            item.Main.Humidity,
			WindSpeed:           item.Wind.Speed * 3.6,
			PrecipitationChance: item.Pop * 100,
			PrecipitationMm:     item.precipMm(),
			Pressure:            first.Main.Pressure,
			Visibility:          10,
		})
	}

	snap.Daily = p.groupDaily(payload.List)
	return snap, nil
}

// groupDaily buckets the 3-hour steps by calendar day, preserving order of
// first appearance, and aggregates each bucket: max/min temperature, mean
// humidity, worst-case wind and precipitation chance, summed amounts.
func (p *OpenWeatherMap) groupDaily(items []owmForecastItem) []weather.DailyEntry {
	var order []string
	buckets := make(map[string][]owmForecastItem)
	for _, item := range items {
		day := time.Unix(item.Dt, 0).UTC().Format("2006-01-02")
		if _, seen := buckets[day]; !seen {
			order = append(order, day)
		}
		buckets[day] = append(buckets[day], item)
	}
	if len(order) > 7 {
		order = order[:7]
	}

	daily := make([]weather.DailyEntry, 0, len(order))
	for _, day := range order {
		group := buckets[day]

		maxTemp, minTemp := group[0].Main.Temp, group[0].Main.Temp
		var humiditySum, maxWind, maxChance, precipSum float64
		for _, item := range group {
			maxTemp = math.Max(maxTemp, item.Main.Temp)
			minTemp = math.Min(minTemp, item.Main.Temp)
			humiditySum += item.Main.Humidity
			maxWind = math.Max(maxWind, item.Wind.Speed*3.6)
			maxChance = math.Max(maxChance, item.Pop*100)
			precipSum += item.precipMm()
		}

		condition, icon := group[0].condition()
		daily = append(daily, weather.DailyEntry{
			Date:                day,
			MaxTemp:             maxTemp,
			MinTemp:             minTemp,
			Condition:           condition,
			Icon:                icon,
			Humidity:            math.Round(humiditySum / float64(len(group))),
			WindSpeed:           maxWind,
			PrecipitationChance: maxChance,
			PrecipitationMm:     precipSum,
		})
	}
	return daily
}

func (p *OpenWeatherMap) FetchHistorical(ctx context.Context, lat, lon float64, date string) (weather.Snapshot, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderOpenWeatherMap, "history", err)
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))
	params.Set("dt", fmt.Sprintf("%d", t.Unix()))
	params.Set("units", "metric")

	var payload struct {
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
		Current *struct {
			Temp       float64          `json:"temp"`
			FeelsLike  float64          `json:"feels_like"`
			Humidity   float64          `json:"humidity"`
			Pressure   float64          `json:"pressure"`
			WindSpeed  float64          `json:"wind_speed"`
			WindDeg    float64          `json:"wind_deg"`
			UVI        float64          `json:"uvi"`
			Visibility float64          `json:"visibility"`
			Sunrise    int64            `json:"sunrise"`
			Sunset     int64            `json:"sunset"`
			Weather    []owmWeatherItem `json:"weather"`
		} `json:"current"`
		Data []struct {
			Temp       float64          `json:"temp"`
			FeelsLike  float64          `json:"feels_like"`
			Humidity   float64          `json:"humidity"`
			Pressure   float64          `json:"pressure"`
			WindSpeed  float64          `json:"wind_speed"`
			WindDeg    float64          `json:"wind_deg"`
			UVI        float64          `json:"uvi"`
			Visibility float64          `json:"visibility"`
			Sunrise    int64            `json:"sunrise"`
			Sunset     int64            `json:"sunset"`
			Weather    []owmWeatherItem `json:"weather"`
		} `json:"data"`
	}
	if err := p.get(ctx, p.baseURL, "onecall/timemachine", params, &payload); err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderOpenWeatherMap, "history", err)
	}

	cur := payload.Current
	if cur == nil {
		if len(payload.Data) == 0 {
			return weather.Snapshot{}, provErr(weather.ProviderOpenWeatherMap, "history", fmt.Errorf("no observation for %s", date))
		}
		cur = &payload.Data[0]
	}

	condition, icon := "", normalize.Icon(normalize.IconClear)
	if len(cur.Weather) > 0 {
		condition = cur.Weather[0].Description
		icon = owmIcon(cur.Weather[0].Icon)
	}
	visibility := cur.Visibility
	if visibility == 0 {
		visibility = 10000
	}

	return weather.Snapshot{
		Location: weather.Location{Lat: payload.Lat, Lon: payload.Lon},
		Current: weather.Current{
			Temperature:   cur.Temp,
			Condition:     condition,
			Icon:          icon,
			Humidity:      cur.Humidity,
			WindSpeed:     cur.WindSpeed * 3.6,
			WindDirection: normalize.WindDirection(cur.WindDeg),
			Pressure:      cur.Pressure,
			UVIndex:       cur.UVI,
			Visibility:    visibility / 1000,
			FeelsLike:     cur.FeelsLike,
		},
		Astronomy: weather.Astronomy{
			Sunrise:          normalize.ClockFromTime(time.Unix(cur.Sunrise, 0)),
			Sunset:           normalize.ClockFromTime(time.Unix(cur.Sunset, 0)),
			MoonIllumination: normalize.MoonUnavailable,
		},
	}, nil
}

func (p *OpenWeatherMap) SearchLocations(ctx context.Context, query string) ([]weather.Location, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", "5")

	var payload []struct {
		Name    string  `json:"name"`
		Country string  `json:"country"`
		State   string  `json:"state"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := p.get(ctx, p.geoURL, "direct", params, &payload); err != nil {
		return nil, provErr(weather.ProviderOpenWeatherMap, "search", err)
	}

	locs := make([]weather.Location, 0, len(payload))
	for _, l := range payload {
		region := l.State
		if region == "" {
			region = l.Country
		}
		locs = append(locs, weather.Location{
			Name:    l.Name,
			Country: l.Country,
			Region:  region,
			Lat:     l.Lat,
			Lon:     l.Lon,
		})
	}
	return locs, nil
}
