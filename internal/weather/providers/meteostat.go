package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/weatherwell/weathercore/internal/weather"
	"github.com/weatherwell/weathercore/internal/weather/normalize"
)

const meteostatDemoKey = "93d3a5f1d3msh36569bf37d01a27p1c06ecjsna9f86b114ae8"

// Meteostat adapts the Meteostat RapidAPI endpoints. The provider is strictly
// historical: a "forecast" is the most recent observation window, and many
// station fields arrive null, so the payload uses pointer fields throughout.
type Meteostat struct {
	apiKey  string
	baseURL string
	httpCfg httpConfig
	circuit *gobreaker.CircuitBreaker
}

func NewMeteostat(client *http.Client, apiKey string, cb *gobreaker.CircuitBreaker) *Meteostat {
	if apiKey == "" {
		apiKey = meteostatDemoKey
	}
	return &Meteostat{
		apiKey:  apiKey,
		baseURL: "https://meteostat.p.rapidapi.com",
		httpCfg: defaultHTTPConfig(client),
		circuit: cb,
	}
}

func (p *Meteostat) IsConfigured() bool  { return p.apiKey != "" }
func (p *Meteostat) SourceLabel() string { return "Meteostat (Historical)" }

// cocoConditions maps Meteostat condition codes (1-27).
var cocoConditions = map[int]string{
	1:  "Clear",
	2:  "Fair",
	3:  "Cloudy",
	4:  "Overcast",
	5:  "Fog",
	6:  "Freezing Fog",
	7:  "Light Rain",
	8:  "Rain",
	9:  "Heavy Rain",
	10: "Freezing Rain",
	11: "Heavy Freezing Rain",
	12: "Sleet",
	13: "Heavy Sleet",
	14: "Light Snowfall",
	15: "Snowfall",
	16: "Heavy Snowfall",
	17: "Rain Shower",
	18: "Heavy Rain Shower",
	19: "Sleet Shower",
	20: "Heavy Sleet Shower",
	21: "Snow Shower",
	22: "Heavy Snow Shower",
	23: "Lightning",
	24: "Hail",
	25: "Thunderstorm",
	26: "Heavy Thunderstorm",
	27: "Storm",
}

var cocoIcons = map[int]string{
	1:  "113",
	2:  "116",
	3:  "119",
	4:  "122",
	5:  "248",
	6:  "260",
	7:  "293",
	8:  "296",
	9:  "302",
	10: "311",
	11: "314",
	12: "317",
	13: "320",
	14: "326",
	15: "332",
	16: "338",
	17: "353",
	18: "359",
	19: "362",
	20: "365",
	21: "368",
	22: "371",
	23: "386",
	24: "374",
	25: "389",
	26: "392",
	27: "395",
}

func cocoCondition(code *float64) string {
	if code != nil {
		if c, ok := cocoConditions[int(*code)]; ok {
			return c
		}
	}
	return "Unknown"
}

func cocoIcon(code *float64) string {
	if code != nil {
		if c, ok := cocoIcons[int(*code)]; ok {
			return normalize.Icon(c)
		}
	}
	return normalize.Icon(normalize.IconClear)
}

// prcpChance is the station-data heuristic: any recorded precipitation means
// a wet period.
func prcpChance(prcp *float64) float64 {
	if prcp != nil && *prcp > 0 {
		return 70
	}
	return 20
}

type meteostatHour struct {
	Time string   `json:"time"`
	Temp *float64 `json:"temp"`
	Rhum *float64 `json:"rhum"`
	Prcp *float64 `json:"prcp"`
	Wdir *float64 `json:"wdir"`
	Wspd *float64 `json:"wspd"`
	Pres *float64 `json:"pres"`
	Coco *float64 `json:"coco"`
}

type meteostatDay struct {
	Date string   `json:"date"`
	Tavg *float64 `json:"tavg"`
	Tmin *float64 `json:"tmin"`
	Tmax *float64 `json:"tmax"`
	Prcp *float64 `json:"prcp"`
	Wspd *float64 `json:"wspd"`
	Pres *float64 `json:"pres"`
}

func (p *Meteostat) get(ctx context.Context, endpoint string, params url.Values, v interface{}) error {
	return fetchJSON(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, params.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("X-RapidAPI-Key", p.apiKey)
		req.Header.Set("X-RapidAPI-Host", "meteostat.p.rapidapi.com")
		return req, nil
	}, v)
}

func pointParams(lat, lon float64, start, end string) url.Values {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))
	params.Set("start", start)
	params.Set("end", end)
	return params
}

// FetchSnapshot returns the last 30 days of station observations: daily
// entries are the most recent 7 days and hourly the last 24 observations.
func (p *Meteostat) FetchSnapshot(ctx context.Context, lat, lon float64, days int) (weather.Snapshot, error) {
	today := time.Now().UTC()

	var dailyResp struct {
		Data []meteostatDay `json:"data"`
	}
	if err := p.get(ctx, "point/daily", pointParams(lat, lon, ymd(today.AddDate(0, 0, -30)), ymd(today)), &dailyResp); err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderMeteostat, "daily", err)
	}

	var hourlyResp struct {
		Data []meteostatHour `json:"data"`
	}
	if err := p.get(ctx, "point/hourly", pointParams(lat, lon, ymd(today.AddDate(0, 0, -1)), ymd(today)), &hourlyResp); err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderMeteostat, "hourly", err)
	}

	return p.transform(dailyResp.Data, hourlyResp.Data, lat, lon), nil
}

func (p *Meteostat) FetchHistorical(ctx context.Context, lat, lon float64, date string) (weather.Snapshot, error) {
	var dailyResp struct {
		Data []meteostatDay `json:"data"`
	}
	if err := p.get(ctx, "point/daily", pointParams(lat, lon, date, date), &dailyResp); err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderMeteostat, "history", err)
	}

	var hourlyResp struct {
		Data []meteostatHour `json:"data"`
	}
	if err := p.get(ctx, "point/hourly", pointParams(lat, lon, date, date), &hourlyResp); err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderMeteostat, "history", err)
	}

	return p.transform(dailyResp.Data, hourlyResp.Data, lat, lon), nil
}

// SearchLocations is unsupported; Meteostat works from coordinates only.
func (p *Meteostat) SearchLocations(ctx context.Context, query string) ([]weather.Location, error) {
	return nil, nil
}

func (p *Meteostat) transform(daily []meteostatDay, hourly []meteostatHour, lat, lon float64) weather.Snapshot {
	var latest meteostatHour
	if len(hourly) > 0 {
		latest = hourly[len(hourly)-1]
	}

	temp := orZero(latest.Temp)
	if latest.Temp == nil && len(daily) > 0 {
		temp = orZero(daily[len(daily)-1].Tavg)
	}

	snap := weather.Snapshot{
		Location: weather.Location{
			Name: fmt.Sprintf("%.2f°, %.2f°", lat, lon),
			Lat:  lat,
			Lon:  lon,
		},
		Current: weather.Current{
			Temperature:   temp,
			Condition:     cocoCondition(latest.Coco),
			Icon:          cocoIcon(latest.Coco),
			Humidity:      orZero(latest.Rhum),
			WindSpeed:     orZero(latest.Wspd),
			WindDirection: normalize.WindDirection(orZero(latest.Wdir)),
			Pressure:      orDefault(latest.Pres, 1013),
			Visibility:    10,
			FeelsLike:     temp,
		},
		Astronomy: weather.Astronomy{
			Sunrise:          "06:00",
			Sunset:           "18:00",
			MoonIllumination: normalize.MoonUnavailable,
		},
	}

	start := 0
	if len(daily) > 7 {
		start = len(daily) - 7
	}
	for _, day := range daily[start:] {
		snap.Daily = append(snap.Daily, weather.DailyEntry{
			Date:                day.Date,
			MaxTemp:             orZero(day.Tmax),
			MinTemp:             orZero(day.Tmin),
			Condition:           "Partly Cloudy", // daily rows carry no condition code
			Icon:                normalize.Icon("116"),
			WindSpeed:           orZero(day.Wspd),
			PrecipitationChance: prcpChance(day.Prcp),
			PrecipitationMm:     orZero(day.Prcp),
		})
	}

	hstart := 0
	if len(hourly) > 24 {
		hstart = len(hourly) - 24
	}
	for _, hour := range hourly[hstart:] {
		snap.Hourly = append(snap.Hourly, weather.HourlyEntry{
			Time:                hour.Time,
			Temperature:         orZero(hour.Temp),
			Condition:           cocoCondition(hour.Coco),
			Icon:                cocoIcon(hour.Coco),
			Humidity:            orZero(hour.Rhum),
			WindSpeed:           orZero(hour.Wspd),
			PrecipitationChance: prcpChance(hour.Prcp),
			PrecipitationMm:     orZero(hour.Prcp),
			Pressure:            orDefault(hour.Pres, 1013),
			Visibility:          10,
		})
	}

	return snap
}
