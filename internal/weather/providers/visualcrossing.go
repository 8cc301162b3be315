package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/weatherwell/weathercore/internal/weather"
	"github.com/weatherwell/weathercore/internal/weather/normalize"
)

const visualCrossingDemoKey = "UQV5F8J9S55QF3KU8CUM77YC7"

// VisualCrossing adapts the Visual Crossing timeline API. It is the only
// provider that reports the moon phase as a raw fraction, and the only one
// without a location search endpoint.
type VisualCrossing struct {
	apiKey  string
	baseURL string
	httpCfg httpConfig
	circuit *gobreaker.CircuitBreaker
}

func NewVisualCrossing(client *http.Client, apiKey string, cb *gobreaker.CircuitBreaker) *VisualCrossing {
	if apiKey == "" {
		apiKey = visualCrossingDemoKey
	}
	return &VisualCrossing{
		apiKey:  apiKey,
		baseURL: "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline",
		httpCfg: defaultHTTPConfig(client),
		circuit: cb,
	}
}

func (p *VisualCrossing) IsConfigured() bool { return len(p.apiKey) > 10 }

func (p *VisualCrossing) SourceLabel() string {
	if p.apiKey == visualCrossingDemoKey {
		return "Visual Crossing"
	}
	return "Visual Crossing (Custom)"
}

var visualCrossingIcons = map[string]string{
	"clear-day":           "113",
	"clear-night":         "113",
	"partly-cloudy-day":   "116",
	"partly-cloudy-night": "116",
	"cloudy":              "119",
	"rain":                "296",
	"snow":                "332",
	"wind":                "264",
	"fog":                 "248",
}

func vcIcon(icon string) string {
	code, ok := visualCrossingIcons[icon]
	if !ok {
		code = normalize.IconClear
	}
	if strings.HasSuffix(icon, "-night") {
		return normalize.IconNight(code)
	}
	return normalize.Icon(code)
}

type vcHour struct {
	Datetime   string   `json:"datetime"`
	Temp       float64  `json:"temp"`
	Humidity   float64  `json:"humidity"`
	Precip     float64  `json:"precip"`
	PrecipProb float64  `json:"precipprob"`
	WindSpeed  float64  `json:"windspeed"`
	Visibility float64  `json:"visibility"`
	UVIndex    float64  `json:"uvindex"`
	Pressure   float64  `json:"pressure"`
	Conditions string   `json:"conditions"`
	Icon       string   `json:"icon"`
}

type vcDay struct {
	Datetime   string   `json:"datetime"`
	Temp       float64  `json:"temp"`
	TempMax    float64  `json:"tempmax"`
	TempMin    float64  `json:"tempmin"`
	FeelsLike  float64  `json:"feelslike"`
	Humidity   float64  `json:"humidity"`
	Precip     float64  `json:"precip"`
	PrecipProb float64  `json:"precipprob"`
	WindSpeed  float64  `json:"windspeed"`
	WindDir    float64  `json:"winddir"`
	Pressure   float64  `json:"pressure"`
	Visibility float64  `json:"visibility"`
	UVIndex    float64  `json:"uvindex"`
	Conditions string   `json:"conditions"`
	Icon       string   `json:"icon"`
	Sunrise    string   `json:"sunrise"`
	Sunset     string   `json:"sunset"`
	MoonPhase  *float64 `json:"moonphase"`
	Hours      []vcHour `json:"hours"`
}

type vcResponse struct {
	ResolvedAddress   string  `json:"resolvedAddress"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	CurrentConditions *vcDay  `json:"currentConditions"`
	Days              []vcDay `json:"days"`
}

func (p *VisualCrossing) get(ctx context.Context, path string, params url.Values, v interface{}) error {
	params.Set("key", p.apiKey)
	params.Set("unitGroup", "metric")
	return fetchJSON(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		u := fmt.Sprintf("%s/%s?%s", p.baseURL, path, params.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}, v)
}

func (p *VisualCrossing) FetchSnapshot(ctx context.Context, lat, lon float64, days int) (weather.Snapshot, error) {
	if days < 1 {
		days = 1
	}
	if days > 15 {
		days = 15
	}
	today := time.Now().UTC()
	end := today.AddDate(0, 0, days-1)

	params := url.Values{}
	params.Set("include", "days,hours,current,alerts")
	params.Set("elements", "datetime,temp,tempmax,tempmin,feelslike,humidity,precip,precipprob,windspeed,winddir,pressure,visibility,uvindex,conditions,icon,sunrise,sunset,moonphase,description")

	var payload vcResponse
	path := fmt.Sprintf("%f,%f/%s/%s", lat, lon, ymd(today), ymd(end))
	if err := p.get(ctx, path, params, &payload); err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderVisualCrossing, "forecast", err)
	}
	return p.transform(payload)
}

func (p *VisualCrossing) FetchHistorical(ctx context.Context, lat, lon float64, date string) (weather.Snapshot, error) {
	params := url.Values{}
	params.Set("include", "days,hours")
	params.Set("elements", "datetime,temp,tempmax,tempmin,feelslike,humidity,precip,precipprob,windspeed,winddir,pressure,visibility,uvindex,conditions,icon,sunrise,sunset,moonphase")

	var payload vcResponse
	path := fmt.Sprintf("%f,%f/%s", lat, lon, date)
	if err := p.get(ctx, path, params, &payload); err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderVisualCrossing, "history", err)
	}
	return p.transform(payload)
}

// SearchLocations is not supported by the timeline API; the search service
// falls through to other providers.
func (p *VisualCrossing) SearchLocations(ctx context.Context, query string) ([]weather.Location, error) {
	return nil, nil
}

func (p *VisualCrossing) transform(payload vcResponse) (weather.Snapshot, error) {
	if len(payload.Days) == 0 {
		return weather.Snapshot{}, provErr(weather.ProviderVisualCrossing, "transform", fmt.Errorf("no days in response"))
	}

	cur := payload.CurrentConditions
	if cur == nil {
		cur = &payload.Days[0]
	}

	snap := weather.Snapshot{
		Location: vcLocation(payload),
		Current: weather.Current{
			Temperature:   cur.Temp,
			Condition:     orStr(cur.Conditions, "Unknown"),
			Icon:          vcIcon(cur.Icon),
			Humidity:      cur.Humidity,
			WindSpeed:     cur.WindSpeed,
			WindDirection: normalize.WindDirection(cur.WindDir),
			Pressure:      orFloat(cur.Pressure, 1013),
			UVIndex:       cur.UVIndex,
			Visibility:    orFloat(cur.Visibility, 10),
			FeelsLike:     orFloat(cur.FeelsLike, cur.Temp),
		},
		Astronomy: vcAstronomy(payload.Days[0]),
	}

	for i, day := range payload.Days {
		if i >= 7 {
			break
		}
		astro := vcAstronomy(day)
		snap.Daily = append(snap.Daily, weather.DailyEntry{
			Date:                day.Datetime,
			MaxTemp:             day.TempMax,
			MinTemp:             day.TempMin,
			Condition:           orStr(day.Conditions, "Unknown"),
			Icon:                vcIcon(day.Icon),
			Humidity:            day.Humidity,
			WindSpeed:           day.WindSpeed,
			PrecipitationChance: day.PrecipProb,
			PrecipitationMm:     day.Precip,
			UVIndex:             day.UVIndex,
			Astronomy:           &astro,
		})
	}

	// Hourly spans the first two days, trimmed to 24 entries.
	for _, day := range payload.Days {
		if len(snap.Hourly) >= 24 {
			break
		}
		for _, hour := range day.Hours {
			if len(snap.Hourly) >= 24 {
				break
			}
			snap.Hourly = append(snap.Hourly, weather.HourlyEntry{
				Time:                fmt.Sprintf("%sT%s", day.Datetime, hour.Datetime),
				Temperature:         hour.Temp,
				Condition:           orStr(hour.Conditions, "Unknown"),
				Icon:                vcIcon(hour.Icon),
				Humidity:            hour.Humidity,
				WindSpeed:           hour.WindSpeed,
				PrecipitationChance: hour.PrecipProb,
				PrecipitationMm:     hour.Precip,
				UVIndex:             hour.UVIndex,
				Pressure:            orFloat(hour.Pressure, 1013),
				Visibility:          orFloat(hour.Visibility, 10),
			})
		}
	}

	return snap, nil
}

func vcAstronomy(day vcDay) weather.Astronomy {
	astro := weather.Astronomy{
		Sunrise:          vcClock(day.Sunrise),
		Sunset:           vcClock(day.Sunset),
		MoonIllumination: normalize.MoonUnavailable,
	}
	if day.MoonPhase != nil {
		astro.MoonPhase = normalize.MoonPhaseName(*day.MoonPhase)
		astro.MoonIllumination = *day.MoonPhase
	}
	return astro
}

// vcClock converts the timeline API's "HH:MM:SS" into "h:MM AM/PM".
func vcClock(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return s
	}
	return normalize.ClockFromTime(t)
}

func vcLocation(payload vcResponse) weather.Location {
	loc := weather.Location{
		Name:    "Unknown",
		Country: "Unknown",
		Lat:     payload.Latitude,
		Lon:     payload.Longitude,
	}
	parts := strings.Split(payload.ResolvedAddress, ",")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) != "" {
		loc.Name = strings.TrimSpace(parts[0])
		loc.Country = strings.TrimSpace(parts[len(parts)-1])
	}
	if len(parts) > 2 {
		loc.Region = strings.TrimSpace(parts[1])
	}
	return loc
}

func orStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
