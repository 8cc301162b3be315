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

const qweatherDemoKey = "b196010778a24af19765ed70af849801"

// QWeather adapts devapi.qweather.com. Every numeric field in its payloads is
// a JSON string, and the forecast requires one request per concern (now,
// daily, 24h, air). Its AQI is on the Chinese national scale, so the stored
// AQI is recomputed from the PM2.5 component on the EPA scale.
type QWeather struct {
	apiKey  string
	baseURL string
	geoURL  string
	httpCfg httpConfig
	circuit *gobreaker.CircuitBreaker
}

func NewQWeather(client *http.Client, apiKey string, cb *gobreaker.CircuitBreaker) *QWeather {
	if apiKey == "" {
		apiKey = qweatherDemoKey
	}
	return &QWeather{
		apiKey:  apiKey,
		baseURL: "https://devapi.qweather.com/v7",
		geoURL:  "https://geoapi.qweather.com/v2",
		httpCfg: defaultHTTPConfig(client),
		circuit: cb,
	}
}

func (p *QWeather) IsConfigured() bool { return p.apiKey != "" }

func (p *QWeather) SourceLabel() string {
	if p.apiKey == qweatherDemoKey {
		return "QWeather"
	}
	return "QWeather (Custom)"
}

// qweatherIcons maps QWeather condition codes (100-999) into the canonical
// icon space.
var qweatherIcons = map[string]string{
	"100": "113",
	"101": "116",
	"102": "119",
	"103": "122",
	"104": "122",
	"150": "113",
	"151": "116",
	"300": "176",
	"301": "266",
	"302": "356",
	"303": "389",
	"304": "353",
	"305": "176",
	"306": "296",
	"307": "302",
	"308": "305",
	"309": "293",
	"310": "359",
	"311": "359",
	"312": "359",
	"313": "263",
	"314": "263",
	"315": "305",
	"316": "308",
	"317": "359",
	"318": "359",
	"399": "185",
	"400": "227",
	"401": "338",
	"402": "335",
	"403": "395",
	"404": "317",
	"405": "365",
	"406": "374",
	"407": "365",
	"408": "335",
	"409": "227",
	"410": "335",
	"499": "338",
	"500": "260",
	"501": "248",
	"502": "260",
	"503": "185",
	"504": "185",
	"507": "185",
	"508": "185",
	"509": "248",
	"510": "260",
	"511": "248",
	"512": "248",
	"513": "248",
	"514": "248",
	"515": "248",
	"900": "113",
	"901": "230",
	"999": "119",
}

func qweatherIcon(code string) string {
	if mapped, ok := qweatherIcons[code]; ok {
		return normalize.Icon(mapped)
	}
	return normalize.Icon(normalize.IconClear)
}

type qweatherNow struct {
	Temp      string `json:"temp"`
	FeelsLike string `json:"feelsLike"`
	Text      string `json:"text"`
	Icon      string `json:"icon"`
	Humidity  string `json:"humidity"`
	WindSpeed string `json:"windSpeed"`
	WindDir   string `json:"windDir"`
	Wind360   string `json:"wind360"`
	Pressure  string `json:"pressure"`
	Vis       string `json:"vis"`
}

type qweatherDaily struct {
	FxDate       string `json:"fxDate"`
	TempMax      string `json:"tempMax"`
	TempMin      string `json:"tempMin"`
	TextDay      string `json:"textDay"`
	IconDay      string `json:"iconDay"`
	Precip       string `json:"precip"`
	WindSpeedDay string `json:"windSpeedDay"`
	Humidity     string `json:"humidity"`
	UVIndex      string `json:"uvIndex"`
	Sunrise      string `json:"sunrise"`
	Sunset       string `json:"sunset"`
	MoonPhase    string `json:"moonPhase"`
}

type qweatherHourly struct {
	FxTime    string `json:"fxTime"`
	Temp      string `json:"temp"`
	Text      string `json:"text"`
	Icon      string `json:"icon"`
	Humidity  string `json:"humidity"`
	WindSpeed string `json:"windSpeed"`
	Pop       string `json:"pop"`
	Precip    string `json:"precip"`
	Pressure  string `json:"pressure"`
	Vis       string `json:"vis"`
}

type qweatherAir struct {
	AQI   string `json:"aqi"`
	PM2p5 string `json:"pm2p5"`
	PM10  string `json:"pm10"`
	O3    string `json:"o3"`
	NO2   string `json:"no2"`
	SO2   string `json:"so2"`
	CO    string `json:"co"`
}

func (p *QWeather) get(ctx context.Context, base, endpoint string, params url.Values, v interface{}) error {
	params.Set("key", p.apiKey)
	params.Set("lang", "en")
	return fetchJSON(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		u := fmt.Sprintf("%s/%s?%s", base, endpoint, params.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}, v)
}

// daysParam picks the coarsest forecast tier covering the requested days.
func daysParam(days int) string {
	switch {
	case days <= 3:
		return "3d"
	case days <= 7:
		return "7d"
	case days <= 10:
		return "10d"
	case days <= 15:
		return "15d"
	default:
		return "30d"
	}
}

func (p *QWeather) FetchSnapshot(ctx context.Context, lat, lon float64, days int) (weather.Snapshot, error) {
	location := fmt.Sprintf("%.2f,%.2f", lon, lat)
	params := func() url.Values {
		v := url.Values{}
		v.Set("location", location)
		return v
	}

	var nowResp struct {
		Now qweatherNow `json:"now"`
	}
	if err := p.get(ctx, p.baseURL, "weather/now", params(), &nowResp); err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderQWeather, "current", err)
	}

	var dailyResp struct {
		Daily []qweatherDaily `json:"daily"`
	}
	if err := p.get(ctx, p.baseURL, "weather/"+daysParam(days), params(), &dailyResp); err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderQWeather, "daily", err)
	}

	var hourlyResp struct {
		Hourly []qweatherHourly `json:"hourly"`
	}
	if err := p.get(ctx, p.baseURL, "weather/24h", params(), &hourlyResp); err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderQWeather, "hourly", err)
	}

	// Air quality is best effort.
	var air *qweatherAir
	var airResp struct {
		Now qweatherAir `json:"now"`
	}
	if err := p.get(ctx, p.baseURL, "air/now", params(), &airResp); err == nil && airResp.Now.AQI != "" {
		air = &airResp.Now
	}

	return p.transform(nowResp.Now, dailyResp.Daily, hourlyResp.Hourly, air, lat, lon), nil
}

func (p *QWeather) transform(now qweatherNow, daily []qweatherDaily, hourly []qweatherHourly, air *qweatherAir, lat, lon float64) weather.Snapshot {
	windDir := now.WindDir
	if windDir == "" {
		windDir = normalize.WindDirection(num(now.Wind360))
	}

	var uv float64
	if air != nil {
		uv = num(air.AQI) / 50 // rough UV estimate, no UV endpoint on the free tier
	}

	snap := weather.Snapshot{
		Location: weather.Location{
			Name: fmt.Sprintf("%.2f°, %.2f°", lat, lon),
			Lat:  lat,
			Lon:  lon,
		},
		Current: weather.Current{
			Temperature:   num(now.Temp),
			Condition:     orStr(now.Text, "Unknown"),
			Icon:          qweatherIcon(now.Icon),
			Humidity:      num(now.Humidity),
			WindSpeed:     num(now.WindSpeed),
			WindDirection: windDir,
			Pressure:      numDef(now.Pressure, 1013),
			UVIndex:       uv,
			Visibility:    numDef(now.Vis, 10),
			FeelsLike:     numDef(now.FeelsLike, num(now.Temp)),
		},
		Astronomy: weather.Astronomy{
			Sunrise:          "06:00",
			Sunset:           "18:00",
			MoonIllumination: normalize.MoonUnavailable,
		},
	}

	if len(daily) > 0 {
		if daily[0].Sunrise != "" {
			snap.Astronomy.Sunrise = daily[0].Sunrise
		}
		if daily[0].Sunset != "" {
			snap.Astronomy.Sunset = daily[0].Sunset
		}
		snap.Astronomy.MoonPhase = daily[0].MoonPhase
	}

	for _, day := range daily {
		snap.Daily = append(snap.Daily, weather.DailyEntry{
			Date:                day.FxDate,
			MaxTemp:             num(day.TempMax),
			MinTemp:             num(day.TempMin),
			Condition:           orStr(day.TextDay, "Unknown"),
			Icon:                qweatherIcon(day.IconDay),
			Humidity:            num(day.Humidity),
			WindSpeed:           num(day.WindSpeedDay),
			PrecipitationChance: num(day.Precip),
			PrecipitationMm:     num(day.Precip),
			UVIndex:             num(day.UVIndex),
		})
	}

	for i, hour := range hourly {
		if i >= 24 {
			break
		}
		snap.Hourly = append(snap.Hourly, weather.HourlyEntry{
			Time:                hour.FxTime,
			Temperature:         num(hour.Temp),
			Condition:           orStr(hour.Text, "Unknown"),
			Icon:                qweatherIcon(hour.Icon),
			Humidity:            num(hour.Humidity),
			WindSpeed:           num(hour.WindSpeed),
			PrecipitationChance: num(hour.Pop),
			PrecipitationMm:     num(hour.Precip),
			Pressure:            numDef(hour.Pressure, 1013),
			Visibility:          numDef(hour.Vis, 10),
		})
	}

	if air != nil {
		snap.AirQuality = &weather.AirQuality{
			AQI:  normalize.AQIFromPM25(num(air.PM2p5)),
			CO:   num(air.CO),
			NO2:  num(air.NO2),
			O3:   num(air.O3),
			SO2:  num(air.SO2),
			PM25: num(air.PM2p5),
			PM10: num(air.PM10),
		}
	}

	return snap
}

func (p *QWeather) FetchHistorical(ctx context.Context, lat, lon float64, date string) (weather.Snapshot, error) {
	location := fmt.Sprintf("%.2f,%.2f", lon, lat)
	params := url.Values{}
	params.Set("location", location)
	params.Set("date", date)

	var payload struct {
		WeatherDaily []qweatherDaily `json:"weatherDaily"`
	}
	if err := p.get(ctx, p.baseURL, "historical/weather", params, &payload); err != nil {
		return weather.Snapshot{}, provErr(weather.ProviderQWeather, "history", err)
	}
	if len(payload.WeatherDaily) == 0 {
		return weather.Snapshot{}, provErr(weather.ProviderQWeather, "history", fmt.Errorf("no observation for %s", date))
	}

	day := payload.WeatherDaily[0]
	now := qweatherNow{
		Temp:     day.TempMax,
		Text:     day.TextDay,
		Icon:     day.IconDay,
		Humidity: day.Humidity,
	}
	return p.transform(now, payload.WeatherDaily, nil, nil, lat, lon), nil
}

func (p *QWeather) SearchLocations(ctx context.Context, query string) ([]weather.Location, error) {
	params := url.Values{}
	params.Set("location", query)
	params.Set("number", "10")

	var payload struct {
		Code     string `json:"code"`
		Location []struct {
			Name    string `json:"name"`
			Adm1    string `json:"adm1"`
			Adm2    string `json:"adm2"`
			Country string `json:"country"`
			Lat     string `json:"lat"`
			Lon     string `json:"lon"`
		} `json:"location"`
	}
	if err := p.get(ctx, p.geoURL, "city/lookup", params, &payload); err != nil {
		return nil, provErr(weather.ProviderQWeather, "search", err)
	}
	if payload.Code != "200" {
		return nil, nil
	}

	locs := make([]weather.Location, 0, len(payload.Location))
	for _, l := range payload.Location {
		region := l.Adm2
		if region == "" {
			region = l.Adm1
		}
		locs = append(locs, weather.Location{
			Name:    l.Name,
			Country: l.Country,
			Region:  region,
			Lat:     num(l.Lat),
			Lon:     num(l.Lon),
		})
	}
	return locs, nil
}

func numDef(s string, def float64) float64 {
	if v := num(s); v != 0 {
		return v
	}
	return def
}
