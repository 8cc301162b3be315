package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/weatherwell/weathercore/internal/weather"
	"github.com/weatherwell/weathercore/internal/weather/normalize"
)

func testBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: name})
}

func testClient() *http.Client {
	return &http.Client{Timeout: 5 * time.Second}
}

const weatherAPIForecastFixture = `{
	"location": {"name": "London", "country": "United Kingdom", "region": "City of London", "lat": 51.52, "lon": -0.11},
	"current": {
		"temp_c": 18.5, "humidity": 65, "wind_kph": 12.3, "wind_dir": "SW",
		"pressure_mb": 1015, "uv": 4, "vis_km": 10, "feelslike_c": 17.9,
		"condition": {"text": "Partly cloudy", "icon": "//cdn.weatherapi.com/weather/64x64/day/116.png"},
		"air_quality": {"co": 230.3, "no2": 15.5, "o3": 54.4, "so2": 7.9, "pm2_5": 40.0, "pm10": 42.1}
	},
	"forecast": {"forecastday": [{
		"date": "2026-08-30",
		"day": {
			"maxtemp_c": 21.0, "mintemp_c": 12.0, "avgtemp_c": 16.5, "avghumidity": 70,
			"maxwind_kph": 20.0, "avgvis_km": 9.5, "uv": 5, "daily_chance_of_rain": 40, "totalprecip_mm": 1.2,
			"condition": {"text": "Partly cloudy", "icon": "//cdn.weatherapi.com/weather/64x64/day/116.png"}
		},
		"astro": {"sunrise": "6:12 AM", "sunset": "7:48 PM", "moon_phase": "Waxing Gibbous", "moon_illumination": "75"},
		"hour": [
			{"time": "2026-08-30 00:00", "temp_c": 14.0, "humidity": 80, "wind_kph": 8.0,
			 "chance_of_rain": 10, "precip_mm": 0, "uv": 0, "pressure_mb": 0, "vis_km": 0,
			 "condition": {"text": "Clear", "icon": "//cdn.weatherapi.com/weather/64x64/night/113.png"}}
		]
	}]}
}`

func TestWeatherAPIFetchSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/forecast.json") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") == "" {
			t.Fatal("missing api key")
		}
		if r.URL.Query().Get("aqi") != "yes" {
			t.Fatal("expected aqi=yes")
		}
		w.Write([]byte(weatherAPIForecastFixture))
	}))
	defer srv.Close()

	p := NewWeatherAPI(testClient(), "", testBreaker(t.Name()))
	p.baseURL = srv.URL
	snap, err := p.FetchSnapshot(context.Background(), 51.52, -0.11, 7)
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}

	if snap.Location.Name != "London" {
		t.Errorf("location name = %q", snap.Location.Name)
	}
	if snap.AirQuality == nil {
		t.Fatal("expected air quality")
	}
	// pm2_5 of 40 falls in the 101-150 EPA band, never the raw pollutant value.
	if snap.AirQuality.AQI < 101 || snap.AirQuality.AQI > 150 {
		t.Errorf("AQI = %d, want within [101, 150]", snap.AirQuality.AQI)
	}
	if snap.Astronomy.MoonIllumination != 0.75 {
		t.Errorf("moon illumination = %v, want 0.75", snap.Astronomy.MoonIllumination)
	}
	if len(snap.Hourly) != 1 {
		t.Fatalf("hourly entries = %d", len(snap.Hourly))
	}
	// Zero pressure and visibility readings take the canonical defaults.
	if snap.Hourly[0].Pressure != 1013 || snap.Hourly[0].Visibility != 10 {
		t.Errorf("hourly defaults = %v hPa / %v km", snap.Hourly[0].Pressure, snap.Hourly[0].Visibility)
	}
}

func TestWeatherAPISourceLabel(t *testing.T) {
	demo := NewWeatherAPI(testClient(), "", testBreaker(t.Name()+"-demo"))
	if got := demo.SourceLabel(); got != "WeatherAPI" {
		t.Errorf("demo label = %q", got)
	}
	custom := NewWeatherAPI(testClient(), "my-own-key-12345", testBreaker(t.Name()+"-custom"))
	if got := custom.SourceLabel(); got != "WeatherAPI (Custom)" {
		t.Errorf("custom label = %q", got)
	}
}

func TestOpenWeatherMapCurrentUnits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/weather"):
			w.Write([]byte(`{
				"name": "Berlin", "sys": {"country": "DE", "sunrise": 1756500000, "sunset": 1756550000},
				"coord": {"lat": 52.52, "lon": 13.41},
				"main": {"temp": 22.0, "feels_like": 21.5, "humidity": 55, "pressure": 1018},
				"wind": {"speed": 5.0, "deg": 90},
				"visibility": 8000,
				"weather": [{"description": "light rain", "icon": "10d"}]
			}`))
		case strings.HasSuffix(r.URL.Path, "/air_pollution"):
			w.Write([]byte(`{"list": [{"components": {"co": 200, "no2": 10, "o3": 60, "so2": 5, "pm2_5": 8.0, "pm10": 15}}]}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	p := NewOpenWeatherMap(testClient(), "", testBreaker(t.Name()))
	p.baseURL = srv.URL
	snap, err := p.FetchSnapshot(context.Background(), 52.52, 13.41, 1)
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}

	if snap.Current.WindSpeed != 18 { // 5 m/s
		t.Errorf("wind = %v km/h, want 18", snap.Current.WindSpeed)
	}
	if snap.Current.Visibility != 8 {
		t.Errorf("visibility = %v km, want 8", snap.Current.Visibility)
	}
	if snap.Current.WindDirection != "E" {
		t.Errorf("wind direction = %q, want E", snap.Current.WindDirection)
	}
	if !strings.Contains(snap.Current.Icon, "/day/296.png") {
		t.Errorf("icon = %q, want canonical 296 day icon", snap.Current.Icon)
	}
	if snap.AirQuality == nil {
		t.Fatal("expected air quality")
	}
	// pm2_5 of 8 sits in the Good band; the raw 1-5 index never leaks out.
	if snap.AirQuality.AQI < 1 || snap.AirQuality.AQI > 50 {
		t.Errorf("AQI = %d, want within [1, 50]", snap.AirQuality.AQI)
	}
	if snap.Astronomy.MoonIllumination != normalize.MoonUnavailable {
		t.Errorf("moon illumination = %v, want sentinel", snap.Astronomy.MoonIllumination)
	}
}

func TestOpenWeatherMapForecastGrouping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"city": {"name": "Berlin", "country": "DE", "coord": {"lat": 52.52, "lon": 13.41}, "sunrise": 1756500000, "sunset": 1756550000},
			"list": [
				{"dt": 1756512000, "main": {"temp": 20, "feels_like": 19, "humidity": 60, "pressure": 1015}, "wind": {"speed": 3, "deg": 180}, "pop": 0.2, "weather": [{"description": "few clouds", "icon": "02d"}]},
				{"dt": 1756522800, "main": {"temp": 26, "feels_like": 25, "humidity": 40, "pressure": 1014}, "wind": {"speed": 6, "deg": 200}, "pop": 0.6, "rain": {"3h": 1.5}, "weather": [{"description": "rain", "icon": "10d"}]},
				{"dt": 1756598400, "main": {"temp": 18, "feels_like": 17, "humidity": 70, "pressure": 1016}, "wind": {"speed": 2, "deg": 90}, "pop": 0.1, "weather": [{"description": "clear sky", "icon": "01d"}]}
			]
		}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherMap(testClient(), "", testBreaker(t.Name()))
	p.baseURL = srv.URL
	snap, err := p.FetchSnapshot(context.Background(), 52.52, 13.41, 5)
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}

	if len(snap.Daily) != 2 {
		t.Fatalf("daily entries = %d, want 2", len(snap.Daily))
	}
	day := snap.Daily[0]
	if day.MaxTemp != 26 || day.MinTemp != 20 {
		t.Errorf("temps = %v/%v, want 26/20", day.MaxTemp, day.MinTemp)
	}
	if day.Humidity != 50 {
		t.Errorf("humidity = %v, want mean 50", day.Humidity)
	}
	if day.WindSpeed != 6*3.6 {
		t.Errorf("wind = %v, want worst-case %v", day.WindSpeed, 6*3.6)
	}
	if day.PrecipitationChance != 60 {
		t.Errorf("chance = %v, want 60", day.PrecipitationChance)
	}
	if day.PrecipitationMm != 1.5 {
		t.Errorf("precip = %v, want 1.5", day.PrecipitationMm)
	}
}

func TestOpenMeteoTransform(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"current": {"temperature_2m": 19.4, "relative_humidity_2m": 62, "apparent_temperature": 18.7,
				"weather_code": 61, "pressure_msl": 1009, "wind_speed_10m": 14.2, "wind_direction_10m": 270},
			"hourly": {
				"time": ["2026-08-30T00:00", "2026-08-30T01:00"],
				"temperature_2m": [15.1, 14.8],
				"relative_humidity_2m": [75, 78],
				"precipitation_probability": [30, 35],
				"precipitation": [0.2, 0.4],
				"weather_code": [61, 63],
				"pressure_msl": [1010, 1010],
				"wind_speed_10m": [10, 11],
				"uv_index": [0, 0],
				"visibility": [24000, 20000]
			},
			"daily": {
				"time": ["2026-08-30"],
				"weather_code": [61],
				"temperature_2m_max": [21.3],
				"temperature_2m_min": [13.9],
				"sunrise": ["2026-08-30T06:21"],
				"sunset": ["2026-08-30T19:54"],
				"uv_index_max": [5.2],
				"precipitation_sum": [2.1],
				"precipitation_probability_max": [45],
				"wind_speed_10m_max": [22.5]
			}
		}`))
	}))
	defer srv.Close()

	p := NewOpenMeteo(testClient(), testBreaker(t.Name()))
	p.baseURL = srv.URL
	snap, err := p.FetchSnapshot(context.Background(), 48.85, 2.35, 7)
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}

	if snap.Location.Name != "48.85°, 2.35°" {
		t.Errorf("location name = %q", snap.Location.Name)
	}
	if snap.Current.Condition != "Slight rain" {
		t.Errorf("condition = %q", snap.Current.Condition)
	}
	if snap.Current.WindDirection != "W" {
		t.Errorf("wind direction = %q", snap.Current.WindDirection)
	}
	if snap.Astronomy.MoonPhase != "" || snap.Astronomy.MoonIllumination != normalize.MoonUnavailable {
		t.Errorf("moon = %q/%v, want unavailable", snap.Astronomy.MoonPhase, snap.Astronomy.MoonIllumination)
	}
	if len(snap.Hourly) != 2 {
		t.Fatalf("hourly entries = %d", len(snap.Hourly))
	}
	if snap.Hourly[0].Visibility != 24 {
		t.Errorf("visibility = %v km, want 24", snap.Hourly[0].Visibility)
	}
	if len(snap.Daily) != 1 || snap.Daily[0].Astronomy == nil {
		t.Fatal("expected one daily entry with astronomy")
	}
	if snap.Daily[0].Astronomy.Sunrise != "6:21 AM" {
		t.Errorf("sunrise = %q, want 6:21 AM", snap.Daily[0].Astronomy.Sunrise)
	}
}

func TestOpenMeteoAlwaysConfigured(t *testing.T) {
	p := NewOpenMeteo(testClient(), testBreaker(t.Name()))
	if !p.IsConfigured() {
		t.Fatal("open-meteo needs no key")
	}
	if p.SourceLabel() != "Open-Meteo" {
		t.Errorf("label = %q", p.SourceLabel())
	}
}

func TestVisualCrossingTransform(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("unitGroup") != "metric" {
			t.Fatal("expected metric unit group")
		}
		w.Write([]byte(`{
			"resolvedAddress": "Sydney, NSW, Australia",
			"latitude": -33.87, "longitude": 151.21,
			"currentConditions": {"temp": 17.2, "feelslike": 16.4, "humidity": 58, "windspeed": 21.3,
				"winddir": 135, "pressure": 1021, "visibility": 10, "uvindex": 3,
				"conditions": "Partially cloudy", "icon": "partly-cloudy-day"},
			"days": [{
				"datetime": "2026-08-30", "tempmax": 19.1, "tempmin": 9.4, "humidity": 61,
				"precip": 0, "precipprob": 10, "windspeed": 25.9, "uvindex": 4,
				"conditions": "Partially cloudy", "icon": "partly-cloudy-day",
				"sunrise": "06:14:00", "sunset": "17:38:00", "moonphase": 0.5,
				"hours": [
					{"datetime": "00:00:00", "temp": 11.0, "humidity": 72, "windspeed": 12.1,
					 "precipprob": 5, "precip": 0, "uvindex": 0, "pressure": 1022, "visibility": 10,
					 "conditions": "Clear", "icon": "clear-night"}
				]
			}]
		}`))
	}))
	defer srv.Close()

	p := NewVisualCrossing(testClient(), "", testBreaker(t.Name()))
	p.baseURL = srv.URL
	snap, err := p.FetchSnapshot(context.Background(), -33.87, 151.21, 7)
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}

	if snap.Location.Name != "Sydney" || snap.Location.Country != "Australia" {
		t.Errorf("location = %q, %q", snap.Location.Name, snap.Location.Country)
	}
	if snap.Astronomy.MoonPhase != "Full Moon" {
		t.Errorf("moon phase = %q, want Full Moon", snap.Astronomy.MoonPhase)
	}
	if snap.Astronomy.MoonIllumination != 0.5 {
		t.Errorf("moon illumination = %v, want raw fraction 0.5", snap.Astronomy.MoonIllumination)
	}
	if snap.Astronomy.Sunrise != "6:14 AM" || snap.Astronomy.Sunset != "5:38 PM" {
		t.Errorf("sun times = %q / %q", snap.Astronomy.Sunrise, snap.Astronomy.Sunset)
	}
	if len(snap.Hourly) != 1 {
		t.Fatalf("hourly entries = %d", len(snap.Hourly))
	}
	if !strings.Contains(snap.Hourly[0].Icon, "/night/113.png") {
		t.Errorf("icon = %q, want night variant", snap.Hourly[0].Icon)
	}
}

func TestVisualCrossingNoSearch(t *testing.T) {
	p := NewVisualCrossing(testClient(), "", testBreaker(t.Name()))
	locs, err := p.SearchLocations(context.Background(), "Sydney")
	if err != nil {
		t.Fatalf("SearchLocations: %v", err)
	}
	if len(locs) != 0 {
		t.Errorf("locations = %d, want none", len(locs))
	}
}

func TestQWeatherStringNumerics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/weather/now"):
			w.Write([]byte(`{"code": "200", "now": {"temp": "23", "feelsLike": "24", "text": "Cloudy",
				"icon": "101", "humidity": "47", "windSpeed": "16", "windDir": "", "wind360": "45",
				"pressure": "1012", "vis": "25"}}`))
		case strings.HasSuffix(r.URL.Path, "/weather/7d"):
			w.Write([]byte(`{"code": "200", "daily": [{"fxDate": "2026-08-30", "tempMax": "26", "tempMin": "18",
				"textDay": "Cloudy", "iconDay": "101", "precip": "0.0", "windSpeedDay": "12",
				"humidity": "50", "uvIndex": "6", "sunrise": "05:42", "sunset": "18:51", "moonPhase": "Waxing Gibbous"}]}`))
		case strings.HasSuffix(r.URL.Path, "/weather/24h"):
			w.Write([]byte(`{"code": "200", "hourly": [{"fxTime": "2026-08-30T15:00+08:00", "temp": "24",
				"text": "Cloudy", "icon": "101", "humidity": "46", "windSpeed": "15", "pop": "20",
				"precip": "0.0", "pressure": "1012", "vis": "24"}]}`))
		case strings.HasSuffix(r.URL.Path, "/air/now"):
			w.Write([]byte(`{"code": "200", "now": {"aqi": "120", "pm2p5": "60", "pm10": "80",
				"o3": "90", "no2": "30", "so2": "8", "co": "0.7"}}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	p := NewQWeather(testClient(), "", testBreaker(t.Name()))
	p.baseURL = srv.URL
	snap, err := p.FetchSnapshot(context.Background(), 39.90, 116.41, 7)
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}

	if snap.Current.Temperature != 23 {
		t.Errorf("temperature = %v", snap.Current.Temperature)
	}
	// Empty windDir text falls back to the wind360 degrees.
	if snap.Current.WindDirection != "NE" {
		t.Errorf("wind direction = %q, want NE", snap.Current.WindDirection)
	}
	if snap.AirQuality == nil {
		t.Fatal("expected air quality")
	}
	// pm2p5 of 60 is in the EPA 151-200 band; the national-scale 120 is discarded.
	if snap.AirQuality.AQI < 151 || snap.AirQuality.AQI > 200 {
		t.Errorf("AQI = %d, want within [151, 200]", snap.AirQuality.AQI)
	}
	if snap.Astronomy.Sunrise != "05:42" || snap.Astronomy.MoonPhase != "Waxing Gibbous" {
		t.Errorf("astronomy = %+v", snap.Astronomy)
	}
	if snap.Astronomy.MoonIllumination != normalize.MoonUnavailable {
		t.Errorf("moon illumination = %v, want sentinel", snap.Astronomy.MoonIllumination)
	}
}

func TestQWeatherAirBestEffort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/air/now"):
			w.WriteHeader(http.StatusForbidden)
		case strings.HasSuffix(r.URL.Path, "/weather/now"):
			w.Write([]byte(`{"now": {"temp": "20", "text": "Sunny", "icon": "100", "humidity": "40",
				"windSpeed": "10", "windDir": "N", "pressure": "1013", "vis": "30", "feelsLike": "20"}}`))
		case strings.HasSuffix(r.URL.Path, "/weather/3d"):
			w.Write([]byte(`{"daily": []}`))
		case strings.HasSuffix(r.URL.Path, "/weather/24h"):
			w.Write([]byte(`{"hourly": []}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	p := NewQWeather(testClient(), "", testBreaker(t.Name()))
	p.baseURL = srv.URL
	snap, err := p.FetchSnapshot(context.Background(), 39.90, 116.41, 1)
	if err != nil {
		t.Fatalf("air failure must not fail the snapshot: %v", err)
	}
	if snap.AirQuality != nil {
		t.Error("expected no air quality block")
	}
	if snap.Astronomy.Sunrise != "06:00" || snap.Astronomy.Sunset != "18:00" {
		t.Errorf("astronomy defaults = %q / %q", snap.Astronomy.Sunrise, snap.Astronomy.Sunset)
	}
}

func TestMeteostatHistoricalWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-RapidAPI-Key") == "" {
			t.Fatal("missing rapidapi key header")
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/point/daily"):
			w.Write([]byte(`{"data": [
				{"date": "2026-08-22", "tavg": 17.0, "tmin": 12.0, "tmax": 22.0, "prcp": 0.0, "wspd": 14.0, "pres": 1016},
				{"date": "2026-08-23", "tavg": 16.5, "tmin": 11.5, "tmax": 21.0, "prcp": 3.2, "wspd": 18.0, "pres": 1011}
			]}`))
		case strings.HasSuffix(r.URL.Path, "/point/hourly"):
			w.Write([]byte(`{"data": [
				{"time": "2026-08-29 22:00:00", "temp": 15.2, "rhum": 71, "prcp": 0.0, "wdir": 315, "wspd": 9.7, "pres": 1018, "coco": 2},
				{"time": "2026-08-29 23:00:00", "temp": 14.8, "rhum": null, "prcp": null, "wdir": null, "wspd": null, "pres": null, "coco": null}
			]}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	p := NewMeteostat(testClient(), "", testBreaker(t.Name()))
	p.baseURL = srv.URL
	snap, err := p.FetchSnapshot(context.Background(), 50.11, 8.68, 7)
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}

	if snap.Current.Temperature != 14.8 {
		t.Errorf("temperature = %v, want latest observation", snap.Current.Temperature)
	}
	// Null station fields fall back to defaults instead of failing.
	if snap.Current.Pressure != 1013 {
		t.Errorf("pressure = %v, want default 1013", snap.Current.Pressure)
	}
	if snap.Current.Condition != "Unknown" {
		t.Errorf("condition = %q, want Unknown for null coco", snap.Current.Condition)
	}
	if len(snap.Daily) != 2 {
		t.Fatalf("daily entries = %d", len(snap.Daily))
	}
	if snap.Daily[0].PrecipitationChance != 20 || snap.Daily[1].PrecipitationChance != 70 {
		t.Errorf("precip chances = %v / %v, want 20 / 70",
			snap.Daily[0].PrecipitationChance, snap.Daily[1].PrecipitationChance)
	}
	if p.SourceLabel() != "Meteostat (Historical)" {
		t.Errorf("label = %q", p.SourceLabel())
	}
}

func TestMeteostatNoSearch(t *testing.T) {
	p := NewMeteostat(testClient(), "", testBreaker(t.Name()))
	locs, err := p.SearchLocations(context.Background(), "Frankfurt")
	if err != nil || len(locs) != 0 {
		t.Fatalf("locs = %v, err = %v", locs, err)
	}
}

func TestDoRequestRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	cfg := defaultHTTPConfig(testClient())
	cfg.Backoff.InitialInterval = time.Millisecond

	var out struct {
		OK bool `json:"ok"`
	}
	err := fetchJSON(context.Background(), cfg, testBreaker(t.Name()), func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, srv.URL, nil)
	}, &out)
	if err != nil {
		t.Fatalf("fetchJSON: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !out.OK {
		t.Error("body not decoded")
	}
}

func TestRegistryCoversAllProviders(t *testing.T) {
	reg := Registry(testClient())
	for _, id := range []string{
		weather.ProviderWeatherAPI,
		weather.ProviderOpenWeatherMap,
		weather.ProviderVisualCrossing,
		weather.ProviderOpenMeteo,
		weather.ProviderQWeather,
		weather.ProviderMeteostat,
	} {
		build, ok := reg[id]
		if !ok {
			t.Fatalf("no builder for %s", id)
		}
		p := build("", testBreaker(t.Name()+id))
		if p == nil {
			t.Fatalf("builder for %s returned nil", id)
		}
	}
}
