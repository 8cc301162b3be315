package weather

// Location identifies a place a snapshot was resolved for. Name may be a
// coordinate string (e.g. "48.86°, 2.35°") when the provider has no reverse
// geocoding.
type Location struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Region  string  `json:"region"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Current holds present-moment conditions in canonical units: temperature in
// Celsius, wind in km/h, visibility in km, pressure in hPa. UVIndex is 0 when
// the provider does not report it.
type Current struct {
	Temperature   float64 `json:"temperature"`
	Condition     string  `json:"condition"`
	Icon          string  `json:"icon"`
	Humidity      float64 `json:"humidity"`
	WindSpeed     float64 `json:"windSpeed"`
	WindDirection string  `json:"windDirection"`
	Pressure      float64 `json:"pressure"`
	UVIndex       float64 `json:"uvIndex"`
	Visibility    float64 `json:"visibility"`
	FeelsLike     float64 `json:"feelsLike"`
}

// HourlyEntry is one hour of forecast (or, for historical providers, one hour
// of observation). Entries are insertion-ordered by time; callers must not
// re-sort them.
type HourlyEntry struct {
	Time                string  `json:"time"`
	Temperature         float64 `json:"temperature"`
	Condition           string  `json:"condition"`
	Icon                string  `json:"icon"`
	Humidity            float64 `json:"humidity"`
	WindSpeed           float64 `json:"windSpeed"`
	PrecipitationChance float64 `json:"precipitationChance"`
	PrecipitationMm     float64 `json:"precipitationMm"`
	UVIndex             float64 `json:"uvIndex"`
	Pressure            float64 `json:"pressure"`
	Visibility          float64 `json:"visibility"`
}

// DailyEntry is one day of forecast. Astronomy is nil when the provider does
// not supply per-day values; that is distinct from a zero-valued record.
type DailyEntry struct {
	Date                string     `json:"date"`
	MaxTemp             float64    `json:"maxTemp"`
	MinTemp             float64    `json:"minTemp"`
	Condition           string     `json:"condition"`
	Icon                string     `json:"icon"`
	Humidity            float64    `json:"humidity"`
	WindSpeed           float64    `json:"windSpeed"`
	UVIndex             float64    `json:"uvIndex"`
	PrecipitationChance float64    `json:"precipitationChance"`
	PrecipitationMm     float64    `json:"precipitationMm"`
	Astronomy           *Astronomy `json:"astronomy,omitempty"`
}

// Astronomy holds formatted local sunrise/sunset times and moon data.
// MoonIllumination is a fraction in [0,1]; -1 is the only legal "not
// available" value and must never be conflated with 0% illumination.
type Astronomy struct {
	Sunrise          string  `json:"sunrise"`
	Sunset           string  `json:"sunset"`
	MoonPhase        string  `json:"moonPhase"`
	MoonIllumination float64 `json:"moonIllumination"`
}

// AirQuality carries the normalized EPA AQI (0-500, derived from PM2.5) plus
// raw pollutant concentrations. Providers reporting a categorical or national
// index are converted, not passed through.
type AirQuality struct {
	AQI  int     `json:"aqi"`
	CO   float64 `json:"co"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	SO2  float64 `json:"so2"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
}

// Snapshot is the unified output of any provider adapter. All-or-nothing per
// call: a failed fetch never yields a partially populated Snapshot.
type Snapshot struct {
	Location   Location      `json:"location"`
	Current    Current       `json:"current"`
	Hourly     []HourlyEntry `json:"hourly"`
	Daily      []DailyEntry  `json:"daily"`
	Astronomy  Astronomy     `json:"astronomy"`
	AirQuality *AirQuality   `json:"airQuality,omitempty"`
}
