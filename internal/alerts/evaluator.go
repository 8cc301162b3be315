package alerts

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/weatherwell/weathercore/internal/common"
	"github.com/weatherwell/weathercore/internal/store"
	"github.com/weatherwell/weathercore/internal/weather"
	"github.com/weatherwell/weathercore/internal/weather/normalize"
)

// staleAfter is how old the last-known location may be before a cycle skips
// silently instead of fetching weather nobody asked about recently.
const staleAfter = 24 * time.Hour

// SnapshotSource yields one snapshot per cycle; *weather.Resolver satisfies it.
type SnapshotSource interface {
	Resolve(ctx context.Context, lat, lon float64, days int, preferred string, creds weather.Credentials) (weather.Snapshot, string, error)
}

// LocationSource is the last-known location store; *store.Memory satisfies it.
type LocationSource interface {
	LastKnown() (store.StoredLocation, bool)
}

// Evaluator runs threshold checks over a fresh snapshot each cycle.
type Evaluator struct {
	source    SnapshotSource
	locations LocationSource
	notifier  Notifier
	preferred string
	creds     weather.Credentials

	now func() time.Time
}

func NewEvaluator(source SnapshotSource, locations LocationSource, notifier Notifier, preferred string, creds weather.Credentials) *Evaluator {
	return &Evaluator{
		source:    source,
		locations: locations,
		notifier:  notifier,
		preferred: preferred,
		creds:     creds,
		now:       time.Now,
	}
}

// severeGroups are checked in order against the lowercased current condition;
// the first group with a keyword hit wins and at most one severe event fires.
var severeGroups = []struct {
	keywords []string
	kind     string
}{
	{[]string{"thunderstorm", "thunder", "lightning"}, "Thunderstorm"},
	{[]string{"heavy rain", "torrential"}, "Heavy Rain"},
	{[]string{"snow", "blizzard", "snowstorm"}, "Snow"},
	{[]string{"hail"}, "Hail"},
}

// RunCycle evaluates every enabled category once. A last-known location older
// than 24 hours skips the cycle without any upstream call. A notifier failure
// in one category never blocks the remaining ones.
func (e *Evaluator) RunCycle(ctx context.Context, cfg Config) error {
	stored, ok := e.locations.LastKnown()
	if !ok {
		return nil
	}
	if e.now().Sub(stored.StoredAt) > staleAfter {
		return nil
	}

	snap, source, err := e.source.Resolve(ctx, stored.Location.Lat, stored.Location.Lon, 7, e.preferred, e.creds)
	if err != nil {
		return fmt.Errorf("alert cycle for %s: %w", stored.Location.Name, err)
	}
	log.Printf("alerts: evaluating %s via %s", stored.Location.Name, source)

	if cfg.EnableUmbrella {
		e.checkUmbrella(ctx, cfg, snap)
	}
	if cfg.EnableWind {
		e.checkWind(ctx, cfg, snap)
	}
	if cfg.EnableUV {
		e.checkUV(ctx, cfg, snap)
	}
	if cfg.EnableTemperature {
		e.checkTemperature(ctx, cfg, snap)
	}
	if cfg.EnableAQI {
		e.checkAQI(ctx, snap)
	}
	if cfg.EnableSevere {
		e.checkSevere(ctx, snap)
	}
	if cfg.EnableDailySummary {
		e.sendDailySummary(ctx, snap)
	}
	return nil
}

func (e *Evaluator) emit(ctx context.Context, event Event) {
	event.ID = uuid.NewString()
	if err := e.notifier.Notify(ctx, event); err != nil {
		log.Printf("alerts: notify %s failed: %v", event.Category, err)
	}
}

// checkUmbrella uses the highest precipitation chance among today's remaining
// hours; hours already elapsed don't count. When no future hour is available
// the daily chance stands in.
func (e *Evaluator) checkUmbrella(ctx context.Context, cfg Config, snap weather.Snapshot) {
	chance, ok := e.maxFutureChance(snap.Hourly)
	if !ok && len(snap.Daily) > 0 {
		chance = snap.Daily[0].PrecipitationChance
	}
	if chance < cfg.RainThreshold {
		return
	}

	e.emit(ctx, Event{
		Category: CategoryUmbrella,
		Title:    "Umbrella Alert",
		Body:     fmt.Sprintf("%.0f%% chance of rain today. Don't forget your umbrella!", chance),
		Payload: map[string]interface{}{
			"rainChance": chance,
			"condition":  snap.Current.Condition,
		},
	})
}

func (e *Evaluator) maxFutureChance(hourly []weather.HourlyEntry) (float64, bool) {
	now := e.now()
	var max float64
	var found bool
	for _, hour := range hourly {
		t, ok := parseHourTime(hour.Time)
		if !ok || !t.After(now) {
			continue
		}
		found = true
		max = math.Max(max, hour.PrecipitationChance)
	}
	return max, found
}

// parseHourTime accepts the hour formats the adapters produce.
func parseHourTime(s string) (time.Time, bool) {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (e *Evaluator) checkWind(ctx context.Context, cfg Config, snap weather.Snapshot) {
	wind := snap.Current.WindSpeed
	if wind < cfg.WindThreshold {
		return
	}

	e.emit(ctx, Event{
		Category: CategoryWind,
		Title:    "Strong Wind Alert",
		Body:     fmt.Sprintf("Wind speed is %.0f km/h. Take precautions when outdoors.", wind),
		Payload:  map[string]interface{}{"windSpeed": math.Round(wind)},
	})
}

func (e *Evaluator) checkUV(ctx context.Context, cfg Config, snap weather.Snapshot) {
	uv := snap.Current.UVIndex
	if uv < cfg.UVThreshold {
		return
	}

	e.emit(ctx, Event{
		Category: CategoryUV,
		Title:    "High UV Alert",
		Body:     fmt.Sprintf("UV Index is %.0f - Wear sunscreen and protective clothing!", uv),
		Payload:  map[string]interface{}{"uvIndex": uv},
	})
}

// checkTemperature fires at most one event; when both thresholds would match
// (a misconfiguration), the high alert wins.
func (e *Evaluator) checkTemperature(ctx context.Context, cfg Config, snap weather.Snapshot) {
	temp := snap.Current.Temperature

	switch {
	case temp >= cfg.HighTempThreshold:
		e.emit(ctx, Event{
			Category: CategoryTemperature,
			Title:    "Temperature High Alert",
			Body:     fmt.Sprintf("Temperature is %.0f°C, above your %.0f°C threshold", temp, cfg.HighTempThreshold),
			Payload: map[string]interface{}{
				"temperature": temp,
				"threshold":   cfg.HighTempThreshold,
				"isHigh":      true,
			},
		})
	case temp <= cfg.LowTempThreshold:
		e.emit(ctx, Event{
			Category: CategoryTemperature,
			Title:    "Temperature Low Alert",
			Body:     fmt.Sprintf("Temperature is %.0f°C, below your %.0f°C threshold", temp, cfg.LowTempThreshold),
			Payload: map[string]interface{}{
				"temperature": temp,
				"threshold":   cfg.LowTempThreshold,
				"isHigh":      false,
			},
		})
	}
}

// checkAQI alerts at the fixed unhealthy boundary (EPA 101), not a
// configurable threshold. No air quality block means no alert.
func (e *Evaluator) checkAQI(ctx context.Context, snap weather.Snapshot) {
	if snap.AirQuality == nil || snap.AirQuality.AQI < 101 {
		return
	}

	aqi := snap.AirQuality.AQI
	category := normalize.AQICategory(aqi)
	e.emit(ctx, Event{
		Category: CategoryAQI,
		Title:    "Air Quality Alert",
		Body:     fmt.Sprintf("Air Quality Index is %d (%s). Consider limiting outdoor activities.", aqi, category),
		Payload: map[string]interface{}{
			"aqi":         aqi,
			"description": category,
		},
	})
}

func (e *Evaluator) checkSevere(ctx context.Context, snap weather.Snapshot) {
	condition := strings.ToLower(snap.Current.Condition)
	for _, group := range severeGroups {
		if !common.HasAny(condition, group.keywords...) {
			continue
		}
		e.emit(ctx, Event{
			Category: CategorySevere,
			Title:    fmt.Sprintf("%s Alert", group.kind),
			Body:     fmt.Sprintf("%s conditions detected in %s. Stay safe!", group.kind, snap.Location.Name),
			Payload: map[string]interface{}{
				"alertType": group.kind,
				"condition": snap.Current.Condition,
			},
		})
		return
	}
}

// sendDailySummary emits the once-per-cycle digest.
func (e *Evaluator) sendDailySummary(ctx context.Context, snap weather.Snapshot) {
	temp := math.Round(snap.Current.Temperature)
	high, low := temp, temp
	var rainChance float64
	if len(snap.Daily) > 0 {
		high = math.Round(snap.Daily[0].MaxTemp)
		low = math.Round(snap.Daily[0].MinTemp)
		rainChance = snap.Daily[0].PrecipitationChance
	}

	body := fmt.Sprintf("%s: %.0f°C, %s. High %.0f°C, Low %.0f°C",
		snap.Location.Name, temp, snap.Current.Condition, high, low)
	if rainChance > 30 {
		body += fmt.Sprintf(". %.0f%% chance of rain", rainChance)
	}
	if snap.Current.UVIndex >= 8 {
		body += ". High UV - wear sunscreen!"
	}

	e.emit(ctx, Event{
		Category: CategoryDailySummary,
		Title:    "Today's Weather",
		Body:     body,
		Payload: map[string]interface{}{
			"temperature": temp,
			"condition":   snap.Current.Condition,
			"location":    snap.Location.Name,
			"rainChance":  rainChance,
		},
	})
}
