// Package alerts evaluates weather snapshots against user thresholds and
// emits notification events. The evaluator runs on a schedule, never stores
// thresholds and never deduplicates across cycles; delivery concerns live
// behind the Notifier interface.
package alerts

import (
	"context"
	"log"
)

// Alert categories, in evaluation order.
const (
	CategoryUmbrella     = "umbrella"
	CategoryWind         = "wind"
	CategoryUV           = "uv"
	CategoryTemperature  = "temperature"
	CategoryAQI          = "aqi"
	CategorySevere       = "severe"
	CategoryDailySummary = "daily-summary"
)

// Config carries the thresholds and per-category switches for one evaluation
// cycle. Callers pass it by value every cycle; the evaluator keeps nothing.
type Config struct {
	RainThreshold     float64 // percent chance of rain
	WindThreshold     float64 // km/h
	UVThreshold       float64
	HighTempThreshold float64 // °C
	LowTempThreshold  float64 // °C

	EnableUmbrella     bool
	EnableWind         bool
	EnableUV           bool
	EnableTemperature  bool
	EnableAQI          bool
	EnableSevere       bool
	EnableDailySummary bool
}

// DefaultConfig mirrors the product defaults: every category on, rain 70%,
// wind 50 km/h, UV 8, high 35°C, low 0°C.
func DefaultConfig() Config {
	return Config{
		RainThreshold:     70,
		WindThreshold:     50,
		UVThreshold:       8,
		HighTempThreshold: 35,
		LowTempThreshold:  0,
		EnableUmbrella:    true,
		EnableWind:        true,
		EnableUV:          true,
		EnableTemperature: true,
		EnableAQI:         true,
		EnableSevere:      true,
	}
}

// Event is one notification. IDs are unique per emission; the same condition
// firing in consecutive cycles produces distinct events.
type Event struct {
	ID       string                 `json:"id"`
	Category string                 `json:"category"`
	Title    string                 `json:"title"`
	Body     string                 `json:"body"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
}

// Notifier delivers events. Implementations must treat each call as
// independent; a failure affects only that event.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// LogNotifier writes events to the process log. It is the default sink when
// no push channel is wired up.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, event Event) error {
	log.Printf("alert [%s] %s: %s", event.Category, event.Title, event.Body)
	return nil
}
