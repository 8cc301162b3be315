package httpapi

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/weatherwell/weathercore/internal/search"
	"github.com/weatherwell/weathercore/internal/store"
	"github.com/weatherwell/weathercore/internal/weather"
)

var validate = validator.New()

// Deps bundles the collaborators the handlers need.
type Deps struct {
	Resolver  *weather.Resolver
	Store     *store.Memory
	Search    *search.Service
	Geocoder  *search.ReverseGeocoder
	Preferred string
	Creds     weather.Credentials
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		req, err := parseCoordsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, source, err := deps.Resolver.Resolve(c.Context(), req.Lat, req.Lon, req.Days, req.provider(deps.Preferred), deps.Creds)
		if err != nil {
			return resolveError(err)
		}
		snapshot.Location = deps.Geocoder.Rename(snapshot.Location)

		// The alert evaluator follows whatever location was asked about last.
		deps.Store.SaveLastKnown(snapshot.Location, time.Now())
		deps.Store.AddRecentSearch(snapshot.Location)

		return c.JSON(fiber.Map{
			"data":   snapshot,
			"source": source,
		})
	})

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		req, err := parseCoordsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, source, err := deps.Resolver.Resolve(c.Context(), req.Lat, req.Lon, 1, req.provider(deps.Preferred), deps.Creds)
		if err != nil {
			return resolveError(err)
		}
		snapshot.Location = deps.Geocoder.Rename(snapshot.Location)

		return c.JSON(fiber.Map{
			"data":   snapshot,
			"source": source,
		})
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		// Historical semantics differ per provider (Meteostat reports station
		// observations, WeatherAPI day aggregates), so no fallback here.
		adapter, err := deps.Resolver.Adapter(req.providerOrDefault(), deps.Creds)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if !adapter.IsConfigured() {
			return fiber.NewError(fiber.StatusServiceUnavailable, "provider is not configured")
		}

		snapshot, err := adapter.FetchHistorical(c.Context(), req.Lat, req.Lon, req.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch historical weather")
		}

		return c.JSON(fiber.Map{
			"data":   snapshot,
			"source": adapter.SourceLabel(),
			"date":   req.Date,
		})
	})

	v1.Get("/locations/search", func(c *fiber.Ctx) error {
		q := c.Query("q")
		results := deps.Search.Search(c.Context(), q)
		if results == nil {
			results = []weather.Location{}
		}
		return c.JSON(fiber.Map{"results": results})
	})

	v1.Get("/locations/recent", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"results": deps.Store.RecentSearches()})
	})
}

// resolveError maps resolver failures onto HTTP statuses.
func resolveError(err error) error {
	if errors.Is(err, weather.ErrAllProvidersUnavailable) || errors.Is(err, weather.ErrNoProviderConfigured) {
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
}

// coordsQuery holds the shared lat/lon/days/provider parameters.
type coordsQuery struct {
	Lat      float64 `validate:"gte=-90,lte=90"`
	Lon      float64 `validate:"gte=-180,lte=180"`
	Days     int     `validate:"gte=1,lte=16"`
	Provider string  `validate:"omitempty,oneof=weatherapi openweathermap visualcrossing openmeteo qweather meteostat"`
}

// provider resolves the effective provider preference: query parameter first,
// then the configured default.
func (q coordsQuery) provider(configured string) string {
	if q.Provider != "" {
		return q.Provider
	}
	return configured
}

func parseCoordsQuery(c *fiber.Ctx) (coordsQuery, error) {
	q := coordsQuery{Days: 7}

	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return q, errors.New("lat and lon query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return q, errors.New("invalid lat")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return q, errors.New("invalid lon")
	}
	q.Lat, q.Lon = lat, lon

	if daysStr := c.Query("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return q, errors.New("invalid days")
		}
		q.Days = days
	}
	q.Provider = c.Query("provider")

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Lat      float64 `validate:"gte=-90,lte=90"`
	Lon      float64 `validate:"gte=-180,lte=180"`
	Date     string  `validate:"required,datetime=2006-01-02"`
	Provider string  `validate:"omitempty,oneof=weatherapi openweathermap visualcrossing openmeteo qweather meteostat"`
}

func (h historyQuery) providerOrDefault() string {
	if h.Provider != "" {
		return h.Provider
	}
	return weather.ProviderWeatherAPI
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return errors.New("lat and lon query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return errors.New("invalid lat")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return errors.New("invalid lon")
	}
	h.Lat, h.Lon = lat, lon
	h.Date = c.Query("date")
	h.Provider = c.Query("provider")

	return validate.Struct(h)
}
