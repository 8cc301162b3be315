package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/weatherwell/weathercore/internal/alerts"
	httpapi "github.com/weatherwell/weathercore/internal/api/http"
	"github.com/weatherwell/weathercore/internal/config"
	"github.com/weatherwell/weathercore/internal/scheduler"
	"github.com/weatherwell/weathercore/internal/search"
	"github.com/weatherwell/weathercore/internal/store"
	"github.com/weatherwell/weathercore/internal/weather"
	"github.com/weatherwell/weathercore/internal/weather/providers"
)

func main() {
	// Load configuration (godotenv is applied inside Load).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	creds := cfg.Credentials()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Provider adapters with resilience (backoff + circuit breaker), selected
	// per request by the resolver.
	resolver := weather.NewResolver(providers.Registry(httpClient))

	// Last-known location and recent searches.
	memStore := store.NewMemory()

	// Location search: WeatherAPI lookup with the embedded gazetteer fallback.
	searchAdapter, err := resolver.Adapter(weather.ProviderWeatherAPI, creds)
	if err != nil {
		log.Fatalf("failed to build search adapter: %v", err)
	}
	searchSvc, err := search.NewService(searchAdapter)
	if err != nil {
		log.Fatalf("failed to load gazetteer: %v", err)
	}
	geocoder := search.NewReverseGeocoder(cfg.GoogleAPIKey)

	// Alert evaluator on its serialized schedule.
	evaluator := alerts.NewEvaluator(resolver, memStore, alerts.LogNotifier{}, cfg.PreferredProvider, creds)
	sched := scheduler.New(evaluator, cfg.Alerts, cfg.AlertInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weathercore",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weathercore",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Resolver:  resolver,
		Store:     memStore,
		Search:    searchSvc,
		Geocoder:  geocoder,
		Preferred: cfg.PreferredProvider,
		Creds:     creds,
	})

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
