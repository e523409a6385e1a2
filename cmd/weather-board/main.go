package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	httpapi "github.com/i474232898/weather-board/internal/api/http"
	"github.com/i474232898/weather-board/internal/config"
	"github.com/i474232898/weather-board/internal/dashboard"
	"github.com/i474232898/weather-board/internal/dataset"
	"github.com/i474232898/weather-board/internal/logging"
	"github.com/i474232898/weather-board/internal/metrics"
	"github.com/i474232898/weather-board/internal/scheduler"
	"github.com/i474232898/weather-board/internal/store"
	"github.com/i474232898/weather-board/internal/weather"
	"github.com/i474232898/weather-board/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New(logging.Config{})
		bootLog.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ds, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load dataset")
	}
	ds = backfillCoordinates(ds, cfg, log)
	log.Info().Int("cities", ds.Len()).Str("path", cfg.DatasetPath).Msg("Dataset loaded")

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	gateway := newGateway(cfg, httpClient)

	m, err := metrics.New(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register metrics")
	}

	service := dashboard.NewService(
		gateway,
		ds,
		store.NewTTLCache[weather.City](cfg.CacheTTL),
		store.NewTTLCache[weather.WeeklySeries](cfg.CacheTTL),
		dashboard.WithLogger(log),
		dashboard.WithRecorder(m),
		dashboard.WithConcurrency(cfg.BatchConcurrency),
		dashboard.WithFetchTimeout(4*cfg.HTTPTimeout),
	)

	if cfg.StateFile != "" {
		if err := loadState(cfg.StateFile, service); err != nil {
			log.Warn().Err(err).Str("path", cfg.StateFile).Msg("Failed to restore board state")
		}
	}

	sched := scheduler.New(service, cfg.RefreshInterval, 4*cfg.HTTPTimeout, log)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	app := fiber.New(fiber.Config{
		AppName:               "weather-board",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
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

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	httpapi.RegisterRoutes(app, service, ds)

	go func() {
		log.Info().Str("port", cfg.Port).Str("provider", gateway.Name()).Msg("Server started")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("Fiber server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}
	sched.Stop()
	service.Close()

	if cfg.StateFile != "" {
		if err := saveState(cfg.StateFile, service); err != nil {
			log.Error().Err(err).Str("path", cfg.StateFile).Msg("Failed to save board state")
		}
	}
	log.Info().Msg("Shutdown complete")
}

func newGateway(cfg *config.AppConfig, client *http.Client) weather.Gateway {
	if cfg.Provider == config.ProviderWeatherAPI {
		return providers.NewWeatherAPIProvider(client, cfg.WeatherAPIKey)
	}
	return providers.NewOpenMeteoProvider(client, cfg.OpenMeteoBaseURL)
}

// backfillCoordinates resolves cities without coordinates when a geocoder
// key is configured. The original dataset is kept on failure.
func backfillCoordinates(ds *dataset.Dataset, cfg *config.AppConfig, log zerolog.Logger) *dataset.Dataset {
	if cfg.GeocoderAPIKey == "" {
		return ds
	}
	g, err := dataset.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	if err != nil {
		log.Warn().Err(err).Msg("Geocoder unavailable")
		return ds
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	filled, n, err := dataset.Backfill(ctx, ds, g, log)
	if err != nil {
		log.Warn().Err(err).Msg("Coordinate backfill interrupted")
		return ds
	}
	if n > 0 {
		log.Info().Int("cities", n).Msg("Coordinates backfilled")
	}
	return filled
}
