package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"

	httpapi "github.com/i474232898/geofence-notifier/internal/api/http"
	"github.com/i474232898/geofence-notifier/internal/config"
	"github.com/i474232898/geofence-notifier/internal/geofence"
	"github.com/i474232898/geofence-notifier/internal/location"
	applog "github.com/i474232898/geofence-notifier/internal/logger"
	"github.com/i474232898/geofence-notifier/internal/metrics"
	"github.com/i474232898/geofence-notifier/internal/notify"
	"github.com/i474232898/geofence-notifier/internal/policy"
	"github.com/i474232898/geofence-notifier/internal/scheduler"
	"github.com/i474232898/geofence-notifier/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if err := applog.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("failed to configure logging")
	}

	// Geofence file lives next to the executable and is re-read every cycle.
	policyPath, err := policy.DefaultPath()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve geofence config path")
	}
	fences := policy.NewFileSource(policyPath)

	// Shared HTTP client for the location lookup, with an explicit timeout.
	httpClient := &http.Client{
		Timeout: cfg.LocationTimeout,
	}
	coords := location.NewIPInfoProvider(httpClient, cfg.LocationURL)

	sink, closeSinks := buildNotifier(cfg)
	defer closeSinks()

	fetchPolicy, err := geofence.PolicyByName(cfg.FetchFailurePolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid fetch failure policy")
	}

	results := store.NewMemoryStore()
	m := metrics.New()

	opts := []geofence.Option{
		geofence.WithPolicy(fetchPolicy),
		geofence.WithRecorder(results),
		geofence.WithObserver(m),
		geofence.WithFetchTimeout(cfg.LocationTimeout),
	}
	if cfg.GeocoderAPIKey != "" {
		opts = append(opts, geofence.WithDescriber(location.NewGoogleDescriber(cfg.GeocoderAPIKey)))
	}
	evaluator := geofence.NewEvaluator(coords, fences, sink, opts...)

	// Scheduler fires immediately and then on a fixed cadence.
	sched := scheduler.New(evaluator, m)
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}
	defer sched.Stop()

	log.Info().
		Str("geofence_config", fences.Path()).
		Str("location_api", cfg.LocationURL).
		Str("fetch_failure_policy", fetchPolicy.Name()).
		Strs("sinks", cfg.NotifySinks).
		Msg("geofence notifier started")

	var app *fiber.App
	if cfg.Port != "" {
		app = newStatusApp(results, fences, m)
		go func() {
			if err := app.Listen(":" + cfg.Port); err != nil {
				log.Error().Err(err).Msg("status server stopped")
			}
		}()
	}

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sched.Stop()

	if app != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error during shutdown")
		}
	}
}

func newStatusApp(results *store.MemoryStore, fences geofence.GeofenceSource, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "geofence-notifier",
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

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "geofence-notifier",
		})
	})

	httpapi.RegisterRoutes(app, results, fences, m.Handler())
	return app
}

// buildNotifier assembles the configured sinks. A broker that cannot be
// reached at startup is logged and left out instead of aborting the service.
func buildNotifier(cfg *config.AppConfig) (geofence.Notifier, func()) {
	var (
		sinks   []notify.Sink
		closers []func()
	)

	for _, name := range cfg.NotifySinks {
		switch name {
		case config.SinkLog:
			sinks = append(sinks, notify.NewLogNotifier(log.Logger))

		case config.SinkRabbitMQ:
			conn, err := notify.DialRabbitMQ(cfg.RabbitMQURL)
			if err != nil {
				log.Error().Err(err).Str("sink", name).Msg("notification sink unavailable")
				continue
			}
			n, err := notify.NewRabbitMQNotifier(conn)
			if err != nil {
				_ = conn.Close()
				log.Error().Err(err).Str("sink", name).Msg("notification sink unavailable")
				continue
			}
			sinks = append(sinks, n)
			closers = append(closers, func() {
				_ = n.Close()
				_ = conn.Close()
			})

		case config.SinkMQTT:
			client, err := notify.NewMQTT(cfg.MQTTBroker, cfg.MQTTClientID)
			if err != nil {
				log.Error().Err(err).Str("sink", name).Msg("notification sink unavailable")
				continue
			}
			sinks = append(sinks, notify.NewMQTTNotifier(client, cfg.MQTTTopic))
			closers = append(closers, func() { client.Disconnect(250) })
		}
	}

	if len(sinks) == 0 {
		log.Warn().Msg("no notification sink available; falling back to log")
		sinks = append(sinks, notify.NewLogNotifier(log.Logger))
	}

	return notify.NewMulti(sinks...), func() {
		for _, c := range closers {
			c()
		}
	}
}
