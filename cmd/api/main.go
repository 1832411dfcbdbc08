// Package main is the entrypoint for the Folio API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/folio/folio/internal/cache"
	"github.com/folio/folio/internal/config"
	"github.com/folio/folio/internal/handler"
	"github.com/folio/folio/internal/metrics"
	"github.com/folio/folio/internal/middleware"
	"github.com/folio/folio/internal/model"
	"github.com/folio/folio/internal/notify"
	"github.com/folio/folio/internal/server"
	"github.com/folio/folio/internal/service"
	"github.com/folio/folio/internal/store"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize document store
	st, storeURL, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error(
			"failed to connect to document store",
			slog.String("driver", cfg.StoreDriver),
			slog.String("error", config.SanitizeError(err, storeURL)),
			slog.String("store_url", config.RedactURL(storeURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to document store", "driver", cfg.StoreDriver)

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", config.SanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", config.RedactURL(cfg.RedisURL)),
		)
		_ = st.Close(ctx)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	metricsRecorder := metrics.NewPrometheus()

	// Notification pipeline
	mailer := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.EmailHostUser,
		Password: cfg.EmailHostPassword,
	})
	notifier := notify.NewNotifier(mailer, notify.NotifierConfig{
		From:        cfg.EmailHostUser,
		Recipient:   cfg.EmailRecipient,
		Configured:  cfg.NotificationConfigured(),
		SendTimeout: cfg.NotifySendTimeout,
	}, logger)
	if !notifier.Configured() {
		logger.Warn("notification relay not configured, contact submissions will be stored without email",
			"smtp_host", mailer.Host(),
		)
	}

	publisher := notify.NewPublisher(cacheClient.Client(), logger, metricsRecorder)
	publisher.SetTimeout(cfg.NotifyPublishTimeout)

	worker := notify.NewWorker(cacheClient.Client(), notifier, logger, notify.NewConsumerID(), metricsRecorder)
	worker.SetBatchSize(cfg.NotifyBatchSize)
	worker.SetClaimInterval(cfg.NotifyClaimInterval)
	worker.SetClaimIdle(cfg.NotifyClaimIdle)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("notification worker stopped", "error", err)
		}
	}()

	// Initialize services
	factory := model.NewFactory()
	statusService := service.NewStatusService(st, factory, metricsRecorder)
	contactService := service.NewContactService(st, publisher, factory, logger, metricsRecorder)

	// Setup router
	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r := handler.NewRouter(handler.RouterConfig{
		APIPrefix: cfg.APIPrefix,
		Logger:    logger,
		Root:      handler.New(cfg.APIPrefix),
		Health:    handler.NewHealthHandler(st, cacheClient, logger),
		Status:    handler.NewStatusHandler(statusService, logger),
		Contact:   handler.NewContactHandler(contactService, logger),
		Metrics:   handler.NewMetricsHandler(metricsRecorder.Gatherer()),
		CORS:      cors,
		Security: middleware.SecurityConfig{
			IsDevelopment: cfg.IsDevelopment(),
		},
		MaxBodySize: cfg.MaxRequestBodySize,
		ContactRateLimit: middleware.RateLimitConfig{
			Logger:    logger,
			Limiter:   cacheClient,
			Metrics:   metricsRecorder,
			Enabled:   cfg.RateLimitContactEnabled,
			Route:     "contact",
			PerMinute: cfg.RateLimitContactPerMinute,
			Burst:     cfg.RateLimitContactBurst,
		},
	})

	// Create and run server
	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Released in reverse order: worker first, store last.
	srv.OnShutdown("store", st.Close)
	srv.OnShutdown("redis", func(ctx context.Context) error { return cacheClient.Close() })
	srv.OnShutdown("notification_worker", worker.Shutdown)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"api_prefix", cfg.APIPrefix,
		"env", cfg.AppEnv,
		"notifications", notifier.Configured(),
	)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(runCtx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore connects the configured document store driver. It also returns
// the connection URL so failures can be logged in redacted form.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, string, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		st, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, cfg.DatabaseURL, err
		}
		return st, cfg.DatabaseURL, nil
	default:
		st, err := store.NewMongo(ctx, cfg.MongoURL, cfg.DBName)
		if err != nil {
			return nil, cfg.MongoURL, err
		}
		return st, cfg.MongoURL, nil
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
