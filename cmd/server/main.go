package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"payment_options_echo/internal/config"
	"payment_options_echo/internal/handlers"
	"payment_options_echo/internal/logging"
	"payment_options_echo/internal/metrics"
	appMiddleware "payment_options_echo/internal/middleware"
	"payment_options_echo/internal/services"
	"payment_options_echo/internal/storage"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.FromEnv()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		logger.Info().Msg("no .env file found, using system environment")
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	metrics.MustRegister()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("no storage backend available")
	}

	var cache *services.RedisCache
	if cfg.RedisURL != "" {
		cache, err = services.NewRedisCache(ctx, cfg.RedisURL, "payment_options:")
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, status cache and webhook de-duplication disabled")
			cache = nil
		} else {
			defer cache.Close()
			store = services.NewCachedStore(store, cache, services.DefaultRecordCacheTTL, logger)
		}
	}

	// the audit log is optional; interfaces stay nil when it is not configured
	var history handlers.CallbackRecorder
	if cfg.DatabaseURL != "" {
		db, err := services.InitDB(cfg.DatabaseURL)
		if err != nil {
			logger.Warn().Err(err).Msg("database unavailable, webhook audit log disabled")
		} else if err := services.AutoMigrate(db); err != nil {
			logger.Warn().Err(err).Msg("database migration failed, webhook audit log disabled")
		} else {
			history = services.NewCallbackHistoryRecorder(db)
		}
	} else {
		logger.Info().Msg("DATABASE_URL not set, webhook audit log disabled")
	}

	var dedupe handlers.EventDeduper
	if cache != nil {
		dedupe = cache
	}

	if cfg.StripeSecretKey == "" {
		logger.Warn().Msg("STRIPE_SECRET_KEY not set, payment link creation will fail")
	}
	if cfg.StripeWebhookSecret == "" {
		logger.Warn().Msg("STRIPE_WEBHOOK_SECRET not set, every webhook will be rejected")
	}
	stripeService := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.PaymentCurrency, nil)

	records := services.NewPaymentRecordService(store, logger)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = appMiddleware.CustomErrorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	handlers.Register(e, handlers.Routes{
		PaymentOptions: handlers.NewPaymentOptionsHandler(records, stripeService, cfg.PublicBaseURL, cfg.DefaultDepositAmount, logger),
		Public:         handlers.NewPublicHandler(records, cfg.ThankYouURL, cfg.RedirectDelay),
		Webhook:        handlers.NewWebhookHandler(records, stripeService, dedupe, history, logger),
		Admin:          handlers.NewAdminHandler(records),
		AdminAPIKey:    cfg.AdminAPIKey,
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Bool("production", cfg.IsProduction()).Str("backend", records.Backend()).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openStore picks the storage backend once: Firestore, then Sheets, then
// the local data directory
func openStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (storage.Store, error) {
	candidates := []storage.Candidate{
		{
			Name:       "firestore",
			Configured: cfg.FirestoreConfigured(),
			Open: func(ctx context.Context) (storage.Store, error) {
				client, err := services.InitFirestore(ctx, cfg.FirebaseCredentialsJSON, cfg.FirebaseCredentialsPath)
				if err != nil {
					return nil, err
				}
				fs := storage.NewFirestoreStore(client)
				pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
				defer cancel()
				if err := fs.Ping(pingCtx); err != nil {
					client.Close()
					return nil, err
				}
				return fs, nil
			},
		},
		{
			Name:       "sheets",
			Configured: cfg.SheetsConfigured(),
			Open: func(ctx context.Context) (storage.Store, error) {
				client, err := services.InitSheets(ctx, cfg.GoogleCredentialsJSON, cfg.GoogleSheetName, cfg.GoogleSheetID)
				if err != nil {
					return nil, err
				}
				return storage.OpenSheetsStore(ctx, client)
			},
		},
	}

	return storage.Select(ctx, logger, candidates, func() (storage.Store, error) {
		return storage.NewFileStore(cfg.DataDir)
	})
}
