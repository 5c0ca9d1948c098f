package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	trackingapp "github.com/glowlab/backend/internal/application/tracking"
	"github.com/glowlab/backend/internal/domain/tracking"
	"github.com/glowlab/backend/internal/infrastructure/commerce"
	"github.com/glowlab/backend/internal/infrastructure/config"
	"github.com/glowlab/backend/internal/infrastructure/logger"
	"github.com/glowlab/backend/internal/infrastructure/mail"
	"github.com/glowlab/backend/internal/infrastructure/telemetry"
	"github.com/glowlab/backend/internal/interfaces/http/handler"
	"github.com/glowlab/backend/internal/interfaces/http/middleware"
	"github.com/glowlab/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

// Process exit codes. Deployment tooling keys restart policy off these:
// missing configuration and rejected credentials are not retried.
const (
	exitOK             = 0
	exitConfigMissing  = 2
	exitBadCredentials = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		return exitConfigMissing
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		os.Stderr.WriteString("logger error: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("starting korealy tracking synchronizer",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry (no-op providers when disabled).
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Error("failed to initialize tracing", zap.Error(err))
		return 1
	}
	defer shutdownWithTimeout(tracerProvider.Shutdown, log, "tracer provider")

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Error("failed to initialize metrics", zap.Error(err))
		return 1
	}
	defer shutdownWithTimeout(meterProvider.Shutdown, log, "meter provider")

	syncMetrics, err := telemetry.NewSyncMetrics(meterProvider.Meter(telemetry.TracerName))
	if err != nil {
		log.Error("failed to initialize sync metrics", zap.Error(err))
		return 1
	}

	// Adapters. Both are verified before the server accepts traffic so a
	// bad token bundle fails the deploy instead of the first request.
	mailSource, err := mail.NewGmailSource(ctx, &mail.GmailConfig{
		ClientID:     cfg.Mail.ClientID,
		ClientSecret: cfg.Mail.ClientSecret,
		RefreshToken: cfg.Mail.RefreshToken,
		RedirectURI:  cfg.Mail.RedirectURI,
	})
	if err != nil {
		log.Error("failed to configure mail source", zap.Error(err))
		return exitConfigMissing
	}

	fulfillmentClient, err := commerce.NewShopifyAdapter(&commerce.ShopifyConfig{
		Store:       cfg.Commerce.Store,
		AccessToken: cfg.Commerce.AccessToken,
		APIVersion:  cfg.Commerce.APIVersion,
	})
	if err != nil {
		log.Error("failed to configure fulfillment client", zap.Error(err))
		return exitConfigMissing
	}

	preflightCtx, cancelPreflight := context.WithTimeout(ctx, cfg.Sync.CallTimeout)
	defer cancelPreflight()
	if err := mailSource.Verify(preflightCtx); err != nil {
		log.Error("mail credential preflight failed", zap.Error(err))
		if errors.Is(err, tracking.ErrBadCredentials) {
			return exitBadCredentials
		}
		return 1
	}
	if err := fulfillmentClient.Verify(preflightCtx); err != nil {
		log.Error("commerce credential preflight failed", zap.Error(err))
		if errors.Is(err, tracking.ErrBadCredentials) {
			return exitBadCredentials
		}
		return 1
	}
	log.Info("credential preflight passed",
		zap.String("mailbox", mailSource.Account()),
		zap.String("store", cfg.Commerce.Store),
	)

	syncService := trackingapp.NewSyncService(mailSource, fulfillmentClient, trackingapp.SyncConfig{
		PartnerSender: cfg.Sync.PartnerSender,
		Lookback:      time.Duration(cfg.Sync.LookbackDays) * 24 * time.Hour,
		BatchLimit:    cfg.Sync.BatchLimit,
		CallTimeout:   cfg.Sync.CallTimeout,
	}, log, syncMetrics)

	trackingHandler := handler.NewTrackingHandler(syncService, log)
	systemHandler := handler.NewSystemHandler(version)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig := middleware.DefaultCORSConfig()
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
		engine.Use(middleware.CORSWithConfig(corsConfig))
	}
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(rateLimiter.Middleware())
		log.Info("rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	router.NewRouter(engine).
		Register(systemHandler).
		Register(trackingHandler).
		Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Error("server failed", zap.Error(err))
		return 1
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return 1
	}

	log.Info("server exited gracefully")
	return exitOK
}

func shutdownWithTimeout(fn func(context.Context) error, log *zap.Logger, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("shutdown failed", zap.String("component", name), zap.Error(err))
	}
}
