package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/deruvodaniel/lavenius-platform/internal/api/router"
	"github.com/deruvodaniel/lavenius-platform/internal/browser"
	"github.com/deruvodaniel/lavenius-platform/internal/calendar"
	appconfig "github.com/deruvodaniel/lavenius-platform/internal/config"
	"github.com/deruvodaniel/lavenius-platform/internal/http/handlers"
	"github.com/deruvodaniel/lavenius-platform/internal/notify"
	"github.com/deruvodaniel/lavenius-platform/internal/observability/metrics"
	"github.com/deruvodaniel/lavenius-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel, cfg.Env)
	logger.Info("starting lavenius-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"calendar_provider", cfg.CalendarProvider,
	)

	ctx := context.Background()

	// Persisted connection state (optional: without a database the state
	// only lives for the process lifetime).
	var store calendar.StateStore
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		store = calendar.NewPostgresStore(pool)
	}

	// Completion message bus: Redis when configured, in-process otherwise.
	var bus calendar.Bus
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		bus = calendar.NewRedisBus(redis.NewClient(opts), logger)
	} else {
		bus = calendar.NewMemoryBus()
	}

	service, exchanger, err := buildCalendarService(cfg, logger)
	if err != nil {
		logger.Error("failed to configure calendar provider", "error", err)
		os.Exit(1)
	}

	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if email := notify.NewEmailNotifier(notify.EmailConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
		To:        cfg.NotifyEmail,
	}, logger); email != nil {
		notifier = notify.MultiNotifier{notify.NewLogNotifier(logger), email}
	}

	var launcher calendar.WindowLauncher = browser.NewLauncher(logger)
	if cfg.ConsentWindowDisabled {
		launcher = browser.DisabledLauncher{}
	}

	calMetrics := metrics.NewCalendarMetrics(nil)

	manager := calendar.NewStateManager()
	if store != nil {
		if persisted, err := store.Load(ctx); err != nil {
			logger.Error("failed to load persisted connection state", "error", err)
		} else if persisted != nil {
			manager.Restore(*persisted)
		}
	}

	checker := calendar.NewChecker(manager, service, store, calMetrics, logger)
	syncer := calendar.NewSyncer(manager, service, store, checker, notifier, calMetrics, logger)
	disconnector := calendar.NewDisconnector(manager, service, store, notifier, logger)
	coordinator := calendar.NewCoordinator(manager, service, checker, syncer, bus, launcher, notifier, calMetrics, logger)
	coordinator.PollInterval = cfg.CalendarPollInterval
	coordinator.CloseGrace = cfg.CalendarCloseGrace
	coordinator.FlowTimeout = cfg.CalendarFlowTimeout

	calendarHandler := handlers.NewCalendarHandler(manager, checker, coordinator, syncer, disconnector, logger)
	oauthHandler := calendar.NewOAuthHandler(bus, exchanger, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		CalendarHandler:    calendarHandler,
		OAuthHandler:       oauthHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Recompute the transient state; the persisted subset only seeds the UI
	// until this first check lands.
	go checker.CheckConnection(ctx)

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Let an in-flight auth flow finish releasing its listeners.
	flowDone := make(chan struct{})
	go func() {
		coordinator.Wait()
		close(flowDone)
	}()
	select {
	case <-flowDone:
	case <-shutdownCtx.Done():
		logger.Warn("auth flow still pending at shutdown")
	}

	logger.Info("server stopped")
}

func buildCalendarService(cfg *appconfig.Config, logger *logging.Logger) (calendar.Service, calendar.CodeExchanger, error) {
	if cfg.CalendarProvider == "google" {
		redirect := cfg.GoogleOAuthRedirect
		if redirect == "" {
			redirect = cfg.PublicBaseURL + "/oauth/google/callback"
		}
		client, err := calendar.NewGoogleClient(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			redirect,
			cfg.GoogleTokenFile,
			logger,
		)
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil
	}

	client, err := calendar.NewGatewayClient(cfg.CalendarGatewayURL, cfg.CalendarGatewayToken, logger)
	if err != nil {
		return nil, nil, err
	}
	// Gateway mode: the gateway exchanges the code before redirecting here.
	return client, nil, nil
}
