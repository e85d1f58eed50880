package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/veyra/adaptive-auth/internal/auth"
	"github.com/veyra/adaptive-auth/internal/events"
	"github.com/veyra/adaptive-auth/internal/guard"
	"github.com/veyra/adaptive-auth/internal/handler"
	"github.com/veyra/adaptive-auth/internal/infra"
	"github.com/veyra/adaptive-auth/internal/policy"
	"github.com/veyra/adaptive-auth/internal/repository"
	"github.com/veyra/adaptive-auth/internal/risk"
	"github.com/veyra/adaptive-auth/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	userExpiry, err := time.ParseDuration(cfg.JWTUserExpiry)
	if err != nil {
		return fmt.Errorf("parse user JWT expiry: %w", err)
	}
	adminExpiry, err := time.ParseDuration(cfg.JWTAdminExpiry)
	if err != nil {
		return fmt.Errorf("parse admin JWT expiry: %w", err)
	}
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, userExpiry, adminExpiry)

	// Event sink: Kafka in production, in-memory when disabled for local dev.
	var sink events.SecurityEventSink
	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()
	if producer.Enabled() {
		sink = events.NewKafkaSink(producer, cfg.SecurityEventTopic, logger)
	} else {
		sink = events.NewMemorySink()
	}

	// Risk pipeline
	historyProvider := repository.NewPgLoginHistoryProvider(pool, cfg.FailedAttemptWindow)
	deviceRegistry := repository.NewPgDeviceRegistry(pool)
	collector := risk.NewCollector(historyProvider, deviceRegistry)
	engine := risk.NewEngine(risk.Config{
		MediumThreshold:     cfg.RiskMediumThreshold,
		HighThreshold:       cfg.RiskHighThreshold,
		CriticalThreshold:   cfg.RiskCriticalThreshold,
		QuietHoursStart:     cfg.QuietHoursStart,
		QuietHoursEnd:       cfg.QuietHoursEnd,
		NewAccountThreshold: cfg.NewAccountThreshold,
	})
	resolver := policy.NewResolver(sink, logger)
	authn := auth.NewAdaptiveAuthenticator(jwtMgr, collector, engine, resolver, sink, deviceRegistry, logger)

	// Services and handlers
	userRepo := repository.NewPgUserRepository()
	authSvc := service.NewAuthService(pool, userRepo, historyProvider, jwtMgr, logger)
	loginLimiter := guard.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	authHandler := handler.NewAuthHandler(authSvc, loginLimiter)
	sessionHandler := handler.NewSessionHandler()

	// Router
	r := chi.NewRouter()
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS)
	r.Use(handler.JSONContentType)

	r.Get("/health", handler.HealthHandler(pool))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Risk-assessed routes
	r.Group(func(r chi.Router) {
		r.Use(authn.Middleware)

		r.Get("/session/risk", sessionHandler.GetRisk)
	})

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
