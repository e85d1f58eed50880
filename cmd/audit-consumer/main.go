// The audit consumer drains the security-events topic into Postgres. Audit
// persistence stays off the request path: the API publishes and moves on.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/veyra/adaptive-auth/internal/domain"
	"github.com/veyra/adaptive-auth/internal/infra"
	"github.com/veyra/adaptive-auth/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("audit consumer failed", "error", err)
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

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("audit-consumer connected to postgres")

	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, cfg.SecurityEventTopic, "audit-consumer", cfg.KafkaEnabled, logger)
	if !consumer.Enabled() {
		return fmt.Errorf("kafka is disabled; audit consumer has nothing to do")
	}
	defer consumer.Close()

	repo := repository.NewPgSecurityEventRepository()
	logger.Info("audit-consumer starting", "topic", cfg.SecurityEventTopic)

	for {
		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("audit-consumer shutting down")
				return nil
			}
			logger.Error("read message", "error", err)
			continue
		}

		var event domain.SecurityEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("malformed security event dropped", "offset", msg.Offset, "error", err)
			continue
		}

		if err := repo.Insert(ctx, pool, event); err != nil {
			logger.Error("insert security event", "event_id", event.ID, "error", err)
			continue
		}

		logger.Info("security event persisted",
			"event_id", event.ID,
			"type", event.Type,
			"severity", event.Severity,
			"user_id", event.UserID,
		)
	}
}
