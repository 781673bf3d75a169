// Worker consumes lifecycle events from Kafka and pushes them to Loki.
// Set KAFKA_BROKERS, TELEMETRY_KAFKA_TOPIC, KAFKA_GROUP_ID and LOKI_URL. JWT_SECRET is required by config but unused.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"storefront-auth/backend/internal/config"
	"storefront-auth/backend/internal/logging"
	"storefront-auth/backend/internal/telemetry/consumer"
	"storefront-auth/backend/internal/telemetry/loki"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	brokers := cfg.TelemetryKafkaBrokersList()
	if len(brokers) == 0 {
		logger.Fatal("worker: KAFKA_BROKERS is required")
	}
	if cfg.LokiURL == "" {
		logger.Fatal("worker: LOKI_URL is required")
	}
	client, err := loki.NewClient(cfg.LokiURL, nil)
	if err != nil {
		logger.Fatal("worker: loki client", zap.Error(err))
	}

	reader := consumer.NewKafkaReader(brokers, cfg.TelemetryKafkaTopic, cfg.KafkaGroupID)
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker: consuming",
		zap.String("topic", cfg.TelemetryKafkaTopic),
		zap.String("group", cfg.KafkaGroupID),
		zap.String("loki", cfg.LokiURL),
	)
	if err := consumer.New(reader, client, logger).Run(ctx); err != nil {
		logger.Error("worker: stopped", zap.Error(err))
		return
	}
	logger.Info("worker: stopped")
}
