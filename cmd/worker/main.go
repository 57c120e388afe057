package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/joao-fontenele/shipflow-otel-demo/internal/domain"
	"github.com/joao-fontenele/shipflow-otel-demo/internal/messaging"
	"github.com/joao-fontenele/shipflow-otel-demo/internal/shipping"
	"github.com/joao-fontenele/shipflow-otel-demo/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "shipping-worker", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	if err := runtime.Start(); err != nil {
		logger.Error("failed to start runtime instrumentation", "error", err)
		os.Exit(1)
	}

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	db, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if _, err := db.Exec("SET search_path TO shipping"); err != nil {
		logger.Error("failed to set search_path", "error", err)
		os.Exit(1)
	}

	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers == "" {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	brokers := strings.Split(kafkaBrokers, ",")
	queue := messaging.NewKafkaQueue(brokers, "shipping.created", "shipping-worker")
	defer func() { _ = queue.Close() }()

	opts := []shipping.Option{}
	if batchSize := os.Getenv("BATCH_SIZE"); batchSize != "" {
		size, err := strconv.Atoi(batchSize)
		if err != nil || size < 1 {
			logger.Error("invalid BATCH_SIZE", "value", batchSize)
			os.Exit(1)
		}
		opts = append(opts, shipping.WithBatchSize(size))
	}

	repo := shipping.NewRepository(db)
	service, err := shipping.NewService(repo, queue, logger, opts...)
	if err != nil {
		logger.Error("failed to create shipping service", "error", err)
		os.Exit(1)
	}

	pollInterval := 5 * time.Second
	if interval := os.Getenv("POLL_INTERVAL"); interval != "" {
		pollInterval, err = time.ParseDuration(interval)
		if err != nil {
			logger.Error("invalid POLL_INTERVAL", "value", interval, "error", err)
			os.Exit(1)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting shipping worker", "brokers", brokers, "poll_interval", pollInterval)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-runCtx.Done():
			logger.Info("worker stopped")
			return
		case <-ticker.C:
			processed, err := service.ProcessShippingBatch(runCtx)
			if err != nil {
				if runCtx.Err() != nil {
					logger.Info("worker stopped")
					return
				}
				if errors.Is(err, domain.ErrShippingNotFound) {
					// Queue/store divergence is a bug upstream, not a
					// condition to retry through.
					logger.Error("queued shipping has no backing record", "error", err)
					os.Exit(1)
				}
				logger.Error("batch processing failed", "error", err, "processed", processed)
				continue
			}
			if processed > 0 {
				logger.Info("batch processed", "processed", processed)
			}
		}
	}
}
