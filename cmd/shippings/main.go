package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/joao-fontenele/shipflow-otel-demo/internal/messaging"
	"github.com/joao-fontenele/shipflow-otel-demo/internal/shipping"
	"github.com/joao-fontenele/shipflow-otel-demo/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "shippings", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("shippings", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

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

	// The manual /shippings/process trigger drains through the same topic
	// and consumer group as the worker, so the two never double-deliver.
	brokers := strings.Split(kafkaBrokers, ",")
	queue := messaging.NewKafkaQueue(brokers, "shipping.created", "shipping-worker")
	defer func() { _ = queue.Close() }()

	repo := shipping.NewRepository(db)
	service, err := shipping.NewService(repo, queue, logger)
	if err != nil {
		logger.Error("failed to create shipping service", "error", err)
		os.Exit(1)
	}
	handler := shipping.NewHandler(service, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /shippings", telemetry.WithHTTPRoute(handler.HandleCreate))
	mux.HandleFunc("GET /shippings/{id}", telemetry.WithHTTPRoute(handler.HandleGet))
	mux.HandleFunc("GET /shippings/{id}/status", telemetry.WithHTTPRoute(handler.HandleCheckStatus))
	mux.HandleFunc("POST /shippings/{id}/fail", telemetry.WithHTTPRoute(handler.HandleFail))
	mux.HandleFunc("POST /shippings/{id}/complete", telemetry.WithHTTPRoute(handler.HandleComplete))
	mux.HandleFunc("POST /shippings/process", telemetry.WithHTTPRoute(handler.HandleProcessBatch))
	mux.HandleFunc("GET /shipping-types", telemetry.WithHTTPRoute(handler.HandleListTypes))
	mux.Handle("GET /metrics", metricsHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "shippings",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting shippings service", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
