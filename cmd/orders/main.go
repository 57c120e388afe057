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

	"github.com/joao-fontenele/shipflow-otel-demo/internal/messaging"
	"github.com/joao-fontenele/shipflow-otel-demo/internal/orders"
	"github.com/joao-fontenele/shipflow-otel-demo/internal/shipping"
	"github.com/joao-fontenele/shipflow-otel-demo/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "orders", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	// Catalog reads live in the orders schema, shipping writes in the
	// shipping schema; each gets its own connection with its own
	// search_path.
	ordersDB, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open orders database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = ordersDB.Close() }()

	if err := ordersDB.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if _, err := ordersDB.Exec("SET search_path TO orders"); err != nil {
		logger.Error("failed to set search_path", "error", err)
		os.Exit(1)
	}

	shippingDB, err := telemetry.OpenDB("postgres", postgresURL)
	if err != nil {
		logger.Error("failed to open shipping database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shippingDB.Close() }()

	if _, err := shippingDB.Exec("SET search_path TO shipping"); err != nil {
		logger.Error("failed to set search_path", "error", err)
		os.Exit(1)
	}

	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers == "" {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	// Order placement only produces; polling stays with the worker.
	brokers := strings.Split(kafkaBrokers, ",")
	queue := messaging.NewKafkaQueue(brokers, "shipping.created", "shipping-worker")
	defer func() { _ = queue.Close() }()

	shippingRepo := shipping.NewRepository(shippingDB)
	shippingService, err := shipping.NewService(shippingRepo, queue, logger)
	if err != nil {
		logger.Error("failed to create shipping service", "error", err)
		os.Exit(1)
	}

	productRepo := orders.NewProductRepository(ordersDB)
	handler := orders.NewHandler(productRepo, shippingService, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", telemetry.WithHTTPRoute(handler.HandlePlaceOrder))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8082"
	}

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "orders",
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
		logger.Info("starting orders service", "port", port)
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
