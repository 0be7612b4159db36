// The payment worker subscribes to the payment-events topic as the
// payment-group consumer group and records payments idempotently.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drblury/ordergate/internal/config"
	"github.com/drblury/ordergate/internal/events"
	"github.com/drblury/ordergate/internal/logging"
	"github.com/drblury/ordergate/internal/payments"
	"github.com/drblury/ordergate/internal/transport"
)

func main() {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	base := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	logger := logging.NewSlogServiceLogger(base)
	logger.Info("starting payment worker", logging.LogFields{
		"topic":          cfg.PaymentTopic,
		"consumer_group": cfg.ConsumerGroup,
		"pubsub":         cfg.PubSubSystem,
	})

	tr, err := transport.Build(cfg, logging.NewWatermillAdapter(logger))
	if err != nil {
		logger.Error("building message transport", err, nil)
		os.Exit(1)
	}

	processor, err := payments.NewProcessor(0, logger)
	if err != nil {
		logger.Error("building payment processor", err, nil)
		os.Exit(1)
	}

	router, err := events.NewConsumer(events.ConsumerConfig{
		Topic:       cfg.PaymentTopic,
		PoisonTopic: cfg.PoisonTopic,
		Retry: events.RetryConfig{
			MaxRetries:      cfg.RetryMaxRetries,
			InitialInterval: cfg.RetryInitialInterval,
			MaxInterval:     cfg.RetryMaxInterval,
		},
		MetricsEnabled: cfg.MetricsEnabled,
		PubSubSystem:   cfg.PubSubSystem,
	}, tr, processor, logger)
	if err != nil {
		logger.Error("building consumer", err, nil)
		os.Exit(1)
	}

	if cfg.MetricsEnabled {
		go serveMetrics(cfg.MetricsPort, logger)
	}

	// The SignalsHandler plugin closes the router on SIGINT/SIGTERM.
	if err := router.Run(context.Background()); err != nil {
		logger.Error("consumer stopped", err, nil)
		os.Exit(1)
	}
	logger.Info("payment worker stopped", logging.LogFields{"payments_recorded": processor.Count()})
}

func parseLevel(level string) slog.Level {
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

func serveMetrics(port int, logger logging.ServiceLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", err, logging.LogFields{"addr": server.Addr})
	}
}
