// The gateway accepts order requests in JSON or binary protobuf, forwards
// them to the backend order service over gRPC, and relays a payment event
// per accepted order onto the message log.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drblury/ordergate/internal/backend"
	"github.com/drblury/ordergate/internal/config"
	"github.com/drblury/ordergate/internal/events"
	"github.com/drblury/ordergate/internal/gateway"
	"github.com/drblury/ordergate/internal/logging"
	"github.com/drblury/ordergate/internal/transport"
)

func main() {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("starting gateway", logging.LogFields{
		"http_addr":    cfg.HTTPAddr,
		"backend_addr": cfg.BackendAddr,
		"pubsub":       cfg.PubSubSystem,
		"topic":        cfg.PaymentTopic,
	})

	client, err := backend.New(cfg.BackendAddr, backend.WithCallTimeout(cfg.RPCTimeout))
	if err != nil {
		logger.Error("connecting backend client", err, nil)
		os.Exit(1)
	}
	defer client.Close()

	// The gateway only publishes; the payment worker owns the subscribing
	// side. With events disabled, accepted orders produce no events at all.
	var sink gateway.EventSink = events.NopSink{}
	if cfg.EventsEnabled {
		publisher, err := transport.BuildPublisher(cfg, logging.NewWatermillAdapter(logger))
		if err != nil {
			logger.Error("building message publisher", err, nil)
			os.Exit(1)
		}
		defer publisher.Close()

		relay := events.NewRelay(
			events.NewPublisher(publisher, cfg.PaymentTopic),
			cfg.RelayQueueSize,
			events.RetryConfig{
				MaxRetries:      cfg.RetryMaxRetries,
				InitialInterval: cfg.RetryInitialInterval,
				MaxInterval:     cfg.RetryMaxInterval,
			},
			logger,
		)
		relay.Start()
		defer relay.Close()
		sink = relay
	} else {
		logger.Info("payment-event pipeline disabled", nil)
	}

	var registerer prometheus.Registerer
	if cfg.MetricsEnabled {
		registerer = prometheus.DefaultRegisterer
		go serveMetrics(cfg.MetricsPort, logger)
	}

	handler := gateway.New(client, sink, logger, registerer)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		logger.Error("http server stopped", err, nil)
		os.Exit(1)
	case <-ctx.Done():
	}

	logger.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", err, nil)
	}
}

func newLogger(level string) logging.ServiceLogger {
	base := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(level)}))
	return logging.NewSlogServiceLogger(base)
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
	addr := ":" + strconv.Itoa(port)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", err, logging.LogFields{"addr": addr})
	}
}
