// Package config carries the runtime settings of the gateway, the demo
// backend, and the payment worker. Every value has a default suitable for
// local development and can be overridden through the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config groups all gateway and pipeline settings.
type Config struct {
	// HTTPAddr is the gateway listen address.
	HTTPAddr string
	// BackendAddr is the gRPC address of the order service.
	BackendAddr string
	// RPCTimeout bounds each backend call.
	RPCTimeout time.Duration

	// EventsEnabled turns the payment-event pipeline of the gateway on or
	// off. When off, accepted orders produce no events and no transport is
	// built.
	EventsEnabled bool
	// PubSubSystem selects the message transport: "kafka" or "channel".
	PubSubSystem string
	// KafkaBrokers lists the bootstrap brokers.
	KafkaBrokers []string
	// PaymentTopic is the payment-events topic.
	PaymentTopic string
	// ConsumerGroup tracks committed offsets for the payment worker.
	ConsumerGroup string
	// PoisonTopic receives messages that keep failing after retries.
	PoisonTopic string

	// RelayQueueSize caps the in-memory publish queue of the gateway.
	RelayQueueSize int

	// Retry tuning for the relay and the consumer. Zero values fall back to
	// defaults.
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration

	// Metrics configuration.
	MetricsEnabled bool
	MetricsPort    int

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// FromEnv builds a Config from the environment, falling back to local
// defaults.
func FromEnv() *Config {
	return &Config{
		HTTPAddr:             env("HTTP_ADDR", ":3000"),
		BackendAddr:          env("BACKEND_ADDR", "localhost:50051"),
		RPCTimeout:           envDuration("RPC_TIMEOUT", 10*time.Second),
		EventsEnabled:        envBool("EVENTS_ENABLED", true),
		PubSubSystem:         env("PUBSUB_SYSTEM", "kafka"),
		KafkaBrokers:         splitCSV(env("KAFKA_BROKERS", "localhost:9092")),
		PaymentTopic:         env("PAYMENT_TOPIC", "payment-events"),
		ConsumerGroup:        env("CONSUMER_GROUP", "payment-group"),
		PoisonTopic:          env("POISON_TOPIC", "payment-events.poison"),
		RelayQueueSize:       envInt("RELAY_QUEUE_SIZE", 1024),
		RetryMaxRetries:      envInt("RETRY_MAX_RETRIES", 0),
		RetryInitialInterval: envDuration("RETRY_INITIAL_INTERVAL", 0),
		RetryMaxInterval:     envDuration("RETRY_MAX_INTERVAL", 0),
		MetricsEnabled:       envBool("METRICS_ENABLED", false),
		MetricsPort:          envInt("METRICS_PORT", 9090),
		LogLevel:             env("LOG_LEVEL", "info"),
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("http: listen address is required"))
	}
	if c.BackendAddr == "" {
		errs = append(errs, errors.New("backend: address is required"))
	}
	if c.RPCTimeout <= 0 {
		errs = append(errs, errors.New("backend: rpc timeout must be positive"))
	}

	switch strings.ToLower(c.PubSubSystem) {
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			errs = append(errs, errors.New("kafka: brokers are required"))
		}
	case "channel":
	default:
		errs = append(errs, fmt.Errorf("pubsub: unknown system %q", c.PubSubSystem))
	}
	if c.PaymentTopic == "" {
		errs = append(errs, errors.New("pubsub: payment topic is required"))
	}
	if c.ConsumerGroup == "" {
		errs = append(errs, errors.New("pubsub: consumer group is required"))
	}

	if c.RelayQueueSize <= 0 {
		errs = append(errs, errors.New("relay: queue size must be positive"))
	}
	if c.RetryMaxRetries < 0 {
		errs = append(errs, errors.New("retry: max retries cannot be negative"))
	}
	if c.RetryInitialInterval < 0 {
		errs = append(errs, errors.New("retry: initial interval cannot be negative"))
	}
	if c.RetryMaxInterval < 0 {
		errs = append(errs, errors.New("retry: max interval cannot be negative"))
	}
	if c.RetryMaxInterval > 0 && c.RetryInitialInterval > c.RetryMaxInterval {
		errs = append(errs, errors.New("retry: initial interval cannot exceed max interval"))
	}

	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		errs = append(errs, fmt.Errorf("metrics: invalid port %d", c.MetricsPort))
	}

	return errors.Join(errs...)
}

// Getter methods implementing the transport config interface.
func (c *Config) GetPubSubSystem() string       { return c.PubSubSystem }
func (c *Config) GetKafkaBrokers() []string     { return c.KafkaBrokers }
func (c *Config) GetKafkaConsumerGroup() string { return c.ConsumerGroup }

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
