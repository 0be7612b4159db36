package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/message/router/plugin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/drblury/ordergate/internal/logging"
	"github.com/drblury/ordergate/internal/order"
	"github.com/drblury/ordergate/internal/transport"
)

// Processor handles decoded payment events. Implementations must be
// idempotent keyed by order id: the transport delivers at least once, and a
// redelivery after a consumer restart is a normal case.
type Processor interface {
	ProcessPayment(ctx context.Context, ev order.PaymentEvent) error
}

// ConsumerConfig tunes the payment-event consumer loop.
type ConsumerConfig struct {
	Topic       string
	PoisonTopic string
	Retry       RetryConfig

	// MetricsEnabled registers Prometheus router metrics on the default
	// registerer.
	MetricsEnabled bool
	PubSubSystem   string
}

// NewConsumer wires the consumer router: subscription on the payment topic,
// the middleware chain, and the handler feeding the processor. Run the
// returned router until shutdown; the subscriber commits an offset only
// after the handler acks, which is what makes delivery at-least-once.
func NewConsumer(cfg ConsumerConfig, tr transport.Transport, proc Processor, logger logging.ServiceLogger) (*message.Router, error) {
	wmLogger := logging.NewWatermillAdapter(logger)

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return nil, err
	}
	router.AddPlugin(plugin.SignalsHandler)

	router.AddMiddleware(correlationIDMiddleware())
	router.AddMiddleware(logMessagesMiddleware(logger))
	router.AddMiddleware(tracerMiddleware())

	if cfg.MetricsEnabled {
		metricsBuilder := metrics.NewPrometheusMetricsBuilder(prometheus.DefaultRegisterer, "ordergate", cfg.PubSubSystem)
		metricsBuilder.AddPrometheusRouterMetrics(router)
	}

	retry := cfg.Retry.withDefaults()
	router.AddMiddleware(middleware.Retry{
		MaxRetries:      retry.MaxRetries,
		InitialInterval: retry.InitialInterval,
		MaxInterval:     retry.MaxInterval,
	}.Middleware)

	if cfg.PoisonTopic != "" {
		poison, err := middleware.PoisonQueue(tr.Publisher, cfg.PoisonTopic)
		if err != nil {
			return nil, err
		}
		router.AddMiddleware(poison)
	}

	router.AddMiddleware(middleware.Recoverer)

	router.AddNoPublisherHandler(
		"payment-processor",
		cfg.Topic,
		tr.Subscriber,
		handlePaymentMessage(proc, logger),
	)

	return router, nil
}

// handlePaymentMessage decodes one message and forwards it to the
// processor. A payload that does not decode is logged and acked: one bad
// message must never halt consumption of the rest of the stream.
func handlePaymentMessage(proc Processor, logger logging.ServiceLogger) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var ev order.PaymentEvent
		if err := ev.UnmarshalBinary(msg.Payload); err != nil {
			logger.Error("skipping undecodable payment event", err, logging.LogFields{
				"message_uuid": msg.UUID,
			})
			return nil
		}

		return proc.ProcessPayment(msg.Context(), ev)
	}
}
