package events

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/drblury/ordergate/internal/ids"
	"github.com/drblury/ordergate/internal/logging"
	"github.com/drblury/ordergate/internal/metadata"
)

// correlationIDMiddleware injects a correlation ID into the message metadata
// when missing.
func correlationIDMiddleware() message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			if _, ok := msg.Metadata[metadata.KeyCorrelationID]; !ok {
				msg.Metadata[metadata.KeyCorrelationID] = ids.NewULID()
			}
			return h(msg)
		}
	}
}

// logMessagesMiddleware logs the payload and metadata of every handled
// message.
func logMessagesMiddleware(logger logging.ServiceLogger) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			logger.Debug("processing message", logging.LogFields{
				"message_uuid": msg.UUID,
				"payload_size": len(msg.Payload),
				"metadata":     metadata.FromWatermill(msg.Metadata),
			})
			return h(msg)
		}
	}
}

// tracerMiddleware wraps message handling with an OpenTelemetry span.
func tracerMiddleware() message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			tracer := otel.Tracer("payment-worker")
			ctx, span := tracer.Start(msg.Context(), "ProcessPaymentEvent")
			defer span.End()
			msg.SetContext(ctx)

			span.SetAttributes(
				attribute.String("message.uuid", msg.UUID),
				attribute.String("message.correlation_id", msg.Metadata[metadata.KeyCorrelationID]),
			)
			return h(msg)
		}
	}
}
