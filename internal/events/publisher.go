// Package events implements the payment-event side channel: publishing onto
// the durable log, the asynchronous relay that decouples publishing from the
// request path, and the consumer loop of the payment worker.
package events

import (
	"context"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/ordergate/internal/ids"
	"github.com/drblury/ordergate/internal/metadata"
	"github.com/drblury/ordergate/internal/order"
)

// PaymentEventSchema tags published messages so consumers can tell payment
// events apart from anything else that may share the transport.
const PaymentEventSchema = "payment.PaymentEvent"

// PublishError wraps an event-log append failure.
type PublishError struct {
	Topic string
	Err   error
}

func (e *PublishError) Error() string { return "publish to " + e.Topic + ": " + e.Err.Error() }

func (e *PublishError) Unwrap() error { return e.Err }

// Publisher appends payment events to the configured topic. The partition
// key is the order id, so all events of one order preserve their relative
// order.
type Publisher struct {
	pub   message.Publisher
	topic string
}

// NewPublisher wraps the transport publisher for the given topic.
func NewPublisher(pub message.Publisher, topic string) *Publisher {
	return &Publisher{pub: pub, topic: topic}
}

// PublishPaymentEvent encodes the event with the protobuf wire codec and
// appends it to the log. The caller decides how to react to a
// *PublishError; there is no retry here.
func (p *Publisher) PublishPaymentEvent(ctx context.Context, ev order.PaymentEvent) error {
	payload, err := ev.MarshalBinary()
	if err != nil {
		return &PublishError{Topic: p.topic, Err: err}
	}

	md := metadata.Metadata{}.
		With(metadata.KeyPartition, strconv.FormatInt(ev.OrderID, 10)).
		With(metadata.KeyEventSchema, PaymentEventSchema)

	msg := message.NewMessage(ids.NewULID(), payload)
	msg.Metadata = metadata.ToWatermill(md)
	if ctx != nil {
		msg.SetContext(ctx)
	}

	if err := p.pub.Publish(p.topic, msg); err != nil {
		return &PublishError{Topic: p.topic, Err: err}
	}
	return nil
}
