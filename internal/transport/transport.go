// Package transport builds the Watermill publisher/subscriber pair backing
// the payment-event pipeline. Two transports exist: kafka for real
// deployments and channel (in-memory) for tests and local runs.
package transport

import (
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Transport combines the publisher and subscriber produced by a factory.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// Config provides the values transports need, without depending on the full
// config package.
type Config interface {
	GetPubSubSystem() string
	GetKafkaBrokers() []string
	GetKafkaConsumerGroup() string
}

// Build selects and constructs the transport named by the configuration.
func Build(conf Config, logger watermill.LoggerAdapter) (Transport, error) {
	system := strings.ToLower(conf.GetPubSubSystem())
	switch system {
	case "kafka":
		return kafkaTransport(conf, logger)
	case "channel", "":
		return channelTransport(logger)
	default:
		return Transport{}, fmt.Errorf("transport: unknown pubsub system %q", system)
	}
}

// BuildPublisher constructs only the publishing half of the transport, for
// processes that never subscribe. No consumer group is joined and no
// subscriber has to be closed.
func BuildPublisher(conf Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	system := strings.ToLower(conf.GetPubSubSystem())
	switch system {
	case "kafka":
		return kafkaPublisher(conf, logger)
	case "channel", "":
		return channelPublisher(logger), nil
	default:
		return nil, fmt.Errorf("transport: unknown pubsub system %q", system)
	}
}
