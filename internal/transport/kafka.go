package transport

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/ordergate/internal/metadata"
)

// Factory vars are overridable so tests can substitute in-memory fakes.
var (
	KafkaPublisherFactory = func(cfg kafka.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
		return kafka.NewPublisher(cfg, logger)
	}
	KafkaSubscriberFactory = func(cfg kafka.SubscriberConfig, logger watermill.LoggerAdapter) (message.Subscriber, error) {
		return kafka.NewSubscriber(cfg, logger)
	}
)

// partitionKeyMarshaler keys each Kafka record by the partition_key metadata
// entry, so all events of one order land in the same partition and keep
// their relative order.
func partitionKeyMarshaler() kafka.MarshalerUnmarshaler {
	return kafka.NewWithPartitioningMarshaler(func(topic string, msg *message.Message) (string, error) {
		key := msg.Metadata.Get(metadata.KeyPartition)
		if key == "" {
			return "", fmt.Errorf("transport: message %s has no %s metadata", msg.UUID, metadata.KeyPartition)
		}
		return key, nil
	})
}

func kafkaTransport(conf Config, logger watermill.LoggerAdapter) (Transport, error) {
	publisher, err := kafkaPublisher(conf, logger)
	if err != nil {
		return Transport{}, err
	}

	subscriber, err := KafkaSubscriberFactory(
		kafka.SubscriberConfig{
			Brokers:       conf.GetKafkaBrokers(),
			Unmarshaler:   partitionKeyMarshaler(),
			ConsumerGroup: conf.GetKafkaConsumerGroup(),
		},
		logger,
	)
	if err != nil {
		return Transport{}, err
	}

	return Transport{Publisher: publisher, Subscriber: subscriber}, nil
}

func kafkaPublisher(conf Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return KafkaPublisherFactory(
		kafka.PublisherConfig{
			Brokers:   conf.GetKafkaBrokers(),
			Marshaler: partitionKeyMarshaler(),
		},
		logger,
	)
}
