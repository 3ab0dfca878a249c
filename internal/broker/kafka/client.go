package kafka

import (
	"context"
	"errors"

	"storefront/internal/broker"
	"storefront/internal/config"

	"github.com/wb-go/wbf/retry"
)

// KafkaClient is a broker.Producer and broker.Consumer over the submissions topic.
type KafkaClient struct {
	producerClient *ProducerClient
	consumerClient *ConsumerClient
}

func NewKafkaClient(cfg *config.Config) *KafkaClient {
	return &KafkaClient{
		producerClient: NewProducerClient(cfg),
		consumerClient: NewConsumerClient(cfg),
	}
}

func (k *KafkaClient) Send(ctx context.Context, strategy retry.Strategy, key, value []byte) error {
	return k.producerClient.Send(ctx, strategy, key, value)
}

func (k *KafkaClient) Start(ctx context.Context, out chan<- *broker.Message, strategy retry.Strategy) {
	k.consumerClient.Start(ctx, out, strategy)
}

func (k *KafkaClient) Commit(ctx context.Context, msg *broker.Message) error {
	return k.consumerClient.Commit(ctx, msg)
}

func (k *KafkaClient) Close() error {
	var errs []error

	if k.producerClient != nil {
		if err := k.producerClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if k.consumerClient != nil {
		if err := k.consumerClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
