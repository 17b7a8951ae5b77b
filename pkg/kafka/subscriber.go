package kafka

import (
	"context"
	"time"

	"github.com/droplink-labs/backend/pkg/pubsub"

	"github.com/Shopify/sarama"
)

type subscriber struct {
	clientID string
	topics   []string
	group    sarama.ConsumerGroup
	handler  pubsub.SubscribeHandler
}

func NewSubscriber(
	clientID string,
	brokerAddrs []string,
	topics []string,
	handler pubsub.SubscribeHandler,
) (*subscriber, error) {
	config := sarama.NewConfig()
	config.ClientID = clientID
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	group, err := sarama.NewConsumerGroup(brokerAddrs, clientID, config)
	if err != nil {
		return nil, err
	}

	return &subscriber{
		clientID: clientID,
		topics:   topics,
		group:    group,
		handler:  handler,
	}, nil
}

// Run consumes until the context is cancelled.
func (s *subscriber) Run(ctx context.Context) {
	for {
		if err := s.group.Consume(ctx, s.topics, s); err != nil {
			time.Sleep(time.Second)
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func (s *subscriber) Stop(ctx context.Context) error {
	return s.group.Close()
}

func (s *subscriber) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (s *subscriber) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (s *subscriber) ConsumeClaim(
	session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim,
) error {
	for msg := range claim.Messages() {
		s.handler(session.Context(), msg.Topic, &pubsub.Pack{
			Key: msg.Key,
			Msg: msg.Value,
		}, msg.Timestamp)

		session.MarkMessage(msg, "")
	}

	return nil
}
