// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// Package stream exposes gocloud.dev/pubsub and side-loads various packages
// to register implementations such as kafka or in-memory. Please refer to
// specific documentation for each implementation.
//
//   - https://gocloud.dev/howto/pubsub/publish/
//   - https://gocloud.dev/howto/pubsub/subscribe/
package stream

import (
	"context"
	"errors"

	"github.com/moov-io/achfile/pkg/config"

	"github.com/Shopify/sarama"
	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/kafkapubsub"
	_ "gocloud.dev/pubsub/mempubsub"
)

// DefaultURL is the in-memory topic used when no stream is configured.
const DefaultURL = "mem://achfile-events"

// OpenTopic returns the topic events are published to. Kafka is preferred
// over an in-memory topic, and a nil config opens DefaultURL.
func OpenTopic(ctx context.Context, cfg *config.Events) (*pubsub.Topic, error) {
	stream := streamConfig(cfg)
	if stream.Kafka != nil {
		return KafkaTopic(stream.Kafka.Brokers, saramaConfig(), stream.Kafka.Topic, nil)
	}
	return Topic(ctx, inmemURL(stream))
}

// OpenSubscription returns a subscription to the same topic OpenTopic publishes on.
func OpenSubscription(ctx context.Context, cfg *config.Events) (*pubsub.Subscription, error) {
	stream := streamConfig(cfg)
	if k := stream.Kafka; k != nil {
		if k.Group == "" {
			return nil, errors.New("kafka: missing consumer group")
		}
		return KafkaSubscription(k.Brokers, saramaConfig(), k.Group, []string{k.Topic}, nil)
	}
	return Subscription(ctx, inmemURL(stream))
}

func streamConfig(cfg *config.Events) *config.EventStream {
	if cfg == nil || cfg.Stream == nil {
		return &config.EventStream{}
	}
	return cfg.Stream
}

func inmemURL(cfg *config.EventStream) string {
	if cfg.InMem != nil && cfg.InMem.URL != "" {
		return cfg.InMem.URL
	}
	return DefaultURL
}

func saramaConfig() *sarama.Config {
	cfg := kafkapubsub.MinimalConfig()
	cfg.ClientID = "achfile"
	return cfg
}

func Topic(ctx context.Context, url string) (*pubsub.Topic, error) {
	return pubsub.OpenTopic(ctx, url)
}

func Subscription(ctx context.Context, url string) (*pubsub.Subscription, error) {
	return pubsub.OpenSubscription(ctx, url)
}

// KafkaTopic creates a pubsub.Topic that sends to a Kafka topic. It uses a sarama.SyncProducer to send messages.
// Producer options can be configured in the Producer section of the sarama.Config: https://godoc.org/github.com/Shopify/sarama#Config.
// Config.Producer.Return.Success must be set to true.
func KafkaTopic(brokers []string, config *sarama.Config, topicName string, opts *kafkapubsub.TopicOptions) (*pubsub.Topic, error) {
	return kafkapubsub.OpenTopic(brokers, config, topicName, opts)
}

// KafkaSubscription creates a pubsub.Subscription that joins group, receiving messages from topics.
// It uses a sarama.ConsumerGroup to receive messages.
func KafkaSubscription(brokers []string, config *sarama.Config, group string, topics []string, opts *kafkapubsub.SubscriptionOptions) (*pubsub.Subscription, error) {
	return kafkapubsub.OpenSubscription(brokers, config, group, topics, opts)
}
