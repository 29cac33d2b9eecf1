package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/dailyyield/apiserver/config"
	"google.golang.org/api/option"
)

const (
	defaultSubscriptionSuffix = "-sub"
	pubsubAckDeadline         = 30 * time.Second
	pubsubMinBackoff          = 5 * time.Second
	pubsubMaxBackoff          = 5 * time.Minute
	// Wallet events are low volume; flush each one instead of waiting for a batch.
	pubsubPublishDelay = 10 * time.Millisecond
)

// PubSubClient publishes wallet events to Pub/Sub topics and consumes them
// through a per-topic subscription named topic+suffix.
type PubSubClient struct {
	client *pubsub.Client
	suffix string

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
}

func NewPubSubClient(ctx context.Context, cfg config.PubSubConfig) (*PubSubClient, error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		return nil, errors.New("pubsub project id is required")
	}

	var opts []option.ClientOption
	if path := strings.TrimSpace(cfg.CredentialsFile); path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}

	suffix := cfg.SubscriptionSuffix
	if suffix == "" {
		suffix = defaultSubscriptionSuffix
	}
	return &PubSubClient{
		client: client,
		suffix: suffix,
		topics: make(map[string]*pubsub.Topic),
	}, nil
}

// Publish blocks until the server assigns a message ID.
func (p *PubSubClient) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("pubsub channel is required")
	}
	topic, err := p.topic(ctx, channel)
	if err != nil {
		return "", err
	}

	msg := &pubsub.Message{Data: data, Attributes: make(map[string]string, len(attrs))}
	for key, value := range attrs {
		msg.Attributes[key] = value
	}
	id, err := topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish to %s: %w", channel, err)
	}
	return id, nil
}

// Subscribe receives from the channel's subscription until ctx is done.
// Nacked messages are redelivered with exponential backoff.
func (p *PubSubClient) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("pubsub channel is required")
	}
	topic, err := p.topic(ctx, channel)
	if err != nil {
		return err
	}
	sub, err := p.subscription(ctx, channel+p.suffix, topic)
	if err != nil {
		return err
	}

	return sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		err := handler(ctx, Message{
			ID:         msg.ID,
			Data:       msg.Data,
			Attributes: msg.Attributes,
		})
		if err != nil {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// Close flushes buffered publishes before closing the client.
func (p *PubSubClient) Close() error {
	p.mu.Lock()
	for name, topic := range p.topics {
		topic.Stop()
		delete(p.topics, name)
	}
	p.mu.Unlock()
	return p.client.Close()
}

func (p *PubSubClient) topic(ctx context.Context, name string) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if topic, ok := p.topics[name]; ok {
		return topic, nil
	}

	topic := p.client.Topic(name)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check topic %s: %w", name, err)
	}
	if !exists {
		if topic, err = p.client.CreateTopic(ctx, name); err != nil {
			return nil, fmt.Errorf("create topic %s: %w", name, err)
		}
	}
	topic.PublishSettings.DelayThreshold = pubsubPublishDelay
	p.topics[name] = topic
	return topic, nil
}

func (p *PubSubClient) subscription(ctx context.Context, name string, topic *pubsub.Topic) (*pubsub.Subscription, error) {
	sub := p.client.Subscription(name)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check subscription %s: %w", name, err)
	}
	if exists {
		return sub, nil
	}
	sub, err = p.client.CreateSubscription(ctx, name, pubsub.SubscriptionConfig{
		Topic:       topic,
		AckDeadline: pubsubAckDeadline,
		RetryPolicy: &pubsub.RetryPolicy{
			MinimumBackoff: pubsubMinBackoff,
			MaximumBackoff: pubsubMaxBackoff,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create subscription %s: %w", name, err)
	}
	return sub, nil
}
