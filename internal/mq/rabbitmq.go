package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dailyyield/apiserver/config"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQClient publishes wallet events to named queues on the default
// exchange. Publishes are confirmed by the broker before returning.
type RabbitMQClient struct {
	conn            *amqp.Connection
	channel         *amqp.Channel
	queueDurable    bool
	queueAutoDelete bool

	// mu serializes publishes so each deferred confirmation matches its message.
	mu       sync.Mutex
	declared map[string]struct{}
}

func NewRabbitMQClient(cfg config.RabbitMQConfig) (*RabbitMQClient, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("rabbitmq url is required")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	closeAll := func() {
		_ = ch.Close()
		_ = conn.Close()
	}
	if err := ch.Confirm(false); err != nil {
		closeAll()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}
	if cfg.PrefetchCount > 0 {
		if err := ch.Qos(cfg.PrefetchCount, 0, false); err != nil {
			closeAll()
			return nil, err
		}
	}

	return &RabbitMQClient{
		conn:            conn,
		channel:         ch,
		queueDurable:    cfg.QueueDurable,
		queueAutoDelete: cfg.QueueAutoDelete,
		declared:        make(map[string]struct{}),
	}, nil
}

// Publish sends data to the queue named channel and waits for the broker ack.
// The content_type attribute becomes the AMQP content type; the rest go into headers.
func (r *RabbitMQClient) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("rabbitmq channel is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureQueue(channel); err != nil {
		return "", err
	}

	msg := amqp.Publishing{
		ContentType:  "application/octet-stream",
		DeliveryMode: amqp.Transient,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Headers:      amqp.Table{},
		Body:         data,
	}
	if r.queueDurable {
		msg.DeliveryMode = amqp.Persistent
	}
	for key, value := range attrs {
		if key == AttrContentType {
			msg.ContentType = value
			continue
		}
		msg.Headers[key] = value
	}

	confirmation, err := r.channel.PublishWithDeferredConfirmWithContext(ctx, "", channel, false, false, msg)
	if err != nil {
		return "", err
	}
	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return "", fmt.Errorf("wait for publish confirm: %w", err)
	}
	if !acked {
		return "", fmt.Errorf("broker nacked message %s", msg.MessageId)
	}
	return msg.MessageId, nil
}

// Subscribe consumes the queue until ctx is done. A handler error requeues the delivery.
func (r *RabbitMQClient) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("rabbitmq channel is required")
	}

	r.mu.Lock()
	err := r.ensureQueue(channel)
	r.mu.Unlock()
	if err != nil {
		return err
	}

	consumerTag := "dailyyield-" + uuid.NewString()
	deliveries, err := r.channel.Consume(channel, consumerTag, false, false, false, false, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.channel.Cancel(consumerTag, false)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("rabbitmq delivery channel closed")
			}
			if err := handler(ctx, deliveryToMessage(delivery)); err != nil {
				_ = delivery.Nack(false, true)
				continue
			}
			_ = delivery.Ack(false)
		}
	}
}

func (r *RabbitMQClient) Close() error {
	if r.channel != nil {
		_ = r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// ensureQueue declares a queue the first time it is used. Callers hold mu.
func (r *RabbitMQClient) ensureQueue(name string) error {
	if _, ok := r.declared[name]; ok {
		return nil
	}
	if _, err := r.channel.QueueDeclare(name, r.queueDurable, r.queueAutoDelete, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", name, err)
	}
	r.declared[name] = struct{}{}
	return nil
}

func deliveryToMessage(delivery amqp.Delivery) Message {
	attrs := headersToAttributes(delivery.Headers)
	if delivery.ContentType != "" {
		if attrs == nil {
			attrs = make(map[string]string, 1)
		}
		attrs[AttrContentType] = delivery.ContentType
	}
	return Message{
		ID:         delivery.MessageId,
		Data:       delivery.Body,
		Attributes: attrs,
	}
}

func headersToAttributes(headers amqp.Table) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(headers))
	for key, value := range headers {
		switch typed := value.(type) {
		case string:
			attrs[key] = typed
		case []byte:
			attrs[key] = string(typed)
		default:
			attrs[key] = fmt.Sprint(value)
		}
	}
	return attrs
}
