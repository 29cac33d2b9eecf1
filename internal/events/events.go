// Package events publishes wallet state changes to the message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dailyyield/apiserver/internal/mq"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	attrType        = "type"
	contentTypeJSON = "application/json"
	publishTimeout  = 3 * time.Second
)

// Event is the envelope written to the wallet events channel.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Broker is the part of mq.MQ the publisher needs.
type Broker interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// Publisher sends events on a single channel. Failures are logged and never
// returned, so a broker outage does not fail the request that caused the event.
type Publisher struct {
	broker  Broker
	channel string
	logger  logrus.FieldLogger
	now     func() time.Time
}

func NewPublisher(broker Broker, channel string, logger logrus.FieldLogger) *Publisher {
	return &Publisher{
		broker:  broker,
		channel: channel,
		logger:  logger,
		now:     time.Now,
	}
}

// Publish marshals payload into an Event and sends it.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) {
	event, data, err := p.encode(eventType, payload)
	if err != nil {
		p.logger.WithError(err).WithField("type", eventType).Error("encode event")
		return
	}

	// The event describes committed state, so it goes out even if the request is cancelled.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	attrs := map[string]string{
		attrType:           eventType,
		mq.AttrContentType: contentTypeJSON,
	}
	messageID, err := p.broker.Publish(pubCtx, p.channel, data, attrs)
	entry := p.logger.WithFields(logrus.Fields{
		"event_id": event.ID,
		"type":     eventType,
		"channel":  p.channel,
	})
	if err != nil {
		entry.WithError(err).Warn("publish event failed")
		return
	}
	entry.WithField("message_id", messageID).Debug("event published")
}

func (p *Publisher) encode(eventType string, payload any) (Event, []byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, nil, fmt.Errorf("marshal payload: %w", err)
	}
	event := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: p.now().UTC(),
		Payload:    raw,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return Event{}, nil, fmt.Errorf("marshal event: %w", err)
	}
	return event, data, nil
}

// Decode parses a message produced by Publisher.
func Decode(msg mq.Message) (Event, error) {
	var event Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return Event{}, fmt.Errorf("decode event %s: %w", msg.ID, err)
	}
	if event.Type == "" {
		event.Type = msg.Attributes[attrType]
	}
	return event, nil
}
