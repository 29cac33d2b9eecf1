package mq

import (
	"context"
	"testing"

	"github.com/dailyyield/apiserver/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDisabled(t *testing.T) {
	for _, backend := range []string{"", "none", "None"} {
		m, err := Open(context.Background(), config.MQConfig{Backend: backend})
		require.NoError(t, err)
		assert.Nil(t, m)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.MQConfig{Backend: "kafka"})
	assert.ErrorContains(t, err, "unknown mq backend")
}

func TestOpenRequiresBackendSettings(t *testing.T) {
	_, err := Open(context.Background(), config.MQConfig{Backend: BackendRabbitMQ})
	assert.ErrorContains(t, err, "rabbitmq url is required")

	_, err = Open(context.Background(), config.MQConfig{Backend: BackendPubSub})
	assert.ErrorContains(t, err, "pubsub project id is required")
}

func TestHeadersToAttributes(t *testing.T) {
	assert.Nil(t, headersToAttributes(nil))

	attrs := headersToAttributes(amqp.Table{
		"type":  "purchase.created",
		"raw":   []byte("bytes"),
		"count": int32(3),
	})
	assert.Equal(t, map[string]string{
		"type":  "purchase.created",
		"raw":   "bytes",
		"count": "3",
	}, attrs)
}

func TestDeliveryToMessage(t *testing.T) {
	msg := deliveryToMessage(amqp.Delivery{
		MessageId:   "m-1",
		ContentType: "application/json",
		Body:        []byte(`{"purchase_id":3}`),
		Headers:     amqp.Table{"type": "purchase.created"},
	})
	assert.Equal(t, "m-1", msg.ID)
	assert.JSONEq(t, `{"purchase_id":3}`, string(msg.Data))
	assert.Equal(t, map[string]string{
		"type":          "purchase.created",
		AttrContentType: "application/json",
	}, msg.Attributes)

	bare := deliveryToMessage(amqp.Delivery{Body: []byte("x")})
	assert.Nil(t, bare.Attributes)
}
