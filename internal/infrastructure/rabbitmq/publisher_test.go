package rabbitmq_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/rabbitmq"
)

func TestMessage_JSONPersistente(t *testing.T) {
	at := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	e := ports.LifecycleEvent{Entity: "movement", ID: "m-1", Status: "APPROVED", Actor: "mgr-1", At: at}

	assert.Equal(t, "movement.approved", rabbitmq.RoutingKey(e))

	msg, err := rabbitmq.Message(e)
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, uint8(amqp091.Persistent), msg.DeliveryMode)
	assert.Equal(t, at, msg.Timestamp)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "m-1", decoded["id"])
	assert.Equal(t, "APPROVED", decoded["status"])
	assert.Equal(t, "mgr-1", decoded["actor"])
}

func TestNewPublisher_URLInvalida(t *testing.T) {
	_, err := rabbitmq.NewPublisher("not-a-url", "bodega.events")
	assert.Error(t, err)
}
