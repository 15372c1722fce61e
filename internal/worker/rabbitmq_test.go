package worker

import (
	"context"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliver_ClosedChannelIsAnError(t *testing.T) {
	p := newTestProcessor(t, ProcessorConfig{Publisher: &fakePublisher{}})
	msgs := make(chan amqp.Delivery)
	close(msgs)

	err := deliver(context.Background(), 3, msgs, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker 3: delivery channel closed")
}

func TestDeliver_StopsOnCancel(t *testing.T) {
	p := newTestProcessor(t, ProcessorConfig{Publisher: &fakePublisher{}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, deliver(ctx, 1, make(chan amqp.Delivery), p))
}

func TestDeliver_MalformedMessageIsHandled(t *testing.T) {
	pub := &fakePublisher{}
	p := newTestProcessor(t, ProcessorConfig{Publisher: pub})
	msgs := make(chan amqp.Delivery, 1)
	msgs <- amqp.Delivery{Body: []byte(`{`)}
	close(msgs)

	err := deliver(context.Background(), 1, msgs, p)
	assert.ErrorContains(t, err, "delivery channel closed")
	assert.Empty(t, pub.messages)
}
