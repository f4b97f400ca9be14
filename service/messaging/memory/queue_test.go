package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/spindle/service/messaging"
)

type testPayload struct {
	ProcessID int64
	Data      string
}

func TestQueue(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())
	ctx := context.Background()

	payload := testPayload{ProcessID: 1, Data: "hello\n"}
	require.NoError(t, queue.Publish(ctx, &payload))
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, payload, *message.T())

	assert.NoError(t, message.Ack())
	assert.Error(t, message.Ack(), "double ack must fail")
}

func TestQueue_Order(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, queue.Publish(ctx, &testPayload{ProcessID: int64(i)}))
	}
	for i := 0; i < 10; i++ {
		msg, err := queue.Consume(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, i, msg.T().ProcessID)
		require.NoError(t, msg.Ack())
	}
}

func TestQueue_Retries(t *testing.T) {
	config := DefaultConfig()
	config.MaxRetries = 1
	config.RetryDelay = 5 * time.Millisecond
	queue := NewQueue[testPayload](config)
	ctx := context.Background()

	require.NoError(t, queue.Publish(ctx, &testPayload{Data: "retry"}))
	msg, err := queue.Consume(ctx)
	require.NoError(t, err)
	require.NoError(t, msg.Nack(errors.New("first")))

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	msg, err = queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "retry", msg.T().Data)
	require.NoError(t, msg.Nack(errors.New("second")))
	assert.Equal(t, 1, queue.DLQSize())
	assert.Equal(t, "retry", queue.DeadLetters()[0].Data)
}

func TestQueue_Close(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())
	ctx := context.Background()
	require.NoError(t, queue.Publish(ctx, &testPayload{Data: "last"}))
	require.NoError(t, queue.Close())
	require.NoError(t, queue.Close())

	assert.ErrorIs(t, queue.Publish(ctx, &testPayload{}), messaging.ErrClosed)

	msg, err := queue.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, "last", msg.T().Data)
	require.NoError(t, msg.Ack())

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	_, err = queue.Consume(ctx)
	assert.ErrorIs(t, err, messaging.ErrClosed)
}

func TestQueue_ConsumeCancelled(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := queue.Consume(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestQueue_PublishBlocksWhenFull(t *testing.T) {
	config := DefaultConfig()
	config.QueueBuffer = 1
	queue := NewQueue[testPayload](config)
	require.NoError(t, queue.Publish(context.Background(), &testPayload{}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, queue.Publish(ctx, &testPayload{}), context.DeadlineExceeded)
}
