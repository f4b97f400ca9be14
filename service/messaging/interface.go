package messaging

import (
	"context"
	"errors"
)

// ErrClosed is returned by Publish after Close and by Consume once a closed
// queue has been drained.
var ErrClosed = errors.New("messaging: queue closed")

// Queue represents an abstract message queue for any payload type
type Queue[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message from the queue
	Consume(ctx context.Context) (Message[T], error)

	// Close stops accepting messages; pending messages remain consumable
	Close() error
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message
	Nack(err error) error
}
