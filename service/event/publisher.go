package event

import (
	"context"

	"github.com/viant/spindle/service/messaging"
)

// Publisher publishes events of a single payload type.
type Publisher[T any] struct {
	queue messaging.Queue[Event[T]]
}

// NewPublisher creates a publisher backed by queue.
func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}

// Publish enqueues event.
func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	return p.queue.Publish(ctx, event)
}

// Consume returns the next event message; the caller settles it.
func (p *Publisher[T]) Consume(ctx context.Context) (messaging.Message[Event[T]], error) {
	return p.queue.Consume(ctx)
}

// Close stops accepting events.
func (p *Publisher[T]) Close() error {
	return p.queue.Close()
}
