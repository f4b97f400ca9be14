package event

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/viant/spindle/service/messaging"
)

// Listener consumes events from a publisher on a single goroutine, so events
// reach the handler in publication order.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewListener creates a listener; call Start to begin dispatching.
func NewListener[T any](publisher *Publisher[T], handler func(*Event[T])) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Start launches the dispatch goroutine.
func (l *Listener[T]) Start() {
	go func() {
		defer close(l.done)
		for {
			msg, err := l.publisher.Consume(l.ctx)
			if err != nil {
				if errors.Is(err, messaging.ErrClosed) || errors.Is(err, context.Canceled) {
					return
				}
				log.Printf("event listener: failed to consume: %v", err)
				continue
			}
			l.dispatch(msg)
		}
	}()
}

func (l *Listener[T]) dispatch(msg messaging.Message[Event[T]]) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("event listener: handler panic: %v", r)
			_ = msg.Nack(fmt.Errorf("handler panic: %v", r))
		}
	}()
	l.handler(msg.T())
	_ = msg.Ack()
}

// Stop cancels dispatching immediately; undelivered events are dropped.
func (l *Listener[T]) Stop() {
	l.cancel()
}

// Done is closed when the dispatch goroutine exits.
func (l *Listener[T]) Done() <-chan struct{} {
	return l.done
}
