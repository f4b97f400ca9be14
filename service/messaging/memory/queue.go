package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/spindle/service/messaging"
)

// Config for memory queue implementation
type Config struct {
	// MaxRetries is how many times a nacked message is redelivered.
	MaxRetries int `json:"maxRetries" yaml:"maxRetries"`
	// RetryDelay is the wait before redelivery.
	RetryDelay time.Duration `json:"retryDelay" yaml:"retryDelay"`
	// DeadLetter keeps messages that exhausted their retries.
	DeadLetter bool `json:"deadLetter" yaml:"deadLetter"`
	// QueueBuffer bounds pending messages; Publish blocks while full.
	QueueBuffer int `json:"queueBuffer" yaml:"queueBuffer"`
}

// DefaultConfig returns a standard configuration for memory queue
func DefaultConfig() Config {
	return Config{
		MaxRetries:  0,
		RetryDelay:  100 * time.Millisecond,
		DeadLetter:  true,
		QueueBuffer: 256,
	}
}

// Message implements messaging.Message for the in-memory queue
type Message[T any] struct {
	id         string
	payload    T
	queue      *Queue[T]
	retryCount int
	mu         sync.Mutex
	processed  bool
	err        error
	createdAt  time.Time
}

// ID returns the message identifier
func (m *Message[T]) ID() string { return m.id }

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

// Err returns the error supplied to the last Nack
func (m *Message[T]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Ack acknowledges the message as processed successfully
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.queue.inflight.Done()
	return nil
}

// Nack indicates a failure in processing the message. Under the retry limit
// the message is redelivered after RetryDelay; otherwise it is dead-lettered
// when configured.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.err = err
	m.retryCount++

	if m.retryCount <= m.queue.config.MaxRetries {
		retry := &Message[T]{
			id:         m.id,
			payload:    m.payload,
			queue:      m.queue,
			retryCount: m.retryCount,
			createdAt:  time.Now(),
		}
		go func() {
			time.Sleep(m.queue.config.RetryDelay)
			m.queue.messages <- retry
		}()
		return nil
	}
	if m.queue.config.DeadLetter {
		m.queue.dlqMu.Lock()
		m.queue.dlq = append(m.queue.dlq, m)
		m.queue.dlqMu.Unlock()
	}
	m.queue.inflight.Done()
	return nil
}

// Queue implements an in-memory, bounded messaging.Queue
type Queue[T any] struct {
	messages chan *Message[T]
	dlq      []*Message[T]
	config   Config
	mu       sync.RWMutex
	closed   bool
	done     chan struct{}
	dlqMu    sync.Mutex
	inflight sync.WaitGroup
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.QueueBuffer <= 0 {
		config.QueueBuffer = DefaultConfig().QueueBuffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.QueueBuffer),
		dlq:      make([]*Message[T], 0),
		config:   config,
		done:     make(chan struct{}),
	}
}

// Publish adds a new item to the queue, blocking while the buffer is full.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return messaging.ErrClosed
	}
	msg := &Message[T]{
		id:        uuid.New().String(),
		payload:   *t,
		queue:     q,
		createdAt: time.Now(),
	}
	q.inflight.Add(1)
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		q.inflight.Done()
		return ctx.Err()
	}
}

// Consume retrieves a single item from the queue. Once the queue is closed
// and every published message has been settled it returns messaging.ErrClosed.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	default:
	}
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-q.done:
		select {
		case msg := <-q.messages:
			return msg, nil
		default:
			return nil, messaging.ErrClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops accepting new messages. Pending and in-flight messages are
// still delivered; Consume reports ErrClosed after they settle.
func (q *Queue[T]) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()
	go func() {
		q.inflight.Wait()
		close(q.done)
	}()
	return nil
}

// Size returns the current number of messages in the queue
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// DLQSize returns the number of messages in the dead letter queue
func (q *Queue[T]) DLQSize() int {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	return len(q.dlq)
}

// DeadLetters returns the payloads of dead-lettered messages
func (q *Queue[T]) DeadLetters() []*T {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	ret := make([]*T, 0, len(q.dlq))
	for _, m := range q.dlq {
		ret = append(ret, m.T())
	}
	return ret
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
