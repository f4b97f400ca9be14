package process

import (
	"context"
	"log"

	"github.com/viant/spindle/internal/idgen"
	"github.com/viant/spindle/service/event"
	"github.com/viant/spindle/service/messaging/memory"
)

// Payload is the body of a queued process event.
type Payload struct {
	Type EventType `json:"type"`
	Data string    `json:"data"`
}

// QueuedHandler moves handler execution off the monitor goroutine. Monitors
// publish into a bounded queue and a single dispatch goroutine invokes the
// wrapped handler in publication order. When the queue is full the monitor
// blocks, so backpressure reaches the producing process rather than dropping
// events.
type QueuedHandler struct {
	runID     string
	publisher *event.Publisher[Payload]
	listener  *event.Listener[Payload]
}

// NewQueuedHandler starts a dispatcher for handler.
func NewQueuedHandler(handler Handler, config memory.Config) *QueuedHandler {
	queue := memory.NewQueue[event.Event[Payload]](config)
	publisher := event.NewPublisher[Payload](queue)
	listener := event.NewListener[Payload](publisher, func(e *event.Event[Payload]) {
		handler(e.Context.ProcessID, e.Data.Type, e.Data.Data)
	})
	listener.Start()
	return &QueuedHandler{
		runID:     idgen.New(),
		publisher: publisher,
		listener:  listener,
	}
}

// RunID identifies this dispatcher in event envelopes.
func (q *QueuedHandler) RunID() string { return q.runID }

// Handle is a Handler that enqueues the event.
func (q *QueuedHandler) Handle(processID int64, eventType EventType, data string) {
	anEvent := event.NewEvent(&event.Context{
		RunID:     q.runID,
		ProcessID: processID,
		EventType: eventType.String(),
	}, Payload{Type: eventType, Data: data})
	if err := q.publisher.Publish(context.Background(), anEvent); err != nil {
		log.Printf("process %d: dropped %v event: %v", processID, eventType, err)
	}
}

// Close stops accepting events and waits until every queued event has been
// delivered.
func (q *QueuedHandler) Close() error {
	err := q.publisher.Close()
	<-q.listener.Done()
	return err
}
