// Package event carries typed lifecycle events from producers to listeners
// over a messaging queue.
package event

import (
	"time"

	"github.com/viant/spindle/internal/clock"
)

// Context identifies the source of an event.
type Context struct {
	RunID     string `json:"runID,omitempty"`
	ProcessID int64  `json:"processID"`
	EventType string `json:"eventType"`
	Command   string `json:"command,omitempty"`
}

// Event is a typed event envelope.
type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Data      T                      `json:"data"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: clock.Now(),
		Data:      data,
	}
}
