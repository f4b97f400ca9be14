package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/spindle/service/messaging/memory"
)

func TestListener_DeliversInOrder(t *testing.T) {
	queue := memory.NewQueue[Event[string]](memory.DefaultConfig())
	publisher := NewPublisher[string](queue)

	var mu sync.Mutex
	var got []string
	listener := NewListener[string](publisher, func(e *Event[string]) {
		mu.Lock()
		got = append(got, e.Data)
		mu.Unlock()
	})
	listener.Start()

	ctx := context.Background()
	for _, data := range []string{"a", "b", "c"} {
		require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{ProcessID: 1, EventType: "stdout"}, data)))
	}
	require.NoError(t, publisher.Close())

	select {
	case <-listener.Done():
	case <-time.After(time.Second):
		t.Fatal("listener did not finish after close")
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestListener_HandlerPanicDeadLetters(t *testing.T) {
	queue := memory.NewQueue[Event[int]](memory.DefaultConfig())
	publisher := NewPublisher[int](queue)
	listener := NewListener[int](publisher, func(e *Event[int]) {
		if e.Data == 2 {
			panic("bad event")
		}
	})
	listener.Start()

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		require.NoError(t, publisher.Publish(ctx, NewEvent(&Context{}, i)))
	}
	require.NoError(t, publisher.Close())
	<-listener.Done()
	assert.Equal(t, 1, queue.DLQSize())
}

func TestListener_Stop(t *testing.T) {
	queue := memory.NewQueue[Event[int]](memory.DefaultConfig())
	listener := NewListener[int](NewPublisher[int](queue), func(*Event[int]) {})
	listener.Start()
	listener.Stop()
	select {
	case <-listener.Done():
	case <-time.After(time.Second):
		t.Fatal("listener did not stop")
	}
}
