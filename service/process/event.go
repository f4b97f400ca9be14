package process

// EventType identifies a process lifecycle event.
type EventType int64

const (
	// EventStdout carries a chunk read from the child's standard output.
	EventStdout EventType = 1
	// EventStderr carries a chunk read from the child's standard error.
	EventStderr EventType = 2
	// EventExit carries the exit code rendered as a decimal string.
	EventExit EventType = 3
)

func (t EventType) String() string {
	switch t {
	case EventStdout:
		return "stdout"
	case EventStderr:
		return "stderr"
	case EventExit:
		return "exit"
	}
	return "unknown"
}

// Handler receives process events. It is invoked on the monitor goroutine.
type Handler func(processID int64, eventType EventType, data string)
