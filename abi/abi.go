package abi

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/viant/spindle"
	"github.com/viant/spindle/service/process"
	"github.com/viant/spindle/service/system"
)

var (
	mux     sync.Mutex
	runtime *spindle.Runtime
)

// Runtime returns the default runtime, creating it on first use.
func Runtime() *spindle.Runtime {
	mux.Lock()
	defer mux.Unlock()
	if runtime == nil {
		runtime = spindle.New().Runtime()
	}
	return runtime
}

// Use replaces the default runtime and returns the previous one.
func Use(rt *spindle.Runtime) *spindle.Runtime {
	mux.Lock()
	defer mux.Unlock()
	prev := runtime
	runtime = rt
	return prev
}

// FiberSpawn starts fn and returns the fiber id or a negative code.
func FiberSpawn(fn func() int64) int64 {
	if fn == nil {
		return CodeInvalid
	}
	id, err := Runtime().Spawn(fn)
	if err != nil {
		return fiberSpawnCode(err)
	}
	return id
}

// FiberAwait returns the result of fiber id, or CodeInvalid for an unknown id
// or a fiber whose body panicked.
func FiberAwait(id int64) int64 {
	result, err := Runtime().Await(id)
	if err != nil {
		return CodeInvalid
	}
	return result
}

// FiberSleep blocks for ms milliseconds and returns 0.
func FiberSleep(ms int64) int64 {
	if ms < 0 {
		ms = 0
	}
	return Runtime().Fibers().Sleep(time.Duration(ms) * time.Millisecond)
}

// FiberYield returns value unchanged.
func FiberYield(value int64) int64 {
	return Runtime().Fibers().Yield(value)
}

// SetDeterministicMode enables deterministic scheduling for a nonzero flag.
func SetDeterministicMode(flag int64) {
	Runtime().Fibers().SetDeterministicMode(flag != 0)
}

// ChannelCreate returns a new channel id or CodeInvalid.
func ChannelCreate(capacity int64) int64 {
	id, err := Runtime().Channels().Create(capacity)
	if err != nil {
		return CodeInvalid
	}
	return id
}

// ChannelSend blocks until value is enqueued; it returns 1, or 0 for an unknown channel.
func ChannelSend(id, value int64) int64 {
	if err := Runtime().Channels().Send(id, value); err != nil {
		return 0
	}
	return 1
}

// ChannelRecv blocks for the next value; it returns CodeInvalid for an unknown channel.
func ChannelRecv(id int64) int64 {
	value, err := Runtime().Channels().Recv(id)
	if err != nil {
		return CodeInvalid
	}
	return value
}

// SpawnProcessWithHandler starts command under supervision and returns the
// process id or a negative code.
func SpawnProcessWithHandler(command string, handler process.Handler) int64 {
	id, err := Runtime().Processes().SpawnWithHandler(context.Background(), command, handler)
	if err != nil {
		return processSpawnCode(err)
	}
	return id
}

// AwaitProcess returns the exit code of process id or CodeInvalid.
func AwaitProcess(id int64) int64 {
	code, err := Runtime().Processes().Await(id)
	if err != nil {
		return CodeInvalid
	}
	return int64(code)
}

// CleanupProcess releases a finished process handle.
func CleanupProcess(id int64) int64 {
	err := Runtime().Processes().Cleanup(id)
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, process.ErrStillRunning):
		return CodeProcessRunning
	}
	return CodeInvalid
}

// SpawnProcess runs command synchronously and returns its exit status, or
// CodeInvalid when it could not be run.
func SpawnProcess(command string) int64 {
	_, code, err := Runtime().Run(context.Background(), command)
	if err != nil {
		return CodeInvalid
	}
	return int64(code)
}

// WriteFile replaces the file at path and returns the bytes written,
// CodeInvalid for an empty path or CodeWriteFailed.
func WriteFile(path, content string) int64 {
	n, err := system.WriteFile(context.Background(), path, content)
	switch {
	case err == nil:
		return int64(n)
	case errors.Is(err, system.ErrInvalidInput):
		return CodeInvalid
	}
	return CodeWriteFailed
}

// ReadFile returns the content of path and whether it could be read.
func ReadFile(path string) (string, bool) {
	content, err := system.ReadFile(context.Background(), path)
	if err != nil {
		return "", false
	}
	return content, true
}

// ExtractJSONField returns the named top-level field of a flat JSON object,
// empty when absent.
func ExtractJSONField(json, name string) string {
	value, _ := system.ExtractField(json, name)
	return value
}

// ExtractCode returns the "code" field of a request body, empty when absent.
func ExtractCode(json string) string {
	value, _ := system.ExtractCode(json)
	return value
}
