package spindle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/viant/spindle/progress"
	"github.com/viant/spindle/service/channel"
	"github.com/viant/spindle/service/fiber"
	"github.com/viant/spindle/service/listener"
	"github.com/viant/spindle/service/process"
	"golang.org/x/sync/errgroup"
)

// ErrServing is returned by Serve when the listener is already running.
var ErrServing = errors.New("spindle: listener already serving")

// Runtime exposes the fiber, channel and process services
type Runtime struct {
	fibers          *fiber.Service
	channels        *channel.Service
	processes       *process.Service
	listenerOptions []listener.Option

	mux    sync.Mutex
	server *listener.Server
}

// Stats summarises runtime counters
type Stats struct {
	Fibers    progress.Progress
	Processes progress.Progress
	Channels  int
}

// Fibers returns the scheduler
func (r *Runtime) Fibers() *fiber.Service { return r.fibers }

// Channels returns the channel service
func (r *Runtime) Channels() *channel.Service { return r.channels }

// Processes returns the supervisor
func (r *Runtime) Processes() *process.Service { return r.processes }

// Spawn starts fn as a fiber
func (r *Runtime) Spawn(fn fiber.Func) (int64, error) {
	return r.fibers.Spawn(fn)
}

// Await waits for fiber id and returns its result
func (r *Runtime) Await(id int64) (int64, error) {
	return r.fibers.Await(id)
}

// AwaitAll waits for every fiber in ids and returns their results in the
// same order. The first failure is returned once all waits have ended. In
// deterministic mode fibers are awaited one by one in the given order.
func (r *Runtime) AwaitAll(ctx context.Context, ids ...int64) ([]int64, error) {
	results := make([]int64, len(ids))
	if r.fibers.Deterministic() {
		for i, id := range ids {
			result, err := r.fibers.Await(id)
			if err != nil {
				return nil, fmt.Errorf("fiber %d: %w", id, err)
			}
			results[i] = result
		}
		return results, nil
	}
	group, _ := errgroup.WithContext(ctx)
	for i, id := range ids {
		group.Go(func() error {
			result, err := r.fibers.Await(id)
			if err != nil {
				return fmt.Errorf("fiber %d: %w", id, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// SpawnProcess runs command under supervision inside a new fiber whose
// result is the process exit code. A start failure yields
// process.ExitCodeAbnormal. The process handle is cleaned up once it exits.
func (r *Runtime) SpawnProcess(ctx context.Context, command string, handler process.Handler) (int64, error) {
	if command == "" || handler == nil {
		return 0, process.ErrInvalidInput
	}
	return r.fibers.Spawn(func() int64 {
		id, err := r.processes.SpawnWithHandler(ctx, command, handler)
		if err != nil {
			log.Printf("spindle: failed to spawn %q: %v", command, err)
			return process.ExitCodeAbnormal
		}
		code, err := r.processes.Await(id)
		if err != nil {
			return process.ExitCodeAbnormal
		}
		if err = r.processes.Cleanup(id); err != nil {
			log.Printf("spindle: failed to clean up process %d: %v", id, err)
		}
		return int64(code)
	})
}

// Run executes command synchronously through the legacy shell path.
func (r *Runtime) Run(ctx context.Context, command string) (string, int, error) {
	return r.processes.Run(ctx, command)
}

// Serve starts the HTTP listener; its accept loop runs as a fiber.
func (r *Runtime) Serve(ctx context.Context) (*listener.Server, error) {
	r.mux.Lock()
	defer r.mux.Unlock()
	if r.server != nil {
		return nil, ErrServing
	}
	server, err := listener.New(r.fibers, r.listenerOptions...)
	if err != nil {
		return nil, err
	}
	if err = server.Listen(ctx); err != nil {
		return nil, err
	}
	r.server = server
	return server, nil
}

// Stats returns a snapshot of runtime counters
func (r *Runtime) Stats() Stats {
	return Stats{
		Fibers:    r.fibers.Stats(),
		Processes: r.processes.Stats(),
		Channels:  r.channels.Count(),
	}
}

// Shutdown stops the listener and releases the shell session. Running
// fibers and processes are not interrupted.
func (r *Runtime) Shutdown() error {
	r.mux.Lock()
	server := r.server
	r.server = nil
	r.mux.Unlock()

	var errs []error
	if server != nil {
		if err := server.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop listener: %w", err))
		}
	}
	if err := r.processes.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close shell: %w", err))
	}
	return errors.Join(errs...)
}
