// Package spindle provides the concurrency and process-supervision runtime
// used by compiled programs: fibers, bounded int64 channels and supervised
// shell processes whose output is streamed to a caller-supplied handler.
//
// Services are layered as:
//
//   - fiber    – concurrent or deterministic scheduling of int64 work units
//   - channel  – bounded blocking FIFO channels
//   - process  – fork/exec with non-blocking pipe multiplexing
//   - listener – the HTTP boundary whose accept loop runs as a fiber
//
// End-users typically interact with the runtime via the Service façade
// exposed by the root package:
//
//	srv := spindle.New()
//	rt := srv.Runtime()
//	id, _ := rt.SpawnProcess(ctx, "echo hi", handler)
//	code, _ := rt.Await(id)
package spindle
