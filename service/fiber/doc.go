// Package fiber schedules fibers: zero-argument units of work that produce a
// single int64 result.
//
// Two scheduling modes are supported:
//
//   - concurrent (default): every fiber runs on its own goroutine as soon as
//     it is spawned; Await blocks until the goroutine completes.
//   - deterministic: spawned fibers are queued and nothing runs until Await
//     is called, which executes every pending queued fiber in spawn order up
//     to and including the awaited one on the caller's goroutine.
//
// The mode is process-wide state meant to be set once before use. Switching
// modes while fibers are in flight is a precondition violation: fibers keep
// the mode they were spawned with, and a deterministic fiber dropped from the
// queue by a later reset is executed directly by its own Await.
//
// Fibers are not suspendable mid-body. Yield is the identity function and
// never transfers control; Sleep blocks only the calling goroutine.
package fiber
