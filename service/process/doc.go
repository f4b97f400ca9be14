// Package process supervises child processes started through a shell.
//
// SpawnWithHandler creates two pipes, starts `sh -c command` with its stdout
// and stderr redirected into them and hands the read ends to a dedicated
// monitor goroutine. The monitor waits for readiness on both pipes with a
// bounded poll timeout, delivers every chunk it reads to the caller's Handler
// and, after each readiness round, checks without blocking whether the child
// has exited. On exit it drains what is left in the pipes, records the exit
// code, emits a single EventExit carrying the code as a decimal string and
// closes the pipes.
//
// Handler calls happen synchronously on the monitor goroutine: a slow handler
// delays only its own process's events. NewQueuedHandler decouples the two
// through a bounded queue when that is not acceptable.
//
// Fork and exec happen in one os.StartProcess call, so a shell that cannot be
// executed is reported synchronously as ErrFork and no process is
// registered; there is no child to exit with 127. A command the shell cannot
// find still runs as a registered process and exits 127.
//
// Lifecycle per process: Starting → Running → Exited. Callers Await a process
// and then Cleanup it exactly once; Cleanup refuses running processes and
// ignores ids that are already gone.
//
// A process id is reserved before the fork and published once the child is
// running, so lookups never observe a half-started process.
//
// The supervisor relies on POSIX pipes, poll(2) and wait4(2).
package process
