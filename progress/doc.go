// Package progress aggregates lifecycle counters (spawned, running,
// completed, failed, pending) for runtime entities such as fibers and
// supervised processes. Trackers are safe for concurrent use and can notify
// an observer after every change.
package progress
