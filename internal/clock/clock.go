package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// SleepFunc pauses the calling goroutine. Override in tests to avoid real delays.
var SleepFunc = time.Sleep

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Sleep is a thin wrapper around SleepFunc.
func Sleep(d time.Duration) { SleepFunc(d) }

// Since returns the time elapsed since t according to NowFunc.
func Since(t time.Time) time.Duration { return NowFunc().Sub(t) }
