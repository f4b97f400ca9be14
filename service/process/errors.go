package process

import "errors"

var (
	// ErrInvalidInput is returned for an empty command or a nil handler; no
	// process is started.
	ErrInvalidInput = errors.New("process: command and handler are required")

	// ErrPipe is returned when the output pipes could not be created.
	ErrPipe = errors.New("process: pipe creation failed")

	// ErrFork is returned when the child could not be started.
	ErrFork = errors.New("process: start failed")

	// ErrStillRunning is returned by Cleanup for a process that has not exited.
	ErrStillRunning = errors.New("process: still running")
)
