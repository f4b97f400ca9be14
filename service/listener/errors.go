package listener

import "errors"

var (
	// ErrInvalidPort is returned for ports outside 0..65535.
	ErrInvalidPort = errors.New("listener: invalid port")
	// ErrInvalidAddress is returned for an empty bind address.
	ErrInvalidAddress = errors.New("listener: invalid address")
	// ErrAlreadyListening is returned by Listen on a started server.
	ErrAlreadyListening = errors.New("listener: already listening")
	// ErrDeterministicMode is returned when the scheduler would never run the accept loop.
	ErrDeterministicMode = errors.New("listener: accept loop cannot run in deterministic mode")
)
