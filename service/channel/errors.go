package channel

import "errors"

var (
	// ErrInvalidCapacity is returned by Create for capacities below 1.
	ErrInvalidCapacity = errors.New("channel: capacity must be positive")
)
