package abi

import (
	"errors"

	"github.com/viant/spindle/service/fiber"
	"github.com/viant/spindle/service/process"
	"github.com/viant/spindle/service/registry"
)

// Sentinel codes
const (
	CodeOK      int64 = 0
	CodeInvalid int64 = -1

	// fiber spawn
	CodeFiberCapacity     int64 = -3
	CodeFiberRegistryFull int64 = -4

	// process spawn
	CodeProcessRegistryFull int64 = -2
	CodeProcessPipe         int64 = -4
	CodeProcessFork         int64 = -6

	// process cleanup
	CodeProcessRunning int64 = -2

	// file write
	CodeWriteFailed int64 = -2
)

func fiberSpawnCode(err error) int64 {
	switch {
	case errors.Is(err, fiber.ErrCapacity):
		return CodeFiberCapacity
	case errors.Is(err, registry.ErrFull):
		return CodeFiberRegistryFull
	}
	return CodeInvalid
}

func processSpawnCode(err error) int64 {
	switch {
	case errors.Is(err, registry.ErrFull):
		return CodeProcessRegistryFull
	case errors.Is(err, process.ErrPipe):
		return CodeProcessPipe
	case errors.Is(err, process.ErrFork):
		return CodeProcessFork
	}
	return CodeInvalid
}
