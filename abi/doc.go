// Package abi exposes the runtime to compiled programs as plain integer
// functions. Failures are reported as negative sentinel codes instead of Go
// errors; see the Code constants. All functions operate on a process-wide
// default runtime created on first use, which Use can replace.
package abi
