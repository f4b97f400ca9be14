// Package messaging defines the queue abstraction used to decouple process
// event producers (monitor goroutines) from event consumers (dispatchers).
package messaging
