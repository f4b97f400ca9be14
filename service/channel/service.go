// Package channel provides bounded blocking queues of int64 values used for
// inter-fiber communication. Channels are created once and never closed.
package channel

import (
	"fmt"

	"github.com/viant/spindle/service/registry"
)

// Config represents channel service configuration
type Config struct {
	// MaxChannels bounds live channels, 0 means unbounded.
	MaxChannels int `json:"maxChannels" yaml:"maxChannels"`
}

// DefaultConfig returns the default channel configuration
func DefaultConfig() Config {
	return Config{}
}

// Service owns the channel registry.
type Service struct {
	config   Config
	registry *registry.Registry[Channel]
}

// New creates a channel service
func New(options ...Option) *Service {
	ret := &Service{config: DefaultConfig()}
	for _, opt := range options {
		opt(ret)
	}
	ret.registry = registry.New[Channel](ret.config.MaxChannels)
	return ret
}

// Create allocates a channel with the given capacity and returns its id.
func (s *Service) Create(capacity int64) (int64, error) {
	if capacity < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	return s.registry.Add(newChannel(int(capacity)), func(id int64, c *Channel) error {
		c.id = id
		return nil
	})
}

// Lookup returns the channel registered under id.
func (s *Service) Lookup(id int64) (*Channel, error) {
	return s.registry.Load(id)
}

// Send inserts v into channel id, blocking while it is full.
func (s *Service) Send(id int64, v int64) error {
	ch, err := s.registry.Load(id)
	if err != nil {
		return err
	}
	ch.Send(v)
	return nil
}

// Recv removes the oldest value from channel id, blocking while it is empty.
func (s *Service) Recv(id int64) (int64, error) {
	ch, err := s.registry.Load(id)
	if err != nil {
		return 0, err
	}
	return ch.Recv(), nil
}

// Len returns the number of pending values in channel id.
func (s *Service) Len(id int64) (int, error) {
	ch, err := s.registry.Load(id)
	if err != nil {
		return 0, err
	}
	return ch.Len(), nil
}

// Cap returns the capacity of channel id.
func (s *Service) Cap(id int64) (int, error) {
	ch, err := s.registry.Load(id)
	if err != nil {
		return 0, err
	}
	return ch.Cap(), nil
}

// Count returns the number of live channels.
func (s *Service) Count() int {
	return s.registry.Len()
}
