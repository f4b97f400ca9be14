package channel

// Option configures the channel service
type Option func(*Service)

// WithConfig sets the configuration
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithMaxChannels bounds the number of live channels
func WithMaxChannels(n int) Option {
	return func(s *Service) {
		s.config.MaxChannels = n
	}
}
