package fiber

// Option configures the fiber scheduler
type Option func(*Service)

// WithConfig sets the configuration
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithMaxRunning bounds the number of concurrently running fibers
func WithMaxRunning(n int) Option {
	return func(s *Service) {
		s.config.MaxRunning = n
	}
}

// WithMaxFibers bounds the number of registered fibers
func WithMaxFibers(n int) Option {
	return func(s *Service) {
		s.config.MaxFibers = n
	}
}

// WithDeterministic starts the scheduler in deterministic mode
func WithDeterministic(enabled bool) Option {
	return func(s *Service) {
		s.config.Deterministic = enabled
	}
}
