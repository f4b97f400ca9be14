package spindle

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/spindle/service/channel"
	"github.com/viant/spindle/service/fiber"
	"github.com/viant/spindle/service/listener"
	"github.com/viant/spindle/service/process"
	"github.com/viant/spindle/service/shell"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the runtime configuration. It
// can be populated from YAML or JSON; omitted sections keep their package
// defaults.
type Config struct {
	Fiber    fiber.Config    `json:"fiber" yaml:"fiber" toml:"fiber"`
	Channel  channel.Config  `json:"channel" yaml:"channel" toml:"channel"`
	Process  process.Config  `json:"process" yaml:"process" toml:"process"`
	Shell    shell.Config    `json:"shell" yaml:"shell" toml:"shell"`
	Listener listener.Config `json:"listener" yaml:"listener" toml:"listener"`
	Tracing  TracingConfig   `json:"tracing" yaml:"tracing" toml:"tracing"`
}

// TracingConfig enables the stdout span exporter.
type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled" toml:"enabled"`
	ServiceName    string `json:"serviceName" yaml:"serviceName" toml:"serviceName"`
	ServiceVersion string `json:"serviceVersion" yaml:"serviceVersion" toml:"serviceVersion"`
	// OutputFile receives spans, stdout when empty.
	OutputFile string `json:"outputFile,omitempty" yaml:"outputFile,omitempty" toml:"outputFile,omitempty"`
}

// DefaultConfig returns a Config populated with each package's defaults.
func DefaultConfig() *Config {
	return &Config{
		Fiber:    fiber.DefaultConfig(),
		Channel:  channel.DefaultConfig(),
		Process:  process.DefaultConfig(),
		Shell:    shell.DefaultConfig(),
		Listener: listener.DefaultConfig(),
		Tracing:  TracingConfig{ServiceName: "spindle", ServiceVersion: "dev"},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.Fiber.MaxRunning < 0 {
		errs = append(errs, fmt.Errorf("fiber.maxRunning must be >= 0"))
	}
	if c.Fiber.MaxFibers < 0 {
		errs = append(errs, fmt.Errorf("fiber.maxFibers must be >= 0"))
	}
	if c.Channel.MaxChannels < 0 {
		errs = append(errs, fmt.Errorf("channel.maxChannels must be >= 0"))
	}
	if c.Process.MaxProcesses < 0 {
		errs = append(errs, fmt.Errorf("process.maxProcesses must be >= 0"))
	}
	if c.Process.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("process.chunkSize must be > 0"))
	}
	if c.Process.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("process.pollInterval must be > 0"))
	}
	if err := c.Listener.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LoadConfig reads a configuration document from URL on top of
// DefaultConfig. Files ending in .toml are decoded as TOML, anything else as
// YAML (which also accepts JSON). TOML durations are integer nanoseconds.
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if strings.EqualFold(path.Ext(URL), ".toml") {
		err = toml.Unmarshal(data, ret)
	} else {
		err = yaml.Unmarshal(data, ret)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return ret, nil
}
